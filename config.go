package goSession

import (
	"errors"
	"time"

	"github.com/kvn-dev/goSession/internal"
)

// Config defines a public type used by goSession APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	JWT       JWTConfig
	Refresh   RefreshConfig
	RateLimit RateLimitConfig
	CSRF      CSRFConfig
	Password  PasswordConfig
	Account   AccountConfig
	Audit     AuditConfig
	Metrics   MetricsConfig
}

/*
====================================
JWT CONFIG
====================================
*/

// JWTConfig defines a public type used by goSession APIs.
//
// JWTConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type JWTConfig struct {
	AccessTTL     time.Duration
	SigningMethod string // "ed25519" (default), "rs256" optional
	KeyID         string
	PrivateKey    []byte
	PublicKey     []byte
	VerifyKeys    map[string][]byte
	Issuer        string
	Audience      string
	Leeway        time.Duration
}

/*
====================================
REFRESH CONFIG
====================================
*/

// RefreshConfig defines a public type used by goSession APIs.
//
// RefreshConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RefreshConfig struct {
	TTL         time.Duration
	HashSecret  []byte
	RedisPrefix string
}

/*
====================================
RATE LIMIT CONFIG
====================================
*/

// RateLimitConfig defines a public type used by goSession APIs.
//
// RateLimitConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RateLimitConfig struct {
	Enabled            bool
	LoginMaxRequests   int
	LoginWindow        time.Duration
	RefreshMaxRequests int
	RefreshWindow      time.Duration
	AccountMaxRequests int
	AccountWindow      time.Duration
}

// CSRFConfig defines a public type used by goSession APIs.
//
// CSRFConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CSRFConfig struct {
	Enabled bool
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig defines a public type used by goSession APIs.
//
// PasswordConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type PasswordConfig struct {
	Memory         uint32 // in KB
	Time           uint32
	Parallelism    uint8
	SaltLength     uint32
	KeyLength      uint32
	UpgradeOnLogin bool
}

// AccountConfig defines a public type used by goSession APIs.
//
// AccountConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AccountConfig struct {
	Enabled     bool
	DefaultRole string
}

// AuditConfig defines a public type used by goSession APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by goSession APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the baseline configuration. Callers must still
// supply key material before [Builder.Build] accepts it.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			AccessTTL:     10 * time.Minute,
			SigningMethod: "ed25519",
			Issuer:        "goSession",
			Audience:      "api",
		},
		Refresh: RefreshConfig{
			TTL:         14 * 24 * time.Hour,
			RedisPrefix: "rt",
		},
		RateLimit: RateLimitConfig{
			Enabled:            true,
			LoginMaxRequests:   5,
			LoginWindow:        time.Minute,
			RefreshMaxRequests: 10,
			RefreshWindow:      time.Minute,
			AccountMaxRequests: 3,
			AccountWindow:      10 * time.Minute,
		},
		CSRF: CSRFConfig{
			Enabled: true,
		},
		Password: PasswordConfig{
			Memory:         65536,
			Time:           3,
			Parallelism:    2,
			SaltLength:     16,
			KeyLength:      32,
			UpgradeOnLogin: true,
		},
		Account: AccountConfig{
			Enabled:     true,
			DefaultRole: "customer",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.JWT.PrivateKey = cloneBytes(cfg.JWT.PrivateKey)
	out.JWT.PublicKey = cloneBytes(cfg.JWT.PublicKey)
	if len(cfg.JWT.VerifyKeys) > 0 {
		out.JWT.VerifyKeys = make(map[string][]byte, len(cfg.JWT.VerifyKeys))
		for kid, key := range cfg.JWT.VerifyKeys {
			out.JWT.VerifyKeys[kid] = cloneBytes(key)
		}
	}
	out.Refresh.HashSecret = cloneBytes(cfg.Refresh.HashSecret)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Config) Validate() error {
	// JWT
	if c.JWT.AccessTTL <= 0 {
		return errors.New("JWT AccessTTL must be > 0")
	}
	if c.JWT.SigningMethod != "ed25519" && c.JWT.SigningMethod != "rs256" {
		return errors.New("unsupported JWT signing method")
	}
	if len(c.JWT.PrivateKey) == 0 {
		return errors.New("JWT PrivateKey is required")
	}
	if len(c.JWT.PublicKey) == 0 {
		return errors.New("JWT PublicKey is required")
	}
	if c.JWT.Leeway < 0 || c.JWT.Leeway > 2*time.Minute {
		return errors.New("JWT Leeway must be between 0 and 2m")
	}
	for kid, key := range c.JWT.VerifyKeys {
		if kid == "" {
			return errors.New("JWT VerifyKeys contains empty kid")
		}
		if len(key) == 0 {
			return errors.New("JWT VerifyKeys contains empty key")
		}
	}

	// Refresh
	if c.Refresh.TTL <= 0 {
		return errors.New("Refresh TTL must be > 0")
	}
	if c.Refresh.TTL <= c.JWT.AccessTTL {
		return errors.New("Refresh TTL must exceed JWT AccessTTL")
	}
	if err := internal.ValidateHashKey(c.Refresh.HashSecret); err != nil {
		return err
	}
	if c.Refresh.RedisPrefix == "" {
		return errors.New("Refresh RedisPrefix must not be empty")
	}

	// Rate limiting
	if c.RateLimit.Enabled {
		if c.RateLimit.LoginMaxRequests <= 0 || c.RateLimit.LoginWindow <= 0 {
			return errors.New("RateLimit login bucket must have positive budget and window")
		}
		if c.RateLimit.RefreshMaxRequests <= 0 || c.RateLimit.RefreshWindow <= 0 {
			return errors.New("RateLimit refresh bucket must have positive budget and window")
		}
		if c.RateLimit.AccountMaxRequests <= 0 || c.RateLimit.AccountWindow <= 0 {
			return errors.New("RateLimit account bucket must have positive budget and window")
		}
	}

	// Password
	if c.Password.Memory < 8*1024 {
		return errors.New("Password Memory must be >= 8192 KB")
	}
	if c.Password.Time < 1 {
		return errors.New("Password Time must be >= 1")
	}
	if c.Password.Parallelism < 1 {
		return errors.New("Password Parallelism must be >= 1")
	}
	if c.Password.SaltLength < 16 {
		return errors.New("Password SaltLength must be >= 16")
	}
	if c.Password.KeyLength < 16 {
		return errors.New("Password KeyLength must be >= 16")
	}

	// Account creation
	if c.Account.Enabled {
		if c.Account.DefaultRole == "" {
			return errors.New("Account DefaultRole is required when account creation is enabled")
		}
	}

	// Audit
	if c.Audit.Enabled {
		if c.Audit.BufferSize <= 0 {
			return errors.New("Audit BufferSize must be > 0 when audit is enabled")
		}
	}

	return nil
}
