package goSession

import (
	"errors"

	"github.com/redis/go-redis/v9"

	internalaudit "github.com/kvn-dev/goSession/internal/audit"
	"github.com/kvn-dev/goSession/internal/rate"
	"github.com/kvn-dev/goSession/jwt"
	"github.com/kvn-dev/goSession/password"
	"github.com/kvn-dev/goSession/permission"
	"github.com/kvn-dev/goSession/token"
)

// Builder defines a public type used by goSession APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	tokenStore token.Store
	roleSource permission.RoleSource
	userRoles  map[string][]string
	rolePerms  map[string][]string

	userProvider UserProvider
	auditSink    AuditSink

	built bool
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation, dependency calls, or security checks fail.
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig may return an error when input validation, dependency calls, or security checks fail.
// WithConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis describes the withredis operation and its observable behavior.
//
// WithRedis may return an error when input validation, dependency calls, or security checks fail.
// WithRedis does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithTokenStore overrides the refresh token store. When unset, Build wires
// a Redis-backed store from the client given to [Builder.WithRedis].
func (b *Builder) WithTokenStore(store token.Store) *Builder {
	b.tokenStore = store
	return b
}

// WithRoles describes the withroles operation and its observable behavior.
//
// WithRoles may return an error when input validation, dependency calls, or security checks fail.
// WithRoles does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithRoles(rolePermissions map[string][]string) *Builder {
	b.rolePerms = rolePermissions
	return b
}

// WithUserRoles describes the withuserroles operation and its observable behavior.
//
// WithUserRoles may return an error when input validation, dependency calls, or security checks fail.
// WithUserRoles does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithUserRoles(userRoles map[string][]string) *Builder {
	b.userRoles = userRoles
	return b
}

// WithRoleSource overrides the static role maps with a live [permission.RoleSource].
// Takes precedence over [Builder.WithRoles] and [Builder.WithUserRoles].
func (b *Builder) WithRoleSource(source permission.RoleSource) *Builder {
	b.roleSource = source
	return b
}

// WithUserProvider describes the withuserprovider operation and its observable behavior.
//
// WithUserProvider may return an error when input validation, dependency calls, or security checks fail.
// WithUserProvider does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithUserProvider(up UserProvider) *Builder {
	b.userProvider = up
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
//
// WithAuditSink may return an error when input validation, dependency calls, or security checks fail.
// WithAuditSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
//
// WithMetricsEnabled may return an error when input validation, dependency calls, or security checks fail.
// WithMetricsEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms describes the withlatencyhistograms operation and its observable behavior.
//
// WithLatencyHistograms may return an error when input validation, dependency calls, or security checks fail.
// WithLatencyHistograms does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
// Build does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.userProvider == nil {
		return nil, errors.New("user provider required")
	}

	if b.tokenStore == nil && b.redis == nil {
		return nil, errors.New("redis client or token store required")
	}
	if cfg.RateLimit.Enabled && b.redis == nil {
		return nil, errors.New("rate limiting requires redis client")
	}

	// -------- KEYRING --------
	keyring, err := jwt.NewKeyring(jwt.SigningMethod(cfg.JWT.SigningMethod))
	if err != nil {
		return nil, err
	}

	kid := cfg.JWT.KeyID
	if kid == "" {
		kid = "primary"
	}
	if err := keyring.SetSigningKey(kid, cfg.JWT.PrivateKey, cfg.JWT.PublicKey); err != nil {
		return nil, err
	}
	for verifyKID, key := range cfg.JWT.VerifyKeys {
		if err := keyring.AddVerifyKey(verifyKID, key); err != nil {
			return nil, err
		}
	}

	jm, err := jwt.NewManager(jwt.Config{
		AccessTTL:  cfg.JWT.AccessTTL,
		Issuer:     cfg.JWT.Issuer,
		Audience:   cfg.JWT.Audience,
		Leeway:     cfg.JWT.Leeway,
		RequireIAT: true,
	}, keyring)
	if err != nil {
		return nil, err
	}

	// -------- TOKEN STORE --------
	store := b.tokenStore
	if store == nil {
		store = token.NewRedisStore(b.redis, cfg.Refresh.RedisPrefix)
	}

	// -------- PERMISSION RESOLVER --------
	source := b.roleSource
	if source == nil {
		source = permission.NewStaticRoleSource(b.userRoles, b.rolePerms)
	}

	ph, err := password.NewArgon2(password.Config{
		Memory:      cfg.Password.Memory,
		Time:        cfg.Password.Time,
		Parallelism: cfg.Password.Parallelism,
		SaltLength:  cfg.Password.SaltLength,
		KeyLength:   cfg.Password.KeyLength,
	})
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		config:       cfg,
		tokens:       store,
		resolver:     permission.NewResolver(source),
		passwordHash: ph,
		jwtManager:   jm,
		keyring:      keyring,
		userProvider: b.userProvider,
		csrf:         csrfGuard{enabled: cfg.CSRF.Enabled},
	}

	if cfg.RateLimit.Enabled {
		engine.rateLimiter = rate.New(b.redis, rate.Config{
			Enabled: true,
			Login:   rate.Bucket{MaxRequests: cfg.RateLimit.LoginMaxRequests, Window: cfg.RateLimit.LoginWindow},
			Refresh: rate.Bucket{MaxRequests: cfg.RateLimit.RefreshMaxRequests, Window: cfg.RateLimit.RefreshWindow},
			Account: rate.Bucket{MaxRequests: cfg.RateLimit.AccountMaxRequests, Window: cfg.RateLimit.AccountWindow},
		})
	}

	engine.audit = internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, b.auditSink)
	engine.metrics = NewMetrics(cfg.Metrics)

	b.built = true

	return engine, nil
}
