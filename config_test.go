package goSession

import (
	"strings"
	"testing"
	"time"
)

func validTestConfig(t *testing.T) Config {
	t.Helper()
	return testConfig(t)
}

func TestDefaultConfigRequiresKeyMaterial(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.JWT.AccessTTL != 10*time.Minute {
		t.Fatalf("expected 10m access TTL, got %v", cfg.JWT.AccessTTL)
	}
	if cfg.Refresh.TTL != 14*24*time.Hour {
		t.Fatalf("expected 14d refresh TTL, got %v", cfg.Refresh.TTL)
	}
	if cfg.JWT.SigningMethod != "ed25519" {
		t.Fatalf("expected ed25519 default, got %q", cfg.JWT.SigningMethod)
	}
	if !cfg.CSRF.Enabled {
		t.Fatal("expected CSRF enabled by default")
	}
	if cfg.Account.DefaultRole != "customer" {
		t.Fatalf("expected customer default role, got %q", cfg.Account.DefaultRole)
	}

	// Keys are never generated silently.
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected Validate to reject missing key material")
	}
}

func TestConfigValidateRejections(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantSub string
	}{
		{"zero access ttl", func(c *Config) { c.JWT.AccessTTL = 0 }, "AccessTTL"},
		{"bad signing method", func(c *Config) { c.JWT.SigningMethod = "hs256" }, "signing method"},
		{"missing private key", func(c *Config) { c.JWT.PrivateKey = nil }, "PrivateKey"},
		{"missing public key", func(c *Config) { c.JWT.PublicKey = nil }, "PublicKey"},
		{"excessive leeway", func(c *Config) { c.JWT.Leeway = 5 * time.Minute }, "Leeway"},
		{"empty verify kid", func(c *Config) { c.JWT.VerifyKeys = map[string][]byte{"": []byte("x")} }, "kid"},
		{"refresh ttl below access ttl", func(c *Config) { c.Refresh.TTL = time.Minute }, "Refresh TTL"},
		{"short hash secret", func(c *Config) { c.Refresh.HashSecret = []byte("short") }, "hash key"},
		{"empty redis prefix", func(c *Config) { c.Refresh.RedisPrefix = "" }, "RedisPrefix"},
		{"zero login bucket", func(c *Config) { c.RateLimit.Enabled = true; c.RateLimit.LoginMaxRequests = 0 }, "login bucket"},
		{"weak argon2 memory", func(c *Config) { c.Password.Memory = 1024 }, "Memory"},
		{"short salt", func(c *Config) { c.Password.SaltLength = 8 }, "SaltLength"},
		{"account without role", func(c *Config) { c.Account.DefaultRole = "" }, "DefaultRole"},
		{"audit without buffer", func(c *Config) { c.Audit.Enabled = true; c.Audit.BufferSize = 0 }, "BufferSize"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validTestConfig(t)
			tc.mutate(&cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantSub) {
				t.Fatalf("expected error mentioning %q, got %v", tc.wantSub, err)
			}
		})
	}
}

func TestCloneConfigDeepCopies(t *testing.T) {
	cfg := validTestConfig(t)
	cfg.JWT.VerifyKeys = map[string][]byte{"old-1": []byte("key-material")}

	cloned := cloneConfig(cfg)
	cfg.JWT.PrivateKey[0] ^= 0xFF
	cfg.Refresh.HashSecret[0] ^= 0xFF
	cfg.JWT.VerifyKeys["old-1"][0] ^= 0xFF

	if cloned.JWT.PrivateKey[0] == cfg.JWT.PrivateKey[0] {
		t.Fatal("private key not deep-copied")
	}
	if cloned.Refresh.HashSecret[0] == cfg.Refresh.HashSecret[0] {
		t.Fatal("hash secret not deep-copied")
	}
	if cloned.JWT.VerifyKeys["old-1"][0] == cfg.JWT.VerifyKeys["old-1"][0] {
		t.Fatal("verify keys not deep-copied")
	}
}
