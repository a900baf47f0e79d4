package password

import (
	"strings"
	"testing"
)

func newTestHasher(t *testing.T, mutate func(*Config)) *Argon2 {
	t.Helper()

	cfg := Config{
		Memory:      65536,
		Time:        3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
	if mutate != nil {
		mutate(&cfg)
	}

	hasher, err := NewArgon2(cfg)
	if err != nil {
		t.Fatalf("NewArgon2 error: %v", err)
	}
	return hasher
}

func TestHashRoundTrip(t *testing.T) {
	hasher := newTestHasher(t, nil)

	hash, err := hasher.Hash("correct-horse-battery")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=65536,t=3,p=2$") {
		t.Fatalf("unexpected PHC prefix: %s", hash)
	}

	ok, err := hasher.Verify("correct-horse-battery", hash)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if !ok {
		t.Fatal("expected matching password to verify")
	}

	ok, err = hasher.Verify("incorrect-horse-battery", hash)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if ok {
		t.Fatal("expected mismatched password to fail verification")
	}
}

func TestHashSaltsAreUnique(t *testing.T) {
	hasher := newTestHasher(t, nil)

	first, err := hasher.Hash("same-input-password")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	second, err := hasher.Hash("same-input-password")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if first == second {
		t.Fatal("two hashes of the same password must differ by salt")
	}
}

func TestHashRejectsShortAndOversizedInput(t *testing.T) {
	hasher := newTestHasher(t, func(cfg *Config) { cfg.MaxPasswordBytes = 64 })

	for _, pwd := range []string{"", "short", strings.Repeat("a", 65)} {
		if _, err := hasher.Hash(pwd); err == nil {
			t.Errorf("expected Hash to reject %d-byte password", len(pwd))
		}
	}

	boundary := strings.Repeat("b", 64)
	hash, err := hasher.Hash(boundary)
	if err != nil {
		t.Fatalf("expected exactly-max password to be accepted: %v", err)
	}
	ok, err := hasher.Verify(boundary, hash)
	if err != nil || !ok {
		t.Fatalf("Verify failed for max-length password: ok=%v err=%v", ok, err)
	}
}

func TestVerifyRejectsOversizedInputBeforeDerivation(t *testing.T) {
	hasher := newTestHasher(t, func(cfg *Config) { cfg.MaxPasswordBytes = 64 })

	hash, err := hasher.Hash("valid-password-123")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	if _, err := hasher.Verify(strings.Repeat("c", 65), hash); err == nil {
		t.Fatal("expected oversized password to be rejected by Verify")
	}
}

func TestDefaultMaxPasswordBytesApplied(t *testing.T) {
	// MaxPasswordBytes left zero applies the package default.
	hasher := newTestHasher(t, nil)

	if _, err := hasher.Hash(strings.Repeat("d", DefaultMaxPasswordBytes+1)); err == nil {
		t.Fatalf("expected password > %d bytes to be rejected", DefaultMaxPasswordBytes)
	}
	if _, err := hasher.Hash(strings.Repeat("e", DefaultMaxPasswordBytes)); err != nil {
		t.Fatalf("expected password of exactly %d bytes to be accepted: %v", DefaultMaxPasswordBytes, err)
	}
}

func TestNeedsUpgradeDetectsWeakerParameters(t *testing.T) {
	legacy := newTestHasher(t, func(cfg *Config) {
		cfg.Memory = 32768
		cfg.Time = 2
		cfg.Parallelism = 1
	})
	current := newTestHasher(t, nil)

	hash, err := legacy.Hash("migrating-password")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	upgrade, err := current.NeedsUpgrade(hash)
	if err != nil {
		t.Fatalf("NeedsUpgrade error: %v", err)
	}
	if !upgrade {
		t.Fatal("expected weaker stored parameters to request an upgrade")
	}

	fresh, err := current.Hash("migrating-password")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	upgrade, err = current.NeedsUpgrade(fresh)
	if err != nil {
		t.Fatalf("NeedsUpgrade error: %v", err)
	}
	if upgrade {
		t.Fatal("expected current parameters to need no upgrade")
	}
}

func TestVerifyRejectsMalformedHashes(t *testing.T) {
	hasher := newTestHasher(t, nil)

	hash, err := hasher.Hash("well-formed-input")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	cases := map[string]string{
		"not PHC at all":      "plaintext-garbage",
		"wrong algorithm":     strings.Replace(hash, "argon2id", "argon2i", 1),
		"unsupported version": strings.Replace(hash, "$v=19$", "$v=18$", 1),
		"truncated":           hash[:len(hash)/2],
	}
	for name, bad := range cases {
		if _, err := hasher.Verify("well-formed-input", bad); err == nil {
			t.Errorf("%s: expected Verify to fail", name)
		}
	}
}

func TestNewArgon2ParameterFloors(t *testing.T) {
	weak := []func(*Config){
		func(cfg *Config) { cfg.Memory = 4096 },
		func(cfg *Config) { cfg.Time = 0 },
		func(cfg *Config) { cfg.Parallelism = 0 },
		func(cfg *Config) { cfg.SaltLength = 8 },
		func(cfg *Config) { cfg.KeyLength = 8 },
		func(cfg *Config) { cfg.MaxPasswordBytes = -1 },
	}
	for i, mutate := range weak {
		cfg := Config{Memory: 65536, Time: 3, Parallelism: 2, SaltLength: 16, KeyLength: 32}
		mutate(&cfg)
		if _, err := NewArgon2(cfg); err == nil {
			t.Errorf("case %d: expected config below floors to be rejected", i)
		}
	}
}
