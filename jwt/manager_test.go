package jwt

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"testing"
	"time"
)

func newTestKeyring(t *testing.T, kid string) (*Keyring, ed25519.PrivateKey) {
	t.Helper()

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	kr, err := NewKeyring(MethodEd25519)
	if err != nil {
		t.Fatalf("new keyring: %v", err)
	}
	if err := kr.SetSigningKey(kid, priv, pub); err != nil {
		t.Fatalf("set signing key: %v", err)
	}

	return kr, priv
}

func newTestManager(t *testing.T, kr *Keyring, cfg Config) *Manager {
	t.Helper()

	if cfg.AccessTTL == 0 {
		cfg.AccessTTL = 10 * time.Minute
	}
	if cfg.Issuer == "" {
		cfg.Issuer = "goSession"
	}

	m, err := NewManager(cfg, kr)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return m
}

func TestCreateAndParseAccess(t *testing.T) {
	kr, _ := newTestKeyring(t, "primary")
	m := newTestManager(t, kr, Config{Audience: "api"})

	token, err := m.CreateAccess("user-1", []string{"customer"}, 3)
	if err != nil {
		t.Fatalf("create access: %v", err)
	}

	claims, err := m.ParseAccess(token)
	if err != nil {
		t.Fatalf("parse access: %v", err)
	}
	if claims.Subject != "user-1" {
		t.Fatalf("subject = %q, want user-1", claims.Subject)
	}
	if claims.TokenVersion != 3 {
		t.Fatalf("token version = %d, want 3", claims.TokenVersion)
	}
	if len(claims.Roles) != 1 || claims.Roles[0] != "customer" {
		t.Fatalf("roles = %v, want [customer]", claims.Roles)
	}
	if claims.ID == "" {
		t.Fatal("expected non-empty jti")
	}
}

func TestParseAccessExpired(t *testing.T) {
	kr, _ := newTestKeyring(t, "primary")
	m := newTestManager(t, kr, Config{AccessTTL: time.Nanosecond})

	token, err := m.CreateAccess("user-1", nil, 0)
	if err != nil {
		t.Fatalf("create access: %v", err)
	}

	time.Sleep(5 * time.Millisecond)

	if _, err := m.ParseAccess(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("err = %v, want ErrTokenExpired", err)
	}
}

func TestParseAccessWrongKey(t *testing.T) {
	krA, _ := newTestKeyring(t, "primary")
	mA := newTestManager(t, krA, Config{})

	token, err := mA.CreateAccess("user-1", nil, 0)
	if err != nil {
		t.Fatalf("create access: %v", err)
	}

	// Different keyring, same kid: signature must fail.
	krB, _ := newTestKeyring(t, "primary")
	mB := newTestManager(t, krB, Config{})

	if _, err := mB.ParseAccess(token); !errors.Is(err, ErrTokenSignature) {
		t.Fatalf("err = %v, want ErrTokenSignature", err)
	}
}

func TestParseAccessUnknownKID(t *testing.T) {
	krA, _ := newTestKeyring(t, "old")
	mA := newTestManager(t, krA, Config{})

	token, err := mA.CreateAccess("user-1", nil, 0)
	if err != nil {
		t.Fatalf("create access: %v", err)
	}

	krB, _ := newTestKeyring(t, "new")
	mB := newTestManager(t, krB, Config{})

	if _, err := mB.ParseAccess(token); !errors.Is(err, ErrUnknownKeyID) {
		t.Fatalf("err = %v, want ErrUnknownKeyID", err)
	}
}

func TestRotateKeepsOldVerifyKeys(t *testing.T) {
	kr, _ := newTestKeyring(t, "k1")
	m := newTestManager(t, kr, Config{})

	oldToken, err := m.CreateAccess("user-1", nil, 0)
	if err != nil {
		t.Fatalf("create access: %v", err)
	}

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	if err := kr.Rotate("k2", priv, pub); err != nil {
		t.Fatalf("rotate: %v", err)
	}

	// Tokens signed before rotation remain verifiable.
	if _, err := m.ParseAccess(oldToken); err != nil {
		t.Fatalf("parse pre-rotation token: %v", err)
	}

	newToken, err := m.CreateAccess("user-1", nil, 0)
	if err != nil {
		t.Fatalf("create access after rotation: %v", err)
	}
	claims, err := m.ParseAccess(newToken)
	if err != nil {
		t.Fatalf("parse post-rotation token: %v", err)
	}
	if claims.Subject != "user-1" {
		t.Fatalf("subject = %q, want user-1", claims.Subject)
	}

	// Retiring k1 invalidates tokens signed with it.
	if err := kr.RetireVerifyKey("k1"); err != nil {
		t.Fatalf("retire: %v", err)
	}
	if _, err := m.ParseAccess(oldToken); !errors.Is(err, ErrUnknownKeyID) {
		t.Fatalf("err = %v, want ErrUnknownKeyID after retirement", err)
	}
}

func TestRetireActiveSigningKeyRejected(t *testing.T) {
	kr, _ := newTestKeyring(t, "primary")

	if err := kr.RetireVerifyKey("primary"); err == nil {
		t.Fatal("expected error retiring the active signing key")
	}
}

func TestParseAccessAudienceMismatch(t *testing.T) {
	kr, _ := newTestKeyring(t, "primary")
	issuing := newTestManager(t, kr, Config{Audience: "api"})
	checking := newTestManager(t, kr, Config{Audience: "admin"})

	token, err := issuing.CreateAccess("user-1", nil, 0)
	if err != nil {
		t.Fatalf("create access: %v", err)
	}

	if _, err := checking.ParseAccess(token); !errors.Is(err, ErrAudienceMismatch) {
		t.Fatalf("err = %v, want ErrAudienceMismatch", err)
	}
}

func TestParseAccessGarbage(t *testing.T) {
	kr, _ := newTestKeyring(t, "primary")
	m := newTestManager(t, kr, Config{})

	for _, tok := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := m.ParseAccess(tok); !errors.Is(err, ErrTokenMalformed) {
			t.Fatalf("ParseAccess(%q) err = %v, want ErrTokenMalformed", tok, err)
		}
	}
}
