package goSession

import (
	"strings"
	"testing"

	"github.com/kvn-dev/goSession/token"
)

func TestBuildRequiresUserProvider(t *testing.T) {
	_, err := New().
		WithConfig(testConfig(t)).
		WithTokenStore(token.NewMemoryStore()).
		Build()
	if err == nil || !strings.Contains(err.Error(), "user provider") {
		t.Fatalf("expected user provider error, got %v", err)
	}
}

func TestBuildRequiresBackend(t *testing.T) {
	_, err := New().
		WithConfig(testConfig(t)).
		WithUserProvider(newMockUserProvider()).
		Build()
	if err == nil || !strings.Contains(err.Error(), "redis client or token store") {
		t.Fatalf("expected backend error, got %v", err)
	}
}

func TestBuildRejectsRateLimitWithoutRedis(t *testing.T) {
	cfg := testConfig(t)
	cfg.RateLimit.Enabled = true

	_, err := New().
		WithConfig(cfg).
		WithTokenStore(token.NewMemoryStore()).
		WithUserProvider(newMockUserProvider()).
		Build()
	if err == nil || !strings.Contains(err.Error(), "rate limiting") {
		t.Fatalf("expected rate limiting error, got %v", err)
	}
}

func TestBuildRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.JWT.PrivateKey = nil

	_, err := New().
		WithConfig(cfg).
		WithTokenStore(token.NewMemoryStore()).
		WithUserProvider(newMockUserProvider()).
		Build()
	if err == nil {
		t.Fatal("expected config validation error")
	}
}

func TestBuilderSingleUse(t *testing.T) {
	b := New().
		WithConfig(testConfig(t)).
		WithTokenStore(token.NewMemoryStore()).
		WithUserProvider(newMockUserProvider())

	engine, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	if _, err := b.Build(); err == nil || !strings.Contains(err.Error(), "already used") {
		t.Fatalf("expected already-used error, got %v", err)
	}
}
