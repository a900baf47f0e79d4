package goSession

import (
	"context"
	"errors"
	"testing"
)

func TestCreateAccountHappyPath(t *testing.T) {
	engine, provider := newTestEngine(t, nil)

	result, err := engine.CreateAccount(context.Background(), CreateAccountRequest{
		Identifier: "bob@example.com",
		Password:   "correct-horse",
	})
	if err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}
	if result.Identifier != "bob@example.com" {
		t.Fatalf("expected identifier echoed, got %q", result.Identifier)
	}
	if result.Role != "customer" {
		t.Fatalf("expected default role customer, got %q", result.Role)
	}
	if provider.createCalls != 1 {
		t.Fatalf("expected 1 provider create call, got %d", provider.createCalls)
	}

	// The fresh account can log in immediately.
	if _, err := engine.Login(context.Background(), "bob@example.com", "correct-horse"); err != nil {
		t.Fatalf("Login with created account failed: %v", err)
	}
}

func TestCreateAccountExplicitRole(t *testing.T) {
	engine, _ := newTestEngine(t, nil)

	result, err := engine.CreateAccount(context.Background(), CreateAccountRequest{
		Identifier: "bob@example.com",
		Password:   "correct-horse",
		Role:       "admin",
	})
	if err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}
	if result.Role != "admin" {
		t.Fatalf("expected admin role, got %q", result.Role)
	}
}

func TestCreateAccountDuplicate(t *testing.T) {
	engine, provider := newTestEngine(t, func(cfg *Config) {
		cfg.Metrics.Enabled = true
	})
	seedUser(t, engine, provider, "user-1", "alice@example.com", "correct-horse")

	if _, err := engine.CreateAccount(context.Background(), CreateAccountRequest{
		Identifier: "alice@example.com",
		Password:   "correct-horse",
	}); !errors.Is(err, ErrAccountExists) {
		t.Fatalf("expected ErrAccountExists, got %v", err)
	}

	snap := engine.MetricsSnapshot()
	if snap.Counters[MetricAccountCreationDuplicate] != 1 {
		t.Fatalf("expected 1 duplicate, got %d", snap.Counters[MetricAccountCreationDuplicate])
	}
}

func TestCreateAccountDisabled(t *testing.T) {
	engine, _ := newTestEngine(t, func(cfg *Config) {
		cfg.Account.Enabled = false
	})

	if _, err := engine.CreateAccount(context.Background(), CreateAccountRequest{
		Identifier: "bob@example.com",
		Password:   "correct-horse",
	}); !errors.Is(err, ErrAccountCreationDisabled) {
		t.Fatalf("expected ErrAccountCreationDisabled, got %v", err)
	}
}

func TestCreateAccountInputValidation(t *testing.T) {
	engine, _ := newTestEngine(t, nil)

	if _, err := engine.CreateAccount(context.Background(), CreateAccountRequest{
		Password: "correct-horse",
	}); !errors.Is(err, ErrAccountCreationInvalid) {
		t.Fatalf("expected ErrAccountCreationInvalid, got %v", err)
	}
	if _, err := engine.CreateAccount(context.Background(), CreateAccountRequest{
		Identifier: "bob@example.com",
	}); !errors.Is(err, ErrPasswordPolicy) {
		t.Fatalf("expected ErrPasswordPolicy, got %v", err)
	}
}
