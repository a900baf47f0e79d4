package rate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestLimiter(t *testing.T, cfg Config) (*Limiter, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return New(client, cfg), mr
}

func TestAllowWithinBudget(t *testing.T) {
	limiter, _ := newTestLimiter(t, Config{
		Enabled: true,
		Login:   Bucket{MaxRequests: 3, Window: time.Minute},
	})
	ctx := context.Background()

	// The boundary count is still allowed; only the overflow is denied.
	for i := 0; i < 3; i++ {
		if err := limiter.Allow(ctx, ClassLogin, "10.0.0.1"); err != nil {
			t.Fatalf("request %d should pass, got %v", i+1, err)
		}
	}
	if err := limiter.Allow(ctx, ClassLogin, "10.0.0.1"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestAllowIsolatesClientsAndClasses(t *testing.T) {
	limiter, _ := newTestLimiter(t, Config{
		Enabled: true,
		Login:   Bucket{MaxRequests: 1, Window: time.Minute},
		Refresh: Bucket{MaxRequests: 1, Window: time.Minute},
	})
	ctx := context.Background()

	if err := limiter.Allow(ctx, ClassLogin, "10.0.0.1"); err != nil {
		t.Fatalf("first login should pass, got %v", err)
	}
	if err := limiter.Allow(ctx, ClassLogin, "10.0.0.1"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}

	// Different IP and different class carry independent budgets.
	if err := limiter.Allow(ctx, ClassLogin, "10.0.0.2"); err != nil {
		t.Fatalf("other IP should pass, got %v", err)
	}
	if err := limiter.Allow(ctx, ClassRefresh, "10.0.0.1"); err != nil {
		t.Fatalf("other class should pass, got %v", err)
	}
}

func TestWindowExpiryResetsBudget(t *testing.T) {
	limiter, mr := newTestLimiter(t, Config{
		Enabled: true,
		Login:   Bucket{MaxRequests: 1, Window: time.Minute},
	})
	ctx := context.Background()

	if err := limiter.Allow(ctx, ClassLogin, "10.0.0.1"); err != nil {
		t.Fatalf("first request should pass, got %v", err)
	}
	if err := limiter.Allow(ctx, ClassLogin, "10.0.0.1"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}

	mr.FastForward(61 * time.Second)

	if err := limiter.Allow(ctx, ClassLogin, "10.0.0.1"); err != nil {
		t.Fatalf("request in new window should pass, got %v", err)
	}
}

func TestAllowUnknownIPFallback(t *testing.T) {
	limiter, mr := newTestLimiter(t, Config{
		Enabled: true,
		Login:   Bucket{MaxRequests: 5, Window: time.Minute},
	})

	if err := limiter.Allow(context.Background(), ClassLogin, ""); err != nil {
		t.Fatalf("empty IP should pass, got %v", err)
	}
	if !mr.Exists("arl:login:unknown") {
		t.Fatal("expected empty IP to count against the unknown bucket")
	}
}

func TestAllowDisabledOrUnconfigured(t *testing.T) {
	limiter, _ := newTestLimiter(t, Config{Enabled: false})
	ctx := context.Background()

	for i := 0; i < 100; i++ {
		if err := limiter.Allow(ctx, ClassLogin, "10.0.0.1"); err != nil {
			t.Fatalf("disabled limiter must always pass, got %v", err)
		}
	}

	// Enabled but without a bucket for the class: no limit applies.
	open, _ := newTestLimiter(t, Config{
		Enabled: true,
		Login:   Bucket{MaxRequests: 1, Window: time.Minute},
	})
	for i := 0; i < 10; i++ {
		if err := open.Allow(ctx, ClassAccount, "10.0.0.1"); err != nil {
			t.Fatalf("unconfigured class must pass, got %v", err)
		}
	}
}

func TestRemainingAndReset(t *testing.T) {
	limiter, _ := newTestLimiter(t, Config{
		Enabled: true,
		Login:   Bucket{MaxRequests: 3, Window: time.Minute},
	})
	ctx := context.Background()

	if err := limiter.Allow(ctx, ClassLogin, "10.0.0.1"); err != nil {
		t.Fatalf("Allow failed: %v", err)
	}

	remaining, err := limiter.Remaining(ctx, ClassLogin, "10.0.0.1")
	if err != nil {
		t.Fatalf("Remaining failed: %v", err)
	}
	if remaining != 2 {
		t.Fatalf("expected 2 remaining, got %d", remaining)
	}

	if err := limiter.Reset(ctx, ClassLogin, "10.0.0.1"); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	remaining, err = limiter.Remaining(ctx, ClassLogin, "10.0.0.1")
	if err != nil {
		t.Fatalf("Remaining after Reset failed: %v", err)
	}
	if remaining != 3 {
		t.Fatalf("expected full budget after reset, got %d", remaining)
	}
}
