//go:build integration
// +build integration

package test

import (
	"context"
	"errors"
	"sync"
	"testing"

	goSession "github.com/kvn-dev/goSession"
)

func TestRefreshRaceSingleWinner(t *testing.T) {
	engine, provider := newIntegrationEngine(t)
	seedIntegrationUser(t, engine, provider, "u1", "alice@example.com", "correct-horse")

	ctx := context.Background()
	tokens, err := engine.Login(ctx, "alice@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	csrf := goSession.CSRFPair{CookieValue: tokens.CSRFToken, HeaderValue: tokens.CSRFToken}

	const workers = 16
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)

	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			_, err := engine.Refresh(ctx, tokens.RefreshToken, csrf)
			results <- err
		}()
	}

	close(start)
	wg.Wait()
	close(results)

	success := 0
	reuse := 0
	for err := range results {
		switch {
		case err == nil:
			success++
		case errors.Is(err, goSession.ErrRefreshReuse):
			reuse++
		default:
			t.Fatalf("unexpected refresh error: %v", err)
		}
	}

	if success != 1 {
		t.Fatalf("expected exactly one winner, got %d", success)
	}
	if reuse != workers-1 {
		t.Fatalf("expected %d reuse denials, got %d", workers-1, reuse)
	}
}
