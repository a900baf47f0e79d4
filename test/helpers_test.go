//go:build integration
// +build integration

package test

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goSession "github.com/kvn-dev/goSession"
	"github.com/kvn-dev/goSession/token"
	"github.com/redis/go-redis/v9"
)

func newIntegrationStore(t *testing.T) (*token.RedisStore, *redis.Client, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := token.NewRedisStore(rdb, "rt")

	return store, rdb, func() {
		_ = rdb.Close()
		mr.Close()
	}
}

func newIntegrationEngine(t *testing.T) (*goSession.Engine, *memoryProvider) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}

	cfg := goSession.DefaultConfig()
	cfg.JWT.KeyID = "it-1"
	cfg.JWT.PrivateKey = priv
	cfg.JWT.PublicKey = pub
	cfg.Refresh.HashSecret = []byte("0123456789abcdef0123456789abcdef")
	cfg.RateLimit.Enabled = false
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1

	provider := newMemoryProvider()

	engine, err := goSession.New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithUserRoles(map[string][]string{"u1": {"customer"}}).
		WithRoles(map[string][]string{"customer": {"orders.read"}}).
		WithUserProvider(provider).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	return engine, provider
}

func seedIntegrationUser(t *testing.T, engine *goSession.Engine, provider *memoryProvider, userID, identifier, pass string) {
	t.Helper()

	// Hash through the public account-creation path so parameters match the
	// engine configuration, then rewire the record to a fixed user ID.
	created, err := engine.CreateAccount(context.Background(), goSession.CreateAccountRequest{
		Identifier: identifier,
		Password:   pass,
	})
	if err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}
	provider.rename(created.UserID, userID)
}

func makeRecord(userID, familyID, id string, hash [32]byte, ttl time.Duration) *token.Record {
	now := time.Now()
	return &token.Record{
		ID:        id,
		UserID:    userID,
		FamilyID:  familyID,
		TokenHash: hash,
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}
}

func hashByte(b byte) [32]byte {
	var out [32]byte
	for i := 0; i < len(out); i++ {
		out[i] = b
	}
	return out
}

type memoryProvider struct {
	mu      sync.Mutex
	byID    map[string]goSession.UserRecord
	byIdent map[string]string
	nextID  int
}

func newMemoryProvider() *memoryProvider {
	return &memoryProvider{
		byID:    make(map[string]goSession.UserRecord),
		byIdent: make(map[string]string),
	}
}

func (p *memoryProvider) rename(oldID, newID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	u, ok := p.byID[oldID]
	if !ok {
		return
	}
	delete(p.byID, oldID)
	u.UserID = newID
	p.byID[newID] = u
	p.byIdent[u.Identifier] = newID
}

func (p *memoryProvider) GetUserByIdentifier(_ context.Context, identifier string) (goSession.UserRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	id, ok := p.byIdent[identifier]
	if !ok {
		return goSession.UserRecord{}, errors.New("not found")
	}
	return p.byID[id], nil
}

func (p *memoryProvider) GetUserByID(_ context.Context, userID string) (goSession.UserRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	u, ok := p.byID[userID]
	if !ok {
		return goSession.UserRecord{}, errors.New("not found")
	}
	return u, nil
}

func (p *memoryProvider) CreateUser(_ context.Context, input goSession.CreateUserInput) (goSession.UserRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.byIdent[input.Identifier]; exists {
		return goSession.UserRecord{}, goSession.ErrProviderDuplicateIdentifier
	}
	p.nextID++
	u := goSession.UserRecord{
		UserID:       "it-user-" + string(rune('a'+p.nextID)),
		Identifier:   input.Identifier,
		PasswordHash: input.PasswordHash,
		Active:       input.Active,
	}
	p.byID[u.UserID] = u
	p.byIdent[u.Identifier] = u.UserID
	return u, nil
}

func (p *memoryProvider) UpdatePasswordHash(_ context.Context, userID string, newHash string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	u, ok := p.byID[userID]
	if !ok {
		return errors.New("not found")
	}
	u.PasswordHash = newHash
	p.byID[userID] = u
	return nil
}

func (p *memoryProvider) IncrementTokenVersion(_ context.Context, userID string) (uint32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	u, ok := p.byID[userID]
	if !ok {
		return 0, errors.New("not found")
	}
	u.TokenVersion++
	p.byID[userID] = u
	return u.TokenVersion, nil
}
