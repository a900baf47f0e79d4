package test

import (
	"context"

	goSession "github.com/kvn-dev/goSession"
	"github.com/redis/go-redis/v9"
)

// ExampleNew demonstrates engine construction with production-style dependencies.
func ExampleNew() {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:6379"})
	provider := &exampleUserProvider{}

	engine, _ := goSession.New().
		WithRedis(rdb).
		WithUserRoles(map[string][]string{"user-1": {"admin"}}).
		WithRoles(map[string][]string{"admin": {"user.read", "user.write"}}).
		WithUserProvider(provider).
		Build()
	_ = engine
}

// ExampleEngine_Login shows a typical login entrypoint call and structured error handling.
func ExampleEngine_Login() {
	var engine *goSession.Engine
	_, err := engine.Login(context.Background(), "alice@example.com", "password")
	if err != nil {
		_ = err
	}
}

// ExampleEngine_MetricsSnapshot shows how to read in-process metrics counters.
func ExampleEngine_MetricsSnapshot() {
	var engine *goSession.Engine
	snapshot := engine.MetricsSnapshot()
	_ = snapshot
}

type exampleUserProvider struct{}

func (e *exampleUserProvider) GetUserByIdentifier(ctx context.Context, identifier string) (goSession.UserRecord, error) {
	return goSession.UserRecord{}, nil
}
func (e *exampleUserProvider) GetUserByID(ctx context.Context, userID string) (goSession.UserRecord, error) {
	return goSession.UserRecord{}, nil
}
func (e *exampleUserProvider) CreateUser(ctx context.Context, input goSession.CreateUserInput) (goSession.UserRecord, error) {
	return goSession.UserRecord{}, nil
}
func (e *exampleUserProvider) UpdatePasswordHash(ctx context.Context, userID string, newHash string) error {
	return nil
}
func (e *exampleUserProvider) IncrementTokenVersion(ctx context.Context, userID string) (uint32, error) {
	return 0, nil
}
