package goSession

import (
	"context"
	"io"
	"time"

	internalaudit "github.com/kvn-dev/goSession/internal/audit"
	internalmetrics "github.com/kvn-dev/goSession/internal/metrics"
)

// UserProvider is the primary interface that callers must implement to
// integrate goSession with their user database. It covers credential lookup,
// account creation, password updates, and the token-version counter that
// backs instant session revocation.
//
//	Docs: docs/engine.md, docs/usage.md
type UserProvider interface {
	GetUserByIdentifier(ctx context.Context, identifier string) (UserRecord, error)
	GetUserByID(ctx context.Context, userID string) (UserRecord, error)
	CreateUser(ctx context.Context, input CreateUserInput) (UserRecord, error)
	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error
	IncrementTokenVersion(ctx context.Context, userID string) (uint32, error)
}

// UserRecord is the full account record returned by [UserProvider].
// TokenVersion is embedded in every access token at issuance and compared
// on every validation; bumping it invalidates all outstanding tokens.
type UserRecord struct {
	UserID       string
	Identifier   string
	PasswordHash string
	Active       bool
	TokenVersion uint32
}

// CreateUserInput is the input for [UserProvider.CreateUser].
type CreateUserInput struct {
	Identifier   string
	PasswordHash string
	Role         string
	Active       bool
}

// CreateAccountRequest is the input for [Engine.CreateAccount].
// Identifier and Password are required; Role defaults to
// [Config.Account.DefaultRole] when empty.
type CreateAccountRequest struct {
	Identifier string
	Password   string
	Role       string
}

// CreateAccountResult is returned by [Engine.CreateAccount].
type CreateAccountResult struct {
	UserID     string
	Identifier string
	Role       string
}

// SessionTokens is the credential bundle issued by [Engine.Login] and
// [Engine.Refresh]. The refresh token and CSRF token are raw secrets:
// hand them to the client and drop them.
type SessionTokens struct {
	AccessToken  string
	RefreshToken string
	CSRFToken    string
	TokenType    string
	ExpiresIn    int64
}

// Principal is the authenticated identity returned by [Engine.Validate].
type Principal struct {
	UserID       string
	Roles        []string
	TokenVersion uint32
}

// PasswordConfigReport contains the Argon2 parameters active in the engine.
type PasswordConfigReport struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// AuditEvent is a structured audit record emitted by the engine.
//
//	Docs: docs/audit.md
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine’s audit dispatcher.
//
//	Docs: docs/audit.md
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
//
//	Docs: docs/audit.md
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer].
//
//	Docs: docs/audit.md
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
//
//	Docs: docs/audit.md
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
//
//	Docs: docs/audit.md
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

// MetricID identifies a specific counter or histogram bucket in the
// in-process metrics system.
//
//	Docs: docs/metrics.md
type MetricID = internalmetrics.MetricID

const (
	// MetricLoginSuccess is an exported constant or variable used by the session engine.
	MetricLoginSuccess = MetricID(internalmetrics.MetricLoginSuccess)
	// MetricLoginFailure is an exported constant or variable used by the session engine.
	MetricLoginFailure = MetricID(internalmetrics.MetricLoginFailure)
	// MetricLoginRateLimited is an exported constant or variable used by the session engine.
	MetricLoginRateLimited = MetricID(internalmetrics.MetricLoginRateLimited)
	// MetricRefreshSuccess is an exported constant or variable used by the session engine.
	MetricRefreshSuccess = MetricID(internalmetrics.MetricRefreshSuccess)
	// MetricRefreshFailure is an exported constant or variable used by the session engine.
	MetricRefreshFailure = MetricID(internalmetrics.MetricRefreshFailure)
	// MetricRefreshRateLimited is an exported constant or variable used by the session engine.
	MetricRefreshRateLimited = MetricID(internalmetrics.MetricRefreshRateLimited)
	// MetricRefreshReuseDetected is an exported constant or variable used by the session engine.
	MetricRefreshReuseDetected = MetricID(internalmetrics.MetricRefreshReuseDetected)
	// MetricReplayDetected is an exported constant or variable used by the session engine.
	MetricReplayDetected = MetricID(internalmetrics.MetricRevokedReplayDetected)
	// MetricFamilyRevoked is an exported constant or variable used by the session engine.
	MetricFamilyRevoked = MetricID(internalmetrics.MetricFamilyRevoked)
	// MetricTokenVersionBumped is an exported constant or variable used by the session engine.
	MetricTokenVersionBumped = MetricID(internalmetrics.MetricTokenVersionBumped)
	// MetricTokenRevokedRejected is an exported constant or variable used by the session engine.
	MetricTokenRevokedRejected = MetricID(internalmetrics.MetricTokenRevokedRejected)
	// MetricCSRFRejected is an exported constant or variable used by the session engine.
	MetricCSRFRejected = MetricID(internalmetrics.MetricCSRFRejected)
	// MetricRateLimitHit is an exported constant or variable used by the session engine.
	MetricRateLimitHit = MetricID(internalmetrics.MetricRateLimitHit)
	// MetricSessionCreated is an exported constant or variable used by the session engine.
	MetricSessionCreated = MetricID(internalmetrics.MetricSessionCreated)
	// MetricSessionInvalidated is an exported constant or variable used by the session engine.
	MetricSessionInvalidated = MetricID(internalmetrics.MetricSessionInvalidated)
	// MetricLogout is an exported constant or variable used by the session engine.
	MetricLogout = MetricID(internalmetrics.MetricLogout)
	// MetricLogoutAll is an exported constant or variable used by the session engine.
	MetricLogoutAll = MetricID(internalmetrics.MetricLogoutAll)
	// MetricPasswordChangeSuccess is an exported constant or variable used by the session engine.
	MetricPasswordChangeSuccess = MetricID(internalmetrics.MetricPasswordChangeSuccess)
	// MetricPasswordChangeInvalidOld is an exported constant or variable used by the session engine.
	MetricPasswordChangeInvalidOld = MetricID(internalmetrics.MetricPasswordChangeInvalidOld)
	// MetricPasswordChangeReuseRejected is an exported constant or variable used by the session engine.
	MetricPasswordChangeReuseRejected = MetricID(internalmetrics.MetricPasswordChangeReuseRejected)
	// MetricAccountCreationSuccess is an exported constant or variable used by the session engine.
	MetricAccountCreationSuccess = MetricID(internalmetrics.MetricAccountCreationSuccess)
	// MetricAccountCreationDuplicate is an exported constant or variable used by the session engine.
	MetricAccountCreationDuplicate = MetricID(internalmetrics.MetricAccountCreationDuplicate)
	// MetricAccountCreationRateLimited is an exported constant or variable used by the session engine.
	MetricAccountCreationRateLimited = MetricID(internalmetrics.MetricAccountCreationRateLimited)
	// MetricPermissionDenied is an exported constant or variable used by the session engine.
	MetricPermissionDenied = MetricID(internalmetrics.MetricPermissionDenied)
	// MetricValidateLatency is an exported constant or variable used by the session engine.
	MetricValidateLatency = MetricID(internalmetrics.MetricValidateLatency)
)

// Metrics holds atomic counters and optional latency histograms.
//
//	Docs: docs/metrics.md
type Metrics = internalmetrics.Metrics

// MetricsSnapshot is a point-in-time deep copy of all metrics.
//
//	Docs: docs/metrics.md
type MetricsSnapshot = internalmetrics.Snapshot

// NewMetrics creates a new [Metrics] instance configured by the given
// [MetricsConfig]. When Enabled is false, all operations are no-ops.
//
//	Docs: docs/metrics.md
func NewMetrics(cfg MetricsConfig) *Metrics {
	return internalmetrics.New(internalmetrics.Config{
		Enabled:       cfg.Enabled,
		EnableLatency: cfg.EnableLatencyHistograms,
	})
}

// SecurityReport is a read-only snapshot of the engine’s security posture,
// returned by [Engine.SecurityReport].
//
//	Docs: docs/security.md
type SecurityReport struct {
	SigningAlgorithm       string
	AccessTTL              time.Duration
	RefreshTTL             time.Duration
	Argon2                 PasswordConfigReport
	RefreshRotationEnabled bool
	ReuseDetectionEnabled  bool
	CSRFProtectionEnabled  bool
	RateLimitingActive     bool
	AccountCreationEnabled bool
}
