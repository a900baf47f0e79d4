package internaldefs

import (
	goSession "github.com/kvn-dev/goSession"
)

// CounterDef defines a public type used by goSession APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   goSession.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by goSession APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   goSession.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the session engine.
var CounterDefs = []CounterDef{
	{ID: goSession.MetricLoginSuccess, Name: "gosession_login_success_total", Help: "Successful login attempts."},
	{ID: goSession.MetricLoginFailure, Name: "gosession_login_failure_total", Help: "Failed login attempts."},
	{ID: goSession.MetricLoginRateLimited, Name: "gosession_login_rate_limited_total", Help: "Rate-limited login attempts."},
	{ID: goSession.MetricRefreshSuccess, Name: "gosession_refresh_success_total", Help: "Successful refresh rotations."},
	{ID: goSession.MetricRefreshFailure, Name: "gosession_refresh_failure_total", Help: "Failed refresh operations."},
	{ID: goSession.MetricRefreshRateLimited, Name: "gosession_refresh_rate_limited_total", Help: "Rate-limited refresh attempts."},
	{ID: goSession.MetricRefreshReuseDetected, Name: "gosession_refresh_reuse_detected_total", Help: "Detected refresh token reuses."},
	{ID: goSession.MetricReplayDetected, Name: "gosession_replay_detected_total", Help: "Replays against already-revoked families."},
	{ID: goSession.MetricFamilyRevoked, Name: "gosession_family_revoked_total", Help: "Refresh family revocations."},
	{ID: goSession.MetricTokenVersionBumped, Name: "gosession_token_version_bumped_total", Help: "Token version increments."},
	{ID: goSession.MetricTokenRevokedRejected, Name: "gosession_token_revoked_rejected_total", Help: "Access tokens rejected for a stale token version."},
	{ID: goSession.MetricCSRFRejected, Name: "gosession_csrf_rejected_total", Help: "Requests rejected by the CSRF double-submit check."},
	{ID: goSession.MetricRateLimitHit, Name: "gosession_rate_limit_hit_total", Help: "Rate-limit checks that denied requests."},
	{ID: goSession.MetricSessionCreated, Name: "gosession_session_created_total", Help: "Created sessions."},
	{ID: goSession.MetricSessionInvalidated, Name: "gosession_session_invalidated_total", Help: "Invalidated sessions."},
	{ID: goSession.MetricLogout, Name: "gosession_logout_total", Help: "Single-session logout operations."},
	{ID: goSession.MetricLogoutAll, Name: "gosession_logout_all_total", Help: "Logout-all operations."},
	{ID: goSession.MetricPasswordChangeSuccess, Name: "gosession_password_change_success_total", Help: "Successful password changes."},
	{ID: goSession.MetricPasswordChangeInvalidOld, Name: "gosession_password_change_invalid_old_total", Help: "Password change attempts with invalid old password."},
	{ID: goSession.MetricPasswordChangeReuseRejected, Name: "gosession_password_change_reuse_rejected_total", Help: "Password change attempts rejected for reuse."},
	{ID: goSession.MetricAccountCreationSuccess, Name: "gosession_account_creation_success_total", Help: "Successful account creations."},
	{ID: goSession.MetricAccountCreationDuplicate, Name: "gosession_account_creation_duplicate_total", Help: "Account creation attempts rejected as duplicate."},
	{ID: goSession.MetricAccountCreationRateLimited, Name: "gosession_account_creation_rate_limited_total", Help: "Rate-limited account creation attempts."},
	{ID: goSession.MetricPermissionDenied, Name: "gosession_permission_denied_total", Help: "Authorization checks that denied access."},
}

// HistogramDefs is an exported constant or variable used by the session engine.
var HistogramDefs = []HistogramDef{
	{ID: goSession.MetricValidateLatency, Name: "gosession_validate_latency_seconds", Help: "Validate latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the session engine.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the session engine.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets may return an error when input validation, dependency calls, or security checks fail.
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets may return an error when input validation, dependency calls, or security checks fail.
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
