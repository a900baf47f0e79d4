package goSession

import (
	"context"
	"errors"
	"time"
)

const (
	auditEventLoginSuccess               = "login_success"
	auditEventLoginFailure               = "login_failure"
	auditEventLoginRateLimited           = "login_rate_limited"
	auditEventRefreshSuccess             = "refresh_success"
	auditEventRefreshInvalid             = "refresh_invalid"
	auditEventRefreshRateLimited         = "refresh_rate_limited"
	auditEventRefreshReuseDetected       = "refresh_reuse_detected"
	auditEventRevokedRefreshReplayed     = "revoked_refresh_replayed"
	auditEventCSRFRejected               = "csrf_rejected"
	auditEventLogoutSession              = "logout_session"
	auditEventLogoutAll                  = "logout_all"
	auditEventPasswordChangeSuccess      = "password_change_success"
	auditEventPasswordChangeInvalidOld   = "password_change_invalid_old"
	auditEventPasswordChangeReuse        = "password_change_reuse_attempt"
	auditEventPasswordChangeFailure      = "password_change_failure"
	auditEventAccountCreationSuccess     = "account_creation_success"
	auditEventAccountCreationFailure     = "account_creation_failure"
	auditEventAccountCreationDuplicate   = "account_creation_duplicate"
	auditEventAccountCreationRateLimited = "account_creation_rate_limited"
	auditEventPermissionDenied           = "permission_denied"
	auditEventRateLimitTriggered         = "rate_limit_triggered"
)

// AuditErrorCode defines a public type used by goSession APIs.
//
// AuditErrorCode instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditErrorCode string

const (
	auditErrUnauthorized        AuditErrorCode = "unauthorized"
	auditErrInvalidCredentials  AuditErrorCode = "invalid_credentials"
	auditErrAccountInactive     AuditErrorCode = "account_inactive"
	auditErrRateLimited         AuditErrorCode = "rate_limited"
	auditErrRefreshReuse        AuditErrorCode = "refresh_reuse"
	auditErrInvalidToken        AuditErrorCode = "invalid_token"
	auditErrTokenRevoked        AuditErrorCode = "token_revoked"
	auditErrCSRFMismatch        AuditErrorCode = "csrf_mismatch"
	auditErrUserNotFound        AuditErrorCode = "user_not_found"
	auditErrPasswordPolicy      AuditErrorCode = "password_policy"
	auditErrPasswordReuse       AuditErrorCode = "password_reuse"
	auditErrPermissionDenied    AuditErrorCode = "permission_denied"
	auditErrSessionInvalidation AuditErrorCode = "session_invalidation_failed"
	auditErrDuplicate           AuditErrorCode = "duplicate"
	auditErrInternal            AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	userID string,
	tokenID string,
	familyID string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		UserID:    userID,
		TokenID:   tokenID,
		FamilyID:  familyID,
		IP:        clientIPFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func (e *Engine) emitRateLimit(
	ctx context.Context,
	scope string,
	metadataBuilder func() map[string]string,
) {
	e.metricInc(MetricRateLimitHit)
	e.emitAudit(ctx, auditEventRateLimitTriggered, false, "", "", "", nil, func() map[string]string {
		base := map[string]string{
			"scope": scope,
		}
		if metadataBuilder == nil {
			return base
		}
		for k, v := range metadataBuilder() {
			base[k] = v
		}
		return base
	})
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrUnauthorized):
		return auditErrUnauthorized
	case errors.Is(err, ErrInvalidCredentials):
		return auditErrInvalidCredentials
	case errors.Is(err, ErrAccountInactive):
		return auditErrAccountInactive
	case errors.Is(err, ErrLoginRateLimited),
		errors.Is(err, ErrRefreshRateLimited),
		errors.Is(err, ErrAccountCreationRateLimited):
		return auditErrRateLimited
	case errors.Is(err, ErrRefreshReuse):
		return auditErrRefreshReuse
	case errors.Is(err, ErrRefreshInvalid),
		errors.Is(err, ErrRefreshExpired):
		return auditErrInvalidToken
	case errors.Is(err, ErrTokenRevoked):
		return auditErrTokenRevoked
	case errors.Is(err, ErrCSRFMismatch):
		return auditErrCSRFMismatch
	case errors.Is(err, ErrUserNotFound):
		return auditErrUserNotFound
	case errors.Is(err, ErrPasswordPolicy):
		return auditErrPasswordPolicy
	case errors.Is(err, ErrPasswordReuse):
		return auditErrPasswordReuse
	case errors.Is(err, ErrPermissionDenied):
		return auditErrPermissionDenied
	case errors.Is(err, ErrSessionInvalidationFailed):
		return auditErrSessionInvalidation
	case errors.Is(err, ErrAccountExists),
		errors.Is(err, ErrProviderDuplicateIdentifier):
		return auditErrDuplicate
	default:
		return auditErrInternal
	}
}
