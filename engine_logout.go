package goSession

import (
	"context"
	"errors"
	"time"

	"github.com/kvn-dev/goSession/internal"
	"github.com/kvn-dev/goSession/token"
)

// Logout revokes the session identified by a refresh token. Idempotent:
// a missing or already-dead token is a successful logout.
func (e *Engine) Logout(ctx context.Context, refreshToken string, csrf CSRFPair) error {
	if e == nil || e.tokens == nil {
		return ErrEngineNotReady
	}

	if err := e.csrf.Validate(csrf); err != nil {
		e.metricInc(MetricCSRFRejected)
		e.emitAudit(ctx, auditEventCSRFRejected, false, "", "", "", ErrCSRFMismatch, func() map[string]string {
			return map[string]string{
				"operation": "logout",
			}
		})
		return ErrCSRFMismatch
	}

	if refreshToken == "" {
		return nil
	}

	hash := internal.HashRefreshToken(e.config.Refresh.HashSecret, refreshToken)
	rec, err := e.tokens.FindByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, token.ErrNotFound) {
			return nil
		}
		return err
	}

	if err := e.tokens.Revoke(ctx, rec.ID, time.Now()); err != nil {
		if errors.Is(err, token.ErrNotFound) {
			return nil
		}
		return err
	}

	e.metricInc(MetricLogout)
	e.metricInc(MetricSessionInvalidated)
	e.emitAudit(ctx, auditEventLogoutSession, true, rec.UserID, rec.ID, rec.FamilyID, nil, nil)

	return nil
}

// LogoutAll terminates every session a user holds: the token version is
// bumped first so outstanding access tokens fail validation immediately,
// then every refresh record is revoked.
func (e *Engine) LogoutAll(ctx context.Context, userID string) error {
	if e == nil || e.tokens == nil || e.userProvider == nil {
		return ErrEngineNotReady
	}
	if userID == "" {
		return ErrUserNotFound
	}

	if _, err := e.userProvider.IncrementTokenVersion(ctx, userID); err != nil {
		e.emitAudit(ctx, auditEventLogoutAll, false, userID, "", "", ErrSessionInvalidationFailed, nil)
		return ErrSessionInvalidationFailed
	}
	e.metricInc(MetricTokenVersionBumped)

	if err := e.tokens.RevokeAllForUser(ctx, userID, time.Now()); err != nil {
		e.emitAudit(ctx, auditEventLogoutAll, false, userID, "", "", ErrSessionInvalidationFailed, nil)
		return ErrSessionInvalidationFailed
	}

	e.metricInc(MetricLogoutAll)
	e.metricInc(MetricSessionInvalidated)
	e.emitAudit(ctx, auditEventLogoutAll, true, userID, "", "", nil, nil)

	return nil
}

// LogoutAllByAccessToken validates the access token and then terminates
// every session the authenticated user holds.
func (e *Engine) LogoutAllByAccessToken(ctx context.Context, accessToken string) error {
	principal, err := e.Validate(ctx, accessToken)
	if err != nil {
		return err
	}
	return e.LogoutAll(ctx, principal.UserID)
}
