package goSession

import (
	"context"
	"time"
)

// ChangePassword verifies the current password, installs the new hash, and
// terminates every session the user holds: outstanding access tokens die on
// the token-version bump and all refresh records are revoked.
//
// When session invalidation fails after the hash update, the new password
// stays installed and [ErrSessionInvalidationFailed] is returned so the
// caller can retry invalidation.
func (e *Engine) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if e == nil || e.passwordHash == nil || e.userProvider == nil {
		return ErrEngineNotReady
	}

	user, err := e.userProvider.GetUserByID(ctx, userID)
	if err != nil {
		e.emitAudit(ctx, auditEventPasswordChangeFailure, false, userID, "", "", ErrUserNotFound, nil)
		return ErrUserNotFound
	}

	ok, err := e.passwordHash.Verify(oldPassword, user.PasswordHash)
	if err != nil || !ok {
		e.metricInc(MetricPasswordChangeInvalidOld)
		e.emitAudit(ctx, auditEventPasswordChangeInvalidOld, false, userID, "", "", ErrInvalidCredentials, nil)
		return ErrInvalidCredentials
	}

	if newPassword == oldPassword {
		e.metricInc(MetricPasswordChangeReuseRejected)
		e.emitAudit(ctx, auditEventPasswordChangeReuse, false, userID, "", "", ErrPasswordReuse, nil)
		return ErrPasswordReuse
	}

	newHash, err := e.passwordHash.Hash(newPassword)
	if err != nil {
		e.emitAudit(ctx, auditEventPasswordChangeFailure, false, userID, "", "", ErrPasswordPolicy, func() map[string]string {
			return map[string]string{
				"reason": "policy",
			}
		})
		return ErrPasswordPolicy
	}

	if err := e.userProvider.UpdatePasswordHash(ctx, userID, newHash); err != nil {
		e.emitAudit(ctx, auditEventPasswordChangeFailure, false, userID, "", "", err, nil)
		return err
	}

	if _, err := e.userProvider.IncrementTokenVersion(ctx, userID); err != nil {
		e.emitAudit(ctx, auditEventPasswordChangeFailure, false, userID, "", "", ErrSessionInvalidationFailed, func() map[string]string {
			return map[string]string{
				"stage": "token_version",
			}
		})
		return ErrSessionInvalidationFailed
	}
	e.metricInc(MetricTokenVersionBumped)

	if err := e.tokens.RevokeAllForUser(ctx, userID, time.Now()); err != nil {
		e.emitAudit(ctx, auditEventPasswordChangeFailure, false, userID, "", "", ErrSessionInvalidationFailed, func() map[string]string {
			return map[string]string{
				"stage": "refresh_revocation",
			}
		})
		return ErrSessionInvalidationFailed
	}

	e.metricInc(MetricPasswordChangeSuccess)
	e.metricInc(MetricSessionInvalidated)
	e.emitAudit(ctx, auditEventPasswordChangeSuccess, true, userID, "", "", nil, nil)

	return nil
}
