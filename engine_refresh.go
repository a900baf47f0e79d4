package goSession

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/kvn-dev/goSession/internal"
	"github.com/kvn-dev/goSession/internal/rate"
	"github.com/kvn-dev/goSession/token"
)

// Refresh rotates a refresh token: the presented secret is consumed exactly
// once and a fresh access token, refresh secret, and CSRF token are issued
// in its place.
//
// Presenting an already-consumed secret is treated as theft evidence: the
// whole family is revoked, the user's token version is bumped, and the
// caller gets [ErrRefreshReuse]. A secret from a family that was already
// revoked gets the same denial but is recorded as a replay against a dead
// family rather than a fresh detection.
//
//	Docs: docs/token.md, docs/flows.md#refresh-token-rotation
func (e *Engine) Refresh(ctx context.Context, refreshToken string, csrf CSRFPair) (*SessionTokens, error) {
	if e == nil || e.tokens == nil || e.jwtManager == nil {
		return nil, ErrEngineNotReady
	}

	if err := e.csrf.Validate(csrf); err != nil {
		e.metricInc(MetricCSRFRejected)
		e.emitAudit(ctx, auditEventCSRFRejected, false, "", "", "", ErrCSRFMismatch, func() map[string]string {
			return map[string]string{
				"operation": "refresh",
			}
		})
		return nil, ErrCSRFMismatch
	}

	ip := clientIPFromContext(ctx)
	if e.rateLimiter != nil {
		if err := e.rateLimiter.Allow(ctx, rate.ClassRefresh, ip); err != nil {
			e.metricInc(MetricRefreshRateLimited)
			e.emitAudit(ctx, auditEventRefreshRateLimited, false, "", "", "", ErrRefreshRateLimited, nil)
			e.emitRateLimit(ctx, "refresh", nil)
			return nil, ErrRefreshRateLimited
		}
	}

	if refreshToken == "" {
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshInvalid, false, "", "", "", ErrRefreshInvalid, func() map[string]string {
			return map[string]string{
				"reason": "empty_token",
			}
		})
		return nil, ErrRefreshInvalid
	}

	presentedHash := internal.HashRefreshToken(e.config.Refresh.HashSecret, refreshToken)

	now := time.Now()
	in := token.RotateInput{
		SuccessorID:   uuid.NewString(),
		SuccessorHash: [32]byte{},
		IssuedAt:      now,
		ExpiresAt:     now.Add(e.config.Refresh.TTL),
		ClientIP:      ip,
		UserAgent:     userAgentFromContext(ctx),
	}
	nextSecret, err := internal.NewRefreshSecret()
	if err != nil {
		return nil, err
	}
	in.SuccessorHash = internal.HashRefreshToken(e.config.Refresh.HashSecret, nextSecret)

	prev, next, err := e.tokens.Rotate(ctx, presentedHash, in)
	switch {
	case err == nil:
		// fall through to issuance below
	case errors.Is(err, token.ErrNotFound):
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshInvalid, false, "", "", "", ErrRefreshInvalid, func() map[string]string {
			return map[string]string{
				"reason": "unknown_token",
			}
		})
		return nil, ErrRefreshInvalid
	case errors.Is(err, token.ErrExpired):
		// Expiry is a lifecycle event, not an attack signal: the family
		// stays untouched.
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshInvalid, false, prevUserID(prev), prevID(prev), prevFamilyID(prev), ErrRefreshExpired, func() map[string]string {
			return map[string]string{
				"reason": "expired",
			}
		})
		return nil, ErrRefreshExpired
	case errors.Is(err, token.ErrReplaced):
		return nil, e.handleRefreshReuse(ctx, prev)
	case errors.Is(err, token.ErrRevoked):
		return nil, e.handleRevokedReplay(ctx, prev)
	default:
		e.metricInc(MetricRefreshFailure)
		return nil, err
	}

	user, err := e.userProvider.GetUserByID(ctx, next.UserID)
	if err != nil || !user.Active {
		// The account vanished or was deactivated mid-rotation: kill the
		// freshly extended family so the new tail is unusable.
		if revokeErr := e.tokens.RevokeFamily(ctx, next.FamilyID, time.Now()); revokeErr != nil {
			log.Print("goSession: failed to revoke family after inactive account on refresh: ", revokeErr)
		}
		e.metricInc(MetricRefreshFailure)
		e.metricInc(MetricFamilyRevoked)
		e.emitAudit(ctx, auditEventRefreshInvalid, false, next.UserID, next.ID, next.FamilyID, ErrAccountInactive, func() map[string]string {
			return map[string]string{
				"reason": "account_inactive",
			}
		})
		if err != nil {
			return nil, ErrRefreshInvalid
		}
		return nil, ErrAccountInactive
	}

	access, err := e.jwtManager.CreateAccess(user.UserID, e.rolesFor(ctx, user.UserID), user.TokenVersion)
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		return nil, err
	}
	csrfToken, err := internal.NewCSRFToken()
	if err != nil {
		return nil, err
	}

	e.metricInc(MetricRefreshSuccess)
	e.emitAudit(ctx, auditEventRefreshSuccess, true, user.UserID, next.ID, next.FamilyID, nil, func() map[string]string {
		return map[string]string{
			"predecessor": prev.ID,
		}
	})

	return &SessionTokens{
		AccessToken:  access,
		RefreshToken: nextSecret,
		CSRFToken:    csrfToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(e.config.JWT.AccessTTL / time.Second),
	}, nil
}

// handleRefreshReuse contains a detected theft: the presented secret was
// already consumed by a rotation, so someone holds a stale copy. Revoke the
// whole family and bump the user's token version so outstanding access
// tokens die too.
func (e *Engine) handleRefreshReuse(ctx context.Context, prev *token.Record) error {
	now := time.Now()

	if err := e.tokens.RevokeFamily(ctx, prev.FamilyID, now); err != nil {
		log.Print("goSession: failed to revoke family on reuse detection: ", err)
	} else {
		e.metricInc(MetricFamilyRevoked)
	}

	if _, err := e.userProvider.IncrementTokenVersion(ctx, prev.UserID); err != nil {
		log.Print("goSession: failed to bump token version on reuse detection: ", err)
	} else {
		e.metricInc(MetricTokenVersionBumped)
	}

	e.metricInc(MetricRefreshReuseDetected)
	e.metricInc(MetricSessionInvalidated)
	e.emitAudit(ctx, auditEventRefreshReuseDetected, false, prev.UserID, prev.ID, prev.FamilyID, ErrRefreshReuse, func() map[string]string {
		return map[string]string{
			"replaced_by": prev.ReplacedByID,
		}
	})

	return ErrRefreshReuse
}

// handleRevokedReplay records a replay against an already-dead family. The
// caller-visible outcome matches fresh reuse detection; only the telemetry
// differs. Family revocation here is idempotent cleanup for records created
// in the narrow window after the original containment.
func (e *Engine) handleRevokedReplay(ctx context.Context, prev *token.Record) error {
	if err := e.tokens.RevokeFamily(ctx, prev.FamilyID, time.Now()); err != nil {
		log.Print("goSession: failed to re-revoke family on replay: ", err)
	}

	e.metricInc(MetricReplayDetected)
	e.emitAudit(ctx, auditEventRevokedRefreshReplayed, false, prev.UserID, prev.ID, prev.FamilyID, ErrRefreshReuse, nil)

	return ErrRefreshReuse
}

func prevID(prev *token.Record) string {
	if prev == nil {
		return ""
	}
	return prev.ID
}

func prevUserID(prev *token.Record) string {
	if prev == nil {
		return ""
	}
	return prev.UserID
}

func prevFamilyID(prev *token.Record) string {
	if prev == nil {
		return ""
	}
	return prev.FamilyID
}
