package goSession

import (
	"context"
	"errors"

	"github.com/kvn-dev/goSession/internal/rate"
)

// CreateAccount describes the createaccount operation and its observable behavior.
//
// CreateAccount may return an error when input validation, dependency calls, or security checks fail.
// CreateAccount does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) CreateAccount(ctx context.Context, req CreateAccountRequest) (*CreateAccountResult, error) {
	if e == nil || e.passwordHash == nil || e.userProvider == nil {
		return nil, ErrEngineNotReady
	}
	if !e.config.Account.Enabled {
		e.emitAudit(ctx, auditEventAccountCreationFailure, false, "", "", "", ErrAccountCreationDisabled, func() map[string]string {
			return map[string]string{
				"reason": "feature_disabled",
			}
		})
		return nil, ErrAccountCreationDisabled
	}

	if e.rateLimiter != nil {
		if err := e.rateLimiter.Allow(ctx, rate.ClassAccount, clientIPFromContext(ctx)); err != nil {
			e.metricInc(MetricAccountCreationRateLimited)
			e.emitAudit(ctx, auditEventAccountCreationRateLimited, false, "", "", "", ErrAccountCreationRateLimited, func() map[string]string {
				return map[string]string{
					"identifier": req.Identifier,
				}
			})
			e.emitRateLimit(ctx, "account_creation", func() map[string]string {
				return map[string]string{
					"identifier": req.Identifier,
				}
			})
			return nil, ErrAccountCreationRateLimited
		}
	}

	if req.Identifier == "" {
		e.emitAudit(ctx, auditEventAccountCreationFailure, false, "", "", "", ErrAccountCreationInvalid, func() map[string]string {
			return map[string]string{
				"reason": "empty_identifier",
			}
		})
		return nil, ErrAccountCreationInvalid
	}
	if req.Password == "" {
		e.emitAudit(ctx, auditEventAccountCreationFailure, false, "", "", "", ErrPasswordPolicy, func() map[string]string {
			return map[string]string{
				"identifier": req.Identifier,
				"reason":     "empty_password",
			}
		})
		return nil, ErrPasswordPolicy
	}

	role := req.Role
	if role == "" {
		role = e.config.Account.DefaultRole
	}

	passwordHash, err := e.passwordHash.Hash(req.Password)
	if err != nil {
		e.emitAudit(ctx, auditEventAccountCreationFailure, false, "", "", "", ErrPasswordPolicy, func() map[string]string {
			return map[string]string{
				"identifier": req.Identifier,
				"reason":     "hash_policy",
			}
		})
		return nil, ErrPasswordPolicy
	}

	created, err := e.userProvider.CreateUser(ctx, CreateUserInput{
		Identifier:   req.Identifier,
		PasswordHash: passwordHash,
		Role:         role,
		Active:       true,
	})
	if err != nil {
		if errors.Is(err, ErrProviderDuplicateIdentifier) {
			e.metricInc(MetricAccountCreationDuplicate)
			e.emitAudit(ctx, auditEventAccountCreationDuplicate, false, "", "", "", ErrAccountExists, func() map[string]string {
				return map[string]string{
					"identifier": req.Identifier,
				}
			})
			return nil, ErrAccountExists
		}
		e.emitAudit(ctx, auditEventAccountCreationFailure, false, "", "", "", err, func() map[string]string {
			return map[string]string{
				"identifier": req.Identifier,
				"reason":     "provider_create_failed",
			}
		})
		return nil, err
	}

	req.Password = ""
	e.metricInc(MetricAccountCreationSuccess)
	e.emitAudit(ctx, auditEventAccountCreationSuccess, true, created.UserID, "", "", nil, func() map[string]string {
		return map[string]string{
			"identifier": req.Identifier,
			"role":       role,
		}
	})

	return &CreateAccountResult{
		UserID:     created.UserID,
		Identifier: created.Identifier,
		Role:       role,
	}, nil
}
