package goSession

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/kvn-dev/goSession/internal"
	internalaudit "github.com/kvn-dev/goSession/internal/audit"
	"github.com/kvn-dev/goSession/internal/rate"
	"github.com/kvn-dev/goSession/jwt"
	"github.com/kvn-dev/goSession/password"
	"github.com/kvn-dev/goSession/permission"
	"github.com/kvn-dev/goSession/token"
)

// Engine defines a public type used by goSession APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config       Config
	tokens       token.Store
	resolver     *permission.Resolver
	rateLimiter  *rate.Limiter
	audit        *internalaudit.Dispatcher
	metrics      *Metrics
	passwordHash *password.Argon2
	jwtManager   *jwt.Manager
	keyring      *jwt.Keyring
	userProvider UserProvider
	csrf         csrfGuard
}

// Close describes the close operation and its observable behavior.
//
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// RotateSigningKey installs a new signing key pair under kid. Access tokens
// signed with earlier keys remain verifiable until their kids are retired.
func (e *Engine) RotateSigningKey(kid string, privateKey, publicKey []byte) error {
	if e == nil || e.keyring == nil {
		return ErrEngineNotReady
	}
	return e.keyring.Rotate(kid, privateKey, publicKey)
}

// RetireVerifyKey removes a verification key from the keyring. Tokens signed
// with it fail validation from that point on.
func (e *Engine) RetireVerifyKey(kid string) error {
	if e == nil || e.keyring == nil {
		return ErrEngineNotReady
	}
	return e.keyring.RetireVerifyKey(kid)
}

// Login describes the login operation and its observable behavior.
//
// Login may return an error when input validation, dependency calls, or security checks fail.
// Login does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Login(ctx context.Context, identifier, pass string) (*SessionTokens, error) {
	if e == nil || e.passwordHash == nil || e.userProvider == nil {
		return nil, ErrEngineNotReady
	}

	ip := clientIPFromContext(ctx)

	if e.rateLimiter != nil {
		if err := e.rateLimiter.Allow(ctx, rate.ClassLogin, ip); err != nil {
			e.metricInc(MetricLoginRateLimited)
			e.emitAudit(ctx, auditEventLoginRateLimited, false, "", "", "", ErrLoginRateLimited, func() map[string]string {
				return map[string]string{
					"identifier": identifier,
				}
			})
			e.emitRateLimit(ctx, "login", func() map[string]string {
				return map[string]string{
					"identifier": identifier,
				}
			})
			return nil, ErrLoginRateLimited
		}
	}

	if identifier == "" || pass == "" {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, "", "", "", ErrInvalidCredentials, func() map[string]string {
			return map[string]string{
				"identifier": identifier,
				"reason":     "empty_credentials",
			}
		})
		return nil, ErrInvalidCredentials
	}

	user, err := e.userProvider.GetUserByIdentifier(ctx, identifier)
	if err != nil {
		// Uniform denial: unknown identifiers and wrong passwords are
		// indistinguishable to the caller.
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, "", "", "", ErrInvalidCredentials, func() map[string]string {
			return map[string]string{
				"identifier": identifier,
				"reason":     "user_not_found",
			}
		})
		return nil, ErrInvalidCredentials
	}

	ok, err := e.passwordHash.Verify(pass, user.PasswordHash)
	if err != nil || !ok {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, user.UserID, "", "", ErrInvalidCredentials, func() map[string]string {
			return map[string]string{
				"identifier": identifier,
				"reason":     "password_mismatch",
			}
		})
		return nil, ErrInvalidCredentials
	}

	if !user.Active {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, user.UserID, "", "", ErrAccountInactive, func() map[string]string {
			return map[string]string{
				"identifier": identifier,
				"reason":     "account_inactive",
			}
		})
		return nil, ErrAccountInactive
	}

	if e.config.Password.UpgradeOnLogin {
		e.maybeUpgradePasswordHash(ctx, user.UserID, pass, user.PasswordHash)
	}

	tokens, rec, err := e.issueSessionTokens(ctx, user)
	if err != nil {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, user.UserID, "", "", err, nil)
		return nil, err
	}

	e.metricInc(MetricLoginSuccess)
	e.metricInc(MetricSessionCreated)
	e.emitAudit(ctx, auditEventLoginSuccess, true, user.UserID, rec.ID, rec.FamilyID, nil, nil)

	return tokens, nil
}

// issueSessionTokens mints the full credential bundle for a user: a fresh
// refresh family, a signed access token, and a CSRF token.
func (e *Engine) issueSessionTokens(ctx context.Context, user UserRecord) (*SessionTokens, *token.Record, error) {
	secret, err := internal.NewRefreshSecret()
	if err != nil {
		return nil, nil, err
	}
	csrfToken, err := internal.NewCSRFToken()
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	rec := &token.Record{
		ID:        uuid.NewString(),
		UserID:    user.UserID,
		FamilyID:  uuid.NewString(),
		TokenHash: internal.HashRefreshToken(e.config.Refresh.HashSecret, secret),
		IssuedAt:  now,
		ExpiresAt: now.Add(e.config.Refresh.TTL),
		ClientIP:  clientIPFromContext(ctx),
		UserAgent: userAgentFromContext(ctx),
	}
	if err := e.tokens.Create(ctx, rec); err != nil {
		return nil, nil, err
	}

	access, err := e.jwtManager.CreateAccess(user.UserID, e.rolesFor(ctx, user.UserID), user.TokenVersion)
	if err != nil {
		return nil, nil, err
	}

	return &SessionTokens{
		AccessToken:  access,
		RefreshToken: secret,
		CSRFToken:    csrfToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(e.config.JWT.AccessTTL / time.Second),
	}, rec, nil
}

// rolesFor resolves the roles claim at issuance time. Subjects unknown to
// the role source get an empty claim rather than a failed login.
func (e *Engine) rolesFor(ctx context.Context, userID string) []string {
	if e.resolver == nil {
		return nil
	}
	roles, err := e.resolver.Roles(ctx, userID)
	if err != nil {
		return nil
	}
	return roles
}

func (e *Engine) maybeUpgradePasswordHash(ctx context.Context, userID, pass, currentHash string) {
	needs, err := e.passwordHash.NeedsUpgrade(currentHash)
	if err != nil || !needs {
		return
	}

	newHash, err := e.passwordHash.Hash(pass)
	if err != nil {
		return
	}

	// Best effort: a failed upgrade leaves the old hash working.
	_ = e.userProvider.UpdatePasswordHash(ctx, userID, newHash)
}

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Validate(ctx context.Context, accessToken string) (*Principal, error) {
	if e == nil || e.jwtManager == nil || e.userProvider == nil {
		return nil, ErrEngineNotReady
	}

	if e.metrics != nil && e.metrics.LatencyEnabled() {
		start := time.Now()
		defer func() {
			e.metrics.Observe(MetricValidateLatency, time.Since(start))
		}()
	}

	claims, err := e.jwtManager.ParseAccess(accessToken)
	if err != nil {
		return nil, errors.Join(ErrUnauthorized, err)
	}

	user, err := e.userProvider.GetUserByID(ctx, claims.Subject)
	if err != nil {
		return nil, errors.Join(ErrUnauthorized, ErrUserNotFound)
	}
	if !user.Active {
		return nil, ErrAccountInactive
	}
	if claims.TokenVersion != user.TokenVersion {
		e.metricInc(MetricTokenRevokedRejected)
		return nil, ErrTokenRevoked
	}

	return &Principal{
		UserID:       user.UserID,
		Roles:        claims.Roles,
		TokenVersion: claims.TokenVersion,
	}, nil
}

// Me returns the authenticated identity for an access token. It is
// [Engine.Validate] under the name the HTTP surface exposes.
func (e *Engine) Me(ctx context.Context, accessToken string) (*Principal, error) {
	return e.Validate(ctx, accessToken)
}

// Authorize describes the authorize operation and its observable behavior.
//
// Authorize may return an error when input validation, dependency calls, or security checks fail.
// Authorize does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Authorize(ctx context.Context, userID, permissionCode string) error {
	if e == nil || e.resolver == nil {
		return ErrEngineNotReady
	}

	ok, err := e.resolver.Authorize(ctx, userID, permissionCode)
	if err != nil {
		if errors.Is(err, permission.ErrUnknownSubject) {
			e.metricInc(MetricPermissionDenied)
			e.emitAudit(ctx, auditEventPermissionDenied, false, userID, "", "", ErrPermissionDenied, func() map[string]string {
				return map[string]string{
					"permission": permissionCode,
					"reason":     "unknown_subject",
				}
			})
			return ErrPermissionDenied
		}
		return err
	}
	if !ok {
		e.metricInc(MetricPermissionDenied)
		e.emitAudit(ctx, auditEventPermissionDenied, false, userID, "", "", ErrPermissionDenied, func() map[string]string {
			return map[string]string{
				"permission": permissionCode,
			}
		})
		return ErrPermissionDenied
	}

	return nil
}

// EffectivePermissions returns the sorted union of permissions granted by
// the user's roles.
func (e *Engine) EffectivePermissions(ctx context.Context, userID string) ([]string, error) {
	if e == nil || e.resolver == nil {
		return nil, ErrEngineNotReady
	}

	perms, err := e.resolver.EffectivePermissions(ctx, userID)
	if err != nil {
		if errors.Is(err, permission.ErrUnknownSubject) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return perms.List(), nil
}
