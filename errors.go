package goSession

import "errors"

var (
	// ErrUnauthorized is an exported constant or variable used by the session engine.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidCredentials is an exported constant or variable used by the session engine.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountInactive is an exported constant or variable used by the session engine.
	ErrAccountInactive = errors.New("account inactive")
	// ErrUserNotFound is an exported constant or variable used by the session engine.
	ErrUserNotFound = errors.New("user not found")
	// ErrLoginRateLimited is an exported constant or variable used by the session engine.
	ErrLoginRateLimited = errors.New("login rate limited")
	// ErrRefreshRateLimited is an exported constant or variable used by the session engine.
	ErrRefreshRateLimited = errors.New("refresh rate limited")
	// ErrRefreshInvalid is an exported constant or variable used by the session engine.
	ErrRefreshInvalid = errors.New("invalid refresh token")
	// ErrRefreshExpired is an exported constant or variable used by the session engine.
	ErrRefreshExpired = errors.New("refresh token expired")
	// ErrRefreshReuse is an exported constant or variable used by the session engine.
	ErrRefreshReuse = errors.New("refresh token reuse detected")
	// ErrCSRFMismatch is an exported constant or variable used by the session engine.
	ErrCSRFMismatch = errors.New("csrf token mismatch")
	// ErrTokenRevoked is an exported constant or variable used by the session engine.
	ErrTokenRevoked = errors.New("token revoked")
	// ErrAccountExists is an exported constant or variable used by the session engine.
	ErrAccountExists = errors.New("account already exists")
	// ErrAccountCreationDisabled is an exported constant or variable used by the session engine.
	ErrAccountCreationDisabled = errors.New("account creation disabled")
	// ErrAccountCreationRateLimited is an exported constant or variable used by the session engine.
	ErrAccountCreationRateLimited = errors.New("account creation rate limited")
	// ErrAccountCreationInvalid is an exported constant or variable used by the session engine.
	ErrAccountCreationInvalid = errors.New("invalid account creation request")
	// ErrPasswordPolicy is an exported constant or variable used by the session engine.
	ErrPasswordPolicy = errors.New("password policy violation")
	// ErrPasswordReuse is an exported constant or variable used by the session engine.
	ErrPasswordReuse = errors.New("new password must be different from current password")
	// ErrPermissionDenied is an exported constant or variable used by the session engine.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrSessionInvalidationFailed is an exported constant or variable used by the session engine.
	ErrSessionInvalidationFailed = errors.New("session invalidation failed")
	// ErrEngineNotReady is an exported constant or variable used by the session engine.
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrProviderDuplicateIdentifier is an exported constant or variable used by the session engine.
	ErrProviderDuplicateIdentifier = errors.New("provider duplicate identifier")
)
