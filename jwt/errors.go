package jwt

import "errors"

var (
	// ErrTokenMalformed is an exported constant or variable used by the session engine.
	ErrTokenMalformed = errors.New("token malformed")
	// ErrTokenSignature is an exported constant or variable used by the session engine.
	ErrTokenSignature = errors.New("token signature invalid")
	// ErrTokenExpired is an exported constant or variable used by the session engine.
	ErrTokenExpired = errors.New("token expired")
	// ErrUnknownKeyID is an exported constant or variable used by the session engine.
	ErrUnknownKeyID = errors.New("unknown key id")
	// ErrIssuerMismatch is an exported constant or variable used by the session engine.
	ErrIssuerMismatch = errors.New("issuer mismatch")
	// ErrAudienceMismatch is an exported constant or variable used by the session engine.
	ErrAudienceMismatch = errors.New("audience mismatch")
	// ErrNoSigningKey is an exported constant or variable used by the session engine.
	ErrNoSigningKey = errors.New("no signing key configured")
)
