package token

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is an exported constant or variable used by the session engine.
	ErrNotFound = errors.New("refresh token not found")
	// ErrExpired is an exported constant or variable used by the session engine.
	ErrExpired = errors.New("refresh token expired")
	// ErrRevoked is an exported constant or variable used by the session engine.
	ErrRevoked = errors.New("refresh token revoked")
	// ErrReplaced is an exported constant or variable used by the session engine.
	ErrReplaced = errors.New("refresh token already replaced")
	// ErrStoreUnavailable is an exported constant or variable used by the session engine.
	ErrStoreUnavailable = errors.New("token store unavailable")
)

// RotateInput carries the successor record a rotation inserts when the
// presented token is live. User and family identity come from the
// predecessor inside the store's atomic step, never from the caller.
type RotateInput struct {
	SuccessorID   string
	SuccessorHash [32]byte
	IssuedAt      time.Time
	ExpiresAt     time.Time
	ClientIP      string
	UserAgent     string
}

// Store persists refresh-token records.
//
// Rotate is the only compound operation: it must atomically classify the
// presented hash, stamp the predecessor as replaced+revoked, and insert the
// successor. On [ErrReplaced] and [ErrRevoked] the returned predecessor is
// still populated with at least ID, UserID, and FamilyID so callers can
// contain the family.
type Store interface {
	Create(ctx context.Context, rec *Record) error
	FindByHash(ctx context.Context, hash [32]byte) (*Record, error)
	FindFamily(ctx context.Context, familyID string) ([]*Record, error)
	Rotate(ctx context.Context, presentedHash [32]byte, in RotateInput) (prev, next *Record, err error)
	Revoke(ctx context.Context, id string, at time.Time) error
	RevokeFamily(ctx context.Context, familyID string, at time.Time) error
	RevokeAllForUser(ctx context.Context, userID string, at time.Time) error
}
