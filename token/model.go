package token

import "time"

// Record defines a public type used by goSession APIs.
//
// Record instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Record struct {
	ID           string
	UserID       string
	FamilyID     string
	TokenHash    [32]byte
	IssuedAt     time.Time
	ExpiresAt    time.Time
	RevokedAt    *time.Time
	ReplacedByID string
	ClientIP     string
	UserAgent    string
}

// Replaced reports whether the record was consumed by a rotation.
func (r *Record) Replaced() bool {
	return r != nil && r.ReplacedByID != ""
}

// Revoked reports whether the record was revoked. Replaced records are also
// revoked; check [Record.Replaced] first when classifying a presented token.
func (r *Record) Revoked() bool {
	return r != nil && r.RevokedAt != nil
}

// Expired reports whether the record's lifetime has elapsed at the given time.
func (r *Record) Expired(now time.Time) bool {
	return r != nil && !now.Before(r.ExpiresAt)
}

func (r *Record) clone() *Record {
	if r == nil {
		return nil
	}
	out := *r
	if r.RevokedAt != nil {
		at := *r.RevokedAt
		out.RevokedAt = &at
	}
	return &out
}
