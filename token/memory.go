package token

import (
	"context"
	"encoding/hex"
	"sync"
	"time"
)

// MemoryStore is an in-process [Store] for tests and single-node setups.
// All records live in maps guarded by one mutex; rotation is atomic by
// construction.
type MemoryStore struct {
	mu       sync.Mutex
	byID     map[string]*Record
	byHash   map[string]string
	byFamily map[string][]string
	byUser   map[string][]string
}

// NewMemoryStore describes the newmemorystore operation and its observable behavior.
//
// NewMemoryStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:     make(map[string]*Record),
		byHash:   make(map[string]string),
		byFamily: make(map[string][]string),
		byUser:   make(map[string][]string),
	}
}

// Create describes the create operation and its observable behavior.
//
// Create may return an error when input validation, dependency calls, or security checks fail.
// Create does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *MemoryStore) Create(ctx context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.insertLocked(rec.clone())
	return nil
}

// FindByHash describes the findbyhash operation and its observable behavior.
//
// FindByHash may return an error when input validation, dependency calls, or security checks fail.
// FindByHash does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *MemoryStore) FindByHash(ctx context.Context, hash [32]byte) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byHash[hex.EncodeToString(hash[:])]
	if !ok {
		return nil, ErrNotFound
	}
	return s.byID[id].clone(), nil
}

// FindFamily describes the findfamily operation and its observable behavior.
//
// FindFamily may return an error when input validation, dependency calls, or security checks fail.
// FindFamily does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *MemoryStore) FindFamily(ctx context.Context, familyID string) ([]*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.byFamily[familyID]
	out := make([]*Record, 0, len(ids))
	for _, id := range ids {
		if rec, ok := s.byID[id]; ok {
			out = append(out, rec.clone())
		}
	}
	return out, nil
}

// Rotate describes the rotate operation and its observable behavior.
//
// Rotate may return an error when input validation, dependency calls, or security checks fail.
// Rotate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *MemoryStore) Rotate(ctx context.Context, presentedHash [32]byte, in RotateInput) (*Record, *Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byHash[hex.EncodeToString(presentedHash[:])]
	if !ok {
		return nil, nil, ErrNotFound
	}
	prev := s.byID[id]

	// Replaced before revoked: rotation stamps both fields on the predecessor.
	if prev.Replaced() {
		return prev.clone(), nil, ErrReplaced
	}
	if prev.Revoked() {
		return prev.clone(), nil, ErrRevoked
	}
	if prev.Expired(in.IssuedAt) {
		return prev.clone(), nil, ErrExpired
	}

	now := in.IssuedAt
	prev.ReplacedByID = in.SuccessorID
	prev.RevokedAt = &now

	next := &Record{
		ID:        in.SuccessorID,
		UserID:    prev.UserID,
		FamilyID:  prev.FamilyID,
		TokenHash: in.SuccessorHash,
		IssuedAt:  in.IssuedAt,
		ExpiresAt: in.ExpiresAt,
		ClientIP:  in.ClientIP,
		UserAgent: in.UserAgent,
	}
	s.insertLocked(next)

	return prev.clone(), next.clone(), nil
}

// Revoke describes the revoke operation and its observable behavior.
//
// Revoke may return an error when input validation, dependency calls, or security checks fail.
// Revoke does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *MemoryStore) Revoke(ctx context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	if rec.RevokedAt == nil {
		rec.RevokedAt = &at
	}
	return nil
}

// RevokeFamily describes the revokefamily operation and its observable behavior.
//
// RevokeFamily may return an error when input validation, dependency calls, or security checks fail.
// RevokeFamily does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *MemoryStore) RevokeFamily(ctx context.Context, familyID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.byFamily[familyID] {
		if rec, ok := s.byID[id]; ok && rec.RevokedAt == nil {
			rec.RevokedAt = &at
		}
	}
	return nil
}

// RevokeAllForUser describes the revokeallforuser operation and its observable behavior.
//
// RevokeAllForUser may return an error when input validation, dependency calls, or security checks fail.
// RevokeAllForUser does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *MemoryStore) RevokeAllForUser(ctx context.Context, userID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.byUser[userID] {
		if rec, ok := s.byID[id]; ok && rec.RevokedAt == nil {
			rec.RevokedAt = &at
		}
	}
	return nil
}

func (s *MemoryStore) insertLocked(rec *Record) {
	s.byID[rec.ID] = rec
	s.byHash[hex.EncodeToString(rec.TokenHash[:])] = rec.ID
	s.byFamily[rec.FamilyID] = append(s.byFamily[rec.FamilyID], rec.ID)
	s.byUser[rec.UserID] = append(s.byUser[rec.UserID], rec.ID)
}
