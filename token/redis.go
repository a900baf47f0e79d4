package token

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// retentionWindow keeps consumed and expired records readable past their
// nominal lifetime so replayed secrets still resolve to reuse evidence.
const retentionWindow = 30 * 24 * time.Hour

const (
	rotateStatusNotFound int64 = 0
	rotateStatusExpired  int64 = 1
	rotateStatusReplaced int64 = 2
	rotateStatusRevoked  int64 = 3
	rotateStatusRotated  int64 = 4
)

const rotateScript = `
local prefix = ARGV[1]
local now = tonumber(ARGV[2])
local succ_id = ARGV[3]
local succ_hash = ARGV[4]
local succ_issued = ARGV[5]
local succ_expires = ARGV[6]
local succ_ip = ARGV[7]
local succ_ua = ARGV[8]
local retain_at = tonumber(ARGV[9])

local prev_id = redis.call("GET", KEYS[1])
if not prev_id then
  return {0}
end

local rkey = prefix .. ":r:" .. prev_id
local rec = redis.call("HMGET", rkey, "user_id", "family_id", "expires_at", "revoked_at", "replaced_by")
local user_id = rec[1]
local family_id = rec[2]
if not user_id then
  return {0}
end

if rec[5] and rec[5] ~= "" then
  return {2, user_id, family_id, prev_id}
end
if rec[4] and tonumber(rec[4]) and tonumber(rec[4]) > 0 then
  return {3, user_id, family_id, prev_id}
end
if tonumber(rec[3]) <= now then
  return {1, user_id, family_id, prev_id}
end

redis.call("HSET", rkey, "replaced_by", succ_id, "revoked_at", now)

local skey = prefix .. ":r:" .. succ_id
redis.call("HSET", skey,
  "user_id", user_id,
  "family_id", family_id,
  "hash", succ_hash,
  "issued_at", succ_issued,
  "expires_at", succ_expires,
  "revoked_at", "0",
  "replaced_by", "",
  "ip", succ_ip,
  "ua", succ_ua)
redis.call("SET", prefix .. ":h:" .. succ_hash, succ_id)
redis.call("SADD", prefix .. ":f:" .. family_id, succ_id)
redis.call("SADD", prefix .. ":u:" .. user_id, succ_id)
redis.call("PEXPIREAT", skey, retain_at)
redis.call("PEXPIREAT", prefix .. ":h:" .. succ_hash, retain_at)

return {4, user_id, family_id, prev_id}
`

var rotateLua = redis.NewScript(rotateScript)

const revokeScript = `
local cur = redis.call("HGET", KEYS[1], "revoked_at")
if not cur then
  return 0
end
if cur ~= "0" and cur ~= "" then
  return 1
end
redis.call("HSET", KEYS[1], "revoked_at", ARGV[1])
return 2
`

var revokeLua = redis.NewScript(revokeScript)

// RedisStore is a Redis-backed [Store]. Rotation runs as a single Lua CAS
// so only one of N concurrent presentations of the same secret wins.
//
//	Docs: docs/token.md
type RedisStore struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRedisStore creates a [RedisStore] using prefix as the key namespace.
func NewRedisStore(redisClient redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "rt"
	}
	return &RedisStore{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (s *RedisStore) recordKey(id string) string {
	return s.prefix + ":r:" + id
}

func (s *RedisStore) hashKey(hash [32]byte) string {
	return s.prefix + ":h:" + hex.EncodeToString(hash[:])
}

func (s *RedisStore) familyKey(familyID string) string {
	return s.prefix + ":f:" + familyID
}

func (s *RedisStore) userKey(userID string) string {
	return s.prefix + ":u:" + userID
}

// Create persists a fresh record and its hash index entry.
//
//	Performance: 1 MULTI/EXEC with 6 commands.
func (s *RedisStore) Create(ctx context.Context, rec *Record) error {
	retainAt := rec.ExpiresAt.Add(retentionWindow)

	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.recordKey(rec.ID), recordFields(rec))
		pipe.Set(ctx, s.hashKey(rec.TokenHash), rec.ID, 0)
		pipe.SAdd(ctx, s.familyKey(rec.FamilyID), rec.ID)
		pipe.SAdd(ctx, s.userKey(rec.UserID), rec.ID)
		pipe.PExpireAt(ctx, s.recordKey(rec.ID), retainAt)
		pipe.PExpireAt(ctx, s.hashKey(rec.TokenHash), retainAt)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return nil
}

// FindByHash resolves a presented hash to its record without classifying it.
//
//	Performance: 2 Redis commands (GET + HGETALL).
func (s *RedisStore) FindByHash(ctx context.Context, hash [32]byte) (*Record, error) {
	id, err := s.redis.Get(ctx, s.hashKey(hash)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return s.findByID(ctx, id)
}

// FindFamily returns every record in a family, live or consumed.
func (s *RedisStore) FindFamily(ctx context.Context, familyID string) ([]*Record, error) {
	ids, err := s.redis.SMembers(ctx, s.familyKey(familyID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []*Record{}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	records := make([]*Record, 0, len(ids))
	for _, id := range ids {
		rec, err := s.findByID(ctx, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		records = append(records, rec)
	}

	return records, nil
}

// Rotate atomically classifies the presented hash and, when live, consumes
// the predecessor and inserts the successor.
//
//	Performance: 1 Lua EVALSHA (atomic compare-and-swap).
//	Security: CAS guarantees a single winner under concurrent presentation.
func (s *RedisStore) Rotate(ctx context.Context, presentedHash [32]byte, in RotateInput) (*Record, *Record, error) {
	result, err := rotateLua.Run(
		ctx,
		s.redis,
		[]string{s.hashKey(presentedHash)},
		s.prefix,
		in.IssuedAt.Unix(),
		in.SuccessorID,
		hex.EncodeToString(in.SuccessorHash[:]),
		in.IssuedAt.Unix(),
		in.ExpiresAt.Unix(),
		in.ClientIP,
		in.UserAgent,
		in.ExpiresAt.Add(retentionWindow).UnixMilli(),
	).Result()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	parts, ok := result.([]interface{})
	if !ok || len(parts) == 0 {
		return nil, nil, fmt.Errorf("%w: invalid rotate script response", ErrStoreUnavailable)
	}
	code, ok := parts[0].(int64)
	if !ok {
		return nil, nil, fmt.Errorf("%w: invalid rotate script status", ErrStoreUnavailable)
	}

	if code == rotateStatusNotFound {
		return nil, nil, ErrNotFound
	}

	if len(parts) < 4 {
		return nil, nil, fmt.Errorf("%w: missing rotate script identity", ErrStoreUnavailable)
	}
	prev := &Record{
		ID:       scriptString(parts[3]),
		UserID:   scriptString(parts[1]),
		FamilyID: scriptString(parts[2]),
	}

	switch code {
	case rotateStatusExpired:
		return prev, nil, ErrExpired
	case rotateStatusReplaced:
		return prev, nil, ErrReplaced
	case rotateStatusRevoked:
		return prev, nil, ErrRevoked
	case rotateStatusRotated:
		now := in.IssuedAt
		prev.RevokedAt = &now
		prev.ReplacedByID = in.SuccessorID

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
		return prev, next, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown rotate script status", ErrStoreUnavailable)
	}
}

// Revoke stamps revoked_at on a single record. Idempotent: revoking an
// already-revoked record keeps the original timestamp.
func (s *RedisStore) Revoke(ctx context.Context, id string, at time.Time) error {
	status, err := revokeLua.Run(ctx, s.redis, []string{s.recordKey(id)}, at.Unix()).Int64()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if status == 0 {
		return ErrNotFound
	}
	return nil
}

// RevokeFamily revokes every record in a family.
//
// ATOMICITY NOTE: This operation is NOT fully atomic. It reads the family's
// member set (SMembers) and then revokes each record individually. A record
// rotated into the family between the read and the revokes is not captured
// by this call. The window is extremely narrow and the engine closes it by
// bumping the user's token version alongside family revocation, which kills
// the stray tail on its next use.
func (s *RedisStore) RevokeFamily(ctx context.Context, familyID string, at time.Time) error {
	return s.revokeSet(ctx, s.familyKey(familyID), at)
}

// RevokeAllForUser revokes every record belonging to a user. Same
// atomicity caveat as [RedisStore.RevokeFamily].
func (s *RedisStore) RevokeAllForUser(ctx context.Context, userID string, at time.Time) error {
	return s.revokeSet(ctx, s.userKey(userID), at)
}

func (s *RedisStore) revokeSet(ctx context.Context, setKey string, at time.Time) error {
	ids, err := s.redis.SMembers(ctx, setKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	for _, id := range ids {
		if _, err := revokeLua.Run(ctx, s.redis, []string{s.recordKey(id)}, at.Unix()).Int64(); err != nil {
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
	}

	return nil
}

func (s *RedisStore) findByID(ctx context.Context, id string) (*Record, error) {
	fields, err := s.redis.HGetAll(ctx, s.recordKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if len(fields) == 0 {
		return nil, ErrNotFound
	}

	return parseRecord(id, fields)
}

func recordFields(rec *Record) map[string]interface{} {
	revokedAt := int64(0)
	if rec.RevokedAt != nil {
		revokedAt = rec.RevokedAt.Unix()
	}
	return map[string]interface{}{
		"user_id":     rec.UserID,
		"family_id":   rec.FamilyID,
		"hash":        hex.EncodeToString(rec.TokenHash[:]),
		"issued_at":   rec.IssuedAt.Unix(),
		"expires_at":  rec.ExpiresAt.Unix(),
		"revoked_at":  revokedAt,
		"replaced_by": rec.ReplacedByID,
		"ip":          rec.ClientIP,
		"ua":          rec.UserAgent,
	}
}

func parseRecord(id string, fields map[string]string) (*Record, error) {
	rec := &Record{
		ID:           id,
		UserID:       fields["user_id"],
		FamilyID:     fields["family_id"],
		ReplacedByID: fields["replaced_by"],
		ClientIP:     fields["ip"],
		UserAgent:    fields["ua"],
	}

	hashBytes, err := hex.DecodeString(fields["hash"])
	if err != nil || len(hashBytes) != len(rec.TokenHash) {
		return nil, fmt.Errorf("%w: corrupt token hash for record %s", ErrStoreUnavailable, id)
	}
	copy(rec.TokenHash[:], hashBytes)

	issuedAt, err := strconv.ParseInt(fields["issued_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: corrupt issued_at for record %s", ErrStoreUnavailable, id)
	}
	rec.IssuedAt = time.Unix(issuedAt, 0)

	expiresAt, err := strconv.ParseInt(fields["expires_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: corrupt expires_at for record %s", ErrStoreUnavailable, id)
	}
	rec.ExpiresAt = time.Unix(expiresAt, 0)

	if raw := fields["revoked_at"]; raw != "" && raw != "0" {
		revokedAt, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: corrupt revoked_at for record %s", ErrStoreUnavailable, id)
		}
		at := time.Unix(revokedAt, 0)
		rec.RevokedAt = &at
	}

	return rec, nil
}

func scriptString(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	default:
		return ""
	}
}
