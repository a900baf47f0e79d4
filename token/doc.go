// Package token persists refresh-token records and implements the rotation
// protocol that makes refresh reuse detectable.
//
// # Model
//
// Each refresh token is a [Record] keyed by a random ID and indexed by the
// keyed hash of its secret. Records belong to a family: the chain started at
// login and extended by every rotation. Records are never deleted on
// rotation — the predecessor is marked replaced and revoked, so a replayed
// secret still resolves to evidence of the theft.
//
// # Classification order
//
// Rotation stamps BOTH replaced_by and revoked_at on the predecessor, so a
// presented token must be classified replaced before revoked, and revoked
// before expired. Getting this order wrong turns every reuse into a
// dead-family replay.
//
// # What this package must NOT do
//
//   - Decide the response to reuse (family revocation, version bumps) — that
//     is the Engine's job.
//   - See raw refresh secrets; only keyed hashes cross this boundary.
package token
