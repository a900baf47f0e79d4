// Package jwt manages access-token issuance and verification using a rotating
// keyring and strict validation semantics suitable for low-latency session paths.
//
// # Components
//
//   - [Keyring] — holds the current signing key plus retained verify keys, indexed by kid.
//   - [Manager] — signs and parses access tokens; every token carries a kid header.
//   - [AccessClaims] — subject, roles, and the token-version claim checked at validation time.
//
// # Architecture boundaries
//
// This package verifies token structure, signature, and registered claims only.
// Token-version comparison against the live user record is the Engine's job.
package jwt
