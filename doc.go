// Package goSession provides a session and authentication engine with signed JWT
// access tokens, rotating opaque refresh tokens with family-based reuse detection,
// role-based authorization, per-endpoint rate limiting, and double-submit CSRF checks.
//
// The package is designed for concurrent server workloads: Engine methods are safe to call
// from multiple goroutines after initialization through [Builder.Build].
//
// # Architecture boundaries
//
// goSession is the public surface. It exposes [Engine], [Builder], [Config], and value types
// (SessionTokens, Principal, MetricsSnapshot, etc.). All internal coordination — rate
// limiting, audit dispatch, secret generation — lives under internal/ and is never
// exported. Token persistence, JWT handling, and permission resolution live in their
// own importable sub-packages.
//
// # What this package must NOT do
//
//   - Expose Redis clients, store internals, or hash material in its public API.
//   - Perform I/O outside of Engine methods (construction via Builder is allocation-only
//     until Build).
//   - Import any sub-package that re-imports goSession (no import cycles).
//
// # Performance contract
//
// Validate is the hot path: one signature check plus one UserProvider lookup for the
// token-version comparison. Refresh is one atomic store rotation plus one provider
// lookup. Login and account creation are allowed a password hash plus one provider
// round-trip.
package goSession
