// Package permission resolves subjects to roles and effective permission sets.
//
// # Resolution model
//
// A [RoleSource] supplies role assignments and per-role permission grants.
// The [Resolver] unions the grants of every role a subject holds; there are
// no deny rules and order never matters.
//
// # Architecture boundaries
//
// This package is pure resolution logic over a caller-supplied source. It
// performs no I/O of its own beyond what the source does.
//
// # What this package must NOT do
//
//   - Cache resolutions (callers decide their own staleness budget).
//   - Import goSession, jwt, or token.
package permission
