// Package rate provides internal primitives used to build Redis-backed rate limit keys,
// errors, and limiter behavior for security-sensitive session workflows.
//
// # Window semantics
//
// Fixed-window counters: INCR + conditional EXPIRE on first hit. One key per
// operation class and client IP:
//
//	arl:<class>:<ip>
//
// Clients without a resolvable IP share the "unknown" bucket.
//
// # What this package must NOT do
//
//   - Implement domain-specific policies (budgets come from the caller's config).
//   - Be imported outside the goSession module.
package rate
