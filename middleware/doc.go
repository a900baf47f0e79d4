// Package middleware exposes HTTP adapters for access-token enforcement and
// cookie-based refresh/CSRF transport built on top of goSession.Engine.
//
// # Guards
//
//   - [Guard] — validates the bearer access token and injects the principal.
//   - [RequirePermission] — [Guard] plus a permission check via Engine.Authorize.
//
// Each guard reads the Authorization header, calls Engine.Validate, and injects
// the authenticated principal into the request context.
//
// # Cookie helpers
//
// [SetSessionCookies], [ClearSessionCookies], and [CSRFPairFromRequest] carry
// the refresh token and CSRF double-submit pair over HTTP the way the engine
// expects: refresh token in an HttpOnly cookie, CSRF token mirrored in a
// readable cookie and the X-CSRF-Token header.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT implement
// authentication logic itself — all decisions are delegated to the Engine.
//
// # What this package must NOT do
//
//   - Parse or create JWTs directly (delegates to Engine).
//   - Access Redis (Engine handles I/O).
//   - Make authorization decisions beyond pass/reject from the Engine.
package middleware
