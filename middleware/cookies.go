package middleware

import (
	"net/http"
	"time"

	goSession "github.com/kvn-dev/goSession"
)

const (
	// RefreshCookieName is an exported constant or variable used by the session engine.
	RefreshCookieName = "refresh_token"
	// CSRFCookieName is an exported constant or variable used by the session engine.
	CSRFCookieName = "csrf_token"
	// CSRFHeaderName is an exported constant or variable used by the session engine.
	CSRFHeaderName = "X-CSRF-Token"

	// The refresh cookie is scoped to the auth endpoints so the secret never
	// rides along on application requests.
	refreshCookiePath = "/auth"
)

// CookieOptions controls transport attributes of the session cookies.
type CookieOptions struct {
	Domain string
	Secure bool
}

// SetSessionCookies writes the refresh token and CSRF token from a login or
// refresh response as cookies. The refresh cookie is HttpOnly; the CSRF
// cookie is readable so the client can mirror it into [CSRFHeaderName].
func SetSessionCookies(w http.ResponseWriter, tokens *goSession.SessionTokens, refreshTTL time.Duration, opts CookieOptions) {
	if tokens == nil {
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    tokens.RefreshToken,
		Path:     refreshCookiePath,
		Domain:   opts.Domain,
		MaxAge:   int(refreshTTL / time.Second),
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    tokens.CSRFToken,
		Path:     "/",
		Domain:   opts.Domain,
		MaxAge:   int(refreshTTL / time.Second),
		HttpOnly: false,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookies expires both session cookies, typically after logout.
func ClearSessionCookies(w http.ResponseWriter, opts CookieOptions) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    "",
		Path:     refreshCookiePath,
		Domain:   opts.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    "",
		Path:     "/",
		Domain:   opts.Domain,
		MaxAge:   -1,
		HttpOnly: false,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// RefreshTokenFromRequest extracts the refresh token cookie value. Returns
// the empty string when the cookie is absent.
func RefreshTokenFromRequest(r *http.Request) string {
	c, err := r.Cookie(RefreshCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

// CSRFPairFromRequest assembles the double-submit pair from the CSRF cookie
// and the [CSRFHeaderName] header. Missing halves come back empty and fail
// validation in the engine.
func CSRFPairFromRequest(r *http.Request) goSession.CSRFPair {
	pair := goSession.CSRFPair{
		HeaderValue: r.Header.Get(CSRFHeaderName),
	}
	if c, err := r.Cookie(CSRFCookieName); err == nil {
		pair.CookieValue = c.Value
	}
	return pair
}
