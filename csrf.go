package goSession

import "crypto/subtle"

// CSRFPair carries the two halves of the double-submit check: the value the
// client stored in the csrf_token cookie and the value it echoed back in the
// X-CSRF-Token header.
type CSRFPair struct {
	CookieValue string
	HeaderValue string
}

type csrfGuard struct {
	enabled bool
}

// Validate applies the double-submit rule: both values present and equal.
// Comparison is constant-time so the guard leaks nothing about the cookie
// value through timing.
func (g csrfGuard) Validate(pair CSRFPair) error {
	if !g.enabled {
		return nil
	}
	if pair.CookieValue == "" || pair.HeaderValue == "" {
		return ErrCSRFMismatch
	}
	if subtle.ConstantTimeCompare([]byte(pair.CookieValue), []byte(pair.HeaderValue)) != 1 {
		return ErrCSRFMismatch
	}
	return nil
}
