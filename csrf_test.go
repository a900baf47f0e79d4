package goSession

import (
	"errors"
	"testing"
)

func TestCSRFGuardValidate(t *testing.T) {
	guard := csrfGuard{enabled: true}

	if err := guard.Validate(CSRFPair{CookieValue: "tok", HeaderValue: "tok"}); err != nil {
		t.Fatalf("expected matching pair to pass, got %v", err)
	}
	if err := guard.Validate(CSRFPair{CookieValue: "tok", HeaderValue: "other"}); !errors.Is(err, ErrCSRFMismatch) {
		t.Fatalf("expected ErrCSRFMismatch, got %v", err)
	}
	if err := guard.Validate(CSRFPair{CookieValue: "", HeaderValue: "tok"}); !errors.Is(err, ErrCSRFMismatch) {
		t.Fatalf("expected ErrCSRFMismatch for missing cookie, got %v", err)
	}
	if err := guard.Validate(CSRFPair{CookieValue: "tok", HeaderValue: ""}); !errors.Is(err, ErrCSRFMismatch) {
		t.Fatalf("expected ErrCSRFMismatch for missing header, got %v", err)
	}
	if err := guard.Validate(CSRFPair{}); !errors.Is(err, ErrCSRFMismatch) {
		t.Fatalf("expected ErrCSRFMismatch for empty pair, got %v", err)
	}
}

func TestCSRFGuardDisabled(t *testing.T) {
	guard := csrfGuard{enabled: false}

	if err := guard.Validate(CSRFPair{}); err != nil {
		t.Fatalf("disabled guard must accept anything, got %v", err)
	}
	if err := guard.Validate(CSRFPair{CookieValue: "a", HeaderValue: "b"}); err != nil {
		t.Fatalf("disabled guard must accept mismatches, got %v", err)
	}
}
