package internal

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
)

const (
	refreshSecretSize = 32
	csrfTokenSize     = 32
)

// NewRefreshSecret returns a fresh opaque refresh secret: 32 random bytes,
// base64url without padding. The raw value is handed to the client once and
// only its keyed hash is ever persisted.
func NewRefreshSecret() (string, error) {
	var secret [refreshSecretSize]byte
	if _, err := rand.Read(secret[:]); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(secret[:]), nil
}

// NewCSRFToken returns a fresh double-submit token: 32 random bytes,
// base64url without padding.
func NewCSRFToken() (string, error) {
	var tok [csrfTokenSize]byte
	if _, err := rand.Read(tok[:]); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(tok[:]), nil
}

// HashRefreshToken computes the keyed HMAC-SHA256 digest of a raw refresh
// token. The key prevents an attacker with read access to the token store
// from forging presentable tokens out of stored digests.
func HashRefreshToken(key []byte, token string) [32]byte {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(token))

	var out [32]byte
	copy(out[:], mac.Sum(nil))
	return out
}

// ValidateHashKey rejects hash keys too short to act as an HMAC secret.
func ValidateHashKey(key []byte) error {
	if len(key) < 16 {
		return errors.New("refresh hash key must be at least 16 bytes")
	}
	return nil
}
