package jwt

import (
	"crypto"
	"crypto/ed25519"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/golang-jwt/jwt/v5"
)

// SigningMethod defines a public type used by goSession APIs.
//
// SigningMethod instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SigningMethod string

const (
	// MethodEd25519 is an exported constant or variable used by the session engine.
	MethodEd25519 SigningMethod = "ed25519"
	// MethodRS256 is an exported constant or variable used by the session engine.
	MethodRS256 SigningMethod = "rs256"
)

// Keyring holds the active signing key and every public key still accepted
// for verification, indexed by kid. Rotating in a new signing key retains
// the old public keys so access tokens issued before the rotation stay
// verifiable until they expire.
type Keyring struct {
	mu      sync.RWMutex
	method  SigningMethod
	signKID string
	signKey crypto.PrivateKey
	verify  map[string]crypto.PublicKey
}

// NewKeyring describes the newkeyring operation and its observable behavior.
//
// NewKeyring may return an error when input validation, dependency calls, or security checks fail.
// NewKeyring does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewKeyring(method SigningMethod) (*Keyring, error) {
	switch method {
	case MethodEd25519, MethodRS256:
	default:
		return nil, errors.New("unsupported signing method")
	}

	return &Keyring{
		method: method,
		verify: make(map[string]crypto.PublicKey),
	}, nil
}

// Method describes the method operation and its observable behavior.
//
// Method does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (k *Keyring) Method() SigningMethod {
	return k.method
}

// SetSigningKey installs the key pair under kid and makes it the active
// signing key. The public key joins the verify set; keys already in the
// verify set are kept.
func (k *Keyring) SetSigningKey(kid string, privateKey, publicKey []byte) error {
	kid = strings.TrimSpace(kid)
	if kid == "" {
		return errors.New("signing kid must not be empty")
	}

	priv, err := k.parsePrivateKey(privateKey)
	if err != nil {
		return fmt.Errorf("invalid signing key for kid %q: %w", kid, err)
	}
	pub, err := k.parsePublicKey(publicKey)
	if err != nil {
		return fmt.Errorf("invalid public key for kid %q: %w", kid, err)
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	k.signKID = kid
	k.signKey = priv
	k.verify[kid] = pub

	return nil
}

// AddVerifyKey registers a verify-only public key under kid. Used for keys
// whose private half lives on another instance.
func (k *Keyring) AddVerifyKey(kid string, publicKey []byte) error {
	kid = strings.TrimSpace(kid)
	if kid == "" {
		return errors.New("verify kid must not be empty")
	}

	pub, err := k.parsePublicKey(publicKey)
	if err != nil {
		return fmt.Errorf("invalid verify key for kid %q: %w", kid, err)
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	k.verify[kid] = pub

	return nil
}

// Rotate describes the rotate operation and its observable behavior.
//
// Rotate may return an error when input validation, dependency calls, or security checks fail.
// Rotate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (k *Keyring) Rotate(kid string, privateKey, publicKey []byte) error {
	return k.SetSigningKey(kid, privateKey, publicKey)
}

// RetireVerifyKey removes kid from the verify set. The active signing kid
// cannot be retired.
func (k *Keyring) RetireVerifyKey(kid string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if kid == k.signKID {
		return errors.New("cannot retire the active signing key")
	}
	if _, ok := k.verify[kid]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKeyID, kid)
	}

	delete(k.verify, kid)

	return nil
}

// CurrentSigningKey describes the currentsigningkey operation and its observable behavior.
//
// CurrentSigningKey may return an error when input validation, dependency calls, or security checks fail.
// CurrentSigningKey does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (k *Keyring) CurrentSigningKey() (string, crypto.PrivateKey, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	if k.signKey == nil {
		return "", nil, ErrNoSigningKey
	}

	return k.signKID, k.signKey, nil
}

// PublicKeyFor describes the publickeyfor operation and its observable behavior.
//
// PublicKeyFor does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (k *Keyring) PublicKeyFor(kid string) (crypto.PublicKey, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	pub, ok := k.verify[kid]
	return pub, ok
}

// VerifyKIDs returns the kids currently accepted for verification, in no
// particular order.
func (k *Keyring) VerifyKIDs() []string {
	k.mu.RLock()
	defer k.mu.RUnlock()

	kids := make([]string, 0, len(k.verify))
	for kid := range k.verify {
		kids = append(kids, kid)
	}
	return kids
}

func (k *Keyring) parsePrivateKey(key []byte) (crypto.PrivateKey, error) {
	switch k.method {
	case MethodRS256:
		parsed, err := jwt.ParseRSAPrivateKeyFromPEM(key)
		if err != nil {
			return nil, errors.New("invalid rsa private key")
		}
		return parsed, nil
	default:
		return parseEdPrivateKey(key)
	}
}

func (k *Keyring) parsePublicKey(key []byte) (crypto.PublicKey, error) {
	switch k.method {
	case MethodRS256:
		parsed, err := jwt.ParseRSAPublicKeyFromPEM(key)
		if err != nil {
			return nil, errors.New("invalid rsa public key")
		}
		return parsed, nil
	default:
		return parseEdPublicKey(key)
	}
}

func parseEdPrivateKey(key []byte) (ed25519.PrivateKey, error) {
	if len(key) == ed25519.PrivateKeySize {
		return ed25519.PrivateKey(key), nil
	}
	parsed, err := jwt.ParseEdPrivateKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 private key")
	}
	edKey, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("invalid ed25519 private key type")
	}
	return edKey, nil
}

func parseEdPublicKey(key []byte) (ed25519.PublicKey, error) {
	if len(key) == ed25519.PublicKeySize {
		return ed25519.PublicKey(key), nil
	}
	parsed, err := jwt.ParseEdPublicKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 public key")
	}
	edKey, ok := parsed.(ed25519.PublicKey)
	if !ok {
		return nil, errors.New("invalid ed25519 public key type")
	}
	return edKey, nil
}
