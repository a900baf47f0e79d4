package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Config defines a public type used by goSession APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	AccessTTL    time.Duration
	Issuer       string
	Audience     string
	Leeway       time.Duration
	RequireIAT   bool
	MaxFutureIAT time.Duration
}

// AccessClaims defines a public type used by goSession APIs.
//
// AccessClaims instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AccessClaims struct {
	Roles        []string `json:"roles,omitempty"`
	TokenVersion uint32   `json:"ver"`
	jwt.RegisteredClaims
}

// Manager defines a public type used by goSession APIs.
//
// Manager instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Manager struct {
	config  Config
	keyring *Keyring
}

// NewManager describes the newmanager operation and its observable behavior.
//
// NewManager may return an error when input validation, dependency calls, or security checks fail.
// NewManager does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewManager(cfg Config, keyring *Keyring) (*Manager, error) {
	if keyring == nil {
		return nil, errors.New("keyring is required")
	}
	if cfg.AccessTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	if cfg.MaxFutureIAT == 0 {
		cfg.MaxFutureIAT = 10 * time.Minute
	}
	if cfg.MaxFutureIAT < 0 || cfg.MaxFutureIAT > 24*time.Hour {
		return nil, errors.New("invalid MaxFutureIAT configuration")
	}

	return &Manager{config: cfg, keyring: keyring}, nil
}

// AccessTTL describes the accessttl operation and its observable behavior.
//
// AccessTTL does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (j *Manager) AccessTTL() time.Duration {
	return j.config.AccessTTL
}

// CreateAccess describes the createaccess operation and its observable behavior.
//
// CreateAccess may return an error when input validation, dependency calls, or security checks fail.
// CreateAccess does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (j *Manager) CreateAccess(userID string, roles []string, tokenVersion uint32) (string, error) {
	now := time.Now()

	claims := AccessClaims{
		Roles:        roles,
		TokenVersion: tokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.config.AccessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    j.config.Issuer,
		},
	}
	if j.config.Audience != "" {
		claims.Audience = jwt.ClaimStrings{j.config.Audience}
	}

	kid, signKey, err := j.keyring.CurrentSigningKey()
	if err != nil {
		return "", err
	}

	token := jwt.NewWithClaims(j.getMethod(), claims)
	token.Header["kid"] = kid

	return token.SignedString(signKey)
}

// ParseAccess describes the parseaccess operation and its observable behavior.
//
// ParseAccess may return an error when input validation, dependency calls, or security checks fail.
// ParseAccess does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (j *Manager) ParseAccess(tokenStr string) (*AccessClaims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{j.getMethod().Alg()}),
	}
	if j.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(j.config.Leeway))
	}
	if j.config.RequireIAT {
		options = append(options, jwt.WithIssuedAt())
	}
	if j.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(j.config.Issuer))
	}
	if j.config.Audience != "" {
		options = append(options, jwt.WithAudience(j.config.Audience))
	}

	parser := jwt.NewParser(options...)
	token, err := parser.ParseWithClaims(tokenStr, &AccessClaims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != j.getMethod().Alg() {
			return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
		}

		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, fmt.Errorf("%w: missing kid", ErrUnknownKeyID)
		}
		key, ok := j.keyring.PublicKeyFor(kid)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownKeyID, kid)
		}
		return key, nil
	})
	if err != nil {
		return nil, classifyParseError(err)
	}

	claims, ok := token.Claims.(*AccessClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenMalformed
	}
	if claims.IssuedAt != nil && j.config.MaxFutureIAT > 0 {
		maxAllowed := time.Now().Add(j.config.MaxFutureIAT)
		if claims.IssuedAt.Time.After(maxAllowed) {
			return nil, ErrTokenMalformed
		}
	}

	return claims, nil
}

func (j *Manager) getMethod() jwt.SigningMethod {
	switch j.keyring.Method() {
	case MethodRS256:
		return jwt.SigningMethodRS256
	default:
		return jwt.SigningMethodEdDSA
	}
}

// classifyParseError maps golang-jwt parse failures onto this package's
// sentinels. Keyfunc errors surface wrapped in jwt.ErrTokenUnverifiable, so
// the ErrUnknownKeyID check runs first.
func classifyParseError(err error) error {
	switch {
	case errors.Is(err, ErrUnknownKeyID):
		return fmt.Errorf("%w: %v", ErrUnknownKeyID, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrTokenExpired, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %v", ErrTokenSignature, err)
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return fmt.Errorf("%w: %v", ErrIssuerMismatch, err)
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		return fmt.Errorf("%w: %v", ErrAudienceMismatch, err)
	default:
		return fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}
}
