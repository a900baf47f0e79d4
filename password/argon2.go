package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	minMemoryKB    uint32 = 8 * 1024
	minTimeCost    uint32 = 1
	minParallelism uint8  = 1
	minSaltLength  uint32 = 16
	minKeyLength   uint32 = 16
	minPassBytes          = 10
	algorithmID           = "argon2id"
)

// DefaultMaxPasswordBytes is an exported constant or variable used by the session engine.
//
// Bounding input length keeps a hostile multi-megabyte password from turning
// key derivation into a CPU sink.
const DefaultMaxPasswordBytes = 1024

// Config defines a public type used by goSession APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32

	// MaxPasswordBytes caps accepted password length. Zero applies
	// [DefaultMaxPasswordBytes].
	MaxPasswordBytes int
}

// Argon2 defines a public type used by goSession APIs.
//
// Argon2 instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Argon2 struct {
	config Config
}

// phcHash holds the decoded fields of a PHC-formatted argon2id string.
type phcHash struct {
	memory      uint32
	time        uint32
	parallelism uint8
	salt        []byte
	digest      []byte
}

func (p *phcHash) keyLength() uint32 {
	return uint32(len(p.digest))
}

// NewArgon2 describes the newargon2 operation and its observable behavior.
//
// NewArgon2 may return an error when input validation, dependency calls, or security checks fail.
// NewArgon2 does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewArgon2(cfg Config) (*Argon2, error) {
	switch {
	case cfg.Memory < minMemoryKB:
		return nil, errors.New("password memory must be >= 8192 KB")
	case cfg.Time < minTimeCost:
		return nil, errors.New("password time must be >= 1")
	case cfg.Parallelism < minParallelism:
		return nil, errors.New("password parallelism must be >= 1")
	case cfg.SaltLength < minSaltLength:
		return nil, errors.New("password salt length must be >= 16")
	case cfg.KeyLength < minKeyLength:
		return nil, errors.New("password key length must be >= 16")
	case cfg.MaxPasswordBytes < 0:
		return nil, errors.New("password max length must not be negative")
	}

	if cfg.MaxPasswordBytes == 0 {
		cfg.MaxPasswordBytes = DefaultMaxPasswordBytes
	}

	return &Argon2{config: cfg}, nil
}

// Hash describes the hash operation and its observable behavior.
//
// Hash may return an error when input validation, dependency calls, or security checks fail.
// Hash does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (a *Argon2) Hash(password string) (string, error) {
	// Password processing uses raw string bytes exactly as provided (no Unicode normalization).
	if len(password) < minPassBytes {
		return "", errors.New("password must be at least 10 bytes")
	}
	if len(password) > a.config.MaxPasswordBytes {
		return "", errors.New("password exceeds maximum length")
	}

	salt := make([]byte, a.config.SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", err
	}

	digest := a.derive([]byte(password), salt, a.config.Time, a.config.Memory, a.config.Parallelism, a.config.KeyLength)

	return fmt.Sprintf(
		"$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		algorithmID,
		argon2.Version,
		a.config.Memory,
		a.config.Time,
		a.config.Parallelism,
		base64.StdEncoding.EncodeToString(salt),
		base64.StdEncoding.EncodeToString(digest),
	), nil
}

// Verify describes the verify operation and its observable behavior.
//
// Verify may return an error when input validation, dependency calls, or security checks fail.
// Verify does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (a *Argon2) Verify(password string, encodedHash string) (bool, error) {
	// Length check before derivation so oversized input fails fast.
	if len(password) > a.config.MaxPasswordBytes {
		return false, errors.New("password exceeds maximum length")
	}

	parsed, err := parsePHC(encodedHash)
	if err != nil {
		return false, err
	}

	// Derivation uses the parameters embedded in the stored hash, not the
	// current config, so verification survives parameter upgrades.
	computed := a.derive([]byte(password), parsed.salt, parsed.time, parsed.memory, parsed.parallelism, parsed.keyLength())

	return subtle.ConstantTimeCompare(computed, parsed.digest) == 1, nil
}

// NeedsUpgrade describes the needsupgrade operation and its observable behavior.
//
// NeedsUpgrade may return an error when input validation, dependency calls, or security checks fail.
// NeedsUpgrade does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (a *Argon2) NeedsUpgrade(encodedHash string) (bool, error) {
	parsed, err := parsePHC(encodedHash)
	if err != nil {
		return false, err
	}

	weaker := a.config.Memory > parsed.memory ||
		a.config.Time > parsed.time ||
		a.config.Parallelism > parsed.parallelism ||
		a.config.KeyLength != parsed.keyLength()

	return weaker, nil
}

func (a *Argon2) derive(password, salt []byte, time, memory uint32, parallelism uint8, keyLength uint32) []byte {
	return argon2.IDKey(password, salt, time, memory, parallelism, keyLength)
}

// parsePHC decodes "$argon2id$v=19$m=...,t=...,p=...$salt$hash" and rejects
// anything below the parameter floors.
func parsePHC(encodedHash string) (*phcHash, error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[0] != "" {
		return nil, errors.New("invalid PHC format")
	}
	if parts[1] != algorithmID {
		return nil, errors.New("unsupported algorithm")
	}

	version, ok := strings.CutPrefix(parts[2], "v=")
	if !ok {
		return nil, errors.New("missing argon2 version")
	}
	v, err := strconv.Atoi(version)
	if err != nil {
		return nil, errors.New("invalid argon2 version")
	}
	if v != argon2.Version {
		return nil, errors.New("unsupported argon2 version")
	}

	parsed := &phcHash{}
	if err := parseParams(parsed, parts[3]); err != nil {
		return nil, err
	}

	parsed.salt, err = base64.StdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, errors.New("invalid salt encoding")
	}
	if len(parsed.salt) < int(minSaltLength) {
		return nil, errors.New("invalid salt length")
	}

	parsed.digest, err = base64.StdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, errors.New("invalid hash encoding")
	}
	if len(parsed.digest) == 0 {
		return nil, errors.New("invalid hash length")
	}

	return parsed, nil
}

func parseParams(into *phcHash, part string) error {
	pairs := strings.Split(part, ",")
	if len(pairs) != 3 {
		return errors.New("invalid parameter format")
	}

	var memorySet, timeSet, parallelismSet bool
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return errors.New("invalid parameter entry")
		}

		switch key {
		case "m":
			v, err := strconv.ParseUint(value, 10, 32)
			if err != nil || v < uint64(minMemoryKB) {
				return errors.New("invalid memory parameter")
			}
			into.memory = uint32(v)
			memorySet = true
		case "t":
			v, err := strconv.ParseUint(value, 10, 32)
			if err != nil || v < uint64(minTimeCost) {
				return errors.New("invalid time parameter")
			}
			into.time = uint32(v)
			timeSet = true
		case "p":
			v, err := strconv.ParseUint(value, 10, 8)
			if err != nil || v < uint64(minParallelism) {
				return errors.New("invalid parallelism parameter")
			}
			into.parallelism = uint8(v)
			parallelismSet = true
		default:
			return errors.New("unsupported parameter")
		}
	}

	if !memorySet || !timeSet || !parallelismSet {
		return errors.New("missing parameters")
	}

	return nil
}
