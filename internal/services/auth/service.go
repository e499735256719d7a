package auth

import (
	"errors"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"github.com/demesup/awale/internal/model"
)

// MaxHandleLength bounds the length of a player handle
const MaxHandleLength = 32

// Hasher turns a plaintext password into an opaque credential and checks a
// password against one
type Hasher interface {
	Hash(password string) (string, error)
	Compare(credential, password string) error
}

// Config holds configuration for the bcrypt hasher
type Config struct {
	// Cost is the bcrypt work factor
	Cost int
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		Cost: bcrypt.DefaultCost,
	}
}

// BcryptHasher implements Hasher with bcrypt
type BcryptHasher struct {
	cost int
}

// Ensure BcryptHasher implements Hasher
var _ Hasher = (*BcryptHasher)(nil)

// New creates a bcrypt hasher. Costs outside bcrypt's range fall back to
// the default.
func New(cfg Config) *BcryptHasher {
	cost := cfg.Cost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Compare returns model.ErrBadCredential on mismatch
func (h *BcryptHasher) Compare(credential, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(credential), []byte(password))
	if err == nil {
		return nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return model.ErrBadCredential
	}
	// Records written before hashing was introduced hold the plaintext
	if errors.Is(err, bcrypt.ErrHashTooShort) && credential == password {
		return nil
	}
	return model.ErrBadCredential
}

// ValidateCredentials checks the shape of a handle/password pair before any
// registry work is done
func ValidateCredentials(handle, password string) error {
	if handle == "" || password == "" {
		return model.ErrEmptyCredential
	}
	if len(handle) > MaxHandleLength {
		return model.ErrInvalidHandle
	}
	if strings.IndexFunc(handle, func(r rune) bool {
		return unicode.IsSpace(r) || !unicode.IsPrint(r)
	}) >= 0 {
		return model.ErrInvalidHandle
	}
	return nil
}
