// Package auth — password hashing and cookie-session management.
//
// Passwords are hashed with bcrypt: an adaptive, salted, deliberately slow
// hash. bcrypt generates a random salt per hash and embeds it in the output,
// so equal passwords produce different hashes and no separate salt column is
// needed. Plaintext passwords are never stored and never logged.
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// defaultCost is the bcrypt work factor. Cost 10 (bcrypt's own default)
// keeps login latency in the tens of milliseconds while staying expensive
// for offline brute force.
const defaultCost = bcrypt.DefaultCost

// PasswordService provides bcrypt hashing and verification.
// It is a struct rather than free functions so the cost can be lowered in
// tests — cost 4 turns a ~100ms operation into microseconds.
type PasswordService struct {
	cost int
}

// NewPasswordService creates a PasswordService with the default cost.
func NewPasswordService() *PasswordService {
	return &PasswordService{cost: defaultCost}
}

// NewPasswordServiceWithCost creates a PasswordService with a custom cost.
// Intended for tests; do not lower the cost in production.
func NewPasswordServiceWithCost(cost int) *PasswordService {
	return &PasswordService{cost: cost}
}

// Hash hashes the given plaintext password with bcrypt. The returned string
// is self-contained (version, cost, salt, digest) and is what gets stored.
//
// bcrypt silently truncates inputs longer than 72 bytes; we reject those
// explicitly so callers aren't surprised.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > 72 {
		return "", fmt.Errorf("auth: password must be 72 bytes or fewer")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}

	return string(hashed), nil
}

// Verify checks a plaintext password against a stored bcrypt hash.
// Returns nil on match. The comparison is constant-time inside bcrypt.
func (p *PasswordService) Verify(hash, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return fmt.Errorf("auth: invalid password")
		}
		return fmt.Errorf("auth: comparing password hash: %w", err)
	}
	return nil
}
