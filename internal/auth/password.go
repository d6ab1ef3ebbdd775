// Package auth provides the credential and session primitives: bcrypt
// password hashing, signed session tokens, and the request middleware that
// resolves the current user.
//
// WHY BCRYPT?
// bcrypt is a password hashing function designed to be slow — that slowness
// is the security feature, it makes brute-force attacks expensive. It also
// generates a random salt per hash and embeds it in the output, so two users
// with the same password get different stored hashes and no separate salt
// column is needed. Never store passwords plain or with fast hashes
// (MD5/SHA-256): those fall to GPU rigs in minutes.
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/miniblog/internal/apperror"
)

// DefaultCost is the bcrypt work factor used in production. Cost 12 takes
// roughly 250ms on current server hardware — negligible for a login, brutal
// for an attacker. Tune so hashing stays in the 200–300ms range.
const DefaultCost = 12

// MinCostForTest is bcrypt's minimum allowed cost. Tests inject it so each
// hash takes milliseconds instead of ~250ms. Never use it in production.
const MinCostForTest = bcrypt.MinCost

// PasswordService provides bcrypt hashing and verification.
//
// It's a struct rather than free functions so the cost can be injected:
// config chooses the production cost, tests pass MinCostForTest.
type PasswordService struct {
	cost int
}

// NewPasswordService creates a PasswordService with the given cost.
// Pass DefaultCost unless you have measured a reason not to.
func NewPasswordService(cost int) *PasswordService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &PasswordService{cost: cost}
}

// Hash hashes a plaintext password. The returned string is self-contained
// (version, cost, salt, digest) and goes straight into users.password_hash.
//
// bcrypt silently truncates input beyond 72 bytes; we reject instead so a
// user's "secure" 100-char passphrase isn't quietly weakened.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > 72 {
		return "", apperror.ValidationFailed("password", "password must be 72 bytes or fewer")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}

	return string(hashed), nil
}

// Verify checks a plaintext password against a stored bcrypt hash. Returns
// nil on match.
//
// bcrypt.CompareHashAndPassword is constant-time internally, so response
// timing doesn't leak how much of the password was right.
func (p *PasswordService) Verify(hash, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return fmt.Errorf("auth: password mismatch")
		}
		return fmt.Errorf("auth: comparing password hash: %w", err)
	}
	return nil
}
