package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SESSION TOKENS:
// The session is a signed JWT carried in an HttpOnly cookie — there is no
// server-side session table. Everything needed to identify the caller (the
// user ID in the "sub" claim, plus expiry) lives inside the token, and the
// HMAC signature guarantees nobody can mint or alter one without the secret.
// Logging out is therefore purely client-side state: the handler expires the
// cookie and the token is simply never presented again.
//
// The tradeoff of stateless sessions is that a token can't be revoked early;
// the 24h expiry bounds that window, and the middleware re-fetches the user
// row on every request so a deleted account goes anonymous immediately even
// with a live token.

// SessionDuration is how long an issued session token stays valid.
const SessionDuration = 24 * time.Hour

const issuer = "miniblog"

// TokenService signs and verifies session tokens. The same HMAC secret is
// used for both; at least 32 random bytes in production
// (JWT_SECRET=$(openssl rand -hex 32)).
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: session secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// claims embeds jwt.RegisteredClaims; the user ID rides in Subject ("sub"),
// the standard claim for who the token belongs to.
type claims struct {
	jwt.RegisteredClaims
}

// Generate creates and signs a session token bound to userID.
//
// HS256: symmetric HMAC-SHA256 — one key signs and verifies, which fits a
// single-server deployment. No database work happens here or in Validate;
// the signature alone proves authenticity.
func (s *TokenService) Generate(userID string) (string, error) {
	return s.generate(userID, SessionDuration)
}

// GenerateWithDuration issues a token with a custom lifetime. Used by tests
// to produce already-expired tokens.
func (s *TokenService) GenerateWithDuration(userID string, d time.Duration) (string, error) {
	return s.generate(userID, d)
}

func (s *TokenService) generate(userID string, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing session token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a session token, returning the user ID it is
// bound to. The library checks signature, expiry, and issuer; pinning the
// method to HS256 via WithValidMethods closes the classic algorithm
// confusion hole where an attacker submits an unsigned "none" token.
func (s *TokenService) Validate(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("auth: session expired")
		}
		return "", fmt.Errorf("auth: invalid session token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("auth: invalid session claims")
	}

	if c.Subject == "" {
		return "", fmt.Errorf("auth: session token has no subject")
	}

	return c.Subject, nil
}
