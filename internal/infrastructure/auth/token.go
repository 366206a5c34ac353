package auth

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers missing, malformed, expired, and badly signed tokens.
// The session gateway closes the connection when it sees this error.
var ErrInvalidToken = errors.New("auth: invalid session token")

// Verifier checks session tokens presented during the websocket handshake.
// Tokens are HS256-signed with the user id in the standard subject claim.
type Verifier struct {
	secret []byte
}

// NewVerifier constructs a Verifier with the given signing secret.
func NewVerifier(secret []byte) *Verifier {
	return &Verifier{secret: secret}
}

// NewVerifierFromEnv reads the secret from JWT_SECRET.
func NewVerifierFromEnv() (*Verifier, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, errors.New("auth: JWT_SECRET environment variable is not set")
	}
	return NewVerifier([]byte(secret)), nil
}

// Verify validates the token signature and expiry and returns the user id.
func (v *Verifier) Verify(token string) (string, error) {
	if token == "" {
		return "", ErrInvalidToken
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return v.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}

	sub, err := parsed.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", ErrInvalidToken
	}
	return sub, nil
}

// Sign issues a token for the given user id. Used by tests and by the auth
// collaborator in development setups; production tokens come from the identity
// service.
func (v *Verifier) Sign(userID string, ttl time.Duration) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
