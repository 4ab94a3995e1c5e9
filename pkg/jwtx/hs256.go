package jwtx

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed    = errors.New("jwtx: malformed token")
	ErrInvalidSig   = errors.New("jwtx: invalid signature")
	ErrEmptySecret  = errors.New("jwtx: empty secret")
	ErrInvalidClaim = errors.New("jwtx: invalid claims")
)

// HS256 signs and verifies tokens with a shared HMAC-SHA256 secret. It is
// used for first-party state such as session cookies where no third party
// ever needs to verify the token.
type HS256 struct {
	secret []byte
}

// NewHS256 creates an HS256 codec for the given secret.
func NewHS256(secret string) (*HS256, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &HS256{secret: []byte(secret)}, nil
}

func (h *HS256) Alg() string { return jwt.SigningMethodHS256.Alg() }

// Sign serialises and signs claims.
func (h *HS256) Sign(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(h.secret)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign: %w", err)
	}
	return signed, nil
}

// Verify checks the signature of raw and decodes it into claims. Registered
// time claims (exp, nbf) are validated when present.
func (h *HS256) Verify(raw string, claims jwt.Claims) error {
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return h.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	switch {
	case err == nil:
		return nil
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrInvalidSig
	default:
		return fmt.Errorf("%w: %v", ErrInvalidClaim, err)
	}
}
