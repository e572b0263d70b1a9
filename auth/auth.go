package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims are the custom claims embedded next to the registered ones.
type Claims struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Validate is called by the auth0 validator after signature and expiry checks.
func (c *Claims) Validate(ctx context.Context) error {
	if _, err := uuid.Parse(c.ID); err != nil {
		return errors.New("token carries no valid user id")
	}
	return nil
}

type tokenClaims struct {
	Claims
	jwt.RegisteredClaims
}

// Identity is the caller as decoded from a verified bearer token.
type Identity struct {
	ID    uuid.UUID
	Email string
	Role  string
}

// TokenIssuer signs and verifies HS256 bearer tokens with one process-wide secret.
type TokenIssuer struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

func NewTokenIssuer(secret, issuer, audience string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
		ttl:      ttl,
		now:      time.Now,
	}
}

// CreateToken issues a token carrying the user's id, email and role.
func (t *TokenIssuer) CreateToken(id uuid.UUID, email, role string) (string, error) {
	now := t.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		Claims: Claims{
			ID:    id.String(),
			Email: email,
			Role:  role,
		},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.String(),
			Issuer:    t.issuer,
			Audience:  jwt.ClaimStrings{t.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	})

	tokenString, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return tokenString, nil
}

// Validator builds the auth0 validator that checks tokens produced by CreateToken.
func (t *TokenIssuer) Validator() (*validator.Validator, error) {
	keyFunc := func(ctx context.Context) (interface{}, error) {
		return t.secret, nil
	}
	return validator.New(
		keyFunc,
		validator.HS256,
		t.issuer,
		[]string{t.audience},
		validator.WithCustomClaims(func() validator.CustomClaims {
			return &Claims{}
		}),
	)
}

// IdentityFromClaims turns validated claims into an Identity.
func IdentityFromClaims(claims *validator.ValidatedClaims) (Identity, bool) {
	if claims == nil {
		return Identity{}, false
	}
	custom, ok := claims.CustomClaims.(*Claims)
	if !ok || custom == nil {
		return Identity{}, false
	}
	id, err := uuid.Parse(claims.RegisteredClaims.Subject)
	if err != nil {
		return Identity{}, false
	}
	return Identity{ID: id, Email: custom.Email, Role: custom.Role}, true
}
