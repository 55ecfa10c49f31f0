package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenIssuer = "scouts-cluses"
	staffRole   = "staff"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims carries the session id in the standard jti claim.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// SessionID returns the id of the server-side session backing the token.
func (c *Claims) SessionID() string {
	return c.ID
}

// TokenIssuer signs and parses HS256 session tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) (*TokenIssuer, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("session ttl must be positive, got %s", ttl)
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

func (i *TokenIssuer) TTL() time.Duration {
	return i.ttl
}

// Issue creates a token for a new session and returns it with the session id.
func (i *TokenIssuer) Issue() (token, sessionID string, err error) {
	now := i.now()
	sessionID = uuid.NewString()

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: staffRole,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   staffRole,
			ID:        sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	})

	token, err = t.SignedString(i.secret)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, sessionID, nil
}

// Parse validates the signature, algorithm, issuer and expiry of a token.
func (i *TokenIssuer) Parse(token string) (*Claims, error) {
	claims := new(Claims)
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.ID == "" || claims.Role != staffRole {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
