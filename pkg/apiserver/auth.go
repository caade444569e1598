package apiserver

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Common errors for bearer token operations.
var (
	ErrInvalidToken        = errors.New("invalid token")
	ErrExpiredToken        = errors.New("token has expired")
	ErrInvalidSecretLength = errors.New("signing secret must be at least 32 bytes")
)

// TokenConfig holds configuration for the service's own bearer token.
type TokenConfig struct {
	// Secret is the HMAC signing key. Must be at least 32 bytes.
	Secret string

	// Issuer is the token issuer claim. Default: "veilfsctl".
	Issuer string

	// Duration is the token's lifetime. Default: 24 hours.
	Duration time.Duration
}

// TokenService signs and validates the single bearer token `serve` prints
// at startup. There is no user directory behind it: the process trusts
// anyone holding a token it minted itself, which is why the token's
// lifetime is tied to the serve invocation rather than a login flow.
type TokenService struct {
	config TokenConfig
}

// claims is the JWT payload for the service token. No role/group/identity
// fields: a valid, unexpired signature is the entire authorization model.
type claims struct {
	jwt.RegisteredClaims
}

// NewTokenService creates a token service with the given configuration.
func NewTokenService(config TokenConfig) (*TokenService, error) {
	if len(config.Secret) < 32 {
		return nil, ErrInvalidSecretLength
	}
	if config.Issuer == "" {
		config.Issuer = "veilfsctl"
	}
	if config.Duration == 0 {
		config.Duration = 24 * time.Hour
	}
	return &TokenService{config: config}, nil
}

// IssueToken mints a fresh bearer token valid for config.Duration.
func (s *TokenService) IssueToken() (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.config.Duration)

	c := &claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   "serve",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Validate checks a bearer token's signature and expiry.
func (s *TokenService) Validate(tokenString string) error {
	token, err := jwt.ParseWithClaims(tokenString, &claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrExpiredToken
		}
		return ErrInvalidToken
	}
	if !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
