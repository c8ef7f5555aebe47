package auth

import (
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/nayan947211-pixel/study-buddy/internal/models"
)

// DefaultTokenTTL is the lifetime of issued access tokens
const DefaultTokenTTL = 7 * 24 * time.Hour

// TokenService issues and verifies HMAC-signed JWT tokens
type TokenService struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewTokenService creates a token service. secret must be non-empty.
func NewTokenService(secret, issuer string) (*TokenService, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	return &TokenService{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    DefaultTokenTTL,
	}, nil
}

// Issue creates a signed token for a user
func (s *TokenService) Issue(user *models.User) (string, error) {
	now := time.Now()
	token, err := jwt.NewBuilder().
		Subject(user.ID.String()).
		Issuer(s.issuer).
		IssuedAt(now).
		Expiration(now.Add(s.ttl)).
		Claim("email", user.Email).
		Claim("name", user.Name).
		Build()
	if err != nil {
		return "", fmt.Errorf("failed to build token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256, s.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return string(signed), nil
}

// Verify parses and validates a signed token and extracts claims
func (s *TokenService) Verify(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.Parse([]byte(tokenString),
		jwt.WithKey(jwa.HS256, s.secret),
		jwt.WithValidate(true),
		jwt.WithIssuer(s.issuer),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse/verify token: %w", err)
	}

	claims := &models.JWTClaims{
		Sub: token.Subject(),
		Iss: token.Issuer(),
		Exp: token.Expiration().Unix(),
		Iat: token.IssuedAt().Unix(),
	}

	if email, ok := token.Get("email"); ok {
		if emailStr, ok := email.(string); ok {
			claims.Email = emailStr
		}
	}

	if name, ok := token.Get("name"); ok {
		if nameStr, ok := name.(string); ok {
			claims.Name = nameStr
		}
	}

	return claims, nil
}
