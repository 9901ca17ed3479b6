package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"healthstack/internal/platform/middleware"
)

// TokenManager issues and validates the HS256 bearer tokens used by the
// application. It implements middleware.JWTValidator.
type TokenManager struct {
	signingKey []byte
	ttl        time.Duration
}

// NewTokenManager constructs a token manager.
func NewTokenManager(signingKey string, ttl time.Duration) *TokenManager {
	return &TokenManager{signingKey: []byte(signingKey), ttl: ttl}
}

// Issue signs a token carrying the user's id, email and role.
func (m *TokenManager) Issue(userID, email, role string, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"id":    userID,
		"email": email,
		"role":  role,
		"iat":   now.Unix(),
		"exp":   now.Add(m.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and verifies a bearer token, returning the identity
// claims the middleware injects into the request context.
func (m *TokenManager) ValidateToken(tokenString string) (*middleware.JWTClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.signingKey, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	if email == "" {
		return nil, fmt.Errorf("token missing email claim")
	}
	return &middleware.JWTClaims{Identity: email, Role: role}, nil
}
