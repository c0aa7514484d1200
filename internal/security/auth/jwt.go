package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aryan0dhankhar/rentdesk/internal/domain"
)

// ErrExpired reports a token whose exp claim is in the past
var ErrExpired = errors.New("token expired")

// Claims is what the marketplace backend puts in its access tokens
type Claims struct {
	UserID string      `json:"id"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// ParseClaims decodes token without verifying its signature. The client
// never holds the signing secret; it only needs the expiry and role to
// decide whether a stored session is still usable.
func ParseClaims(token string) (*Claims, error) {
	if token == "" {
		return nil, fmt.Errorf("empty token")
	}
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("parse token failed: %w", err)
	}
	return claims, nil
}

// CheckExpiry returns ErrExpired when the token's exp is before now.
// Tokens without exp are accepted.
func CheckExpiry(token string, now time.Time) (*Claims, error) {
	claims, err := ParseClaims(token)
	if err != nil {
		return nil, err
	}
	if claims.ExpiresAt != nil && !claims.ExpiresAt.After(now) {
		return claims, ErrExpired
	}
	return claims, nil
}

// ExtractToken returns the credential of a "Bearer <token>" header
func ExtractToken(authHeader string) (string, error) {
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", fmt.Errorf("invalid authorization header")
	}
	return parts[1], nil
}
