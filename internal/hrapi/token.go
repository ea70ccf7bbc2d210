package hrapi

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims mirrors what the HR API puts into its access tokens.
type Claims struct {
	jwt.RegisteredClaims

	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// ReadClaims decodes the token payload without verifying the signature.
// The HR API verifies every request; the client only needs the expiry and user id.
func ReadClaims(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("read token claims: %w", err)
	}

	return claims, nil
}

// Expiry returns the token expiry, or the zero time when the claim is absent.
func (c *Claims) Expiry() time.Time {
	if c == nil || c.RegisteredClaims.ExpiresAt == nil {
		return time.Time{}
	}

	return c.RegisteredClaims.ExpiresAt.Time
}
