package clients

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// AccessTokenType is the "typ" claim carried by tokens minted for the suite.
const AccessTokenType = "access"

// NewBearerToken signs an HS256 access token for subject, valid for ttl.
func NewBearerToken(secret, subject string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("JWT secret not configured")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": subject,
		"typ": AccessTokenType,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}
