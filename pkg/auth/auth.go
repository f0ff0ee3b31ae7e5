// Package auth provides bcrypt password hashing and JWT generation/parsing.
// Leaf package with no domain dependencies; used by internal/domain/auth and
// internal/api/middleware.
package auth

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// BCryptCost is the bcrypt work factor. 12 balances security and login latency.
const BCryptCost = 12

// DefaultTokenExpiry is used when PLUME_JWT_EXPIRY is unset or invalid.
const DefaultTokenExpiry = 24 * time.Hour

const (
	envJWTSecret = "PLUME_JWT_SECRET"
	envJWTExpiry = "PLUME_JWT_EXPIRY"
)

// jwtSecret reads the signing secret from the environment. Panics if unset so
// that auth cannot silently run with an empty secret.
func jwtSecret() []byte {
	secret := os.Getenv(envJWTSecret)
	if secret == "" {
		panic(envJWTSecret + " environment variable not set — cannot initialize auth")
	}
	return []byte(secret)
}

// tokenExpiry reads PLUME_JWT_EXPIRY (hours) from the environment.
// Invalid or missing values fall back to DefaultTokenExpiry.
func tokenExpiry() time.Duration {
	return parseExpiry(os.Getenv(envJWTExpiry))
}

// parseExpiry is the testable core of tokenExpiry.
func parseExpiry(raw string) time.Duration {
	hours, err := strconv.Atoi(raw)
	if err != nil || hours <= 0 {
		return DefaultTokenExpiry
	}
	return time.Duration(hours) * time.Hour
}

// HashPassword hashes a plaintext password with bcrypt.
// Plaintext is never stored anywhere.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BCryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches hash. Returns false (not an
// error) for malformed hashes so responses never leak hash format details.
func VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Claims are the JWT claims carried by every Plume token.
// UserID and WorkspaceID scope all document and suggestion operations.
type Claims struct {
	UserID      string `json:"user_id"`
	WorkspaceID string `json:"workspace_id"`
	jwt.RegisteredClaims
}

// GenerateJWT creates a signed HS256 token with user and workspace claims.
// Panics if the signing secret is not configured (fail-fast at first use).
func GenerateJWT(userID, workspaceID string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:      userID,
		WorkspaceID: workspaceID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenExpiry())),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(jwtSecret())
	if err != nil {
		return "", fmt.Errorf("failed to sign JWT: %w", err)
	}
	return signed, nil
}

// ParseJWT validates a token and extracts its claims.
// Returns an error for invalid, expired, or malformed tokens.
func ParseJWT(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("token is empty")
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Only HMAC is acceptable — rejects algorithm substitution.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jwtSecret(), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse JWT: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid JWT claims or signature")
	}
	return claims, nil
}
