// Package security provides JWT token utilities
package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// AdminTokenType tags tokens issued to signed-in editors.
const AdminTokenType = "admin_auth"

// ErrInvalidToken is returned for tokens that fail signature, expiry or type checks.
var ErrInvalidToken = errors.New("invalid token")

// AdminClaims is the decoded content of an admin token.
type AdminClaims struct {
	UserID    string
	Email     string
	ExpiresAt time.Time
}

// ValidateJWT validates a JWT token and returns the claims
func ValidateJWT(tokenString, jwtSecret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(jwtSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrInvalidToken
}

// GenerateAdminToken creates a signed token for an editor session.
func GenerateAdminToken(userID, email, jwtSecret string, ttl time.Duration) (string, time.Time, error) {
	if jwtSecret == "" {
		return "", time.Time{}, errors.New("jwt secret cannot be empty")
	}
	now := time.Now().UTC()
	expires := now.Add(ttl)

	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"role":  "admin",
		"type":  AdminTokenType,
		"iat":   now.Unix(),
		"exp":   expires.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(jwtSecret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign admin token: %w", err)
	}
	return signed, expires, nil
}

// ParseAdminToken validates tokenString and checks that it is an admin token.
func ParseAdminToken(tokenString, jwtSecret string) (*AdminClaims, error) {
	claims, err := ValidateJWT(tokenString, jwtSecret)
	if err != nil {
		return nil, err
	}
	if t, _ := claims["type"].(string); t != AdminTokenType {
		return nil, ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, ErrInvalidToken
	}
	email, _ := claims["email"].(string)

	var expires time.Time
	if exp, ok := claims["exp"].(float64); ok {
		expires = time.Unix(int64(exp), 0).UTC()
	}
	return &AdminClaims{UserID: sub, Email: email, ExpiresAt: expires}, nil
}
