// Package security holds id, token and password primitives for the admin API.
package security

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"github.com/oklog/ulid/v2"
)

// GenerateULID returns a new record id. ULIDs sort by creation time, which
// keeps product ids roughly aligned with created_at ordering.
func GenerateULID() string {
	return ulid.Make().String()
}

// GenerateSecureToken returns n random bytes encoded for use in a URL,
// such as a sign-up confirmation link.
func GenerateSecureToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// GenerateSecureKey returns a random hex key of hexLen characters, used as
// the signing secret when none is configured.
func GenerateSecureKey(hexLen int) (string, error) {
	if hexLen <= 0 || hexLen%2 != 0 {
		return "", fmt.Errorf("generate key: length %d must be positive and even", hexLen)
	}
	buf := make([]byte, hexLen/2)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate key: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
