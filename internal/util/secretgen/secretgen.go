// Package secretgen generates random shared secrets.
//
// Generated values are hex-encoded so they survive env files, YAML, JSON,
// and HTTP headers without escaping.
package secretgen

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// DefaultLength is the byte length of generated secrets (64 hex characters).
const DefaultLength = 32

// Token generates a random hex token of n bytes.
func Token(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("token length must be positive, got %d", n)
	}

	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	return hex.EncodeToString(buf), nil
}

// DefaultToken generates a random hex token of DefaultLength bytes.
func DefaultToken() (string, error) {
	return Token(DefaultLength)
}
