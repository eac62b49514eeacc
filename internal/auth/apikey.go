package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

const apiKeyBytes = 32

// NewAPIKey generates a random API key, 32 bytes hex-encoded to 64
// characters, together with the bcrypt hash to configure as api.key_hash.
func NewAPIKey() (key, hash string, err error) {
	b := make([]byte, apiKeyBytes)
	if _, err := rand.Read(b); err != nil {
		return "", "", fmt.Errorf("generate api key: %w", err)
	}

	key = hex.EncodeToString(b)
	hash, err = HashAPIKey(key)
	if err != nil {
		return "", "", err
	}
	return key, hash, nil
}
