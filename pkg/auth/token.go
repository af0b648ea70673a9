package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

const (
	// TokenPrefix identifies pkgindex tokens
	TokenPrefix = "pkgindex_"
	// TokenLength is the total length of random bytes (32 bytes = 256 bits)
	TokenLength = 32
)

// TokenGenerator generates API access tokens
type TokenGenerator struct{}

// NewTokenGenerator creates a new token generator
func NewTokenGenerator() *TokenGenerator {
	return &TokenGenerator{}
}

// GenerateToken creates a new API access token.
// Format: pkgindex_<base64url(32 random bytes)>
func (tg *TokenGenerator) GenerateToken() (string, error) {
	randomBytes := make([]byte, TokenLength)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	return TokenPrefix + base64.RawURLEncoding.EncodeToString(randomBytes), nil
}
