// Package otp generates one-time codes and their keyed digests.
package otp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
)

const fallbackAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateCode returns a 6-digit numeric code.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// GenerateFallbackToken returns a longer 8-character token, used when code
// generation keeps colliding with active digests.
func GenerateFallbackToken() (string, error) {
	token := make([]byte, 8)
	max := big.NewInt(int64(len(fallbackAlphabet)))
	for i := range token {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate token: %w", err)
		}
		token[i] = fallbackAlphabet[n.Int64()]
	}
	return string(token), nil
}

// Digest returns the hex HMAC-SHA256 of the code under the process-wide
// secret. Deterministic, and infeasible to invert or forge without the key.
func Digest(code, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(code))
	return hex.EncodeToString(mac.Sum(nil))
}

// Equal compares two digests in constant time.
func Equal(a, b string) bool {
	return hmac.Equal([]byte(a), []byte(b))
}
