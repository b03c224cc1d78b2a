package utils

import (
	"crypto/rand"   // Secure random bytes
	"crypto/sha256" // Hashing reset tokens at rest
	"encoding/hex"  // Hex encoding
)

// ResetTokenBytes is the amount of randomness in a password reset token
const ResetTokenBytes = 20

// NewResetToken returns a hex-encoded random token and the hash stored in the database
func NewResetToken() (raw, hash string, err error) {
	buf := make([]byte, ResetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}
	raw = hex.EncodeToString(buf)
	return raw, HashToken(raw), nil
}

// HashToken returns the SHA-256 hex digest of a raw token
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
