package common

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateRandByteArray returns size cryptographically random bytes.
func GenerateRandByteArray(size int) []byte {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}

// MakeRandHexString returns a random hex string of 2*size characters.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
