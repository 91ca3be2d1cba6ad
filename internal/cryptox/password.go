// Package cryptox implements password hashing for user accounts using
// argon2id. The derived digest and its salt are stored server-side; the
// plaintext password never is.
package cryptox

import (
	"crypto/subtle"

	"github.com/dmitrijs2005/rfile/internal/common"
	"golang.org/x/crypto/argon2"
)

const saltSize = 16

// HashPassword derives an argon2id digest from password with a fresh random
// salt. Returns the digest and the salt used.
func HashPassword(password []byte) (digest, salt []byte, err error) {
	salt = common.GenerateRandByteArray(saltSize)
	return deriveDigest(password, salt), salt, nil
}

// VerifyPassword reports whether candidate derives the stored digest under
// the stored salt. Comparison is constant-time.
func VerifyPassword(digest, salt, candidate []byte) bool {
	derived := deriveDigest(candidate, salt)
	return subtle.ConstantTimeCompare(digest, derived) == 1
}

func deriveDigest(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
}
