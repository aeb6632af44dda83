// Package cryptox implements password credential hashing and verification.
package cryptox

import (
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/thriveos/thriveremote/internal/common"
	"golang.org/x/crypto/argon2"
)

// Argon2id parameters. Changing them invalidates stored credentials, so new
// parameter sets would need a format version prefix.
const (
	saltSize    = 16
	timeCost    = 1
	memoryCost  = 64 * 1024
	parallelism = 4
	keyLength   = 32
)

// HashPassword derives an argon2id hash from the password with a fresh random
// salt. The result is an opaque "salt:hash" hex pair suitable for storage.
func HashPassword(password string) string {
	salt := common.GenerateRandByteArray(saltSize)
	hash := argon2.IDKey([]byte(password), salt, timeCost, memoryCost, parallelism, keyLength)
	return hex.EncodeToString(salt) + ":" + hex.EncodeToString(hash)
}

// VerifyPassword re-derives the hash from the candidate password and the
// stored salt and compares in constant time. Malformed stored credentials
// yield an error rather than a silent mismatch.
func VerifyPassword(password, stored string) (bool, error) {
	parts := strings.SplitN(stored, ":", 2)
	if len(parts) != 2 {
		return false, fmt.Errorf("malformed password credential")
	}

	salt, err := hex.DecodeString(parts[0])
	if err != nil {
		return false, fmt.Errorf("malformed credential salt: %w", err)
	}
	want, err := hex.DecodeString(parts[1])
	if err != nil {
		return false, fmt.Errorf("malformed credential hash: %w", err)
	}

	got := argon2.IDKey([]byte(password), salt, timeCost, memoryCost, parallelism, keyLength)
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}
