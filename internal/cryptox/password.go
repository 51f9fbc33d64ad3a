// Package cryptox holds the password hashing used by the user store.
//
// Hashes are argon2id with a random per-password salt and are encoded as
//
//	argon2id$<salt-hex>$<key-hex>
//
// An empty encoded hash (accounts created through social login) never
// verifies.
package cryptox

import (
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/dmitrijs2005/todoauth/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	hashScheme = "argon2id"

	saltSize    = 16
	keySize     = 32
	argonTime   = 2
	argonMemory = 19 * 1024
	argonLanes  = 1
)

// ErrMalformedHash is returned by ParseHash for strings not produced by
// HashPassword.
var ErrMalformedHash = errors.New("malformed password hash")

// DeriveKey stretches password with salt using argon2id.
func DeriveKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, argonTime, argonMemory, argonLanes, keySize)
}

// HashPassword returns the encoded argon2id hash of password with a fresh
// random salt.
func HashPassword(password []byte) string {
	salt := common.GenerateRandByteArray(saltSize)
	key := DeriveKey(password, salt)
	return hashScheme + "$" + hex.EncodeToString(salt) + "$" + hex.EncodeToString(key)
}

// ParseHash splits an encoded hash into salt and key.
func ParseHash(encoded string) (salt []byte, key []byte, err error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 3 || parts[0] != hashScheme {
		return nil, nil, ErrMalformedHash
	}
	salt, err = hex.DecodeString(parts[1])
	if err != nil {
		return nil, nil, ErrMalformedHash
	}
	key, err = hex.DecodeString(parts[2])
	if err != nil || len(key) != keySize {
		return nil, nil, ErrMalformedHash
	}
	return salt, key, nil
}

// VerifyPassword reports whether password matches the encoded hash. The key
// comparison runs in constant time.
func VerifyPassword(password []byte, encoded string) bool {
	if encoded == "" {
		return false
	}
	salt, key, err := ParseHash(encoded)
	if err != nil {
		return false
	}
	candidate := DeriveKey(password, salt)
	defer common.WipeByteArray(candidate)
	return subtle.ConstantTimeCompare(key, candidate) == 1
}
