// Package cryptox holds the one-way secret hashing used by the account
// directory. Secrets are never stored; only a per-account salt and an
// argon2id digest are persisted.
package cryptox

import (
	"crypto/subtle"

	"github.com/dmitrijs2005/gophdesk/internal/common"
	"golang.org/x/crypto/argon2"
)

// SaltSize is the length of salts produced by NewSalt.
const SaltSize = 16

// Hasher derives argon2id digests. The zero value is not usable; use
// DefaultHasher or set every field.
type Hasher struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
	KeyLen  uint32
}

// DefaultHasher returns the parameters used by the binary.
func DefaultHasher() Hasher {
	return Hasher{Time: 1, Memory: 64 * 1024, Threads: 4, KeyLen: 32}
}

// NewSalt returns SaltSize random bytes.
func NewSalt() []byte {
	return common.GenerateRandByteArray(SaltSize)
}

// Hash derives the digest of secret with salt.
func (h Hasher) Hash(secret, salt []byte) []byte {
	return argon2.IDKey(secret, salt, h.Time, h.Memory, h.Threads, h.KeyLen)
}

// Verify reports whether secret hashes to digest under salt. The digest
// comparison runs in constant time.
func (h Hasher) Verify(secret, salt, digest []byte) bool {
	candidate := h.Hash(secret, salt)
	defer common.WipeByteArray(candidate)
	return subtle.ConstantTimeCompare(candidate, digest) == 1
}
