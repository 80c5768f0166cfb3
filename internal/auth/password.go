// Package auth implements the post password check: an unsalted SHA-256
// hex digest stored next to the post and recomputed on every mutation.
//
// The comparison is plain string equality, not constant time, and there
// is no per-post salt. Both match the documented behavior of the board;
// harden deliberately, not here.
package auth

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash returns the lowercase hex SHA-256 digest of plaintext. The same
// input always yields the same digest.
func Hash(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}

// Verify recomputes the digest of plaintext and compares it to the
// stored digest.
func Verify(storedDigest, plaintext string) bool {
	return Hash(plaintext) == storedDigest
}
