// Package passhash provides the deterministic password digest used for
// credential equality checks. The digest is computed at the transport boundary
// so plaintext passwords never reach the services or the store.
package passhash

import (
	"crypto/sha256"
	"encoding/hex"
)

// Digest returns the hex-encoded SHA-256 digest of the plaintext. Equal inputs
// always produce equal digests, which the login path relies on.
func Digest(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}
