// Package random generates reset-token secrets and their digests.
// Raw secrets are handed to the caller for delivery; only the SHA-256
// digest is ever persisted.
package random

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
)

const resetSecretSize = 32

// NewResetToken returns a fresh opaque token and its digest. The
// token is 32 random bytes, base64url without padding.
func NewResetToken() (token string, digest [32]byte, err error) {
	var secret [resetSecretSize]byte
	if _, err = rand.Read(secret[:]); err != nil {
		return "", digest, err
	}
	return base64.RawURLEncoding.EncodeToString(secret[:]), sha256.Sum256(secret[:]), nil
}

// DigestToken recomputes the digest of a presented token.
func DigestToken(token string) ([32]byte, error) {
	var digest [32]byte

	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return digest, err
	}
	if len(raw) != resetSecretSize {
		return digest, errors.New("invalid token size")
	}
	return sha256.Sum256(raw), nil
}

// DigestsEqual compares two digests in constant time.
func DigestsEqual(a, b [32]byte) bool {
	return subtle.ConstantTimeCompare(a[:], b[:]) == 1
}
