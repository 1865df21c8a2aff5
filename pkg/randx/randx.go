// Package randx generates the opaque key material used by the account
// lifecycle: activation keys, reset keys, and temporary passwords. All output
// comes from crypto/rand; collision probability at these lengths is treated as
// negligible, so callers never re-check uniqueness.
package randx

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// KeyLength is the length of activation and reset keys.
	KeyLength = 20

	// Temporary passwords are transient: hashed immediately and never stored
	// or returned in plaintext.
	passwordMinLength = 5
	passwordMaxLength = 10
)

// ActivationKey returns a fresh key proving control of a pending
// self-registered account.
func ActivationKey() (string, error) {
	return randomString(KeyLength)
}

// ResetKey returns a fresh key authorizing a time-boxed password reset.
// Structurally identical to an activation key; kept separate so call sites
// read as what they mint.
func ResetKey() (string, error) {
	return randomString(KeyLength)
}

// Password returns a server-generated temporary password of random length
// between 5 and 10 characters.
func Password() (string, error) {
	span := big.NewInt(passwordMaxLength - passwordMinLength + 1)
	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		return "", fmt.Errorf("randx: failed to pick password length: %w", err)
	}
	return randomString(passwordMinLength + int(n.Int64()))
}

func randomString(length int) (string, error) {
	out := make([]byte, length)
	max := big.NewInt(int64(len(charset)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("randx: failed to generate random string: %w", err)
		}
		out[i] = charset[n.Int64()]
	}
	return string(out), nil
}
