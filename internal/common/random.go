// Package common also provides helpers for generating random secrets used
// by the auth flow: opaque refresh tokens and one-time recovery keys.
package common

import (
	"crypto/rand"
	"encoding/hex"
)

// MakeRandHexString generates a random hexadecimal string from size random
// bytes. The resulting string is twice as long as size, since each byte
// expands to two hex characters.
//
// It returns an error if the random number generator fails.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// MakeRecoveryKey generates the 8-character recovery secret handed to the
// user exactly once at registration and rotated after every successful
// password reset.
func MakeRecoveryKey() (string, error) {
	s, err := MakeRandHexString(4)
	if err != nil {
		return "", err
	}
	return s, nil
}
