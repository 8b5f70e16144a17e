// Package password implements hashing and verification of user passwords.
//
// Hash produces a salted bcrypt hash for storage.
// Compare checks a stored bcrypt hash against a candidate password.
package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// hashCost is the bcrypt work factor used for new hashes.
const hashCost = 10

// Hash takes a plain-text password and returns its bcrypt hash.
func Hash(password string) (string, error) {
	const op = "password.Hash"
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(hashed), nil
}

// Compare checks a stored bcrypt hash against the supplied password.
//
// Returns nil when the password matches the hash, an error otherwise.
// The underlying comparison is constant-time.
func Compare(storedHash, candidate string) error {
	const op = "password.Compare"
	if err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(candidate)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
