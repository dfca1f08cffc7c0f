// Package auth provides password hashing for user accounts.
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt work factor (2^10 rounds).
const PasswordCost = 10

// MaxPasswordBytes is the bcrypt input limit. Longer passwords are
// truncated, so only their first 72 bytes are significant.
const MaxPasswordBytes = 72

// ErrPasswordMismatch indicates the password does not match the stored hash.
var ErrPasswordMismatch = errors.New("password does not match")

// dummyHash is compared against when no account exists, so a lookup miss
// costs the same as a wrong password.
var dummyHash = mustHash("avatarly-timing-equaliser")

// HashPassword returns a salted bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(passwordBytes(password), PasswordCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword compares password against a bcrypt hash.
// Returns ErrPasswordMismatch on mismatch and a wrapped error when the
// stored hash is malformed.
func VerifyPassword(password, hash string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), passwordBytes(password))
	if err == nil {
		return nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrPasswordMismatch
	}
	return fmt.Errorf("verify password: %w", err)
}

// BurnVerify performs a throwaway comparison. Call it on lookup misses.
func BurnVerify(password string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, passwordBytes(password))
}

func passwordBytes(password string) []byte {
	b := []byte(password)
	if len(b) > MaxPasswordBytes {
		b = b[:MaxPasswordBytes]
	}
	return b
}

func mustHash(s string) []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte(s), PasswordCost)
	if err != nil {
		panic(err)
	}
	return hash
}
