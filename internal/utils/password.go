package utils

import (
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt only looks at the first 72 bytes and x/crypto refuses longer input.
const maxPasswordBytes = 72

// HashPassword returns the bcrypt hash of the plain-text password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(truncatePassword(password)), bcrypt.DefaultCost)
	return string(hash), err
}

// CheckPassword compares a bcrypt hash with a plain-text password.
func CheckPassword(hash, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(truncatePassword(password)))
	return err == nil
}

// truncatePassword cuts s to at most 72 bytes without splitting a rune.
func truncatePassword(s string) string {
	if len(s) <= maxPasswordBytes {
		return s
	}
	cut := maxPasswordBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
