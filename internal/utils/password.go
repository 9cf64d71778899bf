package utils

import (
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// Password length bounds accepted at sign-up and on reset.
const (
	MinPasswordLen = 6
	MaxPasswordLen = 68
)

// HashPassword returns the bcrypt hash of plain.  bcrypt itself replaces a
// cost below bcrypt.MinCost with bcrypt.DefaultCost.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword reports whether plain matches the bcrypt hash.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// PasswordLengthOK reports whether plain has between MinPasswordLen and
// MaxPasswordLen characters and fits bcrypt's 72 byte input limit.
func PasswordLengthOK(plain string) bool {
	n := utf8.RuneCountInString(plain)
	return n >= MinPasswordLen && n <= MaxPasswordLen && len(plain) <= 72
}
