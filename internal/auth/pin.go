package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

const pinHashCost = bcrypt.DefaultCost

// HashPIN returns a bcrypt hash of a reservation PIN. Reservations only
// ever carry hashes, never the PIN itself.
func HashPIN(pin string) (string, error) {
	if pin == "" {
		return "", errors.New("auth: pin is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), pinHashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPIN reports whether the PIN matches any of the given hashes.
func CheckPIN(pin string, hashes []string) bool {
	if pin == "" {
		return false
	}
	for _, hash := range hashes {
		if bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)) == nil {
			return true
		}
	}
	return false
}
