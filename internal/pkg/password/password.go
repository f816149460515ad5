package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MaxBytes is the longest input bcrypt accepts. It counts bytes, not runes.
const MaxBytes = 72

// Hash returns a salted bcrypt hash of plaintext.
func Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password failed: %w", err)
	}
	return string(hash), nil
}

func Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
