// Package password hashes and verifies user passwords. Plaintext is never stored.
package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Hasher is the hash/verify primitive used for user creation and login
type Hasher interface {
	Hash(plain string) (string, error)
	Verify(hash, plain string) bool
}

// Bcrypt hashes with golang.org/x/crypto/bcrypt
type Bcrypt struct {
	Cost int
}

// NewBcrypt returns a hasher using cost, or bcrypt.DefaultCost when cost is 0
func NewBcrypt(cost int) *Bcrypt {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Bcrypt{Cost: cost}
}

func (b *Bcrypt) Hash(plain string) (string, error) {
	if plain == "" {
		return "", errors.New("password cannot be empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), b.Cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (b *Bcrypt) Verify(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
