package accounts

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// Passwords turns a password into its stored form and checks it later.
type Passwords interface {
	Hash(password string) (string, error)
	Check(stored, password string) bool
}

// Plaintext stores passwords as given. It matches the historical schema and
// is insecure; prefer Bcrypt.
type Plaintext struct{}

func (Plaintext) Hash(password string) (string, error) { return password, nil }

func (Plaintext) Check(stored, password string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(password)) == 1
}

// Bcrypt stores bcrypt hashes.
type Bcrypt struct {
	Cost int
}

func (b Bcrypt) Hash(password string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(hash), err
}

func (Bcrypt) Check(stored, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
}

// PasswordsFor returns the implementation named by PASSWORD_MODE.
func PasswordsFor(mode string) Passwords {
	if mode == "bcrypt" {
		return Bcrypt{}
	}
	return Plaintext{}
}
