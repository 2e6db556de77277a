package utils

import "golang.org/x/crypto/bcrypt"

// PasswordHasher abstracts the one-way hash so the concrete primitive can be
// swapped without touching handler logic.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) bool
}

// BcryptHasher hashes passwords with bcrypt. Zero value uses the default cost.
type BcryptHasher struct {
	Cost int
}

// Hash returns the bcrypt hash of the password.
func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify compares the bcrypt hashed password with its possible plaintext equivalent.
func (h BcryptHasher) Verify(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
