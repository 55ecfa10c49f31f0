package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Verifier decides whether a submitted staff secret is acceptable.
type Verifier interface {
	Verify(secret string) bool
}

// BcryptVerifier checks secrets against a single bcrypt hash.
type BcryptVerifier struct {
	hash []byte
}

func NewBcryptVerifier(hash string) (*BcryptVerifier, error) {
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return nil, fmt.Errorf("invalid admin password hash: %w", err)
	}
	return &BcryptVerifier{hash: []byte(hash)}, nil
}

func (v *BcryptVerifier) Verify(secret string) bool {
	if secret == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword(v.hash, []byte(secret)) == nil
}
