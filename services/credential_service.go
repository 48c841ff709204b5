package services

import (
	"errors"

	"restaurant/pkg/apperr"

	"golang.org/x/crypto/bcrypt"
)

// CredentialService is the one-way password transform. Hashes are salted
// bcrypt strings and safe to persist.
type CredentialService struct {
	cost int
}

func NewCredentialService(cost int) *CredentialService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &CredentialService{cost: cost}
}

func (s *CredentialService) Hash(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), s.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", apperr.Validation("password must be at most 72 bytes")
	}
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify reports whether hash was produced from plain. Malformed hashes
// simply fail.
func (s *CredentialService) Verify(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
