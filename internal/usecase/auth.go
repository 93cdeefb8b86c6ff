package usecase

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/arklim/realmeye-identity/internal/core/domain"
	"github.com/arklim/realmeye-identity/internal/repository"
)

// Login authenticates name/password and, on success, returns a single-use
// auth code redeemable for an identity token via CreateIdentityToken.
func (s *Service) Login(ctx context.Context, name, password string) (string, error) {
	if name == "" {
		return "", errors.New("name is required")
	}
	if password == "" {
		return "", errors.New("password is required")
	}

	user, err := s.users.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("lookup user: %w", err)
	}

	ok, err := s.verifyPassword(password, user)
	if err != nil {
		return "", fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return "", ErrIncorrectPassword
	}

	return s.mintAuthCode(ctx, user.ID)
}

// verifyPassword recomputes the hash under the stored salt and compares in
// constant time.
func (s *Service) verifyPassword(password string, user *domain.User) (bool, error) {
	computed, err := s.hasher.Hash([]byte(password), user.Salt)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare(computed, user.PasswordHash) == 1, nil
}

// hashNewPassword generates a fresh salt and derives the hash for it.
// Salts are never reused across password changes.
func (s *Service) hashNewPassword(password string) (hash, salt []byte, err error) {
	salt, err = s.hasher.GenerateSalt()
	if err != nil {
		return nil, nil, fmt.Errorf("generate salt: %w", err)
	}
	hash, err = s.hasher.Hash([]byte(password), salt)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}
	return hash, salt, nil
}
