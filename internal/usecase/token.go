package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/arklim/realmeye-identity/internal/repository"
)

// IdentityTokenClaims is the signed assertion carried by an identity token.
type IdentityTokenClaims struct {
	UserID string `json:"uid"`
	Name   string `json:"unm"`
	jwt.RegisteredClaims
}

// CreateIdentityToken redeems a single-use auth code for a signed identity
// token. Consuming the binding deletes it first, so of two concurrent
// exchanges only one can succeed; the loser sees ErrInvalidAuthCode, the
// same outcome as an expired or never-issued code.
func (s *Service) CreateIdentityToken(ctx context.Context, authCode string) (string, error) {
	if authCode == "" {
		return "", ErrInvalidAuthCode
	}

	userID, err := s.codes.Consume(ctx, authCode)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrInvalidAuthCode
		}
		return "", fmt.Errorf("consume auth code: %w", err)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		// The record can vanish between code issuance and exchange;
		// indistinguishable from a bad code on purpose.
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrInvalidAuthCode
		}
		return "", fmt.Errorf("lookup user: %w", err)
	}

	now := s.now().UTC()
	claims := IdentityTokenClaims{
		UserID: user.ID,
		Name:   user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.Token.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.Token.Lifetime)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// ParseIdentityToken validates a signed identity token and returns its
// claims.
func (s *Service) ParseIdentityToken(token string) (*IdentityTokenClaims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("token is required")
	}

	claims := &IdentityTokenClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.signingKey, nil
	}, jwt.WithIssuer(s.cfg.Token.Issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	return claims, nil
}
