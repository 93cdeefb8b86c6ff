// Package usecase holds the credential lifecycle engine: login, gated
// registration, password rotation, and the auth-code to identity-token
// exchange. Domain outcomes are sentinel errors; infrastructure failures
// propagate wrapped and are never coerced into domain errors.
package usecase

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/arklim/realmeye-identity/internal/core/port"
	"github.com/arklim/realmeye-identity/internal/infra/config"
	"github.com/arklim/realmeye-identity/internal/infra/security"
)

var (
	// ErrUserNotFound indicates no record exists for the given name.
	ErrUserNotFound = errors.New("user not found")
	// ErrIncorrectPassword indicates the password does not match the stored hash.
	ErrIncorrectPassword = errors.New("incorrect password")
	// ErrSessionExpired indicates the registration session is unknown or past its TTL.
	ErrSessionExpired = errors.New("registration session expired")
	// ErrAlreadyExists indicates a record with the given name already exists.
	ErrAlreadyExists = errors.New("user already exists")
	// ErrRestoreNotFound indicates a restore was requested for a name with no record.
	ErrRestoreNotFound = errors.New("restore target not found")
	// ErrIncorrectCode indicates the verification code never appeared on the profile.
	ErrIncorrectCode = errors.New("verification code not found on profile")
	// ErrInvalidAuthCode indicates the auth code is unknown, expired, or already used.
	ErrInvalidAuthCode = errors.New("invalid auth code")
)

// Service orchestrates the credential lifecycle. Each operation runs to
// completion independently; the two stores provide all cross-request state.
type Service struct {
	cfg        *config.AppConfig
	users      port.UserRepository
	sessions   port.RegistrationSessionStore
	codes      port.AuthCodeStore
	hasher     port.PasswordHasher
	codegen    port.CodeGenerator
	verifier   port.OwnershipVerifier
	events     port.EventPublisher
	logger     *zap.Logger
	signingKey []byte
	now        func() time.Time
	rand       io.Reader
}

// NewService constructs the engine and validates its dependencies. The
// event publisher may be nil; publishing is then skipped.
func NewService(
	cfg *config.AppConfig,
	users port.UserRepository,
	sessions port.RegistrationSessionStore,
	codes port.AuthCodeStore,
	hasher port.PasswordHasher,
	codegen port.CodeGenerator,
	verifier port.OwnershipVerifier,
	events port.EventPublisher,
	logger *zap.Logger,
) (*Service, error) {
	switch {
	case cfg == nil:
		return nil, errors.New("config is required")
	case users == nil:
		return nil, errors.New("user repository is required")
	case sessions == nil:
		return nil, errors.New("session store is required")
	case codes == nil:
		return nil, errors.New("auth code store is required")
	case hasher == nil:
		return nil, errors.New("password hasher is required")
	case codegen == nil:
		return nil, errors.New("code generator is required")
	case verifier == nil:
		return nil, errors.New("ownership verifier is required")
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	signingKey, err := base64.StdEncoding.DecodeString(cfg.Token.SigningKey)
	if err != nil {
		return nil, fmt.Errorf("decode token signing key: %w", err)
	}
	if len(signingKey) < 32 {
		return nil, errors.New("token signing key must be at least 32 bytes")
	}

	return &Service{
		cfg:        cfg,
		users:      users,
		sessions:   sessions,
		codes:      codes,
		hasher:     hasher,
		codegen:    codegen,
		verifier:   verifier,
		events:     events,
		logger:     logger,
		signingKey: signingKey,
		now:        time.Now,
		rand:       rand.Reader,
	}, nil
}

// WithClock overrides the internal clock, used in tests.
func (s *Service) WithClock(clock func() time.Time) *Service {
	if clock != nil {
		s.now = clock
	}
	return s
}

// WithRand overrides the entropy source, used in tests.
func (s *Service) WithRand(r io.Reader) *Service {
	if r != nil {
		s.rand = r
	}
	return s
}

// mintAuthCode issues a fresh single-use auth code bound to userID.
func (s *Service) mintAuthCode(ctx context.Context, userID string) (string, error) {
	code, err := security.GenerateOpaqueToken(s.rand, s.cfg.AuthCode.Length)
	if err != nil {
		return "", fmt.Errorf("generate auth code: %w", err)
	}

	if err := s.codes.Save(ctx, code, userID, s.cfg.AuthCode.Lifetime); err != nil {
		return "", fmt.Errorf("store auth code: %w", err)
	}

	return code, nil
}
