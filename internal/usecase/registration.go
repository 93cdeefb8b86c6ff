package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arklim/realmeye-identity/internal/core/domain"
	"github.com/arklim/realmeye-identity/internal/infra/security"
	"github.com/arklim/realmeye-identity/internal/repository"
)

// StartRegistration creates a registration session: a random session id, a
// one-time verification code, and a fixed expiry. This is the only path
// that exposes the code in plaintext; the caller shows it to the user, who
// pastes it into their profile.
func (s *Service) StartRegistration(ctx context.Context) (domain.RegistrationSession, error) {
	sessionID, err := security.GenerateOpaqueToken(s.rand, s.cfg.Registration.SessionIDLength)
	if err != nil {
		return domain.RegistrationSession{}, fmt.Errorf("generate session id: %w", err)
	}

	code, err := s.codegen.GenerateCode()
	if err != nil {
		return domain.RegistrationSession{}, fmt.Errorf("generate code: %w", err)
	}

	lifetime := s.cfg.Registration.SessionLifetime

	// One second of slack keeps the recorded expiry from racing the
	// cache's own second-granular eviction.
	session := domain.RegistrationSession{
		ID:        sessionID,
		Code:      code,
		ExpiresAt: s.now().UTC().Add(lifetime).Add(time.Second),
	}

	if err := s.sessions.Save(ctx, session, lifetime); err != nil {
		return domain.RegistrationSession{}, fmt.Errorf("store session: %w", err)
	}

	return session, nil
}

// GetRegistrationSession reads a session through from the cache without
// side effects. An evicted or unknown id yields ErrSessionExpired.
func (s *Service) GetRegistrationSession(ctx context.Context, sessionID string) (*domain.RegistrationSession, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionExpired
		}
		return nil, fmt.Errorf("lookup session: %w", err)
	}
	return session, nil
}

// Register completes a registration session. With restore false it creates
// a new account; with restore true it resets the password of an existing
// one, proving ownership through the profile code either way. On success
// the session is consumed and a single-use auth code is returned.
func (s *Service) Register(ctx context.Context, sessionID, name, password string, restore bool) (string, error) {
	if name == "" {
		return "", errors.New("name is required")
	}
	if password == "" {
		return "", errors.New("password is required")
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrSessionExpired
		}
		return "", fmt.Errorf("lookup session: %w", err)
	}

	user, err := s.users.FindByName(ctx, name)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return "", fmt.Errorf("lookup user: %w", err)
	}

	if restore && user == nil {
		return "", ErrRestoreNotFound
	}
	if !restore && user != nil {
		return "", ErrAlreadyExists
	}

	exactName, ok, err := s.verifier.VerifyCode(ctx, name, session.Code)
	if err != nil {
		return "", fmt.Errorf("verify ownership: %w", err)
	}
	if !ok {
		return "", ErrIncorrectCode
	}

	// The profile heading is the canonical spelling; the claimant may have
	// typed the name in any casing.
	if exactName != "" {
		name = exactName
	}

	// The session is consumed only after successful verification, so a
	// failed attempt can be retried until the session itself expires.
	if err := s.sessions.Delete(ctx, sessionID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return "", fmt.Errorf("consume session: %w", err)
	}

	hash, salt, err := s.hashNewPassword(password)
	if err != nil {
		return "", err
	}

	var userID string
	if user == nil {
		stored, err := s.users.Insert(ctx, domain.User{
			Name:         name,
			PasswordHash: hash,
			Salt:         salt,
		})
		if err != nil {
			// The pre-insert existence check is advisory; the unique
			// index is the real guard against concurrent registration.
			if errors.Is(err, repository.ErrDuplicate) {
				return "", ErrAlreadyExists
			}
			return "", fmt.Errorf("insert user: %w", err)
		}
		userID = stored.ID
	} else {
		user.Name = name
		user.PasswordHash = hash
		user.Salt = salt
		if err := s.users.ReplaceByID(ctx, user.ID, *user); err != nil {
			return "", fmt.Errorf("replace user: %w", err)
		}
		userID = user.ID
	}

	s.publishRegistered(ctx, userID, name, restore)

	return s.mintAuthCode(ctx, userID)
}

func (s *Service) publishRegistered(ctx context.Context, userID, name string, restored bool) {
	if s.events == nil {
		return
	}

	event := domain.UserRegisteredEvent{
		EventID:      uuid.NewString(),
		UserID:       userID,
		Name:         name,
		Restored:     restored,
		RegisteredAt: s.now().UTC(),
	}
	if err := s.events.PublishUserRegistered(ctx, event); err != nil {
		s.logger.Warn("failed to publish user registered event",
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}
}
