package usecase

import (
	"context"
	"errors"
	"fmt"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arklim/realmeye-identity/internal/core/domain"
	"github.com/arklim/realmeye-identity/internal/repository"
)

// ChangePassword re-authenticates with the old password and replaces the
// stored hash and salt. No auth code is minted; the caller already holds
// whatever session brought it here.
func (s *Service) ChangePassword(ctx context.Context, name, oldPassword, newPassword string) error {
	if name == "" {
		return errors.New("name is required")
	}
	if oldPassword == "" || newPassword == "" {
		return errors.New("old and new passwords are required")
	}

	user, err := s.users.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	ok, err := s.verifyPassword(oldPassword, user)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return ErrIncorrectPassword
	}

	hash, salt, err := s.hashNewPassword(newPassword)
	if err != nil {
		return err
	}

	user.PasswordHash = hash
	user.Salt = salt
	if err := s.users.ReplaceByID(ctx, user.ID, *user); err != nil {
		return fmt.Errorf("replace user: %w", err)
	}

	s.publishPasswordChanged(ctx, user.ID)

	return nil
}

func (s *Service) publishPasswordChanged(ctx context.Context, userID string) {
	if s.events == nil {
		return
	}

	event := domain.PasswordChangedEvent{
		EventID:   uuid.NewString(),
		UserID:    userID,
		ChangedAt: s.now().UTC(),
	}
	if err := s.events.PublishPasswordChanged(ctx, event); err != nil {
		s.logger.Warn("failed to publish password changed event",
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}
}
