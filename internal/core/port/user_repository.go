package port

import (
	"context"

	"github.com/arklim/realmeye-identity/internal/core/domain"
)

// UserRepository exposes persistence behavior for user records. Name
// uniqueness is enforced by the backing store; Insert surfaces a violation
// as repository.ErrDuplicate so callers can treat the pre-insert existence
// check as advisory.
type UserRepository interface {
	FindByName(ctx context.Context, name string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Insert(ctx context.Context, user domain.User) (domain.User, error)
	ReplaceByID(ctx context.Context, id string, user domain.User) error
}
