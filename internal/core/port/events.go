package port

import (
	"context"

	"github.com/arklim/realmeye-identity/internal/core/domain"
)

// EventPublisher emits lifecycle events to the message bus. Publishing is
// best effort; failures must not fail the originating operation.
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error
	PublishPasswordChanged(ctx context.Context, event domain.PasswordChangedEvent) error
}
