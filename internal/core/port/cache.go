package port

import (
	"context"
	"time"

	"github.com/arklim/realmeye-identity/internal/core/domain"
)

// RegistrationSessionStore keeps registration sessions in the ephemeral
// cache. Absence after TTL eviction is reported as repository.ErrNotFound;
// expired and never-existed are indistinguishable.
type RegistrationSessionStore interface {
	Save(ctx context.Context, session domain.RegistrationSession, ttl time.Duration) error
	Get(ctx context.Context, sessionID string) (*domain.RegistrationSession, error)
	Delete(ctx context.Context, sessionID string) error
}

// AuthCodeStore holds pending auth-code to user-id bindings. Consume removes
// the binding atomically with the read so a code can be redeemed exactly
// once; the delete is the linearization point between racing exchanges.
type AuthCodeStore interface {
	Save(ctx context.Context, code, userID string, ttl time.Duration) error
	Consume(ctx context.Context, code string) (string, error)
}
