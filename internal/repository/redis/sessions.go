package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	red "github.com/redis/go-redis/v9"

	"github.com/arklim/realmeye-identity/internal/core/domain"
	"github.com/arklim/realmeye-identity/internal/repository"
)

const defaultSessionPrefix = "regsession"

// SessionRepository keeps registration sessions in Redis under a dedicated
// key prefix. Entries disappear silently once their TTL lapses, so a miss
// never distinguishes "expired" from "never existed".
type SessionRepository struct {
	client *red.Client
	prefix string
}

// NewSessionRepository constructs a session repository with the provided
// Redis client and key prefix.
func NewSessionRepository(client *red.Client, keyPrefix string) *SessionRepository {
	prefix := strings.TrimSpace(keyPrefix)
	if prefix == "" {
		prefix = defaultSessionPrefix
	}
	return &SessionRepository{client: client, prefix: prefix}
}

// Save stores the session with the supplied TTL.
func (r *SessionRepository) Save(ctx context.Context, session domain.RegistrationSession, ttl time.Duration) error {
	switch {
	case session.ID == "":
		return errors.New("session id is required")
	case ttl <= 0:
		return errors.New("ttl must be positive")
	}

	payload, err := session.MarshalBinary()
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	if err := r.client.Set(ctx, r.key(session.ID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

// Get retrieves the session by id.
func (r *SessionRepository) Get(ctx context.Context, sessionID string) (*domain.RegistrationSession, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, errors.New("session id is required")
	}

	payload, err := r.client.Get(ctx, r.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, red.Nil) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("redis get session: %w", err)
	}

	var session domain.RegistrationSession
	if err := session.UnmarshalBinary(payload); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &session, nil
}

// Delete removes the session, enforcing single-use semantics.
func (r *SessionRepository) Delete(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return errors.New("session id is required")
	}

	deleted, err := r.client.Del(ctx, r.key(sessionID)).Result()
	if err != nil {
		return fmt.Errorf("redis delete session: %w", err)
	}
	if deleted == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *SessionRepository) key(sessionID string) string {
	return r.prefix + ":" + sessionID
}
