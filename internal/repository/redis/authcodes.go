package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	red "github.com/redis/go-redis/v9"

	"github.com/arklim/realmeye-identity/internal/repository"
)

const defaultAuthCodePrefix = "authcode"

// AuthCodeRepository maps pending auth codes to user ids in Redis. Consume
// relies on GETDEL so the read and the delete are one atomic step; of two
// racing exchanges only the first observes the binding.
type AuthCodeRepository struct {
	client *red.Client
	prefix string
}

// NewAuthCodeRepository constructs an auth-code repository with the provided
// Redis client and key prefix.
func NewAuthCodeRepository(client *red.Client, keyPrefix string) *AuthCodeRepository {
	prefix := strings.TrimSpace(keyPrefix)
	if prefix == "" {
		prefix = defaultAuthCodePrefix
	}
	return &AuthCodeRepository{client: client, prefix: prefix}
}

// Save binds the code to a user id for the duration of the TTL.
func (r *AuthCodeRepository) Save(ctx context.Context, code, userID string, ttl time.Duration) error {
	switch {
	case strings.TrimSpace(code) == "":
		return errors.New("code is required")
	case strings.TrimSpace(userID) == "":
		return errors.New("user id is required")
	case ttl <= 0:
		return errors.New("ttl must be positive")
	}

	if err := r.client.Set(ctx, r.key(code), userID, ttl).Err(); err != nil {
		return fmt.Errorf("redis set auth code: %w", err)
	}
	return nil
}

// Consume atomically reads and deletes the binding, returning the bound
// user id. A missing binding yields repository.ErrNotFound.
func (r *AuthCodeRepository) Consume(ctx context.Context, code string) (string, error) {
	if strings.TrimSpace(code) == "" {
		return "", errors.New("code is required")
	}

	userID, err := r.client.GetDel(ctx, r.key(code)).Result()
	if err != nil {
		if errors.Is(err, red.Nil) {
			return "", repository.ErrNotFound
		}
		return "", fmt.Errorf("redis getdel auth code: %w", err)
	}
	return userID, nil
}

func (r *AuthCodeRepository) key(code string) string {
	return r.prefix + ":" + code
}
