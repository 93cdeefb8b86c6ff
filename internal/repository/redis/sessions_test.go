package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	red "github.com/redis/go-redis/v9"

	"github.com/arklim/realmeye-identity/internal/core/domain"
	"github.com/arklim/realmeye-identity/internal/repository"
)

func newTestRedis(t *testing.T) (*red.Client, *miniredis.Miniredis) {
	t.Helper()

	server, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := red.NewClient(&red.Options{Addr: server.Addr()})

	t.Cleanup(func() {
		_ = client.Close()
		server.Close()
	})

	return client, server
}

func TestSessionRepository_SaveAndGet(t *testing.T) {
	client, server := newTestRedis(t)
	repo := NewSessionRepository(client, "regsession")

	ctx := context.Background()
	ttl := 15 * time.Minute
	session := domain.RegistrationSession{
		ID:        "session-123",
		Code:      "RID_abc123",
		ExpiresAt: time.Now().Add(ttl).UTC(),
	}

	if err := repo.Save(ctx, session, ttl); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	got, err := repo.Get(ctx, session.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.ID != session.ID || got.Code != session.Code {
		t.Fatalf("unexpected session %+v", got)
	}
	if !got.ExpiresAt.Equal(session.ExpiresAt.Truncate(time.Second)) {
		t.Fatalf("expected expiry %v, got %v", session.ExpiresAt.Truncate(time.Second), got.ExpiresAt)
	}

	remaining := server.TTL("regsession:session-123")
	if remaining <= 0 || remaining > ttl {
		t.Fatalf("expected ttl within (0, %v], got %v", ttl, remaining)
	}
}

func TestSessionRepository_GetMiss(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewSessionRepository(client, "regsession")

	if _, err := repo.Get(context.Background(), "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSessionRepository_ExpiryIsSilent(t *testing.T) {
	client, server := newTestRedis(t)
	repo := NewSessionRepository(client, "regsession")

	ctx := context.Background()
	session := domain.RegistrationSession{
		ID:        "session-ttl",
		Code:      "RID_ttl",
		ExpiresAt: time.Now().Add(time.Minute).UTC(),
	}

	if err := repo.Save(ctx, session, time.Minute); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	server.FastForward(2 * time.Minute)

	if _, err := repo.Get(ctx, session.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after ttl, got %v", err)
	}
}

func TestSessionRepository_Delete(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewSessionRepository(client, "regsession")

	ctx := context.Background()
	session := domain.RegistrationSession{
		ID:        "session-del",
		Code:      "RID_del",
		ExpiresAt: time.Now().Add(time.Minute).UTC(),
	}

	if err := repo.Save(ctx, session, time.Minute); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if err := repo.Delete(ctx, session.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if err := repo.Delete(ctx, session.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestSessionRepository_InvalidInput(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewSessionRepository(client, "")

	ctx := context.Background()

	if err := repo.Save(ctx, domain.RegistrationSession{}, time.Minute); err == nil {
		t.Fatalf("expected error for empty session id")
	}
	if err := repo.Save(ctx, domain.RegistrationSession{ID: "x"}, 0); err == nil {
		t.Fatalf("expected error for non-positive ttl")
	}
	if _, err := repo.Get(ctx, " "); err == nil {
		t.Fatalf("expected error for blank session id")
	}
}
