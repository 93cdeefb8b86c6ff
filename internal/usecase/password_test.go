package usecase

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

func TestChangePasswordUnknownUser(t *testing.T) {
	f := newFixture(t)

	err := f.service.ChangePassword(context.Background(), "nobody", "old", "new")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestChangePasswordIncorrectOldPassword(t *testing.T) {
	f := newFixture(t)
	existing := f.registeredUser(t, "alice", "current")

	err := f.service.ChangePassword(context.Background(), "alice", "not current", "next")
	if !errors.Is(err, ErrIncorrectPassword) {
		t.Fatalf("expected ErrIncorrectPassword, got %v", err)
	}

	after, _ := f.users.FindByName(context.Background(), "alice")
	if !bytes.Equal(after.PasswordHash, existing.PasswordHash) {
		t.Fatal("credentials mutated by a rejected change")
	}
}

func TestChangePasswordRotatesHashAndSalt(t *testing.T) {
	f := newFixture(t)
	existing := f.registeredUser(t, "alice", "current")

	if err := f.service.ChangePassword(context.Background(), "alice", "current", "next"); err != nil {
		t.Fatalf("ChangePassword returned error: %v", err)
	}

	after, err := f.users.FindByName(context.Background(), "alice")
	if err != nil {
		t.Fatalf("user not found after change: %v", err)
	}
	if bytes.Equal(after.PasswordHash, existing.PasswordHash) {
		t.Fatal("password hash not replaced")
	}
	if bytes.Equal(after.Salt, existing.Salt) {
		t.Fatal("salt not replaced")
	}

	// The new password must verify and the old one must not.
	if _, err := f.service.Login(context.Background(), "alice", "next"); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
	if _, err := f.service.Login(context.Background(), "alice", "current"); !errors.Is(err, ErrIncorrectPassword) {
		t.Fatalf("login with old password: expected ErrIncorrectPassword, got %v", err)
	}

	if len(f.events.changed) != 1 {
		t.Fatalf("published %d changed events, want 1", len(f.events.changed))
	}
	if f.events.changed[0].UserID != existing.ID {
		t.Fatalf("event user id = %q, want %q", f.events.changed[0].UserID, existing.ID)
	}
}

func TestChangePasswordRejectsEmptyInput(t *testing.T) {
	f := newFixture(t)

	if err := f.service.ChangePassword(context.Background(), "", "old", "new"); err == nil {
		t.Fatal("expected error for empty name")
	}
	if err := f.service.ChangePassword(context.Background(), "alice", "", "new"); err == nil {
		t.Fatal("expected error for empty old password")
	}
	if err := f.service.ChangePassword(context.Background(), "alice", "old", ""); err == nil {
		t.Fatal("expected error for empty new password")
	}
}
