package domain

import "time"

// UserRegisteredEvent represents the payload for identity.user.registered messages.
type UserRegisteredEvent struct {
	EventID      string
	UserID       string
	Name         string
	Restored     bool
	RegisteredAt time.Time
}

// PasswordChangedEvent represents the payload for identity.user.password.changed messages.
type PasswordChangedEvent struct {
	EventID   string
	UserID    string
	ChangedAt time.Time
}
