package domain

// User mirrors the persisted representation in the identity.users table.
// PasswordHash and Salt hold raw Argon2id output and salt bytes; textual
// encoding is the repository's concern. Name is unique across all records
// and immutable outside the restore flow.
type User struct {
	ID           string
	Name         string
	PasswordHash []byte
	Salt         []byte
}
