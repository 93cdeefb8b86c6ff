package port

// PasswordHasher derives verifiable password hashes. Hash is deterministic
// for a fixed (password, salt) pair under one service configuration, which
// is what makes verification by constant-time byte equality possible.
type PasswordHasher interface {
	Hash(password, salt []byte) ([]byte, error)
	GenerateSalt() ([]byte, error)
}

// CodeGenerator produces one-time verification codes recognizable inside
// free-form profile text.
type CodeGenerator interface {
	GenerateCode() (string, error)
}
