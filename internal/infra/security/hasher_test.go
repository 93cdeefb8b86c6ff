package security

import (
	"bytes"
	"testing"
)

func testHasher(t *testing.T) *Hasher {
	t.Helper()

	cfg := Argon2Config{
		Memory:      8 * 1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}

	h, err := NewHasher(cfg, []byte("unit-test-pepper"))
	if err != nil {
		t.Fatalf("NewHasher returned error: %v", err)
	}
	return h
}

func TestHasher_Deterministic(t *testing.T) {
	h := testHasher(t)

	salt, err := h.GenerateSalt()
	if err != nil {
		t.Fatalf("GenerateSalt returned error: %v", err)
	}

	first, err := h.Hash([]byte("Passw0rd!"), salt)
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	second, err := h.Hash([]byte("Passw0rd!"), salt)
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Fatalf("expected identical hashes for identical inputs")
	}
	if len(first) != 32 {
		t.Fatalf("expected 32-byte hash, got %d", len(first))
	}
}

func TestHasher_DistinctSalts(t *testing.T) {
	h := testHasher(t)

	saltA, err := h.GenerateSalt()
	if err != nil {
		t.Fatalf("GenerateSalt returned error: %v", err)
	}
	saltB, err := h.GenerateSalt()
	if err != nil {
		t.Fatalf("GenerateSalt returned error: %v", err)
	}

	if bytes.Equal(saltA, saltB) {
		t.Fatalf("expected fresh salts to differ")
	}

	hashA, err := h.Hash([]byte("Passw0rd!"), saltA)
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	hashB, err := h.Hash([]byte("Passw0rd!"), saltB)
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}

	if bytes.Equal(hashA, hashB) {
		t.Fatalf("expected distinct salts to produce distinct hashes")
	}
}

func TestHasher_PepperChangesHash(t *testing.T) {
	cfg := Argon2Config{
		Memory:      8 * 1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}

	first, err := NewHasher(cfg, []byte("pepper-one"))
	if err != nil {
		t.Fatalf("NewHasher returned error: %v", err)
	}
	second, err := NewHasher(cfg, []byte("pepper-two"))
	if err != nil {
		t.Fatalf("NewHasher returned error: %v", err)
	}

	salt := bytes.Repeat([]byte{0x42}, 16)

	hashA, err := first.Hash([]byte("Passw0rd!"), salt)
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	hashB, err := second.Hash([]byte("Passw0rd!"), salt)
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}

	if bytes.Equal(hashA, hashB) {
		t.Fatalf("expected different peppers to produce different hashes")
	}
}

func TestHasher_RejectsShortSalt(t *testing.T) {
	h := testHasher(t)

	if _, err := h.Hash([]byte("Passw0rd!"), nil); err == nil {
		t.Fatalf("expected error for empty salt")
	}
	if _, err := h.Hash([]byte("Passw0rd!"), []byte("short")); err == nil {
		t.Fatalf("expected error for undersized salt")
	}
}

func TestNewHasher_RejectsInvalidConfig(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Argon2Config)
		pepper []byte
	}{
		{"zero iterations", func(c *Argon2Config) { c.Iterations = 0 }, []byte("p")},
		{"zero parallelism", func(c *Argon2Config) { c.Parallelism = 0 }, []byte("p")},
		{"tiny memory", func(c *Argon2Config) { c.Memory = 1024 }, []byte("p")},
		{"short salt length", func(c *Argon2Config) { c.SaltLength = 4 }, []byte("p")},
		{"short key length", func(c *Argon2Config) { c.KeyLength = 8 }, []byte("p")},
		{"empty pepper", func(c *Argon2Config) {}, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultArgon2Config()
			tc.mutate(&cfg)
			if _, err := NewHasher(cfg, tc.pepper); err == nil {
				t.Fatalf("expected configuration error")
			}
		})
	}
}
