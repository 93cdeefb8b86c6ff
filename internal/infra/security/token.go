package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
)

// GenerateOpaqueToken returns a URL-safe random token built from length
// bytes of entropy, suitable for session ids and auth codes.
func GenerateOpaqueToken(r io.Reader, length int) (string, error) {
	if r == nil {
		r = rand.Reader
	}
	if length < 16 {
		return "", fmt.Errorf("opaque token: length must be at least 16 bytes, got %d", length)
	}

	raw := make([]byte, length)
	if _, err := io.ReadFull(r, raw); err != nil {
		return "", fmt.Errorf("opaque token: read entropy: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
