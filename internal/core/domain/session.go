package domain

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

var errSessionTruncated = errors.New("registration session: truncated payload")

// RegistrationSession is the claim ticket handed out by StartRegistration.
// The one-time code must appear on the claimant's external profile before
// the session can be redeemed; ExpiresAt is fixed at creation and never
// extended.
type RegistrationSession struct {
	ID        string
	Code      string
	ExpiresAt time.Time
}

// MarshalBinary encodes the session as a compact record: uvarint-length
// prefixed id and code followed by the expiry as varint unix seconds.
// Sub-second precision is dropped; the cache TTL owns fine-grained expiry.
func (s RegistrationSession) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 0, len(s.ID)+len(s.Code)+3*binary.MaxVarintLen64)
	buf = appendLenPrefixed(buf, s.ID)
	buf = appendLenPrefixed(buf, s.Code)
	buf = binary.AppendVarint(buf, s.ExpiresAt.Unix())
	return buf, nil
}

// UnmarshalBinary decodes a record produced by MarshalBinary.
func (s *RegistrationSession) UnmarshalBinary(data []byte) error {
	id, rest, err := consumeLenPrefixed(data)
	if err != nil {
		return fmt.Errorf("decode id: %w", err)
	}

	code, rest, err := consumeLenPrefixed(rest)
	if err != nil {
		return fmt.Errorf("decode code: %w", err)
	}

	expiry, n := binary.Varint(rest)
	if n <= 0 {
		return fmt.Errorf("decode expiry: %w", errSessionTruncated)
	}

	s.ID = id
	s.Code = code
	s.ExpiresAt = time.Unix(expiry, 0).UTC()
	return nil
}

func appendLenPrefixed(buf []byte, v string) []byte {
	buf = binary.AppendUvarint(buf, uint64(len(v)))
	return append(buf, v...)
}

func consumeLenPrefixed(data []byte) (string, []byte, error) {
	length, n := binary.Uvarint(data)
	if n <= 0 {
		return "", nil, errSessionTruncated
	}
	data = data[n:]
	if uint64(len(data)) < length {
		return "", nil, errSessionTruncated
	}
	return string(data[:length]), data[length:], nil
}
