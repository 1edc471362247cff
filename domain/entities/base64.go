package entities

import (
	"encoding/base64"
	"fmt"
)

// Base64ByteSlice carries arbitrary bytes through the textual wire format.
// The value holds the base64 text; construction from bytes always succeeds.
type Base64ByteSlice string

// NewBase64ByteSlice encodes b.
func NewBase64ByteSlice(b []byte) Base64ByteSlice {
	return Base64ByteSlice(base64.StdEncoding.EncodeToString(b))
}

// Decode returns the wrapped bytes.
func (s Base64ByteSlice) Decode() ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(string(s))
	if err != nil {
		return nil, fmt.Errorf("invalid base64 byte slice: %w", err)
	}
	return b, nil
}

// Bytes returns the wrapped bytes and panics if the text was tampered with.
// Values produced by NewBase64ByteSlice or decoded from the wire never panic.
func (s Base64ByteSlice) Bytes() []byte {
	b, err := s.Decode()
	if err != nil {
		panic(fmt.Sprintf("entities: %v", err))
	}
	return b
}

// Len returns the number of decoded bytes without decoding.
func (s Base64ByteSlice) Len() int {
	return base64.StdEncoding.DecodedLen(len(s)) - paddingLen(string(s))
}

// UnmarshalJSON rejects text that is not valid base64, so corrupt payloads
// fail at decode time rather than on first use.
func (s *Base64ByteSlice) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return err
	}
	if _, err := base64.StdEncoding.DecodeString(text); err != nil {
		return fmt.Errorf("invalid base64 byte slice: %w", err)
	}
	*s = Base64ByteSlice(text)
	return nil
}

func paddingLen(s string) int {
	n := 0
	for i := len(s) - 1; i >= 0 && s[i] == '='; i-- {
		n++
	}
	return n
}
