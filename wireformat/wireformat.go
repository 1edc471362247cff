// Package wireformat defines the textual encoding used for every value that
// crosses the host/guest boundary. Argument lists travel as a JSON array in
// declared parameter order; return values travel as a single JSON value.
// These rules are the ABI contract and must stay stable.
package wireformat

import (
	"bytes"
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

// codec sorts map keys so encoding is deterministic.
var codec = jsoniter.ConfigCompatibleWithStandardLibrary

// EmptyArgs is the encoding of a call without parameters.
const EmptyArgs = "[]"

// Null is the encoding of a missing return value.
const Null = "null"

// Marshal encodes v as wire text.
func Marshal(v any) (string, error) {
	data, err := codec.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Unmarshal decodes wire text into v, which must be a pointer.
// Trailing data after the value is rejected.
func Unmarshal(text string, v any) error {
	return codec.UnmarshalFromString(text, v)
}

// EncodeArgs encodes a positional argument tuple.
func EncodeArgs(args ...any) (string, error) {
	if len(args) == 0 {
		return EmptyArgs, nil
	}
	parts := make([]jsoniter.RawMessage, len(args))
	for i, arg := range args {
		data, err := codec.Marshal(arg)
		if err != nil {
			return "", fmt.Errorf("argument %d: %w", i, err)
		}
		parts[i] = data
	}
	data, err := codec.Marshal(parts)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeArgs decodes a positional argument tuple into targets, which must be
// pointers in declared parameter order. The tuple length must match exactly.
func DecodeArgs(text string, targets ...any) error {
	trimmed := bytes.TrimSpace([]byte(text))
	if len(targets) == 0 && len(trimmed) == 0 {
		return nil
	}

	var parts []jsoniter.RawMessage
	if err := codec.Unmarshal(trimmed, &parts); err != nil {
		return fmt.Errorf("argument tuple: %w", err)
	}
	if parts == nil {
		return fmt.Errorf("argument tuple: expected array, got null")
	}
	if len(parts) != len(targets) {
		return fmt.Errorf("argument tuple: expected %d arguments, got %d", len(targets), len(parts))
	}
	for i, part := range parts {
		// A null element decodes to an empty RawMessage.
		if len(part) == 0 {
			part = jsoniter.RawMessage(Null)
		}
		if err := codec.Unmarshal(part, targets[i]); err != nil {
			return fmt.Errorf("argument %d: %w", i, err)
		}
	}
	return nil
}
