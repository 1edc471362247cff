// Package errors provides the error taxonomy of the binding layer.
// All error types support error unwrapping via errors.As() and errors.Is().
package errors

import (
	stdErrors "errors"
	"fmt"

	"github.com/metaview-dev/mapp-sdk/domain/entities"
)

// ErrorDetail is an alias to entities.ErrorDetail for convenience.
type ErrorDetail = entities.ErrorDetail

// Sentinels for the contract violations that carry no extra data.
var (
	// ErrUninitialized is returned for any call before initialize.
	ErrUninitialized = stdErrors.New("mapp: plugin instance is not initialized")

	// ErrPoisoned is returned for any call after a call failed mid-critical-section.
	ErrPoisoned = stdErrors.New("mapp: plugin state is poisoned")

	// ErrUnmatchedResponse is returned when a response names no outstanding command.
	ErrUnmatchedResponse = stdErrors.New("mapp: command response matches no outstanding command")

	// ErrDuplicateCommand is returned when a command reuses an outstanding id.
	ErrDuplicateCommand = stdErrors.New("mapp: command id is already outstanding")

	// ErrUnknownMethod is returned for a call to a method outside the signature table.
	ErrUnknownMethod = stdErrors.New("mapp: unknown method")
)

// Stage tells which half of a call failed to encode or decode.
type Stage string

const (
	StageArgs   Stage = "args"
	StageResult Stage = "result"
)

// DetailedError is an interface for error types that can convert themselves
// to a structured ErrorDetail.
type DetailedError interface {
	error
	ToErrorDetail() *entities.ErrorDetail
}

// ToErrorDetail converts a Go error to a structured ErrorDetail.
func ToErrorDetail(err error) *entities.ErrorDetail {
	if err == nil {
		return nil
	}

	var e *entities.ErrorDetail
	if stdErrors.As(err, &e) {
		return e
	}

	var de DetailedError
	if stdErrors.As(err, &de) {
		return de.ToErrorDetail()
	}

	switch {
	case stdErrors.Is(err, ErrUninitialized):
		return &entities.ErrorDetail{Message: err.Error(), Type: "uninitialized"}
	case stdErrors.Is(err, ErrPoisoned):
		return &entities.ErrorDetail{Message: err.Error(), Type: "poisoned"}
	case stdErrors.Is(err, ErrUnmatchedResponse), stdErrors.Is(err, ErrDuplicateCommand):
		return &entities.ErrorDetail{Message: err.Error(), Type: "correlation"}
	}

	return &entities.ErrorDetail{
		Message: err.Error(),
		Type:    "internal",
	}
}

// PoisonedError records the panic that poisoned the plugin state.
// It matches ErrPoisoned with errors.Is.
type PoisonedError struct {
	Panic  any
	Method string
	Stack  []byte
}

func (e *PoisonedError) Error() string {
	if e.Method != "" {
		return fmt.Sprintf("%v: panic in %s: %v", ErrPoisoned, e.Method, e.Panic)
	}
	return fmt.Sprintf("%v: panic: %v", ErrPoisoned, e.Panic)
}

// Is reports whether target is ErrPoisoned.
func (e *PoisonedError) Is(target error) bool {
	return target == ErrPoisoned
}

// Unwrap returns the panic value when it was an error.
func (e *PoisonedError) Unwrap() error {
	if err, ok := e.Panic.(error); ok {
		return err
	}
	return nil
}

// ToErrorDetail implements DetailedError.
func (e *PoisonedError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "panic", Code: e.Method, Stack: e.Stack}
}

// DecodeError is returned when wire text does not match the expected shape.
// Nothing has been applied when it is returned.
type DecodeError struct {
	Err    error
	Method string
	Stage  Stage
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s of %s: %v", e.Stage, e.Method, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *DecodeError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "decode", Code: e.Method}
}

// EncodeError is returned when a value cannot be represented on the wire.
// For results it signals an implementer bug.
type EncodeError struct {
	Err    error
	Method string
	Stage  Stage
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode %s of %s: %v", e.Stage, e.Method, e.Err)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *EncodeError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "encode", Code: e.Method}
}

// VersionError is returned when a guest reports an incompatible binding version.
type VersionError struct {
	Err        error
	Host       string
	Guest      string
	Constraint string
}

func (e *VersionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("guest binding version %q unusable with host %s: %v", e.Guest, e.Host, e.Err)
	}
	return fmt.Sprintf("guest binding version %q does not satisfy %q (host %s)", e.Guest, e.Constraint, e.Host)
}

func (e *VersionError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *VersionError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{
		Message: e.Error(),
		Type:    "version",
		Code:    e.Guest,
		Details: map[string]any{"host": e.Host, "constraint": e.Constraint},
	}
}

// ExportError is returned when a raw guest export could not be called
// (missing export, trap, memory access failure).
type ExportError struct {
	Err    error
	Method string
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("guest export %s failed: %v", e.Method, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *ExportError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "export", Code: e.Method}
}

// IsContractError reports whether err breaks the binding contract, after
// which no further data from the same guest can be trusted.
func IsContractError(err error) bool {
	var (
		decodeErr *DecodeError
		encodeErr *EncodeError
		exportErr *ExportError
	)
	return stdErrors.As(err, &decodeErr) ||
		stdErrors.As(err, &encodeErr) ||
		stdErrors.As(err, &exportErr) ||
		stdErrors.Is(err, ErrPoisoned) ||
		stdErrors.Is(err, ErrUninitialized) ||
		stdErrors.Is(err, ErrUnknownMethod)
}
