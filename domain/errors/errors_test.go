package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoisonedError(t *testing.T) {
	err := &PoisonedError{Method: "update", Panic: "boom", Stack: []byte("stack")}

	assert.Equal(t, "mapp: plugin state is poisoned: panic in update: boom", err.Error())
	assert.True(t, errors.Is(err, ErrPoisoned))
	assert.Nil(t, err.Unwrap())

	wrapped := fmt.Errorf("call: %w", err)
	var poisoned *PoisonedError
	require.True(t, errors.As(wrapped, &poisoned))
	assert.Equal(t, "boom", poisoned.Panic)
}

func TestPoisonedError_PanicWithError(t *testing.T) {
	cause := errors.New("index out of range")
	err := &PoisonedError{Panic: cause}

	assert.True(t, errors.Is(err, cause))
	assert.True(t, errors.Is(err, ErrPoisoned))
	assert.Equal(t, "mapp: plugin state is poisoned: panic: index out of range", err.Error())
}

func TestDecodeError(t *testing.T) {
	baseErr := fmt.Errorf("unexpected end of input")
	err := &DecodeError{Method: "receive_event", Stage: StageArgs, Err: baseErr}

	assert.Equal(t, "decode args of receive_event: unexpected end of input", err.Error())
	assert.True(t, errors.Is(err, baseErr))

	detail := err.ToErrorDetail()
	assert.Equal(t, "decode", detail.Type)
	assert.Equal(t, "receive_event", detail.Code)
}

func TestEncodeError(t *testing.T) {
	err := &EncodeError{Method: "flush_io", Stage: StageResult, Err: errors.New("unsupported value: NaN")}

	assert.Equal(t, "encode result of flush_io: unsupported value: NaN", err.Error())
	var encodeErr *EncodeError
	require.True(t, errors.As(fmt.Errorf("x: %w", err), &encodeErr))
	assert.Equal(t, StageResult, encodeErr.Stage)
}

func TestVersionError(t *testing.T) {
	err := &VersionError{Host: "0.3.0", Guest: "0.2.1", Constraint: ">=0.3.0, <0.4.0"}
	assert.Equal(t, `guest binding version "0.2.1" does not satisfy ">=0.3.0, <0.4.0" (host 0.3.0)`, err.Error())

	detail := err.ToErrorDetail()
	assert.Equal(t, "version", detail.Type)
	assert.Equal(t, "0.3.0", detail.Details["host"])

	parseErr := &VersionError{Host: "0.3.0", Guest: "banana", Err: errors.New("invalid semantic version")}
	assert.Contains(t, parseErr.Error(), "invalid semantic version")
}

func TestExportError(t *testing.T) {
	err := &ExportError{Method: "update", Err: errors.New("wasm trap: unreachable")}
	assert.Equal(t, "guest export update failed: wasm trap: unreachable", err.Error())
}

func TestToErrorDetail(t *testing.T) {
	tests := []struct {
		err      error
		name     string
		wantType string
	}{
		{name: "nil", err: nil},
		{name: "uninitialized", err: fmt.Errorf("flush_io: %w", ErrUninitialized), wantType: "uninitialized"},
		{name: "poisoned sentinel", err: ErrPoisoned, wantType: "poisoned"},
		{name: "poisoned panic", err: &PoisonedError{Panic: 1}, wantType: "panic"},
		{name: "unmatched", err: ErrUnmatchedResponse, wantType: "correlation"},
		{name: "duplicate", err: ErrDuplicateCommand, wantType: "correlation"},
		{name: "export", err: &ExportError{Method: "x", Err: errors.New("y")}, wantType: "export"},
		{name: "generic", err: errors.New("something"), wantType: "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			detail := ToErrorDetail(tt.err)
			if tt.err == nil {
				assert.Nil(t, detail)
				return
			}
			require.NotNil(t, detail)
			assert.Equal(t, tt.wantType, detail.Type)
		})
	}
}

func TestErrorDetail_Error(t *testing.T) {
	var nilDetail *ErrorDetail
	assert.Empty(t, nilDetail.Error())

	assert.Equal(t, "decode: bad input [receive_event]",
		(&ErrorDetail{Type: "decode", Code: "receive_event", Message: "bad input"}).Error())
	assert.Equal(t, "something", (&ErrorDetail{Type: "internal", Message: "something"}).Error())
	assert.Equal(t, "poisoned: mapp: plugin state is poisoned", ToErrorDetail(ErrPoisoned).Error())
}

func TestIsContractError(t *testing.T) {
	assert.True(t, IsContractError(&DecodeError{Err: errors.New("x")}))
	assert.True(t, IsContractError(&EncodeError{Err: errors.New("x")}))
	assert.True(t, IsContractError(&ExportError{Err: errors.New("x")}))
	assert.True(t, IsContractError(&PoisonedError{Panic: "x"}))
	assert.True(t, IsContractError(ErrUninitialized))
	assert.False(t, IsContractError(ErrUnmatchedResponse))
	assert.False(t, IsContractError(&VersionError{}))
	assert.False(t, IsContractError(errors.New("x")))
}
