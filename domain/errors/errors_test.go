package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeError_UnsupportedCodepage(t *testing.T) {
	err := &DecodeError{Reason: ReasonUnsupportedCodepage, Codepage: 12345, Offset: -1}

	assert.Equal(t, "unsupported codepage: 12345", err.Error())

	detail := err.ToErrorDetail()
	assert.Equal(t, "decode", detail.Type)
	assert.Equal(t, "unsupported_codepage", detail.Code)
	assert.Equal(t, uint32(12345), detail.Details["codepage"])
}

func TestDecodeError_InvalidSequence(t *testing.T) {
	err := &DecodeError{Reason: ReasonInvalidSequence, Encoding: "Shift_JIS", Codepage: 932, Offset: 4}

	assert.Equal(t, "failed to decode Shift_JIS: invalid byte sequence at offset 4", err.Error())
	assert.Equal(t, "invalid_sequence", err.ToErrorDetail().Code)
}

func TestDecodeError_Unwrap(t *testing.T) {
	baseErr := fmt.Errorf("transform: short source")
	err := &DecodeError{Reason: ReasonInvalidSequence, Encoding: "UTF-8", Offset: -1, Err: baseErr}

	assert.True(t, errors.Is(err, baseErr))
	assert.Equal(t, "failed to decode UTF-8: transform: short source", err.Error())
}

func TestConflictError(t *testing.T) {
	err := &ConflictError{Registry: "module_path", Existing: `C:\a.dll`, Rejected: `C:\b.dll`}

	assert.Equal(t, `module_path already set (existing: C:\a.dll, rejected: C:\b.dll)`, err.Error())

	var conflict *ConflictError
	require.True(t, errors.As(fmt.Errorf("register: %w", err), &conflict))
	assert.Equal(t, "module_path", conflict.Registry)
}

func TestCallbackError(t *testing.T) {
	failed := &CallbackError{Callback: "load"}
	assert.Equal(t, "load callback reported failure", failed.Error())
	assert.False(t, failed.Panicked())
	assert.Equal(t, "callback", failed.ToErrorDetail().Type)

	panicked := &CallbackError{Callback: "request", Recovered: "boom", Stack: []byte("stack")}
	assert.Equal(t, "request callback panicked: boom", panicked.Error())
	assert.True(t, panicked.Panicked())

	detail := panicked.ToErrorDetail()
	assert.Equal(t, "panic", detail.Type)
	assert.Equal(t, []byte("stack"), detail.Stack)
}

func TestHandleError(t *testing.T) {
	err := &HandleError{Op: "release", Handle: 0x1000, Err: ErrAlreadyReleased}

	assert.Equal(t, "handle release failed for 0x1000: handle already released", err.Error())
	assert.True(t, errors.Is(err, ErrAlreadyReleased))
	assert.False(t, errors.Is(err, ErrUnknownHandle))
}

func TestMemoryError(t *testing.T) {
	err := &MemoryError{Requested: 2048, Current: 512, Limit: 1024}
	assert.Equal(t, "memory allocation failed: requested 2048 bytes, current 512 bytes, limit 1024 bytes", err.Error())

	base := errors.New("GlobalAlloc: not enough memory")
	wrapped := &MemoryError{Requested: 16, Err: base}
	assert.True(t, errors.Is(wrapped, base))
	assert.Equal(t, "memory", wrapped.ToErrorDetail().Type)
}

func TestToErrorDetail(t *testing.T) {
	tests := []struct {
		err      error
		name     string
		wantType string
		wantCode string
	}{
		{name: "decode", err: &DecodeError{Reason: ReasonInvalidSequence, Encoding: "UTF-8", Offset: 0}, wantType: "decode", wantCode: "invalid_sequence"},
		{name: "conflict", err: &ConflictError{Registry: "load_outcome"}, wantType: "conflict", wantCode: "load_outcome"},
		{name: "wrapped handle", err: fmt.Errorf("request: %w", &HandleError{Op: "copy", Err: ErrUnknownHandle}), wantType: "handle", wantCode: "copy"},
		{name: "generic", err: errors.New("something else"), wantType: "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			detail := ToErrorDetail(tt.err)
			require.NotNil(t, detail)
			assert.Equal(t, tt.wantType, detail.Type)
			assert.Equal(t, tt.wantCode, detail.Code)
		})
	}

	assert.Nil(t, ToErrorDetail(nil))
}
