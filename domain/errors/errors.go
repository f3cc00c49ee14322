// Package errors provides domain-specific error types for the SDK.
// All error types support error unwrapping via errors.As() and errors.Is().
//
// None of these errors cross the ABI boundary: every one of them collapses to
// FALSE (or a zero handle) for the host. They exist so the failure can be
// logged with a useful diagnostic and asserted in tests.
package errors

import (
	stdErrors "errors"
	"fmt"

	"github.com/reglet-dev/ukagaka-sdk/domain/entities"
)

// ErrorDetail is an alias to entities.ErrorDetail for convenience.
type ErrorDetail = entities.ErrorDetail

// Sentinel errors for handle misuse.
var (
	// ErrAlreadyReleased is returned when a borrowed handle is used or
	// released after it has been released.
	ErrAlreadyReleased = stdErrors.New("handle already released")
	// ErrUnknownHandle is returned by tracked allocators for addresses they
	// did not hand out.
	ErrUnknownHandle = stdErrors.New("unknown handle")
	// ErrNullHandle is returned when a null handle carries a non-zero length.
	ErrNullHandle = stdErrors.New("null handle with non-zero length")
	// ErrInvalidLength is returned for negative or out-of-range lengths.
	ErrInvalidLength = stdErrors.New("invalid length")
)

// DetailedError is an interface for custom error types that can convert themselves
// to a structured ErrorDetail.
type DetailedError interface {
	error
	ToErrorDetail() *entities.ErrorDetail
}

// ToErrorDetail converts a Go error to our structured ErrorDetail.
// This function recognizes custom error types and categorizes them appropriately.
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

	return &entities.ErrorDetail{
		Message: err.Error(),
		Type:    "internal",
	}
}

// DecodeReason distinguishes the two ways a text decode can fail.
type DecodeReason string

const (
	// ReasonUnsupportedCodepage means the active codepage has no decoder.
	ReasonUnsupportedCodepage DecodeReason = "unsupported_codepage"
	// ReasonInvalidSequence means the decoder rejected the input bytes.
	ReasonInvalidSequence DecodeReason = "invalid_sequence"
)

// DecodeError represents a failure to turn host bytes into text.
type DecodeError struct {
	Err      error
	Reason   DecodeReason
	Encoding string // Encoding name, empty when the codepage is unsupported
	Codepage uint32 // Zero for strict UTF-8 decoding
	Offset   int    // Byte offset of the first invalid byte, -1 if unknown
}

func (e *DecodeError) Error() string {
	switch e.Reason {
	case ReasonUnsupportedCodepage:
		return fmt.Sprintf("unsupported codepage: %d", e.Codepage)
	default:
		msg := fmt.Sprintf("failed to decode %s", e.Encoding)
		if e.Offset >= 0 {
			msg = fmt.Sprintf("%s: invalid byte sequence at offset %d", msg, e.Offset)
		}
		if e.Err != nil {
			msg = fmt.Sprintf("%s: %v", msg, e.Err)
		}
		return msg
	}
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *DecodeError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{
		Message: e.Error(),
		Type:    "decode",
		Code:    string(e.Reason),
		Details: map[string]any{"codepage": e.Codepage, "encoding": e.Encoding},
	}
}

// ConflictError is returned when a write-once value is set a second time.
// The stored value is left untouched.
type ConflictError struct {
	Registry string // "module_path", "load_outcome", "plugin"
	Existing any
	Rejected any
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s already set (existing: %v, rejected: %v)", e.Registry, e.Existing, e.Rejected)
}

// ToErrorDetail implements DetailedError.
func (e *ConflictError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "conflict", Code: e.Registry}
}

// CallbackError represents a user callback that reported failure or panicked.
type CallbackError struct {
	Recovered any    // Non-nil when the callback panicked
	Callback  string // "load", "request", "unload"
	Stack     []byte
}

func (e *CallbackError) Error() string {
	if e.Recovered != nil {
		return fmt.Sprintf("%s callback panicked: %v", e.Callback, e.Recovered)
	}
	return fmt.Sprintf("%s callback reported failure", e.Callback)
}

// Panicked reports whether the callback panicked rather than returning false.
func (e *CallbackError) Panicked() bool {
	return e.Recovered != nil
}

// ToErrorDetail implements DetailedError.
func (e *CallbackError) ToErrorDetail() *entities.ErrorDetail {
	typ := "callback"
	if e.Panicked() {
		typ = "panic"
	}
	return &entities.ErrorDetail{Message: e.Error(), Type: typ, Code: e.Callback, Stack: e.Stack}
}

// HandleError represents misuse of a host memory handle.
type HandleError struct {
	Err    error
	Op     string // "copy", "release", "allocate"
	Handle uintptr
}

func (e *HandleError) Error() string {
	return fmt.Sprintf("handle %s failed for 0x%x: %v", e.Op, e.Handle, e.Err)
}

func (e *HandleError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *HandleError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "handle", Code: e.Op}
}

// MemoryError represents a memory allocation failure.
type MemoryError struct {
	Err       error // Underlying allocator error, if any
	Requested int   // Requested allocation size
	Current   int   // Current total allocated
	Limit     int   // Maximum allowed, zero when the allocator has no limit
}

func (e *MemoryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("memory allocation failed: requested %d bytes: %v", e.Requested, e.Err)
	}
	return fmt.Sprintf("memory allocation failed: requested %d bytes, current %d bytes, limit %d bytes",
		e.Requested, e.Current, e.Limit)
}

func (e *MemoryError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *MemoryError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "memory", Code: "memory_limit"}
}
