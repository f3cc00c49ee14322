package abi

import (
	"github.com/reglet-dev/ukagaka-sdk/domain/errors"
)

// Borrowed is a host handle lent to the adapter for the duration of one
// call. It records whether it has been released so that a second release
// or a copy after release is reported as an error instead of touching freed
// memory.
type Borrowed struct {
	bridge   *Bridge
	handle   Handle
	length   int
	released bool
}

// Handle returns the underlying host handle.
func (b *Borrowed) Handle() Handle {
	return b.handle
}

// Len returns the out-of-band length supplied by the host.
func (b *Borrowed) Len() int {
	return b.length
}

// Released reports whether Release has been called successfully.
func (b *Borrowed) Released() bool {
	return b.released
}

// Copy returns an owned copy of the borrowed bytes.
func (b *Borrowed) Copy() (OwnedBuffer, error) {
	if b.released {
		return OwnedBuffer{}, &errors.HandleError{Op: "copy", Handle: uintptr(b.handle), Err: errors.ErrAlreadyReleased}
	}
	return b.bridge.ToOwned(b.handle, b.length)
}

// Release frees the handle. Only the first call reaches the allocator.
// The handle counts as released even if the allocator reports an error,
// since retrying a failed free is never safe.
func (b *Borrowed) Release() error {
	if b.released {
		return &errors.HandleError{Op: "release", Handle: uintptr(b.handle), Err: errors.ErrAlreadyReleased}
	}
	b.released = true
	return b.bridge.Release(b.handle)
}
