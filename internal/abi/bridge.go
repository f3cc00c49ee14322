package abi

import (
	stdErrors "errors"
	"math"

	"github.com/reglet-dev/ukagaka-sdk/domain/entities"
	"github.com/reglet-dev/ukagaka-sdk/domain/errors"
	"github.com/reglet-dev/ukagaka-sdk/domain/ports"
)

// Handle is re-exported for callers that only deal with the bridge.
type Handle = entities.Handle

// Bridge converts between host handles and owned buffers.
//
// Safety: a handle and length passed to the bridge must describe an
// accessible extent of host memory. The bridge cannot validate that for an
// opaque handle; allocators that can (Heap) will reject bad input, others
// will not.
type Bridge struct {
	mem ports.HostMemory
}

// NewBridge creates a Bridge over the given host allocator.
func NewBridge(mem ports.HostMemory) *Bridge {
	return &Bridge{mem: mem}
}

// Memory returns the allocator the bridge uses.
func (b *Bridge) Memory() ports.HostMemory {
	return b.mem
}

// ToOwned copies length bytes starting at h and appends one NUL byte.
// It does not release h.
func (b *Bridge) ToOwned(h Handle, length int) (OwnedBuffer, error) {
	if length < 0 {
		return OwnedBuffer{}, &errors.HandleError{Op: "copy", Handle: uintptr(h), Err: errors.ErrInvalidLength}
	}
	if h.IsNull() && length > 0 {
		return OwnedBuffer{}, &errors.HandleError{Op: "copy", Err: errors.ErrNullHandle}
	}

	data := make([]byte, length+1)
	if length > 0 {
		content, err := b.mem.Read(h, length)
		if err != nil {
			return OwnedBuffer{}, err
		}
		copy(data, content)
	}
	return OwnedBuffer{data: data}, nil
}

// FromOwned allocates a host block of exactly len(data) bytes and copies data
// into it. Ownership of the returned handle passes to the caller. No
// terminator is added.
func (b *Bridge) FromOwned(data []byte) (Handle, int32, error) {
	if len(data) > math.MaxInt32 {
		return 0, 0, &errors.MemoryError{Requested: len(data), Limit: math.MaxInt32}
	}

	h, err := b.mem.Alloc(len(data))
	if err != nil {
		return 0, 0, err
	}
	if len(data) > 0 {
		if err := b.mem.Write(h, data); err != nil {
			// The block never reached the caller, so it is still ours to free.
			return 0, 0, stdErrors.Join(err, b.mem.Free(h))
		}
	}
	return h, int32(len(data)), nil
}

// Release frees a handle obtained from the host. Calling Release twice on
// the same handle is undefined; use Borrow when release state must be
// tracked.
func (b *Bridge) Release(h Handle) error {
	return b.mem.Free(h)
}

// Borrow wraps a host handle so that its release is tracked.
func (b *Bridge) Borrow(h Handle, length int) *Borrowed {
	return &Borrowed{bridge: b, handle: h, length: length}
}

// Take copies a host handle into an owned buffer and releases it. The
// handle is released exactly once, even when the copy fails.
func (b *Bridge) Take(h Handle, length int) (OwnedBuffer, error) {
	borrowed := b.Borrow(h, length)
	buf, copyErr := borrowed.Copy()
	releaseErr := borrowed.Release()
	if copyErr != nil || releaseErr != nil {
		return OwnedBuffer{}, stdErrors.Join(copyErr, releaseErr)
	}
	return buf, nil
}
