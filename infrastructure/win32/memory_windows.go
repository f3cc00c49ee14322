//go:build windows

package win32

import (
	"unsafe"

	"github.com/reglet-dev/ukagaka-sdk/domain/entities"
	"github.com/reglet-dev/ukagaka-sdk/domain/errors"
)

// GlobalMemory allocates host handles with GlobalAlloc(GMEM_FIXED) and
// frees them with GlobalFree, the allocator ukagaka hosts use on both
// sides of the boundary.
//
// Handles are not tracked: passing a handle the host did not allocate, or
// freeing one twice, is undefined.
type GlobalMemory struct{}

// Alloc implements ports.HostMemory. A zero size yields the null handle.
func (GlobalMemory) Alloc(size int) (entities.Handle, error) {
	if size < 0 {
		return 0, &errors.HandleError{Op: "allocate", Err: errors.ErrInvalidLength}
	}
	if size == 0 {
		return 0, nil
	}
	r, _, err := procGlobalAlloc.Call(gmemFixed, uintptr(size))
	if r == 0 {
		return 0, &errors.MemoryError{Err: err, Requested: size}
	}
	return entities.Handle(r), nil
}

// Free implements ports.HostMemory. Freeing the null handle is a no-op.
func (GlobalMemory) Free(h entities.Handle) error {
	if h.IsNull() {
		return nil
	}
	// GlobalFree returns NULL on success and the handle on failure.
	if r, _, err := procGlobalFree.Call(uintptr(h)); r != 0 {
		return &errors.HandleError{Op: "release", Handle: uintptr(h), Err: err}
	}
	return nil
}

// Read implements ports.HostMemory.
func (GlobalMemory) Read(h entities.Handle, n int) ([]byte, error) {
	if err := checkExtent(h, n, "copy"); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, view(h, n))
	return out, nil
}

// Write implements ports.HostMemory.
func (GlobalMemory) Write(h entities.Handle, data []byte) error {
	if err := checkExtent(h, len(data), "write"); err != nil {
		return err
	}
	copy(view(h, len(data)), data)
	return nil
}

// Size reports the size of a GlobalAlloc block. The host may have
// allocated more than the length it passes.
func (GlobalMemory) Size(h entities.Handle) int {
	r, _, _ := procGlobalSize.Call(uintptr(h))
	return int(r)
}

func checkExtent(h entities.Handle, n int, op string) error {
	if n < 0 {
		return &errors.HandleError{Op: op, Handle: uintptr(h), Err: errors.ErrInvalidLength}
	}
	if h.IsNull() && n > 0 {
		return &errors.HandleError{Op: op, Err: errors.ErrNullHandle}
	}
	return nil
}

func view(h entities.Handle, n int) []byte {
	if n == 0 {
		return nil
	}
	//nolint:govet // h is a GlobalAlloc(GMEM_FIXED) address, not a Go pointer
	return unsafe.Slice((*byte)(unsafe.Pointer(uintptr(h))), n)
}
