package ports

import "github.com/reglet-dev/ukagaka-sdk/domain/entities"

// HostMemory is the allocator that owns handles crossing the ABI boundary.
// Infrastructure adapters (GlobalAlloc on Windows, the tracked heap on
// wasip1 and in tests) implement this interface.
//
// Implementations are not required to validate that a handle and length
// describe an accessible extent; that is a precondition of the caller.
type HostMemory interface {
	// Alloc reserves size bytes and returns a handle the host may own.
	Alloc(size int) (entities.Handle, error)

	// Free releases a handle. Freeing the same handle twice is undefined
	// unless the implementation documents otherwise.
	Free(h entities.Handle) error

	// Read copies n bytes starting at h into a fresh slice.
	Read(h entities.Handle, n int) ([]byte, error)

	// Write copies data to the memory starting at h.
	Write(h entities.Handle, data []byte) error
}
