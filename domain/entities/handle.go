package entities

// Handle is the address of a block of memory whose allocator is the host.
// On Windows it is an HGLOBAL, on wasip1 an offset into linear memory.
// The zero Handle is the null handle.
type Handle uintptr

// IsNull reports whether h is the null handle.
func (h Handle) IsNull() bool {
	return h == 0
}
