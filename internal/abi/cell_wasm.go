//go:build wasip1

package abi

import (
	"encoding/binary"
	"unsafe"
)

// ReadInt32 reads the little-endian i32 the host stored at ptr.
// A zero ptr reads as 0.
func ReadInt32(ptr uint32) int32 {
	if ptr == 0 {
		return 0
	}
	//nolint:govet // ptr is a linear memory offset supplied by the host
	cell := unsafe.Slice((*byte)(unsafe.Pointer(uintptr(ptr))), 4)
	return int32(binary.LittleEndian.Uint32(cell))
}

// WriteInt32 stores v at ptr as a little-endian i32. A zero ptr is ignored.
func WriteInt32(ptr uint32, v int32) {
	if ptr == 0 {
		return
	}
	//nolint:govet // ptr is a linear memory offset supplied by the host
	cell := unsafe.Slice((*byte)(unsafe.Pointer(uintptr(ptr))), 4)
	binary.LittleEndian.PutUint32(cell, uint32(v))
}
