//go:build wasip1

package abi

import (
	"log/slog"

	"github.com/reglet-dev/ukagaka-sdk/domain/entities"
)

// allocate reserves memory in the WASM linear memory and returns its offset.
// The host calls it to create request handles, then writes into the block.
// Returns 0 when the allocation limit would be exceeded.
//
//go:wasmexport allocate
func allocate(size uint32) uint32 {
	h, err := defaultHeap.Alloc(int(size))
	if err != nil {
		slog.Error("sdk: allocate failed", "size", size, "error", err)
		return 0
	}
	return uint32(h)
}

// deallocate frees a block the host owns: either one it allocated itself or
// a response handle returned by request. Unknown offsets are ignored so the
// host may free defensively.
//
//go:wasmexport deallocate
func deallocate(ptr uint32, size uint32) {
	if err := defaultHeap.Free(entities.Handle(ptr)); err != nil {
		slog.Debug("sdk: deallocate ignored", "ptr", ptr, "size", size, "error", err)
	}
}
