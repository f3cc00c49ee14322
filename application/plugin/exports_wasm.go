//go:build wasip1

package plugin

import (
	"github.com/reglet-dev/ukagaka-sdk/internal/abi"
)

// The wasip1 entry points mirror the DLL ones. Handles are offsets into
// linear memory obtained from the module's allocate export; request's
// second argument is the offset of an i32 length cell.

//go:wasmexport load
func wasmLoad(h uint32, length int32) int32 {
	return boolToInt32(current().Load(Handle(h), length))
}

//go:wasmexport loadu
func wasmLoadU(h uint32, length int32) int32 {
	return boolToInt32(current().LoadU(Handle(h), length))
}

//go:wasmexport request
func wasmRequest(h uint32, lengthPtr uint32) uint32 {
	var length *int32
	if lengthPtr != 0 {
		n := abi.ReadInt32(lengthPtr)
		length = &n
	}
	out := current().Request(Handle(h), length)
	if length != nil {
		abi.WriteInt32(lengthPtr, *length)
	}
	return uint32(out)
}

//go:wasmexport unload
func wasmUnload() int32 {
	return boolToInt32(current().Unload())
}

func boolToInt32(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
