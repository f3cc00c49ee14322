//go:build windows && cgo

package plugin

/*
#include <windows.h>
*/
import "C"

import (
	"unsafe"
)

// The DLL entry points. The host passes GlobalAlloc handles and expects
// GlobalAlloc handles back; ownership follows the adapter's rules.

//export load
func load(h C.HGLOBAL, length C.long) C.BOOL {
	return toBOOL(current().Load(fromHGLOBAL(h), int32(length)))
}

//export loadu
func loadu(h C.HGLOBAL, length C.long) C.BOOL {
	return toBOOL(current().LoadU(fromHGLOBAL(h), int32(length)))
}

//export request
func request(h C.HGLOBAL, length *C.long) C.HGLOBAL {
	var n *int32
	if length != nil {
		v := int32(*length)
		n = &v
	}
	out := current().Request(fromHGLOBAL(h), n)
	if length != nil {
		*length = C.long(*n)
	}
	//nolint:govet // out is a GlobalAlloc(GMEM_FIXED) address owned by the host
	return C.HGLOBAL(unsafe.Pointer(uintptr(out)))
}

//export unload
func unload() C.BOOL {
	return toBOOL(current().Unload())
}

func fromHGLOBAL(h C.HGLOBAL) Handle {
	return Handle(uintptr(unsafe.Pointer(h)))
}

func toBOOL(b bool) C.BOOL {
	if b {
		return C.TRUE
	}
	return C.FALSE
}
