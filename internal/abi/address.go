package abi

import (
	"unsafe"

	"github.com/reglet-dev/ukagaka-sdk/domain/entities"
)

// addressOf returns the address of the first byte of buf as a Handle.
// buf must be non-empty and must stay referenced for as long as the
// handle is in use.
func addressOf(buf []byte) entities.Handle {
	//nolint:gosec // G103: the address is the handle the host sees
	return entities.Handle(uintptr(unsafe.Pointer(&buf[0])))
}
