//go:build windows

package win32

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// anchor lives in the plugin image, so its address identifies our module.
var anchor byte

// ModuleLocator resolves the path of the DLL this package is linked into.
type ModuleLocator struct{}

// ModulePath implements ports.ModuleLocator.
func (ModuleLocator) ModulePath() (string, error) {
	var module windows.Handle
	flags := uint32(windows.GET_MODULE_HANDLE_EX_FLAG_FROM_ADDRESS | windows.GET_MODULE_HANDLE_EX_FLAG_UNCHANGED_REFCOUNT)
	if err := windows.GetModuleHandleEx(flags, (*uint16)(unsafe.Pointer(&anchor)), &module); err != nil {
		return "", fmt.Errorf("locate module: %w", err)
	}

	buf := make([]uint16, windows.MAX_PATH)
	for {
		n, err := windows.GetModuleFileName(module, &buf[0], uint32(len(buf)))
		if err != nil {
			return "", fmt.Errorf("module file name: %w", err)
		}
		// A full buffer means the name was truncated.
		if int(n) < len(buf) {
			return windows.UTF16ToString(buf[:n]), nil
		}
		buf = make([]uint16, len(buf)*2)
	}
}
