//go:build windows

package win32

import "golang.org/x/sys/windows"

// GMEM_FIXED: the returned HGLOBAL is the block's address.
const gmemFixed = 0x0000

var (
	kernel32        = windows.NewLazySystemDLL("kernel32.dll")
	procGlobalAlloc = kernel32.NewProc("GlobalAlloc")
	procGlobalFree  = kernel32.NewProc("GlobalFree")
	procGlobalSize  = kernel32.NewProc("GlobalSize")
	procGetOEMCP    = kernel32.NewProc("GetOEMCP")
)
