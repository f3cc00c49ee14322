// Package win32 implements the Windows side of the plugin boundary:
// GlobalAlloc-backed host memory, the OEM codepage source and the native
// module path lookup. Everything except this file is Windows-only.
package win32
