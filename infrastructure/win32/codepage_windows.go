//go:build windows

package win32

// OEMCodepage reports the OEM codepage (GetOEMCP), which ukagaka hosts use
// for the path passed to the legacy load entry point.
type OEMCodepage struct{}

// ActiveCodepage implements ports.CodepageSource.
func (OEMCodepage) ActiveCodepage() uint32 {
	r, _, _ := procGetOEMCP.Call()
	return uint32(r)
}
