//go:build windows

package plugin

import (
	"github.com/reglet-dev/ukagaka-sdk/domain/ports"
	"github.com/reglet-dev/ukagaka-sdk/infrastructure/win32"
)

func defaultHostMemory() ports.HostMemory {
	return win32.GlobalMemory{}
}

func defaultCodepageSource() ports.CodepageSource {
	return win32.OEMCodepage{}
}

func defaultModuleLocator() ports.ModuleLocator {
	return win32.ModuleLocator{}
}
