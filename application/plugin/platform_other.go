//go:build !windows

package plugin

import (
	"os"

	"github.com/reglet-dev/ukagaka-sdk/domain/ports"
	"github.com/reglet-dev/ukagaka-sdk/internal/abi"
	"github.com/reglet-dev/ukagaka-sdk/textcodec"
)

func defaultHostMemory() ports.HostMemory {
	return abi.Default()
}

func defaultCodepageSource() ports.CodepageSource {
	return textcodec.StaticCodepage(textcodec.CodepageUTF8)
}

func defaultModuleLocator() ports.ModuleLocator {
	return executableLocator{}
}

// executableLocator reports the running executable. Outside Windows the
// plugin is linked into its host, so this is the closest equivalent.
type executableLocator struct{}

func (executableLocator) ModulePath() (string, error) {
	return os.Executable()
}
