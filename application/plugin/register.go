package plugin

import (
	"log/slog"
	"sync"

	"github.com/reglet-dev/ukagaka-sdk/internal/writeonce"
)

var (
	registered = writeonce.New[*Adapter]("plugin")

	// fallback serves entry points called before any Register; an
	// unregistered plugin still answers load/unload with success and
	// request with an empty response.
	fallback = sync.OnceValue(func() *Adapter {
		return NewAdapter(nil)
	})
)

// Register installs p as the plugin served by the exported entry points.
// The first registration wins; later calls are logged and ignored.
//
// Call it from an init function:
//
//	func init() {
//	    plugin.Register(&myPlugin{})
//	}
func Register(p Plugin, opts ...Option) *Adapter {
	a := NewAdapter(p, opts...)
	if err := registered.Set(a); err != nil {
		slog.Warn("sdk: plugin already registered, ignoring", "error", err)
		existing, _ := registered.Get()
		return existing
	}
	return a
}

// Registered returns the registered adapter, if any.
func Registered() (*Adapter, bool) {
	return registered.Get()
}

func current() *Adapter {
	if a, ok := registered.Get(); ok {
		return a
	}
	return fallback()
}

// ModulePath returns the module path registered by the first successful
// load or loadu, if any.
func ModulePath() (string, bool) {
	return current().Process().ModulePath()
}

// NativeModulePath returns the path of the loaded plugin binary as reported
// by the operating system. It does not consult or modify the module path
// registry.
func NativeModulePath() (string, error) {
	return defaultModuleLocator().ModulePath()
}
