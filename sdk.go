// Package sdk is the entry point for writing ukagaka plugins in Go.
//
// A plugin registers itself from an init function and is built either as a
// Windows DLL (-buildmode=c-shared with cgo) or as a wasip1 module:
//
//	func init() {
//	    sdk.Register(sdk.Funcs{
//	        RequestFunc: func(ctx context.Context, req sdk.Request) []byte {
//	            return []byte("SHIORI/3.0 204 No Content\r\n\r\n")
//	        },
//	    })
//	}
//
// The SDK copies and frees every handle the host passes, decodes the module
// path, makes sure load and loadu initialize the plugin only once, and hands
// the response back in host-owned memory.
package sdk

import (
	"github.com/reglet-dev/ukagaka-sdk/application/plugin"
)

// Version is the SDK version.
const Version = "0.1.0"

type (
	// Plugin handles requests. See plugin.Plugin.
	Plugin = plugin.Plugin
	// Loader is implemented by plugins that initialize on load.
	Loader = plugin.Loader
	// Unloader is implemented by plugins that clean up on unload.
	Unloader = plugin.Unloader
	// Funcs adapts plain functions to a Plugin.
	Funcs = plugin.Funcs
	// Request is the owned copy of a host request.
	Request = plugin.Request
	// Option configures the adapter created by Register.
	Option = plugin.Option
)

// Register installs p as the plugin served by the exported entry points.
// Only the first call has an effect.
func Register(p Plugin, opts ...Option) {
	plugin.Register(p, opts...)
}

// ModulePath returns the module path the host passed to load or loadu.
func ModulePath() (string, bool) {
	return plugin.ModulePath()
}

// NativeModulePath returns the path of the plugin binary as reported by the
// operating system.
func NativeModulePath() (string, error) {
	return plugin.NativeModulePath()
}
