// Package plugin adapts a Go implementation to the ukagaka DLL entry points
// (load, loadu, request, unload).
//
// The adapter owns every piece of boundary bookkeeping: it copies and frees
// host handles, decodes the module path, negotiates which load entry point
// initializes the plugin, and allocates the response handle. User code only
// sees owned Go values.
//
// Plugin authors call Register from an init function; main is not run when
// the plugin is built with -buildmode=c-shared.
package plugin

import (
	"context"

	"github.com/reglet-dev/ukagaka-sdk/internal/abi"
)

// Request is the owned copy of a request the host sent. Request.Bytes()
// is the payload, Request.CString() the payload plus a NUL terminator.
type Request = abi.OwnedBuffer

// Plugin is the interface every plugin must implement.
type Plugin interface {
	// Request handles one host request and returns the raw response bytes.
	// The response is copied to host memory unchanged; include a NUL
	// terminator if the host protocol expects one.
	Request(ctx context.Context, req Request) []byte
}

// Loader is implemented by plugins that need to initialize on load.
// modulePath is the decoded path of the plugin's own directory or file,
// exactly as the host supplied it.
type Loader interface {
	Load(ctx context.Context, modulePath string) bool
}

// Unloader is implemented by plugins that need to clean up on unload.
type Unloader interface {
	Unload(ctx context.Context) bool
}

// Funcs adapts plain functions to Plugin, Loader and Unloader.
// Nil fields behave like absent callbacks.
type Funcs struct {
	LoadFunc    func(ctx context.Context, modulePath string) bool
	RequestFunc func(ctx context.Context, req Request) []byte
	UnloadFunc  func(ctx context.Context) bool
}

// Load implements Loader.
func (f Funcs) Load(ctx context.Context, modulePath string) bool {
	if f.LoadFunc == nil {
		return true
	}
	return f.LoadFunc(ctx, modulePath)
}

// Request implements Plugin.
func (f Funcs) Request(ctx context.Context, req Request) []byte {
	if f.RequestFunc == nil {
		return nil
	}
	return f.RequestFunc(ctx, req)
}

// Unload implements Unloader.
func (f Funcs) Unload(ctx context.Context) bool {
	if f.UnloadFunc == nil {
		return true
	}
	return f.UnloadFunc(ctx)
}
