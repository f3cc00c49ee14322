package plugin

import (
	"context"
	"log/slog"
	"runtime/debug"

	"github.com/reglet-dev/ukagaka-sdk/domain/errors"
	"github.com/reglet-dev/ukagaka-sdk/internal/abi"
	"github.com/reglet-dev/ukagaka-sdk/textcodec"
)

// Handle is a host-owned memory handle as seen by the entry points.
type Handle = abi.Handle

// Adapter turns the raw entry point calls into calls on a Plugin.
//
// Every handle an entry point receives is copied and released before any
// user code runs, so user code never sees host memory. Every handle an
// entry point returns was allocated through the configured HostMemory and
// belongs to the host from then on.
type Adapter struct {
	plugin     Plugin
	bridge     *abi.Bridge
	process    *Process
	negotiator *Negotiator
	logger     *slog.Logger
}

// NewAdapter creates an Adapter for p. A nil p behaves like an empty Funcs.
func NewAdapter(p Plugin, opts ...Option) *Adapter {
	cfg := defaultAdapterConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.process == nil {
		cfg.process = NewProcess()
	}
	if p == nil {
		p = Funcs{}
	}

	decoder := textcodec.NewDecoder(cfg.codepage, textcodec.WithLogger(cfg.logger))
	return &Adapter{
		plugin:     p,
		bridge:     abi.NewBridge(cfg.memory),
		process:    cfg.process,
		negotiator: NewNegotiator(cfg.process, decoder, cfg.logger),
		logger:     cfg.logger,
	}
}

// Process returns the adapter's process context.
func (a *Adapter) Process() *Process {
	return a.process
}

// Negotiator returns the adapter's load negotiator.
func (a *Adapter) Negotiator() *Negotiator {
	return a.negotiator
}

// Load implements the legacy load entry point. h is released before
// anything else happens, including when a loadu outcome is already cached.
func (a *Adapter) Load(h Handle, length int32) bool {
	raw, err := a.bridge.Take(h, int(length))
	if err != nil {
		a.logger.Error("sdk: failed to take load handle", "error", err)
		return false
	}
	return a.negotiator.Legacy(a.context(), raw, a.loadCallback("load"))
}

// LoadU implements the loadu entry point.
func (a *Adapter) LoadU(h Handle, length int32) bool {
	raw, err := a.bridge.Take(h, int(length))
	if err != nil {
		a.logger.Error("sdk: failed to take loadu handle", "error", err)
		return false
	}
	return a.negotiator.Unicode(a.context(), raw, a.loadCallback("loadu"))
}

// Request implements the request entry point. length carries the request
// length in and the response length out; a nil length is treated as an
// empty request and receives nothing. A zero handle with length 0 is
// returned when the plugin produced no response or allocation failed.
func (a *Adapter) Request(h Handle, length *int32) Handle {
	n := 0
	if length != nil {
		n = int(*length)
	}
	setLength := func(v int32) {
		if length != nil {
			*length = v
		}
	}

	req, err := a.bridge.Take(h, n)
	if err != nil {
		a.logger.Error("sdk: failed to take request handle", "error", err)
		setLength(0)
		return 0
	}

	var resp []byte
	err = a.invoke("request", func(ctx context.Context) {
		resp = a.plugin.Request(ctx, req)
	})
	if err != nil {
		a.logger.Error("sdk: request callback failed", "error", err)
		resp = nil
	}

	out, outLen, err := a.bridge.FromOwned(resp)
	if err != nil {
		a.logger.Error("sdk: failed to allocate response", "size", len(resp), "error", err)
		setLength(0)
		return 0
	}
	setLength(outLen)
	return out
}

// Unload implements the unload entry point.
func (a *Adapter) Unload() bool {
	u, ok := a.plugin.(Unloader)
	if !ok {
		return true
	}

	var result bool
	if err := a.invoke("unload", func(ctx context.Context) {
		result = u.Unload(ctx)
	}); err != nil {
		a.logger.Error("sdk: unload callback failed", "error", err)
		return false
	}
	return result
}

func (a *Adapter) loadCallback(entry string) loadCallback {
	return func(ctx context.Context, modulePath string) (bool, error) {
		l, ok := a.plugin.(Loader)
		if !ok {
			return true, nil
		}
		var result bool
		err := a.invoke(entry, func(ctx context.Context) {
			result = l.Load(ctx, modulePath)
		})
		if err != nil {
			return false, err
		}
		return result, nil
	}
}

func (a *Adapter) context() context.Context {
	return contextWithProcess(context.Background(), a.process)
}

// invoke runs a user callback and converts a panic into a *errors.CallbackError.
// A panic must not unwind into the host.
func (a *Adapter) invoke(name string, fn func(ctx context.Context)) (err error) {
	defer func() {
		if r := recover(); r != nil {
			stack := debug.Stack()
			a.logger.Debug("sdk: recovered callback panic", "callback", name, "stack", string(stack))
			err = &errors.CallbackError{Callback: name, Recovered: r, Stack: stack}
		}
	}()
	fn(a.context())
	return nil
}
