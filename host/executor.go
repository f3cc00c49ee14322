package host

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
)

// Exports every plugin module must provide. loadu is optional: hosts fall
// back to load when it is missing.
var requiredExports = []string{"allocate", "deallocate", "load", "request", "unload"}

// ErrMissingExport is returned when a module lacks a required export.
var ErrMissingExport = errors.New("missing export")

// Executor manages the lifecycle of wasm plugins.
type Executor struct {
	runtime          wazero.Runtime
	logger           *slog.Logger
	memoryLimitPages uint32
}

// NewExecutor creates a new executor with the given options.
func NewExecutor(ctx context.Context, opts ...Option) (*Executor, error) {
	e := &Executor{}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}

	cfg := wazero.NewRuntimeConfig()
	if e.memoryLimitPages > 0 {
		cfg = cfg.WithMemoryLimitPages(e.memoryLimitPages)
	}
	rt := wazero.NewRuntimeWithConfig(ctx, cfg)
	if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("failed to instantiate wasi: %w", err)
	}
	e.runtime = rt
	return e, nil
}

// Close releases resources held by the executor and every plugin it loaded.
func (e *Executor) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}

// PluginInstance represents an instantiated plugin module.
type PluginInstance struct {
	module api.Module
	stderr *logWriter
	logger *slog.Logger
}

// LoadPlugin instantiates a plugin module. The module is treated as a
// reactor: _start is not run, _initialize is if present.
func (e *Executor) LoadPlugin(ctx context.Context, wasmBytes []byte) (*PluginInstance, error) {
	compiled, err := e.runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to compile module: %w", err)
	}

	exported := compiled.ExportedFunctions()
	for _, name := range requiredExports {
		if _, ok := exported[name]; !ok {
			_ = compiled.Close(ctx)
			return nil, fmt.Errorf("%w: %s", ErrMissingExport, name)
		}
	}

	stderr := newLogWriter(e.logger)
	cfg := wazero.NewModuleConfig().
		WithName("").
		WithStartFunctions().
		WithStderr(stderr)

	mod, err := e.runtime.InstantiateModule(ctx, compiled, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to instantiate module: %w", err)
	}

	if init := mod.ExportedFunction("_initialize"); init != nil {
		if _, err := init.Call(ctx); err != nil {
			_ = mod.Close(ctx)
			return nil, fmt.Errorf("failed to call _initialize: %w", err)
		}
	}

	return &PluginInstance{module: mod, stderr: stderr, logger: e.logger}, nil
}

// Close closes the module and flushes any partial log line.
func (p *PluginInstance) Close(ctx context.Context) error {
	p.stderr.Flush()
	return p.module.Close(ctx)
}

// HasExport reports whether the module exports a function called name.
func (p *PluginInstance) HasExport(name string) bool {
	return p.module.ExportedFunction(name) != nil
}
