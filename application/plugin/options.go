package plugin

import (
	"log/slog"

	"github.com/reglet-dev/ukagaka-sdk/domain/ports"
)

// Option configures an Adapter.
type Option func(*adapterConfig)

type adapterConfig struct {
	memory   ports.HostMemory
	codepage ports.CodepageSource
	process  *Process
	logger   *slog.Logger
}

func defaultAdapterConfig() adapterConfig {
	return adapterConfig{
		memory:   defaultHostMemory(),
		codepage: defaultCodepageSource(),
	}
}

// WithHostMemory sets the allocator that owns boundary handles.
// Defaults to GlobalAlloc on Windows and the process heap elsewhere.
func WithHostMemory(m ports.HostMemory) Option {
	return func(c *adapterConfig) {
		c.memory = m
	}
}

// WithCodepageSource sets where the legacy load entry point reads the
// active codepage from. Defaults to the OEM codepage on Windows and UTF-8
// elsewhere.
func WithCodepageSource(s ports.CodepageSource) Option {
	return func(c *adapterConfig) {
		c.codepage = s
	}
}

// WithProcess injects the process context. Tests use it to inspect the
// registries; by default every Adapter gets a fresh one.
func WithProcess(p *Process) Option {
	return func(c *adapterConfig) {
		c.process = p
	}
}

// WithLogger sets the logger for boundary diagnostics.
// Defaults to slog.Default() at construction time.
func WithLogger(l *slog.Logger) Option {
	return func(c *adapterConfig) {
		c.logger = l
	}
}
