package host

import (
	"log/slog"
)

// Option defines a functional option for configuring the Executor.
type Option func(*Executor)

// WithLogger sets the logger used for executor diagnostics and for
// re-emitting guest log lines. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) {
		e.logger = l
	}
}

// WithMemoryLimitPages caps guest linear memory, in 64 KiB pages.
func WithMemoryLimitPages(pages uint32) Option {
	return func(e *Executor) {
		e.memoryLimitPages = pages
	}
}
