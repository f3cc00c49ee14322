//go:build wasip1

package log

import "log/slog"

// A wasip1 plugin's stderr is read by the host line by line, so JSON lines
// on stderr are the default there.
func init() {
	slog.SetDefault(slog.New(NewHandler()))
}
