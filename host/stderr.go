package host

import (
	"bytes"
	"context"
	"log/slog"
	"sync"

	sdklog "github.com/reglet-dev/ukagaka-sdk/log"
)

// logWriter receives guest stderr and re-emits each JSON log line through
// the host logger. Lines that are not log records are logged verbatim.
type logWriter struct {
	logger *slog.Logger
	mu     sync.Mutex
	buf    bytes.Buffer
}

func newLogWriter(logger *slog.Logger) *logWriter {
	return &logWriter{logger: logger}
}

func (w *logWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf.Write(p)
	for {
		line, err := w.buf.ReadBytes('\n')
		if err != nil {
			// Incomplete line: keep it for the next write.
			w.buf.Reset()
			w.buf.Write(line)
			break
		}
		w.emit(bytes.TrimRight(line, "\r\n"))
	}
	return len(p), nil
}

// Flush emits a trailing line that was never terminated.
func (w *logWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.buf.Len() > 0 {
		w.emit(w.buf.Bytes())
		w.buf.Reset()
	}
}

func (w *logWriter) emit(line []byte) {
	if len(bytes.TrimSpace(line)) == 0 {
		return
	}
	ctx := context.Background()
	msg, err := sdklog.ParseLine(line)
	if err != nil {
		w.logger.Info("plugin stderr", "line", string(line))
		return
	}
	record := msg.Record()
	if !w.logger.Handler().Enabled(ctx, record.Level) {
		return
	}
	_ = w.logger.Handler().WithAttrs([]slog.Attr{slog.Bool("plugin", true)}).Handle(ctx, record)
}
