// Package log provides structured logging (slog) for plugins.
//
// Plugins usually have no console of their own. Handler writes each record
// as one JSON line (LogMessageWire) to stderr, where a wasip1 host picks it
// up, or to a log file next to the plugin binary.
package log

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"sync"
)

// Handler implements slog.Handler by writing LogMessageWire JSON lines.
type Handler struct {
	opts   handlerConfig
	mu     *sync.Mutex
	attrs  []LogAttrWire
	prefix string
}

// HandlerOption configures the Handler.
type HandlerOption func(*handlerConfig)

type handlerConfig struct {
	writer    io.Writer
	module    string
	level     slog.Level
	addSource bool
}

// defaultHandlerConfig returns the default configuration.
func defaultHandlerConfig() handlerConfig {
	return handlerConfig{
		writer: os.Stderr,
		level:  slog.LevelInfo,
	}
}

// WithLevel sets the minimum log level to report.
func WithLevel(level slog.Level) HandlerOption {
	return func(c *handlerConfig) {
		c.level = level
	}
}

// WithSource enables reporting of source location (file/line).
func WithSource(enabled bool) HandlerOption {
	return func(c *handlerConfig) {
		c.addSource = enabled
	}
}

// WithWriter sets the destination. Defaults to os.Stderr.
func WithWriter(w io.Writer) HandlerOption {
	return func(c *handlerConfig) {
		c.writer = w
	}
}

// WithModule tags every record with the plugin's name, so a host reading
// several plugins can tell them apart.
func WithModule(name string) HandlerOption {
	return func(c *handlerConfig) {
		c.module = name
	}
}

// NewHandler creates a new Handler with the given options.
func NewHandler(opts ...HandlerOption) *Handler {
	cfg := defaultHandlerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Handler{opts: cfg, mu: &sync.Mutex{}}
}

// Enabled reports whether the handler handles records at the given level.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.level
}

// Handle serializes a record as one JSON line.
func (h *Handler) Handle(_ context.Context, record slog.Record) error {
	msg := LogMessageWire{
		Timestamp: record.Time,
		Level:     record.Level.String(),
		Message:   record.Message,
		Module:    h.opts.module,
	}
	msg.Attrs = append(msg.Attrs, h.attrs...)
	record.Attrs(func(attr slog.Attr) bool {
		msg.Attrs = appendAttr(msg.Attrs, h.prefix, attr)
		return true
	})
	if h.opts.addSource && record.PC != 0 {
		frames := runtime.CallersFrames([]uintptr{record.PC})
		frame, _ := frames.Next()
		msg.Source = fmt.Sprintf("%s:%d", frame.File, frame.Line)
	}

	line, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal log message: %w", err)
	}
	line = append(line, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = h.opts.writer.Write(line)
	return err
}

// WithAttrs returns a new Handler that includes the given attributes.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	clone := *h
	clone.attrs = append([]LogAttrWire(nil), h.attrs...)
	for _, attr := range attrs {
		clone.attrs = appendAttr(clone.attrs, h.prefix, attr)
	}
	return &clone
}

// WithGroup returns a new Handler that qualifies later attribute keys with
// name. Groups are flattened to dotted keys on the wire.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}

// appendAttr flattens groups into dotted keys.
func appendAttr(dst []LogAttrWire, prefix string, attr slog.Attr) []LogAttrWire {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return dst
	}
	if attr.Value.Kind() == slog.KindGroup {
		groupPrefix := prefix
		if attr.Key != "" {
			groupPrefix = prefix + attr.Key + "."
		}
		for _, a := range attr.Value.Group() {
			dst = appendAttr(dst, groupPrefix, a)
		}
		return dst
	}
	attr.Key = prefix + attr.Key
	return append(dst, toLogAttrWire(attr))
}

// Install makes a Handler built from opts the slog default.
func Install(opts ...HandlerOption) *Handler {
	h := NewHandler(opts...)
	slog.SetDefault(slog.New(h))
	return h
}

// LogFileName is the file NewFileHandler writes to when given a directory.
const LogFileName = "ukagaka-sdk.log"

// NewFileHandler opens (appending) a log file next to the plugin and
// returns a Handler writing to it. modulePath is what load received: either
// the plugin directory or the plugin file itself. The caller closes the
// returned file when the plugin unloads.
func NewFileHandler(modulePath string, opts ...HandlerOption) (*Handler, io.Closer, error) {
	name := LogFilePath(modulePath)
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	opts = append(opts, WithWriter(f))
	return NewHandler(opts...), f, nil
}

// LogFilePath derives the log file location from a module path.
// "C:\ghost\plug\" gives "C:\ghost\plug\ukagaka-sdk.log" and
// "C:\ghost\plug\mod.dll" gives "C:\ghost\plug\mod.log".
func LogFilePath(modulePath string) string {
	if modulePath == "" {
		return LogFileName
	}
	if info, err := os.Stat(modulePath); (err == nil && info.IsDir()) || endsWithSeparator(modulePath) {
		return strings.TrimRight(modulePath, `\/`) + string(separatorOf(modulePath)) + LogFileName
	}
	base := modulePath
	if i := strings.LastIndexAny(base, `\/`); i >= 0 {
		if j := strings.LastIndexByte(base[i+1:], '.'); j > 0 {
			base = base[:i+1+j]
		}
	} else if j := strings.LastIndexByte(base, '.'); j > 0 {
		base = base[:j]
	}
	return base + ".log"
}

func endsWithSeparator(p string) bool {
	return strings.HasSuffix(p, `\`) || strings.HasSuffix(p, "/")
}

// separatorOf picks the separator style the host used; hosts pass Windows
// paths even to wasm builds.
func separatorOf(p string) byte {
	if strings.ContainsRune(p, '\\') {
		return '\\'
	}
	return '/'
}
