// Package log provides structured logging (slog) for Mapp guests. A guest
// has no log sink of its own: records are written as JSON lines into the
// error stream, drained by flush_io, and re-emitted on the host by Forward.
package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"

	"github.com/metaview-dev/mapp-sdk/wireformat"
)

// Handler implements slog.Handler by writing one LogMessageWire per line.
type Handler struct {
	w     io.Writer
	mu    *sync.Mutex
	attrs []LogAttrWire
	group string
	opts  handlerConfig
}

// HandlerOption configures the Handler.
type HandlerOption func(*handlerConfig)

type handlerConfig struct {
	level     slog.Leveler
	addSource bool
}

// defaultHandlerConfig returns the default configuration.
func defaultHandlerConfig() handlerConfig {
	return handlerConfig{
		level: slog.LevelInfo,
	}
}

// WithLevel sets the minimum log level to report.
// Records below this level are dropped in the guest.
func WithLevel(level slog.Leveler) HandlerOption {
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

// NewHandler creates a Handler writing to w, typically guest.IOBuffer.Stderr.
func NewHandler(w io.Writer, opts ...HandlerOption) *Handler {
	cfg := defaultHandlerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Handler{w: w, mu: &sync.Mutex{}, opts: cfg}
}

// Enabled reports whether the handler handles records at the given level.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.level.Level()
}

// Handle encodes the record and writes it as a single line.
func (h *Handler) Handle(_ context.Context, record slog.Record) error {
	msg := LogMessageWire{
		Timestamp: record.Time,
		Level:     record.Level.String(),
		Message:   record.Message,
	}
	msg.Attrs = append(msg.Attrs, h.attrs...)
	record.Attrs(func(attr slog.Attr) bool {
		msg.Attrs = flatten(msg.Attrs, h.group, attr)
		return true
	})
	if h.opts.addSource && record.PC != 0 {
		frame, _ := runtime.CallersFrames([]uintptr{record.PC}).Next()
		msg.Source = fmt.Sprintf("%s:%d", frame.File, frame.Line)
	}

	line, err := wireformat.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode log record: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = io.WriteString(h.w, line+"\n")
	return err
}

// WithAttrs returns a Handler that adds attrs to every record.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append([]LogAttrWire(nil), h.attrs...)
	for _, a := range attrs {
		next.attrs = flatten(next.attrs, h.group, a)
	}
	return &next
}

// WithGroup returns a Handler that qualifies later attribute keys with name.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	if h.group != "" {
		next.group = h.group + "." + name
	} else {
		next.group = name
	}
	return &next
}
