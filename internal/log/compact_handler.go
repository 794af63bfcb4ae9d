package log

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

// MaxAttrLen bounds string attribute values after flattening. Browser
// stack traces easily exceed this; the artifact file holds the full
// text, the log line only needs enough to identify it.
const MaxAttrLen = 512

// truncationMarker is appended to values cut at MaxAttrLen.
const truncationMarker = "...[truncated]"

// CompactHandler wraps an slog.Handler and normalizes string attribute
// values: newlines and carriage returns become single spaces, runs of
// whitespace collapse, and values longer than MaxAttrLen are cut.
type CompactHandler struct {
	// handler is the underlying slog handler that receives compacted records.
	handler slog.Handler
}

// NewCompactHandler creates a CompactHandler wrapping the given handler.
// If handler is nil, the returned CompactHandler wraps slog.Default().Handler().
func NewCompactHandler(handler slog.Handler) *CompactHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &CompactHandler{handler: handler}
}

// Enabled reports whether the handler handles records at the given level.
// It delegates to the underlying handler.
func (h *CompactHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle compacts the record's attributes and passes it on.
func (h *CompactHandler) Handle(ctx context.Context, r slog.Record) error {
	compacted := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		compacted.AddAttrs(h.compactAttr(a))
		return true
	})
	return h.handler.Handle(ctx, compacted)
}

// WithAttrs returns a new handler with the given attributes added,
// compacted first.
func (h *CompactHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	compacted := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		compacted[i] = h.compactAttr(a)
	}
	return &CompactHandler{handler: h.handler.WithAttrs(compacted)}
}

// WithGroup returns a new handler with the given group name.
func (h *CompactHandler) WithGroup(name string) slog.Handler {
	return &CompactHandler{handler: h.handler.WithGroup(name)}
}

// compactAttr compacts a single attribute, recursively handling groups.
func (h *CompactHandler) compactAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		compacted := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			compacted[i] = h.compactAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(compacted...)}
	}

	if a.Value.Kind() == slog.KindString {
		if flattened := Flatten(a.Value.String()); flattened != a.Value.String() {
			return slog.String(a.Key, flattened)
		}
	}
	return a
}

// Flatten folds a possibly multi-line string into one bounded line:
// whitespace runs (including newlines) become single spaces and the
// result is cut at MaxAttrLen with a truncation marker.
func Flatten(s string) string {
	if strings.ContainsAny(s, "\n\r\t") {
		s = strings.Join(strings.Fields(s), " ")
	}
	if len(s) > MaxAttrLen {
		s = s[:MaxAttrLen] + truncationMarker
	}
	return s
}

// NewLogger creates a *slog.Logger writing compacted text records to w.
//
// Parameters:
//   - w: The io.Writer to write log output to (typically os.Stderr)
//   - verbose: If true, sets log level to Debug; otherwise Warn
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}
	return slog.New(NewCompactHandler(slog.NewTextHandler(w, opts)))
}
