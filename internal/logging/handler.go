package logging

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Iron-Ham/daylog/internal/severity"
)

// Handler is a slog.Handler that forwards records to a Logger, so code
// written against log/slog can feed the same sinks.
type Handler struct {
	logger *Logger
	attrs  []slog.Attr
	group  string
}

// NewSlogHandler returns a slog.Handler backed by logger.
func NewSlogHandler(logger *Logger) *Handler {
	return &Handler{logger: logger}
}

// LevelFromSlog maps a slog level onto the nearest severity.
// Levels above slog.LevelError by 4 or more map to Critical.
func LevelFromSlog(level slog.Level) severity.Level {
	switch {
	case level >= slog.LevelError+4:
		return severity.Critical
	case level >= slog.LevelError:
		return severity.Error
	case level >= slog.LevelWarn:
		return severity.Warning
	case level >= slog.LevelInfo:
		return severity.Info
	case level >= slog.LevelDebug:
		return severity.Debug
	default:
		return severity.Trace
	}
}

// Enabled implements slog.Handler.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return LevelFromSlog(level).Enabled(h.logger.MinLevel)
}

// Handle implements slog.Handler.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	data := make(map[string]string, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		addAttr(data, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		addAttr(data, h.group, a)
		return true
	})
	return h.logger.Log(LevelFromSlog(r.Level), r.Message, data)
}

// WithAttrs implements slog.Handler.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	next := &Handler{logger: h.logger, group: h.group}
	next.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	next.attrs = append(next.attrs, h.attrs...)
	for _, a := range attrs {
		if h.group != "" {
			a.Key = h.group + "." + a.Key
		}
		next.attrs = append(next.attrs, a)
	}
	return next
}

// WithGroup implements slog.Handler. Group names prefix attribute keys
// with a dot.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	group := name
	if h.group != "" {
		group = h.group + "." + name
	}
	return &Handler{logger: h.logger, attrs: h.attrs, group: group}
}

// addAttr flattens a into data, expanding nested groups.
func addAttr(data map[string]string, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	key := a.Key
	if prefix != "" {
		key = prefix + "." + key
	}

	if a.Value.Kind() == slog.KindGroup {
		// Inline groups have no key of their own.
		if a.Key == "" {
			key = prefix
		}
		for _, ga := range a.Value.Group() {
			addAttr(data, key, ga)
		}
		return
	}
	data[strings.TrimPrefix(key, ".")] = a.Value.String()
}
