package logger

import (
	"context"
	"log/slog"
	"time"
)

// TeeHandler writes log records to a primary handler and mirrors them as JSON lines to a FileWriter
type TeeHandler struct {
	primary    slog.Handler
	fileWriter *FileWriter
	level      slog.Leveler
	attrs      []slog.Attr
	group      string
}

// NewTeeHandler creates a handler that writes to both the primary handler and file.
// level filters what reaches the file; the primary handler applies its own level.
func NewTeeHandler(primary slog.Handler, fileWriter *FileWriter, level slog.Leveler) *TeeHandler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &TeeHandler{
		primary:    primary,
		fileWriter: fileWriter,
		level:      level,
	}
}

func (h *TeeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.primary.Enabled(ctx, level) || (h.fileWriter != nil && level >= h.level.Level())
}

func (h *TeeHandler) Handle(ctx context.Context, r slog.Record) error {
	var primaryErr error
	if h.primary.Enabled(ctx, r.Level) {
		primaryErr = h.primary.Handle(ctx, r)
	}

	// file output is best effort
	if h.fileWriter != nil && r.Level >= h.level.Level() {
		_ = h.fileWriter.WriteEntry(h.entry(r))
	}

	return primaryErr
}

func (h *TeeHandler) entry(r slog.Record) map[string]any {
	entry := map[string]any{
		"time":    r.Time.Format(time.RFC3339Nano),
		"level":   r.Level.String(),
		"message": r.Message,
	}

	fields := entry
	if h.group != "" {
		fields = map[string]any{}
		entry[h.group] = fields
	}
	for _, a := range h.attrs {
		fields[a.Key] = a.Value.Resolve().Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		fields[a.Key] = a.Value.Resolve().Any()
		return true
	})

	return entry
}

func (h *TeeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.primary = h.primary.WithAttrs(attrs)
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &clone
}

func (h *TeeHandler) WithGroup(name string) slog.Handler {
	clone := *h
	clone.primary = h.primary.WithGroup(name)
	if clone.group == "" {
		clone.group = name
	} else {
		clone.group = h.group + "." + name
	}
	return &clone
}
