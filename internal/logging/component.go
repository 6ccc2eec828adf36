package logging

import (
	"context"
	"log/slog"
	"strings"
)

// ComponentLogger tags logger with component and raises its minimum level to
// the matching entry of overrides (component name to level name). Matching
// ignores case.
func ComponentLogger(logger *slog.Logger, component string, overrides map[string]string) *slog.Logger {
	out := NewComponentLogger(logger, component)
	for name, level := range overrides {
		if strings.EqualFold(strings.TrimSpace(name), component) {
			return slog.New(minLevelHandler{next: out.Handler(), min: ParseLevel(level)})
		}
	}
	return out
}

// minLevelHandler drops records below min before they reach next. It never
// lowers next's own threshold.
type minLevelHandler struct {
	next slog.Handler
	min  slog.Level
}

func (h minLevelHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.min && h.next.Enabled(ctx, level)
}

func (h minLevelHandler) Handle(ctx context.Context, record slog.Record) error {
	if record.Level < h.min {
		return nil
	}
	return h.next.Handle(ctx, record)
}

func (h minLevelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return minLevelHandler{next: h.next.WithAttrs(attrs), min: h.min}
}

func (h minLevelHandler) WithGroup(name string) slog.Handler {
	return minLevelHandler{next: h.next.WithGroup(name), min: h.min}
}
