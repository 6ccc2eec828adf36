package logging

import "log/slog"

// TeeLogger sends every record from base to handlers as well, each filtered
// by its own level. The record command mirrors a session into its own file
// this way.
func TeeLogger(base *slog.Logger, handlers ...slog.Handler) *slog.Logger {
	var sinks []slog.Handler
	if base != nil {
		sinks = append(sinks, base.Handler())
	}
	for _, h := range handlers {
		if h != nil {
			sinks = append(sinks, h)
		}
	}
	switch len(sinks) {
	case 0:
		return NewNop()
	case 1:
		return slog.New(sinks[0])
	}
	return slog.New(slog.NewMultiHandler(sinks...))
}
