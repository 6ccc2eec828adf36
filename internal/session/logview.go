package session

import (
	"log/slog"

	"reelcam/internal/logging"
	"reelcam/internal/preview"
)

// LogView is a headless preview.View that records every change at debug level.
type LogView struct {
	logger *slog.Logger
}

// NewLogView returns a view writing to logger.
func NewLogView(logger *slog.Logger) *LogView {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &LogView{logger: logger}
}

func (v *LogView) Apply(style preview.Style) {
	v.logger.Debug("preview style applied", logging.String("css", style.CSS()))
}

func (v *LogView) SetHidden(hidden bool) {
	v.logger.Debug("preview visibility changed", logging.Bool("hidden", hidden))
}

func (v *LogView) Remove() {
	v.logger.Debug("preview removed")
}
