package session

import (
	"context"
	"log/slog"
	"time"

	"reelcam/internal/artifact"
	"reelcam/internal/capture"
	"reelcam/internal/history"
	"reelcam/internal/logging"
	"reelcam/internal/preview"
)

// ViewFactory creates the external view for a new session.
type ViewFactory func(logger *slog.Logger) preview.View

// Option configures a Manager.
type Option func(*Manager)

// WithPlatform sets the capture platform. Without one the manager runs
// headless.
func WithPlatform(p capture.Platform) Option {
	return func(m *Manager) {
		m.platform = p
	}
}

// WithViewFactory replaces the default logging view.
func WithViewFactory(factory ViewFactory) Option {
	return func(m *Manager) {
		if factory != nil {
			m.newView = factory
		}
	}
}

// WithArtifactStore shares an artifact store with the host.
func WithArtifactStore(store *artifact.Store) Option {
	return func(m *Manager) {
		if store != nil {
			m.artifacts = store
		}
	}
}

// WithHistory records successful stops in the ledger.
func WithHistory(store *history.Store) Option {
	return func(m *Manager) {
		m.history = store
	}
}

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.base = logger
		}
	}
}

// WithClock overrides the time source used for durations and artifacts.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithSleep overrides the poll-strategy sleep.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(m *Manager) {
		if sleep != nil {
			m.sleep = sleep
		}
	}
}

// Options seeds one Initialize call. Zero values fall back to config.
type Options struct {
	// PreviewFrames replaces preview.frames from config when non-empty.
	PreviewFrames []preview.FrameSpec
	Camera        string
	Quality       string
	Audio         *bool
	// AutoShow shows the preview after the first render unless false.
	AutoShow *bool
}

// StopResult is what StopRecording hands back to the host.
type StopResult struct {
	Handle   string
	Format   string
	Duration time.Duration
	Bytes    int64
}

// DurationResult reports elapsed recording time.
type DurationResult struct {
	Seconds float64
}

func defaultView(logger *slog.Logger) preview.View {
	return NewLogView(logging.NewComponentLogger(logger, "view"))
}
