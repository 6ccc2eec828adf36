package testsupport

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"reelcam/internal/config"
	"reelcam/internal/preview"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// History and device watching are off unless an option enables them.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Capture.FrontDevice = filepath.Join(base, "dev", "video0")
	cfgVal.Capture.BackDevice = filepath.Join(base, "dev", "video2")
	cfgVal.History.Enabled = false
	cfgVal.DeviceWatch.Enabled = false

	builder := &configBuilder{t: t, baseDir: base, cfg: &cfgVal}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithPollStrategy switches the recorder to the poll drain strategy.
func WithPollStrategy(interval time.Duration, attempts int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Recorder.StopStrategy = "poll"
		b.cfg.Recorder.PollIntervalMS = int(interval / time.Millisecond)
		b.cfg.Recorder.PollAttempts = attempts
	}
}

// WithHistory enables the SQLite ledger under the state directory.
func WithHistory() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = true
	}
}

// WithFrames sets the configured preview frames.
func WithFrames(frames ...preview.FrameSpec) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Preview.Frames = frames
	}
}

// WithAutoShow overrides preview.auto_show.
func WithAutoShow(show bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Preview.AutoShow = show
	}
}

// WithDeviceNodes creates placeholder files for the front and back device
// paths so access checks succeed.
func WithDeviceNodes() ConfigOption {
	return func(b *configBuilder) {
		for _, path := range []string{b.cfg.Capture.FrontDevice, b.cfg.Capture.BackDevice} {
			WriteFile(b.t, path, nil)
		}
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, ffmpeg is stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}
		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
