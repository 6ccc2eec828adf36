package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"reelcam/internal/preview"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	StateDir string `toml:"state_dir"`
	LogDir   string `toml:"log_dir"`
}

// Capture contains camera and microphone settings for the ffmpeg platform.
type Capture struct {
	Camera             string `toml:"camera"`  // front or back
	Quality            string `toml:"quality"` // qvga, 480p, 720p, 1080p, 2160p, lowest, highest
	Audio              bool   `toml:"audio"`
	FrontDevice        string `toml:"front_device"`
	BackDevice         string `toml:"back_device"`
	AudioDevice        string `toml:"audio_device"`
	FFmpegBinary       string `toml:"ffmpeg_binary"`
	Framerate          int    `toml:"framerate"`
	StopTimeoutSeconds int    `toml:"stop_timeout_seconds"`
}

// Recorder controls how a stop waits for the encoder to flush.
type Recorder struct {
	StopStrategy    string `toml:"stop_strategy"` // event or poll
	PollIntervalMS  int    `toml:"poll_interval_ms"`
	PollAttempts    int    `toml:"poll_attempts"` // 0 derives from capture.stop_timeout_seconds
	PreferredFormat string `toml:"preferred_format"`
	FallbackFormat  string `toml:"fallback_format"`
}

// Preview holds the initial overlay frames.
type Preview struct {
	AutoShow bool                `toml:"auto_show"`
	Frames   []preview.FrameSpec `toml:"frames"`
}

// History toggles the SQLite recording ledger.
type History struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"` // Default: <state_dir>/history.db
}

// DeviceWatch toggles udev hotplug monitoring.
type DeviceWatch struct {
	Enabled   bool   `toml:"enabled"`
	Subsystem string `toml:"subsystem"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format             string            `toml:"format"`
	Level              string            `toml:"level"`
	ComponentOverrides map[string]string `toml:"component_overrides"`
}

// Config encapsulates all configuration values for reelcam.
//
// Configuration sections by subsystem:
//   - Paths: state (lock, history) and log directories
//   - Capture: camera facing, quality preset, device nodes, ffmpeg binary
//   - Recorder: stop-and-drain strategy and negotiated formats
//   - Preview: overlay frames and auto-show
//   - History: recording ledger
//   - DeviceWatch: video4linux hotplug monitoring
//   - Logging: log format, level, and per-component overrides
type Config struct {
	Paths       Paths       `toml:"paths"`
	Capture     Capture     `toml:"capture"`
	Recorder    Recorder    `toml:"recorder"`
	Preview     Preview     `toml:"preview"`
	History     History     `toml:"history"`
	DeviceWatch DeviceWatch `toml:"device_watch"`
	Logging     Logging     `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		if err := toml.NewDecoder(file).Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

// LoadFrames decodes a standalone TOML file holding [[frames]] tables.
func LoadFrames(path string) ([]preview.FrameSpec, error) {
	expanded, err := expandPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		return nil, fmt.Errorf("read frame file: %w", err)
	}
	var doc struct {
		Frames []preview.FrameSpec `toml:"frames"`
	}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse frame file: %w", err)
	}
	return doc.Frames, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("reelcam.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the state and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LockPath is the flock file guarding the single active capture session.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "reelcam.lock")
}

// HistoryPath returns the SQLite ledger location.
func (c *Config) HistoryPath() string {
	if strings.TrimSpace(c.History.Path) != "" {
		return c.History.Path
	}
	return filepath.Join(c.Paths.StateDir, "history.db")
}

// SessionLogDir holds per-session log files written by the record command.
func (c *Config) SessionLogDir() string {
	return filepath.Join(c.Paths.LogDir, "sessions")
}

// PollInterval returns the poll-strategy tick as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Recorder.PollIntervalMS) * time.Millisecond
}

// StopTimeout bounds how long the ffmpeg platform waits for the muxer to exit.
func (c *Config) StopTimeout() time.Duration {
	return time.Duration(c.Capture.StopTimeoutSeconds) * time.Second
}

// PollAttempts returns the configured poll-strategy attempt count, or, when
// unset, enough attempts to outlast StopTimeout plus stopDrainGrace.
func (c *Config) PollAttempts() int {
	if c.Recorder.PollAttempts > 0 {
		return c.Recorder.PollAttempts
	}
	interval := c.PollInterval()
	if interval <= 0 {
		interval = time.Duration(defaultPollIntervalMS) * time.Millisecond
	}
	budget := c.StopTimeout() + stopDrainGrace
	return int((budget + interval - 1) / interval)
}

// PollBound is the longest a poll-strategy stop waits for the flush.
func (c *Config) PollBound() time.Duration {
	return c.PollInterval() * time.Duration(c.PollAttempts())
}

// DeviceFor returns the configured video node for a facing ("front"/"back").
func (c *Config) DeviceFor(facing string) string {
	if strings.EqualFold(strings.TrimSpace(facing), "back") {
		return c.Capture.BackDevice
	}
	return c.Capture.FrontDevice
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
