package config

import (
	"errors"
	"fmt"
	"slices"

	"reelcam/internal/preview"
	"reelcam/internal/services"
)

var (
	validCameras    = []string{"front", "back"}
	validQualities  = []string{"qvga", "480p", "720p", "1080p", "2160p", "lowest", "highest"}
	validStrategies = []string{"event", "poll"}
	validLogLevels  = []string{"debug", "info", "warn", "warning", "error"}
)

// Validate ensures the configuration is usable. Failures carry
// services.ErrConfiguration.
func (c *Config) Validate() error {
	for _, check := range []func() error{
		c.validatePaths,
		c.validateCapture,
		c.validateRecorder,
		c.validatePreview,
		c.validateLogging,
	} {
		if err := check(); err != nil {
			return fmt.Errorf("%w: %w", services.ErrConfiguration, err)
		}
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.StateDir == "" {
		return errors.New("paths.state_dir must be set")
	}
	return nil
}

func (c *Config) validateCapture() error {
	if !slices.Contains(validCameras, c.Capture.Camera) {
		return fmt.Errorf("capture.camera must be one of %v, got %q", validCameras, c.Capture.Camera)
	}
	if !slices.Contains(validQualities, c.Capture.Quality) {
		return fmt.Errorf("capture.quality must be one of %v, got %q", validQualities, c.Capture.Quality)
	}
	if c.Capture.Framerate > 240 {
		return fmt.Errorf("capture.framerate must be at most 240, got %d", c.Capture.Framerate)
	}
	return nil
}

func (c *Config) validateRecorder() error {
	if !slices.Contains(validStrategies, c.Recorder.StopStrategy) {
		return fmt.Errorf("recorder.stop_strategy must be one of %v, got %q", validStrategies, c.Recorder.StopStrategy)
	}
	if c.Recorder.PollIntervalMS < 0 {
		return errors.New("recorder.poll_interval_ms must be positive")
	}
	if c.Recorder.PollAttempts < 0 {
		return errors.New("recorder.poll_attempts must be positive")
	}
	if c.Recorder.StopStrategy == "poll" && c.PollBound() < c.StopTimeout() {
		return fmt.Errorf("recorder poll bound %s (poll_interval_ms x poll_attempts) is shorter than capture.stop_timeout_seconds (%s); raise poll_attempts or leave it unset",
			c.PollBound(), c.StopTimeout())
	}
	return nil
}

func (c *Config) validatePreview() error {
	for idx, spec := range c.Preview.Frames {
		if _, err := preview.NewFrameConfig(spec); err != nil {
			return fmt.Errorf("preview.frames[%d]: %w", idx, err)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !slices.Contains(validLogLevels, c.Logging.Level) {
		return fmt.Errorf("logging.level must be one of %v, got %q", validLogLevels, c.Logging.Level)
	}
	for component, level := range c.Logging.ComponentOverrides {
		if !slices.Contains(validLogLevels, level) {
			return fmt.Errorf("logging.component_overrides.%s: unknown level %q", component, level)
		}
	}
	return nil
}
