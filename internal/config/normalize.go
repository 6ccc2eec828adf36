package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeCapture()
	c.normalizeRecorder()
	c.normalizeDeviceWatch()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.History.Path, err = expandPath(strings.TrimSpace(c.History.Path)); err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeCapture() {
	c.Capture.Camera = strings.ToLower(strings.TrimSpace(c.Capture.Camera))
	if c.Capture.Camera == "" {
		c.Capture.Camera = defaultCamera
	}
	c.Capture.Quality = strings.ToLower(strings.TrimSpace(c.Capture.Quality))
	if c.Capture.Quality == "" {
		c.Capture.Quality = defaultQuality
	}

	c.Capture.FFmpegBinary = strings.TrimSpace(c.Capture.FFmpegBinary)
	if value, ok := os.LookupEnv("REELCAM_FFMPEG"); ok && strings.TrimSpace(value) != "" {
		c.Capture.FFmpegBinary = strings.TrimSpace(value)
	}
	if c.Capture.FFmpegBinary == "" {
		c.Capture.FFmpegBinary = defaultFFmpegBinary
	}

	c.Capture.FrontDevice = strings.TrimSpace(c.Capture.FrontDevice)
	if value, ok := os.LookupEnv("REELCAM_FRONT_DEVICE"); ok && strings.TrimSpace(value) != "" {
		c.Capture.FrontDevice = strings.TrimSpace(value)
	}
	if c.Capture.FrontDevice == "" {
		c.Capture.FrontDevice = defaultFrontDevice
	}
	c.Capture.BackDevice = strings.TrimSpace(c.Capture.BackDevice)
	if value, ok := os.LookupEnv("REELCAM_BACK_DEVICE"); ok && strings.TrimSpace(value) != "" {
		c.Capture.BackDevice = strings.TrimSpace(value)
	}
	if c.Capture.BackDevice == "" {
		c.Capture.BackDevice = defaultBackDevice
	}

	c.Capture.AudioDevice = strings.TrimSpace(c.Capture.AudioDevice)
	if c.Capture.AudioDevice == "" {
		c.Capture.AudioDevice = defaultAudioDevice
	}
	if c.Capture.Framerate <= 0 {
		c.Capture.Framerate = defaultFramerate
	}
	if c.Capture.StopTimeoutSeconds <= 0 {
		c.Capture.StopTimeoutSeconds = defaultStopTimeoutSeconds
	}
}

func (c *Config) normalizeRecorder() {
	c.Recorder.StopStrategy = strings.ToLower(strings.TrimSpace(c.Recorder.StopStrategy))
	if c.Recorder.StopStrategy == "" {
		c.Recorder.StopStrategy = defaultStopStrategy
	}
	if c.Recorder.PollIntervalMS == 0 {
		c.Recorder.PollIntervalMS = defaultPollIntervalMS
	}
	if c.Recorder.PollAttempts == 0 {
		c.Recorder.PollAttempts = c.PollAttempts()
	}
	c.Recorder.PreferredFormat = strings.TrimSpace(c.Recorder.PreferredFormat)
	if c.Recorder.PreferredFormat == "" {
		c.Recorder.PreferredFormat = defaultPreferredFormat
	}
	c.Recorder.FallbackFormat = strings.TrimSpace(c.Recorder.FallbackFormat)
	if c.Recorder.FallbackFormat == "" {
		c.Recorder.FallbackFormat = defaultFallbackFormat
	}
}

func (c *Config) normalizeDeviceWatch() {
	c.DeviceWatch.Subsystem = strings.TrimSpace(c.DeviceWatch.Subsystem)
	if c.DeviceWatch.Subsystem == "" {
		c.DeviceWatch.Subsystem = defaultWatchSubsystem
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format != "json" {
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if len(c.Logging.ComponentOverrides) == 0 {
		c.Logging.ComponentOverrides = map[string]string{}
		return
	}
	normalized := make(map[string]string, len(c.Logging.ComponentOverrides))
	for component, level := range c.Logging.ComponentOverrides {
		key := strings.ToLower(strings.TrimSpace(component))
		if key == "" {
			continue
		}
		normalized[key] = strings.ToLower(strings.TrimSpace(level))
	}
	c.Logging.ComponentOverrides = normalized
}
