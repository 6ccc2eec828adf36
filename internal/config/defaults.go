package config

import "time"

const (
	defaultConfigPath         = "~/.config/reelcam/config.toml"
	defaultStateDir           = "~/.local/share/reelcam"
	defaultLogDir             = "~/.local/share/reelcam/logs"
	defaultCamera             = "front"
	defaultQuality            = "highest"
	defaultFrontDevice        = "/dev/video0"
	defaultBackDevice         = "/dev/video2"
	defaultAudioDevice        = "default"
	defaultFFmpegBinary       = "ffmpeg"
	defaultFramerate          = 30
	defaultStopTimeoutSeconds = 10
	defaultStopStrategy       = "event"
	defaultPollIntervalMS     = 10
	defaultPreferredFormat    = "video/mp4"
	defaultFallbackFormat     = "video/webm;codecs=h264"
	defaultWatchSubsystem     = "video4linux"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"

	// stopDrainGrace covers ffmpeg's exit after a kill plus the flush.
	stopDrainGrace = 2 * time.Second
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Capture: Capture{
			Camera:             defaultCamera,
			Quality:            defaultQuality,
			Audio:              false,
			FrontDevice:        defaultFrontDevice,
			BackDevice:         defaultBackDevice,
			AudioDevice:        defaultAudioDevice,
			FFmpegBinary:       defaultFFmpegBinary,
			Framerate:          defaultFramerate,
			StopTimeoutSeconds: defaultStopTimeoutSeconds,
		},
		Recorder: Recorder{
			StopStrategy:    defaultStopStrategy,
			PollIntervalMS:  defaultPollIntervalMS,
			PreferredFormat: defaultPreferredFormat,
			FallbackFormat:  defaultFallbackFormat,
		},
		Preview: Preview{
			AutoShow: true,
		},
		History: History{
			Enabled: true,
		},
		DeviceWatch: DeviceWatch{
			Enabled:   false,
			Subsystem: defaultWatchSubsystem,
		},
		Logging: Logging{
			Format:             defaultLogFormat,
			Level:              defaultLogLevel,
			ComponentOverrides: map[string]string{},
		},
	}
}
