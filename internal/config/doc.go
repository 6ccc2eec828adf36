// Package config loads, normalizes, and validates reelcam configuration.
//
// Configuration lives in TOML (default ~/.config/reelcam/config.toml, or
// ./reelcam.toml when present). Load applies repository defaults, expands
// paths, honours the REELCAM_FFMPEG / REELCAM_FRONT_DEVICE /
// REELCAM_BACK_DEVICE environment overrides, and validates every preview frame
// before returning. CreateSample writes an annotated starter file.
package config
