package preflight

import (
	"context"

	"reelcam/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string
	Passed   bool
	Optional bool
	Detail   string
}

// RunAll executes every applicable check for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckFFmpeg(ctx, cfg.Capture.FFmpegBinary),
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckDeviceNode("Front camera", cfg.Capture.FrontDevice),
	}

	// A single-camera machine is normal; only the front node is required.
	back := CheckDeviceNode("Back camera", cfg.Capture.BackDevice)
	back.Optional = true
	results = append(results, back)

	return results
}

// Ready reports whether every required result passed.
func Ready(results []Result) bool {
	for _, r := range results {
		if !r.Passed && !r.Optional {
			return false
		}
	}
	return true
}
