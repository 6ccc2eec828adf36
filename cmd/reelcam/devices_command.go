package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"reelcam/internal/capture"
	"reelcam/internal/capture/ffmpeg"
	"reelcam/internal/preflight"
)

func newDevicesCommand(ctx *commandContext) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "devices",
		Short: "Check capture devices and encoder support",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			results := preflight.RunAll(cmd.Context(), cfg)
			lines := renderSectionHeader("devices", colorize)
			ffmpegReady := false
			for _, result := range results {
				lines = append(lines, preflightStatusLine(result, colorize))
				if result.Name == "FFmpeg" && result.Passed {
					ffmpegReady = true
				}
			}

			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("capture", colorize)...)
			facing, err := capture.ParseFacing(cfg.Capture.Camera)
			if err != nil {
				return err
			}
			quality, err := capture.ParseQuality(cfg.Capture.Quality)
			if err != nil {
				return err
			}
			constraints := capture.ConstraintsFor(facing, quality, cfg.Capture.Audio)
			lines = append(lines,
				renderStatusLine("Camera", statusInfo, fmt.Sprintf("%s (%s) on %s", facing, constraints.FacingMode, valueOrDash(cfg.DeviceFor(string(facing)))), colorize),
				renderStatusLine("Quality", statusInfo, fmt.Sprintf("%s (%dx%d)", quality, constraints.Width, constraints.Height), colorize),
				renderStatusLine("Audio", statusInfo, yesNo(constraints.Audio), colorize),
			)

			if ffmpegReady {
				platform := ffmpeg.New(cfg)
				for _, mime := range formatCandidates(cfg.Recorder.PreferredFormat, cfg.Recorder.FallbackFormat) {
					if platform.SupportsFormat(mime) {
						lines = append(lines, renderStatusLine("Format", statusOK, mime, colorize))
					} else {
						lines = append(lines, renderStatusLine("Format", statusWarn, mime+" not supported", colorize))
					}
				}
			} else {
				lines = append(lines, renderStatusLine("Format", statusInfo, "Skipped (ffmpeg unavailable)", colorize))
			}

			fmt.Fprintln(out, strings.Join(lines, "\n"))

			if strict && !preflight.Ready(results) {
				return errors.New("required capture checks failed")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when a required check fails")
	return cmd
}

func preflightStatusLine(result preflight.Result, colorize bool) string {
	kind := statusOK
	if !result.Passed {
		kind = statusError
		if result.Optional {
			kind = statusWarn
		}
	}
	return renderStatusLine(result.Name, kind, result.Detail, colorize)
}

func formatCandidates(preferred, fallback string) []string {
	var out []string
	for _, mime := range []string{preferred, fallback} {
		mime = strings.TrimSpace(mime)
		if mime == "" {
			continue
		}
		if len(out) > 0 && out[0] == mime {
			continue
		}
		out = append(out, mime)
	}
	return out
}
