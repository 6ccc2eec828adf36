package ffmpeg

import (
	"fmt"
	"strconv"
	"strings"
)

// Spec describes one capture invocation.
type Spec struct {
	Device      string
	AudioDevice string
	Audio       bool
	Width       int
	Height      int
	Framerate   int
	Format      string
}

// Container maps a MIME tag onto the ffmpeg muxer that produces it.
// Unknown tags report false.
func Container(mime string) (string, bool) {
	base, _, _ := strings.Cut(strings.ToLower(strings.TrimSpace(mime)), ";")
	switch strings.TrimSpace(base) {
	case "video/mp4":
		return "mp4", true
	case "video/webm", "video/x-matroska":
		// h264 in webm is only legal as matroska.
		if strings.Contains(strings.ToLower(mime), "h264") || strings.HasSuffix(base, "matroska") {
			return "matroska", true
		}
		return "webm", true
	default:
		return "", false
	}
}

// BuildArgs renders the ffmpeg argument list for spec, writing to stdout.
func BuildArgs(spec Spec) ([]string, error) {
	container, ok := Container(spec.Format)
	if !ok {
		return nil, fmt.Errorf("unsupported format %q", spec.Format)
	}
	if strings.TrimSpace(spec.Device) == "" {
		return nil, fmt.Errorf("video device required")
	}

	args := []string{"-hide_banner", "-loglevel", "error", "-f", "v4l2"}
	if spec.Framerate > 0 {
		args = append(args, "-framerate", strconv.Itoa(spec.Framerate))
	}
	if spec.Width > 0 && spec.Height > 0 {
		args = append(args, "-video_size", fmt.Sprintf("%dx%d", spec.Width, spec.Height))
	}
	args = append(args, "-i", spec.Device)

	if spec.Audio {
		audioDevice := strings.TrimSpace(spec.AudioDevice)
		if audioDevice == "" {
			audioDevice = "default"
		}
		args = append(args, "-f", "alsa", "-i", audioDevice)
	}

	if container == "webm" {
		args = append(args, "-c:v", "libvpx-vp9", "-deadline", "realtime")
	} else {
		args = append(args, "-c:v", "libx264", "-preset", "veryfast", "-pix_fmt", "yuv420p")
	}
	if spec.Audio {
		args = append(args, "-af", levelFilter())
		if container == "mp4" {
			args = append(args, "-c:a", "aac")
		} else {
			args = append(args, "-c:a", "libopus")
		}
	}

	if container == "mp4" {
		args = append(args, "-movflags", "frag_keyframe+empty_moov+default_base_moof")
	}
	args = append(args, "-f", container, "pipe:1")
	return args, nil
}

// parseMuxers reads `ffmpeg -muxers` output into a set of muxer names.
func parseMuxers(output string) map[string]bool {
	muxers := make(map[string]bool)
	inTable := false
	for _, line := range strings.Split(output, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "--" {
			inTable = true
			continue
		}
		if !inTable || trimmed == "" {
			continue
		}
		fields := strings.Fields(trimmed)
		if len(fields) < 2 || !strings.Contains(fields[0], "E") {
			continue
		}
		for _, name := range strings.Split(fields[1], ",") {
			muxers[name] = true
		}
	}
	return muxers
}
