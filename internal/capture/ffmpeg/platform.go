package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"time"

	"reelcam/internal/capture"
	"reelcam/internal/config"
	"reelcam/internal/logging"
	"reelcam/internal/preflight"
)

const (
	muxerQueryTimeout  = 5 * time.Second
	defaultStopTimeout = 10 * time.Second
)

// Option configures the platform.
type Option func(*Platform)

// WithRunner injects a custom runner (primarily for tests).
func WithRunner(r Runner) Option {
	return func(p *Platform) {
		if r != nil {
			p.runner = r
		}
	}
}

// WithLogger sets the platform logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Platform) {
		if logger != nil {
			p.logger = logging.NewComponentLogger(logger, "ffmpeg")
		}
	}
}

// WithDeviceCheck replaces the device node check.
func WithDeviceCheck(check func(path string) error) Option {
	return func(p *Platform) {
		if check != nil {
			p.checkDevice = check
		}
	}
}

// Platform captures from V4L2 nodes through ffmpeg.
type Platform struct {
	binary      string
	front       string
	back        string
	audioDevice string
	framerate   int
	stopTimeout time.Duration
	runner      Runner
	logger      *slog.Logger
	checkDevice func(path string) error
	lookPath    func(string) (string, error)

	muxersOnce sync.Once
	muxers     map[string]bool
}

var _ capture.Platform = (*Platform)(nil)

// New constructs a platform from the capture section of cfg.
func New(cfg *config.Config, opts ...Option) *Platform {
	p := &Platform{
		binary:      "ffmpeg",
		stopTimeout: defaultStopTimeout,
		runner:      commandRunner{},
		logger:      logging.NewComponentLogger(nil, "ffmpeg"),
		checkDevice: deviceNodeCheck,
		lookPath:    exec.LookPath,
	}
	if cfg != nil {
		if bin := strings.TrimSpace(cfg.Capture.FFmpegBinary); bin != "" {
			p.binary = bin
		}
		p.front = cfg.Capture.FrontDevice
		p.back = cfg.Capture.BackDevice
		p.audioDevice = cfg.Capture.AudioDevice
		p.framerate = cfg.Capture.Framerate
		if timeout := cfg.StopTimeout(); timeout > 0 {
			p.stopTimeout = timeout
		}
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func deviceNodeCheck(path string) error {
	result := preflight.CheckDeviceNode("camera", path)
	if !result.Passed {
		return errors.New(result.Detail)
	}
	return nil
}

// Open resolves the node for the requested facing. The process is not
// spawned until the encoder starts.
func (p *Platform) Open(_ context.Context, constraints capture.Constraints) (capture.Stream, error) {
	device := p.front
	if constraints.Facing == capture.FacingBack {
		device = p.back
	}
	if strings.TrimSpace(device) == "" {
		return nil, fmt.Errorf("%w: no %s device configured", capture.ErrUnavailable, constraints.Facing)
	}
	if err := p.checkDevice(device); err != nil {
		return nil, fmt.Errorf("%w: %w", capture.ErrUnavailable, err)
	}
	if _, err := p.lookPath(p.binary); err != nil {
		return nil, fmt.Errorf("%w: ffmpeg binary %q not found", capture.ErrUnavailable, p.binary)
	}
	return &stream{device: device, constraints: constraints}, nil
}

// SupportsFormat reports whether the local ffmpeg build can mux mime.
// The muxer list is queried once per platform.
func (p *Platform) SupportsFormat(mime string) bool {
	container, ok := Container(mime)
	if !ok {
		return false
	}
	p.muxersOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), muxerQueryTimeout)
		defer cancel()
		out, err := p.runner.Output(ctx, p.binary, []string{"-hide_banner", "-muxers"})
		if err != nil {
			p.logger.Debug("muxer query failed", logging.Error(err))
			p.muxers = map[string]bool{}
			return
		}
		p.muxers = parseMuxers(string(out))
	})
	return p.muxers[container]
}

// NewEncoder returns an idle encoder bound to stream.
func (p *Platform) NewEncoder(s capture.Stream, mime string) (capture.Encoder, error) {
	st, ok := s.(*stream)
	if !ok || st == nil {
		return nil, fmt.Errorf("ffmpeg: foreign stream %T", s)
	}
	spec := Spec{
		Device:      st.device,
		AudioDevice: p.audioDevice,
		Audio:       st.constraints.Audio,
		Width:       st.constraints.Width,
		Height:      st.constraints.Height,
		Framerate:   p.framerate,
		Format:      mime,
	}
	args, err := BuildArgs(spec)
	if err != nil {
		return nil, err
	}
	return &encoder{
		binary:      p.binary,
		args:        args,
		runner:      p.runner,
		stopTimeout: p.stopTimeout,
		audio:       spec.Audio,
		logger:      p.logger.With(logging.String("device", st.device)),
		state:       capture.EncoderInactive,
	}, nil
}

type stream struct {
	mu          sync.Mutex
	device      string
	constraints capture.Constraints
	closed      bool
}

func (s *stream) DeviceID() string { return s.device }

func (s *stream) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}
