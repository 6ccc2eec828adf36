package capture

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"reelcam/internal/logging"
)

// Default container formats.
const (
	DefaultPreferredFormat = "video/mp4"
	DefaultFallbackFormat  = "video/webm;codecs=h264"
)

// SessionOptions seeds a Session.
type SessionOptions struct {
	Facing          Facing
	Quality         Quality
	Audio           bool
	PreferredFormat string
	FallbackFormat  string
}

// Session is the capture side of one recording session. Stream and Encoder
// may be absent; that is degraded mode, not an error.
type Session struct {
	mu       sync.Mutex
	platform Platform
	logger   *slog.Logger

	facing    Facing
	quality   Quality
	audio     bool
	preferred string
	fallback  string

	stream  Stream
	encoder Encoder
	format  string
}

// NewSession builds a closed session. platform may be nil.
func NewSession(platform Platform, opts SessionOptions, logger *slog.Logger) *Session {
	if opts.Facing == "" {
		opts.Facing = FacingFront
	}
	if opts.Quality == "" {
		opts.Quality = QualityHighest
	}
	if strings.TrimSpace(opts.PreferredFormat) == "" {
		opts.PreferredFormat = DefaultPreferredFormat
	}
	if strings.TrimSpace(opts.FallbackFormat) == "" {
		opts.FallbackFormat = DefaultFallbackFormat
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Session{
		platform:  platform,
		logger:    logger,
		facing:    opts.Facing,
		quality:   opts.Quality,
		audio:     opts.Audio,
		preferred: opts.PreferredFormat,
		fallback:  opts.FallbackFormat,
	}
}

// Open acquires the stream and encoder for the current facing and quality.
// It reports whether capture is available; failures are logged, never returned.
func (s *Session) Open(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.openLocked(ctx)
}

// Reopen closes the session and opens it again with new parameters.
func (s *Session) Reopen(ctx context.Context, facing Facing, quality Quality) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
	if facing != "" {
		s.facing = facing
	}
	if quality != "" {
		s.quality = quality
	}
	return s.openLocked(ctx)
}

// Close stops every stream track and releases the encoder. Idempotent.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeLocked()
}

// SetFacing records a facing for the next Open without touching the stream.
func (s *Session) SetFacing(facing Facing) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.facing = facing
}

// SetQuality records a quality preset for the next Open.
func (s *Session) SetQuality(quality Quality) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quality = quality
}

// Available reports whether an encoder is ready.
func (s *Session) Available() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.encoder != nil
}

// Encoder returns the current encoder, or nil.
func (s *Session) Encoder() Encoder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.encoder
}

// Format returns the negotiated MIME type, or "" when closed.
func (s *Session) Format() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.format
}

// DeviceID returns the opened device identifier, or "".
func (s *Session) DeviceID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stream == nil {
		return ""
	}
	return s.stream.DeviceID()
}

func (s *Session) Facing() Facing {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.facing
}

func (s *Session) Quality() Quality {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quality
}

func (s *Session) openLocked(ctx context.Context) bool {
	if s.encoder != nil {
		return true
	}
	if s.platform == nil {
		s.logger.Info("no capture platform; running without camera")
		return false
	}

	constraints := ConstraintsFor(s.facing, s.quality, s.audio)
	stream, err := s.platform.Open(ctx, constraints)
	if err != nil {
		hint := "check the camera device node and permissions"
		if errors.Is(err, ErrUnavailable) {
			hint = "connect a camera or set capture.front_device/back_device"
		}
		logging.WarnWithContext(s.logger, "capture device unavailable", "capture_open_failed",
			logging.String("facing", string(s.facing)),
			logging.String("quality", string(s.quality)),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, hint),
			logging.String(logging.FieldImpact, "recording disabled; preview operations still work"),
		)
		return false
	}

	format := s.fallback
	if s.platform.SupportsFormat(s.preferred) {
		format = s.preferred
	}
	encoder, err := s.platform.NewEncoder(stream, format)
	if err != nil {
		_ = stream.Close()
		logging.WarnWithContext(s.logger, "encoder unavailable", "encoder_create_failed",
			logging.String("format", format),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "run `reelcam devices` to check ffmpeg muxer support"),
			logging.String(logging.FieldImpact, "recording disabled; preview operations still work"),
		)
		return false
	}

	s.stream = stream
	s.encoder = encoder
	s.format = format
	s.logger.Info("capture opened",
		logging.String("device", stream.DeviceID()),
		logging.String("facing", string(s.facing)),
		logging.String("facing_mode", constraints.FacingMode),
		logging.String("quality", string(s.quality)),
		logging.Int("width", constraints.Width),
		logging.Int("height", constraints.Height),
		logging.Bool("audio", s.audio),
		logging.String("format", format),
	)
	return true
}

func (s *Session) closeLocked() error {
	var errs []error
	if s.encoder != nil {
		if err := s.encoder.Close(); err != nil {
			errs = append(errs, err)
		}
		s.encoder = nil
	}
	if s.stream != nil {
		if err := s.stream.Close(); err != nil {
			errs = append(errs, err)
		}
		s.logger.Debug("capture closed", logging.String("device", s.stream.DeviceID()))
		s.stream = nil
	}
	s.format = ""
	return errors.Join(errs...)
}
