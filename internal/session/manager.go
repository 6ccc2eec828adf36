package session

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"reelcam/internal/artifact"
	"reelcam/internal/capture"
	"reelcam/internal/config"
	"reelcam/internal/devicewatch"
	"reelcam/internal/history"
	"reelcam/internal/logging"
	"reelcam/internal/preview"
	"reelcam/internal/recorder"
	"reelcam/internal/services"
)

// Manager owns one recording session at a time.
type Manager struct {
	cfg       *config.Config
	platform  capture.Platform
	newView   ViewFactory
	artifacts *artifact.Store
	history   *history.Store
	base      *slog.Logger
	logger    *slog.Logger
	now       func() time.Time
	sleep     func(ctx context.Context, d time.Duration) error

	controller *recorder.Controller

	mu          sync.Mutex
	initialized bool
	sessionID   string
	log         *slog.Logger
	registry    *preview.Registry
	surface     *preview.Surface
	capture     *capture.Session
	lock        *flock.Flock
	watcher     *devicewatch.Monitor
	stopWatch   context.CancelFunc

	volumeMu sync.Mutex
	onVolume func(db float64)
}

// New constructs an uninitialized manager. cfg may be nil, in which case
// config.Default is used.
func New(cfg *config.Config, opts ...Option) *Manager {
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}
	m := &Manager{
		cfg:     cfg,
		newView: defaultView,
		base:    logging.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = logging.NewComponentLogger(m.base, "session")
	if m.artifacts == nil {
		m.artifacts = artifact.NewStore(artifact.WithClock(m.now))
	}

	strategy, err := recorder.ParseStrategy(cfg.Recorder.StopStrategy)
	if err != nil {
		strategy = recorder.StrategyEvent
	}
	m.controller = recorder.New(recorder.Options{
		Strategy:     strategy,
		PollInterval: cfg.PollInterval(),
		PollAttempts: cfg.PollAttempts(),
		Clock:        m.now,
		Sleep:        m.sleep,
		Logger:       logging.ComponentLogger(m.base, "recorder", cfg.Logging.ComponentOverrides),
	})
	return m
}

// Initialize starts a session. It fails only for invalid preview frames or
// unparseable camera and quality options; missing capture hardware degrades
// the session instead.
func (m *Manager) Initialize(ctx context.Context, opts Options) error {
	specs := opts.PreviewFrames
	if len(specs) == 0 {
		specs = m.cfg.Preview.Frames
	}
	frames := make([]preview.FrameConfig, 0, len(specs))
	for _, spec := range specs {
		frame, err := preview.NewFrameConfig(spec)
		if err != nil {
			return err
		}
		frames = append(frames, frame)
	}

	facing, quality, audio, err := m.captureOptions(opts)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		m.destroyLocked(ctx)
	}

	m.sessionID = uuid.NewString()
	m.log = logging.WithSessionID(m.logger, m.sessionID)
	ctx = services.WithSessionID(services.WithOperation(ctx, "initialize"), m.sessionID)
	logger := logging.WithContext(ctx, m.logger)

	scoped := logging.WithSessionID(m.base, m.sessionID)
	m.surface = preview.NewSurface(m.newView(scoped))
	m.registry = preview.NewRegistry(m.surface.Render)
	if err := m.registry.Reset(frames); err != nil {
		m.surface.Remove()
		m.surface, m.registry = nil, nil
		return err
	}
	if current, ok := m.registry.Current(); ok {
		m.surface.Render(current)
	}
	show := m.cfg.Preview.AutoShow
	if opts.AutoShow != nil {
		show = *opts.AutoShow
	}
	if show {
		m.surface.Show()
	}

	m.controller.Reset()
	platform := m.platform
	if platform != nil && !m.acquireLockLocked(logger) {
		platform = nil
	}
	m.capture = capture.NewSession(platform, capture.SessionOptions{
		Facing:          facing,
		Quality:         quality,
		Audio:           audio,
		PreferredFormat: m.cfg.Recorder.PreferredFormat,
		FallbackFormat:  m.cfg.Recorder.FallbackFormat,
	}, logging.ComponentLogger(scoped, "capture", m.cfg.Logging.ComponentOverrides))
	m.capture.Open(ctx)

	if platform != nil {
		m.startWatcherLocked(scoped)
	}

	m.initialized = true
	logger.Info("session initialized",
		logging.Int("frames", m.registry.Len()),
		logging.Bool("visible", m.surface.Visible()),
		logging.Bool("capture", m.capture.Available()),
		logging.String("facing", string(facing)),
		logging.String("quality", string(quality)),
		logging.String("format", m.capture.Format()),
	)
	return nil
}

func (m *Manager) captureOptions(opts Options) (capture.Facing, capture.Quality, bool, error) {
	camera := opts.Camera
	if camera == "" {
		camera = m.cfg.Capture.Camera
	}
	facing, err := capture.ParseFacing(camera)
	if err != nil {
		return "", "", false, services.Wrap(services.ErrConfiguration, "session", "initialize", "camera", err)
	}
	q := opts.Quality
	if q == "" {
		q = m.cfg.Capture.Quality
	}
	quality, err := capture.ParseQuality(q)
	if err != nil {
		return "", "", false, services.Wrap(services.ErrConfiguration, "session", "initialize", "quality", err)
	}
	audio := m.cfg.Capture.Audio
	if opts.Audio != nil {
		audio = *opts.Audio
	}
	return facing, quality, audio, nil
}

// acquireLockLocked takes the per-state-dir capture lock. A held lock leaves
// the session without capture.
func (m *Manager) acquireLockLocked(logger *slog.Logger) bool {
	path := m.cfg.LockPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		logging.WarnWithContext(logger, "capture lock directory unavailable", "capture_lock_failed",
			logging.String("lock", path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check paths.state_dir permissions"),
			logging.String(logging.FieldImpact, "recording disabled for this session"),
		)
		return false
	}
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		logging.WarnWithContext(logger, "capture lock failed", "capture_lock_failed",
			logging.String("lock", path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check paths.state_dir permissions"),
			logging.String(logging.FieldImpact, "recording disabled for this session"),
		)
		return false
	}
	if !ok {
		logging.WarnWithContext(logger, "another reelcam session holds the camera", "capture_lock_busy",
			logging.String("lock", path),
			logging.String(logging.FieldErrorHint, "stop the other reelcam process"),
			logging.String(logging.FieldImpact, "recording disabled for this session"),
		)
		return false
	}
	m.lock = lock
	return true
}

func (m *Manager) startWatcherLocked(logger *slog.Logger) {
	watcher := devicewatch.New(m.cfg, logger, m.handleDeviceEvent)
	if watcher == nil {
		return
	}
	watchCtx, cancel := context.WithCancel(context.Background())
	watchCtx = services.WithSessionID(watchCtx, m.sessionID)
	if err := watcher.Start(watchCtx); err != nil {
		cancel()
		return
	}
	m.watcher = watcher
	m.stopWatch = cancel
}

// Destroy tears the session down. Safe without Initialize and when repeated.
func (m *Manager) Destroy(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.destroyLocked(ctx)
}

func (m *Manager) destroyLocked(ctx context.Context) {
	if m.watcher != nil {
		m.watcher.Stop()
		m.watcher = nil
	}
	if m.stopWatch != nil {
		m.stopWatch()
		m.stopWatch = nil
	}
	if m.surface != nil {
		m.surface.Remove()
		m.surface = nil
	}
	if m.registry != nil {
		m.registry.Clear()
		m.registry = nil
	}
	logger := m.log
	if logger == nil {
		logger = m.logger
	}
	if m.capture != nil {
		if err := m.capture.Close(); err != nil {
			logger.Debug("capture close reported errors", logging.Error(err))
		}
		m.capture = nil
	}
	m.controller.Reset()
	if m.lock != nil {
		if err := m.lock.Unlock(); err != nil {
			logging.WarnWithContext(logger, "failed to release capture lock", "capture_unlock_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "next session may start without capture"),
			)
		}
		m.lock = nil
	}
	if m.initialized {
		logging.WithContext(services.WithOperation(ctx, "destroy"), logger).Info("session destroyed")
	}
	m.initialized = false
	m.sessionID = ""
	m.log = nil
}

// SessionID returns the current session id, or "" when none is open.
func (m *Manager) SessionID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessionID
}

// opContext tags ctx with the session id and operation name.
func (m *Manager) opContext(ctx context.Context, op string) context.Context {
	ctx = services.WithOperation(ctx, op)
	if m.sessionID != "" {
		ctx = services.WithSessionID(ctx, m.sessionID)
	}
	return ctx
}
