package recorder

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"reelcam/internal/capture"
	"reelcam/internal/logging"
	"reelcam/internal/services"
)

// Options configures a Controller. Zero values take the defaults.
type Options struct {
	Strategy     Strategy
	PollInterval time.Duration
	PollAttempts int
	Clock        func() time.Time
	Sleep        func(ctx context.Context, d time.Duration) error
	Logger       *slog.Logger
}

// Controller drives one encoder through start and stop. All methods are safe
// for concurrent use; no lock is held while waiting for a flush.
type Controller struct {
	mu        sync.Mutex
	strategy  Strategy
	interval  time.Duration
	attempts  int
	now       func() time.Time
	sleep     func(ctx context.Context, d time.Duration) error
	logger    *slog.Logger
	state     State
	startedAt time.Time
	endedAt   time.Time
	// cycle advances on Reset so a drain that outlives its session cannot
	// commit into the next one.
	cycle uint64
}

// New builds an idle controller.
func New(opts Options) *Controller {
	c := &Controller{
		strategy: opts.Strategy,
		interval: opts.PollInterval,
		attempts: opts.PollAttempts,
		now:      opts.Clock,
		sleep:    opts.Sleep,
		logger:   opts.Logger,
		state:    StateIdle,
	}
	if c.strategy == "" {
		c.strategy = StrategyEvent
	}
	if c.interval <= 0 {
		c.interval = DefaultPollInterval
	}
	if c.attempts <= 0 {
		c.attempts = DefaultPollAttempts
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.sleep == nil {
		c.sleep = sleepContext
	}
	if c.logger == nil {
		c.logger = logging.NewNop()
	}
	return c
}

// Start begins recording on enc. A nil encoder, a controller that is still
// stopping, or an encoder that is not startable are warned about and ignored.
// An error from the encoder itself is returned and leaves the controller idle.
func (c *Controller) Start(ctx context.Context, enc capture.Encoder) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	logger := logging.WithContext(ctx, c.logger)
	if enc == nil {
		logging.WarnWithContext(logger, "start ignored: no capture device", "recorder_start_ignored",
			logging.String(logging.FieldState, string(c.state)),
			logging.String(logging.FieldErrorHint, "check camera availability with `reelcam devices`"),
		)
		return nil
	}
	if c.state == StateStopping {
		logging.WarnWithContext(logger, "start ignored: previous stop still draining", "recorder_start_ignored",
			logging.String(logging.FieldState, string(c.state)),
			logging.String(logging.FieldErrorHint, "wait for the stop to finish or destroy the session"),
		)
		return nil
	}
	encoderState := enc.State()
	if !encoderState.Startable() {
		logging.WarnWithContext(logger, "start ignored: encoder cannot be started", "recorder_start_ignored",
			logging.String(logging.FieldState, string(c.state)),
			logging.String("encoder_state", string(encoderState)),
			logging.String(logging.FieldErrorHint, "stop the current recording first"),
			logging.String(logging.FieldImpact, "current recording continues"),
		)
		return nil
	}

	if err := enc.Start(); err != nil {
		return services.Wrap(services.ErrEncoder, "recorder", "start", "encoder refused to start", err)
	}
	c.endedAt = time.Time{}
	c.startedAt = c.now()
	c.state = StateRecording
	logger.Info("recording started", logging.String(logging.FieldState, string(c.state)))
	return nil
}

// Stop ends the recording on enc and blocks until its output is assembled.
// With no encoder it returns a placeholder recording.
func (c *Controller) Stop(ctx context.Context, enc capture.Encoder, format string) (Recording, error) {
	logger := logging.WithContext(ctx, c.logger)

	c.mu.Lock()
	if enc == nil {
		c.mu.Unlock()
		logging.WarnWithContext(logger, "stop without capture device; returning placeholder", "recorder_stop_placeholder",
			logging.String(logging.FieldImpact, "no video produced"),
		)
		return Recording{Placeholder: true}, nil
	}
	if c.state == StateStopping {
		c.mu.Unlock()
		return Recording{}, services.Wrap(services.ErrAlreadyStopping, "recorder", "stop", "a stop is already draining", nil)
	}
	if encoderState := enc.State(); encoderState != capture.EncoderRecording {
		c.mu.Unlock()
		return Recording{}, services.Wrap(services.ErrNotRecording, "recorder", "stop", "encoder state is "+string(encoderState), nil)
	}

	sub := enc.Subscribe()
	defer sub.Close()
	if err := enc.Stop(); err != nil {
		c.mu.Unlock()
		return Recording{}, services.Wrap(services.ErrEncoder, "recorder", "stop", "encoder refused to stop", err)
	}
	c.state = StateStopping
	startedAt := c.startedAt
	strategy := c.strategy
	cycle := c.cycle
	c.mu.Unlock()

	logger.Debug("draining encoder", logging.String("strategy", string(strategy)))

	var (
		chunks [][]byte
		err    error
	)
	if strategy == StrategyPoll {
		chunks, err = c.drainPoll(ctx, sub)
	} else {
		chunks, err = drainEvents(ctx, sub)
	}
	if err != nil {
		logging.ErrorWithContext(logger, "stop did not complete", "recorder_drain_failed",
			logging.String(logging.FieldState, string(StateStopping)),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "destroy the session to recover"),
			logging.String(logging.FieldImpact, "recording output unavailable"),
		)
		return Recording{}, err
	}

	c.mu.Lock()
	endedAt := c.now()
	superseded := c.cycle != cycle
	if !superseded {
		c.endedAt = endedAt
		c.state = StateIdle
	}
	c.mu.Unlock()

	rec := Recording{
		Data:       assemble(chunks),
		Format:     format,
		Chunks:     len(chunks),
		StartedAt:  startedAt,
		EndedAt:    endedAt,
		Superseded: superseded,
	}
	if superseded {
		logger.Debug("stop finished after reset; controller state left untouched")
	}
	logger.Info("recording stopped",
		logging.Int("chunks", rec.Chunks),
		logging.Int("bytes", len(rec.Data)),
		logging.Duration("duration", rec.Duration()),
		logging.String("format", format),
	)
	return rec, nil
}

// Duration is the elapsed recording time: up to the last stop, or up to now
// while recording.
func (c *Controller) Duration() (time.Duration, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.startedAt.IsZero() {
		return 0, services.Wrap(services.ErrNotStarted, "recorder", "duration", "recording has not started", nil)
	}
	end := c.endedAt
	if end.IsZero() {
		end = c.now()
	}
	return end.Sub(c.startedAt), nil
}

// Reset clears timestamps and returns to idle. A stop still draining from
// before the reset returns its recording without changing controller state.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cycle++
	c.state = StateIdle
	c.startedAt = time.Time{}
	c.endedAt = time.Time{}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// StartedAt returns the start time, or zero when absent.
func (c *Controller) StartedAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.startedAt
}

// EndedAt returns the end time, or zero when absent.
func (c *Controller) EndedAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.endedAt
}

func assemble(chunks [][]byte) []byte {
	size := 0
	for _, chunk := range chunks {
		size += len(chunk)
	}
	out := make([]byte, 0, size)
	for _, chunk := range chunks {
		out = append(out, chunk...)
	}
	return out
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
