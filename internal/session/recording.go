package session

import (
	"context"

	"reelcam/internal/artifact"
	"reelcam/internal/capture"
	"reelcam/internal/history"
	"reelcam/internal/logging"
	"reelcam/internal/recorder"
	"reelcam/internal/services"
)

// StartRecording begins recording. Without an encoder it is a logged no-op.
func (m *Manager) StartRecording(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ctx = m.opContext(ctx, "start_recording")
	var enc capture.Encoder
	if m.capture != nil {
		enc = m.capture.Encoder()
	}
	if meter, ok := enc.(capture.LevelMeter); ok {
		meter.OnLevel(m.emitVolume)
	}
	return m.controller.Start(ctx, enc)
}

// StopRecording stops the recording and returns a handle to its artifact.
// The manager lock is not held while the encoder drains.
func (m *Manager) StopRecording(ctx context.Context) (StopResult, error) {
	m.mu.Lock()
	ctx = m.opContext(ctx, "stop_recording")
	var (
		enc             capture.Encoder
		format          string
		facing, quality string
	)
	if m.capture != nil {
		enc = m.capture.Encoder()
		format = m.capture.Format()
		facing = string(m.capture.Facing())
		quality = string(m.capture.Quality())
	}
	sessionID := m.sessionID
	m.mu.Unlock()

	rec, err := m.controller.Stop(ctx, enc, format)
	if err != nil {
		return StopResult{}, err
	}
	if rec.Placeholder {
		return StopResult{Handle: artifact.PlaceholderHandle}, nil
	}

	art := m.artifacts.Put(rec.Data, rec.Format)
	result := StopResult{
		Handle:   art.Handle,
		Format:   art.Format,
		Duration: rec.Duration(),
		Bytes:    art.Size,
	}
	m.recordHistory(ctx, history.Entry{
		SessionID:    sessionID,
		Handle:       art.Handle,
		Format:       art.Format,
		DetectedType: art.DetectedType,
		SizeBytes:    art.Size,
		Camera:       facing,
		Quality:      quality,
		StartedAt:    rec.StartedAt,
		EndedAt:      rec.EndedAt,
		Duration:     rec.Duration(),
	})
	return result, nil
}

func (m *Manager) recordHistory(ctx context.Context, entry history.Entry) {
	if m.history == nil {
		return
	}
	logger := logging.WithContext(ctx, m.logger)
	if _, err := m.history.Record(ctx, entry); err != nil {
		logging.WarnWithContext(logger, "failed to record history entry", "history_record_failed",
			logging.String("handle", entry.Handle),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check history.path permissions"),
			logging.String(logging.FieldImpact, "recording missing from `reelcam history`"),
		)
	}
}

// GetDuration reports elapsed recording time in seconds.
func (m *Manager) GetDuration() (DurationResult, error) {
	d, err := m.controller.Duration()
	if err != nil {
		return DurationResult{}, err
	}
	return DurationResult{Seconds: d.Seconds()}, nil
}

// RecordingState reports the controller state.
func (m *Manager) RecordingState() recorder.State {
	return m.controller.State()
}

// FlipCamera reopens capture with the opposite facing. It never fails: while
// recording, or without capture, it only logs.
func (m *Manager) FlipCamera(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ctx = m.opContext(ctx, "flip_camera")
	logger := logging.WithContext(ctx, m.logger)
	if m.capture == nil || !m.capture.Available() {
		logger.Info("flip ignored: no capture device")
		return
	}
	if state := m.controller.State(); state != recorder.StateIdle {
		logging.WarnWithContext(logger, "flip ignored while recording", "flip_camera_ignored",
			logging.String(logging.FieldState, string(state)),
			logging.String(logging.FieldErrorHint, "stop the recording before flipping"),
			logging.String(logging.FieldImpact, "camera facing unchanged"),
		)
		return
	}
	next := m.capture.Facing().Opposite()
	if m.capture.Reopen(ctx, next, "") {
		logger.Info("camera flipped", logging.String("facing", string(next)))
	}
}

// SetQuality stores q and reopens capture when it is open and idle.
func (m *Manager) SetQuality(ctx context.Context, q string) error {
	quality, err := capture.ParseQuality(q)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "session", "set_quality", "quality", err)
	}
	m.reconfigure(ctx, "set_quality", func(s *capture.Session) { s.SetQuality(quality) })
	return nil
}

// SetCamera stores the facing and reopens capture when it is open and idle.
func (m *Manager) SetCamera(ctx context.Context, camera string) error {
	facing, err := capture.ParseFacing(camera)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "session", "set_camera", "camera", err)
	}
	m.reconfigure(ctx, "set_camera", func(s *capture.Session) { s.SetFacing(facing) })
	return nil
}

func (m *Manager) reconfigure(ctx context.Context, op string, apply func(*capture.Session)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.capture == nil {
		m.ignored(ctx, op)
		return
	}
	ctx = m.opContext(ctx, op)
	apply(m.capture)
	if !m.capture.Available() {
		return
	}
	if state := m.controller.State(); state != recorder.StateIdle {
		logging.WarnWithContext(logging.WithContext(ctx, m.logger), "capture change deferred while recording", "capture_reopen_deferred",
			logging.String(logging.FieldState, string(state)),
			logging.String(logging.FieldErrorHint, "stop the recording to apply the change"),
			logging.String(logging.FieldImpact, "applies on the next reopen"),
		)
		return
	}
	m.capture.Reopen(ctx, "", "")
}

// Facing returns the configured camera facing, or "" without a session.
func (m *Manager) Facing() capture.Facing {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.capture == nil {
		return ""
	}
	return m.capture.Facing()
}

// Quality returns the configured quality preset, or "" without a session.
func (m *Manager) Quality() capture.Quality {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.capture == nil {
		return ""
	}
	return m.capture.Quality()
}

// Format returns the negotiated container format, or "" without capture.
func (m *Manager) Format() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.capture == nil {
		return ""
	}
	return m.capture.Format()
}

// CaptureAvailable reports whether an encoder is open.
func (m *Manager) CaptureAvailable() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.capture != nil && m.capture.Available()
}

// Artifact describes a stored recording.
func (m *Manager) Artifact(handle string) (artifact.Artifact, error) {
	return m.artifacts.Get(handle)
}

// ArtifactBytes returns the raw container bytes for handle.
func (m *Manager) ArtifactBytes(handle string) ([]byte, error) {
	return m.artifacts.Bytes(handle)
}

// SaveArtifact writes handle to path and returns the final path.
func (m *Manager) SaveArtifact(handle, path string) (string, error) {
	return m.artifacts.WriteFile(handle, path)
}

// RevokeArtifact releases handle. It reports whether the handle existed.
func (m *Manager) RevokeArtifact(handle string) bool {
	return m.artifacts.Revoke(handle)
}
