package session

import (
	"context"

	"reelcam/internal/devicewatch"
	"reelcam/internal/logging"
	"reelcam/internal/recorder"
)

// handleDeviceEvent reacts to hotplug of the configured camera nodes.
func (m *Manager) handleDeviceEvent(ctx context.Context, event devicewatch.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized || m.capture == nil {
		return
	}
	ctx = m.opContext(ctx, "device_"+string(event.Action))
	logger := logging.WithContext(ctx, m.logger).With(logging.String("device", event.Device))

	switch event.Action {
	case devicewatch.ActionRemove:
		if !m.capture.Available() || m.capture.DeviceID() != event.Device {
			return
		}
		if state := m.controller.State(); state != recorder.StateIdle {
			logging.WarnWithContext(logger, "camera removed during recording", "device_removed_recording",
				logging.String(logging.FieldState, string(state)),
				logging.String(logging.FieldErrorHint, "reconnect the camera and stop the recording"),
				logging.String(logging.FieldImpact, "recording may be truncated"),
			)
			return
		}
		if err := m.capture.Close(); err != nil {
			logger.Debug("capture close reported errors", logging.Error(err))
		}
		logging.WarnWithContext(logger, "camera removed; capture closed", "device_removed",
			logging.String(logging.FieldErrorHint, "reconnect the camera"),
			logging.String(logging.FieldImpact, "recording disabled until the camera returns"),
		)
	case devicewatch.ActionAdd:
		if m.capture.Available() || m.cfg.DeviceFor(string(m.capture.Facing())) != event.Device {
			return
		}
		if m.capture.Open(ctx) {
			logger.Info("camera returned; capture reopened")
		}
	}
}
