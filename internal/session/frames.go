package session

import (
	"context"
	"strings"

	"reelcam/internal/logging"
	"reelcam/internal/preview"
	"reelcam/internal/services"
)

// AddPreviewFrameConfig adds spec, or replaces the frame with the same id.
func (m *Manager) AddPreviewFrameConfig(ctx context.Context, spec preview.FrameSpec) error {
	return m.upsertFrame(ctx, "add_preview_frame", spec, (*preview.Registry).Add)
}

// EditPreviewFrameConfig replaces the frame with spec's id, adding it when
// missing. Editing the current frame re-renders it.
func (m *Manager) EditPreviewFrameConfig(ctx context.Context, spec preview.FrameSpec) error {
	return m.upsertFrame(ctx, "edit_preview_frame", spec, (*preview.Registry).Edit)
}

func (m *Manager) upsertFrame(ctx context.Context, op string, spec preview.FrameSpec, apply func(*preview.Registry, preview.FrameConfig) error) error {
	if err := requireID(spec.ID, op); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		m.ignored(ctx, op)
		return nil
	}
	frame, err := preview.NewFrameConfig(spec)
	if err != nil {
		return err
	}
	if err := apply(m.registry, frame); err != nil {
		return err
	}
	logging.WithContext(m.opContext(ctx, op), m.logger).Debug("preview frame stored",
		logging.String("frame", frame.ID),
		logging.Int("frames", m.registry.Len()),
	)
	return nil
}

// SwitchToPreviewFrame makes id current and renders it.
func (m *Manager) SwitchToPreviewFrame(ctx context.Context, id string) error {
	const op = "switch_preview_frame"
	if err := requireID(id, op); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		m.ignored(ctx, op)
		return nil
	}
	if err := m.registry.SwitchTo(id); err != nil {
		return err
	}
	logging.WithContext(m.opContext(ctx, op), m.logger).Debug("preview frame switched", logging.String("frame", id))
	return nil
}

// ShowPreviewFrame makes the preview visible.
func (m *Manager) ShowPreviewFrame(ctx context.Context) {
	m.setVisible(ctx, "show_preview_frame", true)
}

// HidePreviewFrame hides the preview without touching the registry.
func (m *Manager) HidePreviewFrame(ctx context.Context) {
	m.setVisible(ctx, "hide_preview_frame", false)
}

func (m *Manager) setVisible(ctx context.Context, op string, visible bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		m.ignored(ctx, op)
		return
	}
	if visible {
		m.surface.Show()
	} else {
		m.surface.Hide()
	}
}

// CurrentFrame returns the current frame, if a session is open.
func (m *Manager) CurrentFrame() (preview.FrameConfig, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.registry == nil {
		return preview.FrameConfig{}, false
	}
	return m.registry.Current()
}

// Frames returns the registered frames in insertion order.
func (m *Manager) Frames() []preview.FrameConfig {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.registry == nil {
		return nil
	}
	return m.registry.Frames()
}

// Visible reports whether the preview is shown.
func (m *Manager) Visible() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.surface != nil && m.surface.Visible()
}

// Style returns the style last applied to the view.
func (m *Manager) Style() (preview.Style, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.surface == nil {
		return preview.Style{}, false
	}
	return m.surface.Style(), true
}

func requireID(id, op string) error {
	if strings.TrimSpace(id) == "" {
		return services.Wrap(services.ErrInvalidFrame, "session", op, "id required", nil)
	}
	return nil
}

func (m *Manager) ignored(ctx context.Context, op string) {
	logging.WarnWithContext(logging.WithContext(services.WithOperation(ctx, op), m.logger),
		"operation ignored: no session", "session_not_initialized",
		logging.String(logging.FieldErrorHint, "call Initialize first"),
	)
}
