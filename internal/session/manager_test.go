package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"reelcam/internal/capture"
	"reelcam/internal/config"
	"reelcam/internal/preview"
	"reelcam/internal/services"
	"reelcam/internal/testsupport"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type harness struct {
	manager  *Manager
	platform *testsupport.FakePlatform
	clock    *fakeClock
	views    []*testsupport.FakeView
	cfg      *config.Config
}

func (h *harness) view() *testsupport.FakeView {
	if len(h.views) == 0 {
		return nil
	}
	return h.views[len(h.views)-1]
}

func newHarness(t *testing.T, cfg *config.Config, platform *testsupport.FakePlatform, opts ...Option) *harness {
	t.Helper()
	h := &harness{platform: platform, clock: newFakeClock(), cfg: cfg}
	base := []Option{
		WithClock(h.clock.Now),
		WithViewFactory(func(*slog.Logger) preview.View {
			v := &testsupport.FakeView{}
			h.views = append(h.views, v)
			return v
		}),
	}
	if platform != nil {
		base = append(base, WithPlatform(platform))
	}
	h.manager = New(cfg, append(base, opts...)...)
	t.Cleanup(func() { h.manager.Destroy(context.Background()) })
	return h
}

func specs(ids ...string) []preview.FrameSpec {
	out := make([]preview.FrameSpec, 0, len(ids))
	for _, id := range ids {
		out = append(out, preview.FrameSpec{ID: id})
	}
	return out
}

func currentID(t *testing.T, m *Manager) string {
	t.Helper()
	frame, ok := m.CurrentFrame()
	if !ok {
		t.Fatal("expected a current frame")
	}
	return frame.ID
}

func TestFrameSwitchingScenario(t *testing.T) {
	h := newHarness(t, testsupport.NewConfig(t), nil)
	ctx := context.Background()

	if err := h.manager.Initialize(ctx, Options{PreviewFrames: specs("a", "b")}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if got := currentID(t, h.manager); got != "a" {
		t.Fatalf("expected current a, got %s", got)
	}

	if err := h.manager.SwitchToPreviewFrame(ctx, "b"); err != nil {
		t.Fatalf("switch to b: %v", err)
	}
	if got := currentID(t, h.manager); got != "b" {
		t.Fatalf("expected current b, got %s", got)
	}

	err := h.manager.SwitchToPreviewFrame(ctx, "c")
	if !errors.Is(err, services.ErrFrameNotFound) {
		t.Fatalf("expected ErrFrameNotFound, got %v", err)
	}
	if got := currentID(t, h.manager); got != "b" {
		t.Fatalf("expected current to remain b, got %s", got)
	}
}

func TestInitializeDefaults(t *testing.T) {
	t.Run("synthesizes default frame", func(t *testing.T) {
		h := newHarness(t, testsupport.NewConfig(t), nil)
		if err := h.manager.Initialize(context.Background(), Options{}); err != nil {
			t.Fatalf("Initialize: %v", err)
		}
		if got := currentID(t, h.manager); got != preview.DefaultFrameID {
			t.Fatalf("expected default frame, got %s", got)
		}
		if !h.manager.Visible() || h.view().Hidden() {
			t.Fatal("expected preview auto-shown")
		}
		style, ok := h.view().LastStyle()
		if !ok || style.Width != "100vw" || style.Height != "100vh" {
			t.Fatalf("expected fill style, got %#v", style)
		}
	})

	t.Run("uses configured frames", func(t *testing.T) {
		cfg := testsupport.NewConfig(t, testsupport.WithFrames(specs("cfg-1", "cfg-2")...))
		h := newHarness(t, cfg, nil)
		if err := h.manager.Initialize(context.Background(), Options{}); err != nil {
			t.Fatalf("Initialize: %v", err)
		}
		if len(h.manager.Frames()) != 2 || currentID(t, h.manager) != "cfg-1" {
			t.Fatalf("unexpected frames %#v", h.manager.Frames())
		}
	})

	t.Run("auto show disabled", func(t *testing.T) {
		h := newHarness(t, testsupport.NewConfig(t), nil)
		show := false
		if err := h.manager.Initialize(context.Background(), Options{AutoShow: &show}); err != nil {
			t.Fatalf("Initialize: %v", err)
		}
		if h.manager.Visible() || !h.view().Hidden() {
			t.Fatal("expected preview hidden")
		}
		h.manager.ShowPreviewFrame(context.Background())
		if !h.manager.Visible() {
			t.Fatal("expected Show to reveal preview")
		}
		h.manager.HidePreviewFrame(context.Background())
		if h.manager.Visible() {
			t.Fatal("expected Hide to hide preview")
		}
		if len(h.manager.Frames()) != 1 {
			t.Fatal("visibility must not touch the registry")
		}
	})

	t.Run("config auto show false", func(t *testing.T) {
		h := newHarness(t, testsupport.NewConfig(t, testsupport.WithAutoShow(false)), nil)
		if err := h.manager.Initialize(context.Background(), Options{}); err != nil {
			t.Fatalf("Initialize: %v", err)
		}
		if h.manager.Visible() {
			t.Fatal("expected preview hidden")
		}
	})
}

func TestInitializeRejectsInvalidInput(t *testing.T) {
	h := newHarness(t, testsupport.NewConfig(t), nil)
	ctx := context.Background()

	err := h.manager.Initialize(ctx, Options{PreviewFrames: []preview.FrameSpec{{ID: "ok"}, {ID: ""}}})
	if !errors.Is(err, services.ErrInvalidFrame) {
		t.Fatalf("expected ErrInvalidFrame, got %v", err)
	}
	if h.manager.SessionID() != "" {
		t.Fatal("expected no session after failed initialize")
	}

	err = h.manager.Initialize(ctx, Options{Camera: "sideways"})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration for camera, got %v", err)
	}
	err = h.manager.Initialize(ctx, Options{Quality: "8k"})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration for quality, got %v", err)
	}
}

func TestReinitializeReplacesSession(t *testing.T) {
	h := newHarness(t, testsupport.NewConfig(t), nil)
	ctx := context.Background()

	if err := h.manager.Initialize(ctx, Options{PreviewFrames: specs("one")}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	first := h.manager.SessionID()
	firstView := h.view()
	if err := h.manager.Initialize(ctx, Options{PreviewFrames: specs("two")}); err != nil {
		t.Fatalf("second Initialize: %v", err)
	}
	if h.manager.SessionID() == first {
		t.Fatal("expected a new session id")
	}
	if !firstView.Removed() {
		t.Fatal("expected previous view removed")
	}
	if currentID(t, h.manager) != "two" {
		t.Fatal("expected new frames")
	}
}

func TestPreviewOperationsWithoutSession(t *testing.T) {
	h := newHarness(t, testsupport.NewConfig(t), nil)
	ctx := context.Background()

	if err := h.manager.AddPreviewFrameConfig(ctx, preview.FrameSpec{ID: " "}); !errors.Is(err, services.ErrInvalidFrame) {
		t.Fatalf("expected ErrInvalidFrame before session check, got %v", err)
	}
	if err := h.manager.AddPreviewFrameConfig(ctx, preview.FrameSpec{ID: "x"}); err != nil {
		t.Fatalf("expected no-op success, got %v", err)
	}
	if err := h.manager.EditPreviewFrameConfig(ctx, preview.FrameSpec{ID: "x"}); err != nil {
		t.Fatalf("expected no-op success, got %v", err)
	}
	if err := h.manager.SwitchToPreviewFrame(ctx, "x"); err != nil {
		t.Fatalf("expected no-op success, got %v", err)
	}
	if err := h.manager.SwitchToPreviewFrame(ctx, ""); !errors.Is(err, services.ErrInvalidFrame) {
		t.Fatalf("expected ErrInvalidFrame, got %v", err)
	}
	h.manager.ShowPreviewFrame(ctx)
	if h.manager.Visible() || h.manager.Frames() != nil {
		t.Fatal("expected no state without session")
	}
}

func TestAddAndEditFrames(t *testing.T) {
	h := newHarness(t, testsupport.NewConfig(t), nil)
	ctx := context.Background()
	if err := h.manager.Initialize(ctx, Options{PreviewFrames: specs("a")}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	rendered := len(h.view().Styles())

	x := 12.0
	if err := h.manager.AddPreviewFrameConfig(ctx, preview.FrameSpec{ID: "b", X: &x, Width: 200.0, Height: 100.0}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if got := len(h.view().Styles()); got != rendered {
		t.Fatalf("adding a non-current frame must not render, styles %d -> %d", rendered, got)
	}

	if err := h.manager.AddPreviewFrameConfig(ctx, preview.FrameSpec{ID: "b", Width: 300.0}); err != nil {
		t.Fatalf("Add duplicate: %v", err)
	}
	frames := h.manager.Frames()
	if len(frames) != 2 || frames[1].Width != preview.Pixels(300) {
		t.Fatalf("expected duplicate add to replace, got %#v", frames)
	}

	if err := h.manager.EditPreviewFrameConfig(ctx, preview.FrameSpec{ID: "a", StackPosition: "front", Width: 50.0, Height: 60.0}); err != nil {
		t.Fatalf("Edit current: %v", err)
	}
	style, _ := h.view().LastStyle()
	if style.Width != "50px" || style.Height != "60px" || style.ZIndex != "99999" {
		t.Fatalf("expected current frame re-rendered, got %#v", style)
	}

	if err := h.manager.EditPreviewFrameConfig(ctx, preview.FrameSpec{ID: "c"}); err != nil {
		t.Fatalf("Edit missing: %v", err)
	}
	if len(h.manager.Frames()) != 3 {
		t.Fatal("expected edit of missing id to append")
	}

	err := h.manager.EditPreviewFrameConfig(ctx, preview.FrameSpec{ID: "a", StackPosition: "middle"})
	if !errors.Is(err, services.ErrInvalidFrame) {
		t.Fatalf("expected ErrInvalidFrame, got %v", err)
	}
}

func TestDestroy(t *testing.T) {
	platform := testsupport.NewFakePlatform()
	h := newHarness(t, testsupport.NewConfig(t), platform)
	ctx := context.Background()

	h.manager.Destroy(ctx)

	if err := h.manager.Initialize(ctx, Options{}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	h.manager.Destroy(ctx)
	h.manager.Destroy(ctx)

	if !h.view().Removed() {
		t.Fatal("expected view removed")
	}
	if h.manager.Frames() != nil {
		t.Fatal("expected registry cleared")
	}
	if h.manager.CaptureAvailable() {
		t.Fatal("expected capture closed")
	}
	if closes := platform.Streams()[0].Closes(); closes != 1 {
		t.Fatalf("expected stream closed once, got %d", closes)
	}
	if _, err := h.manager.GetDuration(); !errors.Is(err, services.ErrNotStarted) {
		t.Fatalf("expected ErrNotStarted after destroy, got %v", err)
	}
}

func TestCaptureLockDegradesSecondManager(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	ctx := context.Background()

	first := newHarness(t, cfg, testsupport.NewFakePlatform())
	if err := first.manager.Initialize(ctx, Options{}); err != nil {
		t.Fatalf("Initialize first: %v", err)
	}
	second := newHarness(t, cfg, testsupport.NewFakePlatform())
	if err := second.manager.Initialize(ctx, Options{}); err != nil {
		t.Fatalf("Initialize second: %v", err)
	}
	if !first.manager.CaptureAvailable() {
		t.Fatal("expected first manager to capture")
	}
	if second.manager.CaptureAvailable() {
		t.Fatal("expected second manager degraded while lock held")
	}

	first.manager.Destroy(ctx)
	if err := second.manager.Initialize(ctx, Options{}); err != nil {
		t.Fatalf("re-Initialize second: %v", err)
	}
	if !second.manager.CaptureAvailable() {
		t.Fatal("expected capture after lock released")
	}
}

func TestLogViewDefault(t *testing.T) {
	m := New(testsupport.NewConfig(t))
	defer m.Destroy(context.Background())
	if err := m.Initialize(context.Background(), Options{PreviewFrames: specs("a")}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	style, ok := m.Style()
	if !ok || !strings.Contains(style.CSS(), "z-index: -1") {
		t.Fatalf("unexpected style %#v", style)
	}
	if m.Facing() != capture.FacingFront || m.Format() != "" {
		t.Fatalf("unexpected headless capture state %s %q", m.Facing(), m.Format())
	}
}
