package preview_test

import (
	"errors"
	"testing"

	"reelcam/internal/preview"
	"reelcam/internal/services"
)

func ptr(v float64) *float64 { return &v }

func TestNewFrameConfigDefaults(t *testing.T) {
	cfg, err := preview.NewFrameConfig(preview.FrameSpec{ID: "a"})
	if err != nil {
		t.Fatalf("NewFrameConfig: %v", err)
	}
	if cfg.Stack != preview.StackBack || cfg.X != 0 || cfg.Y != 0 || cfg.BorderRadius != 0 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if !cfg.Width.Fill || !cfg.Height.Fill {
		t.Fatalf("expected fill dimensions, got %v x %v", cfg.Width, cfg.Height)
	}
	if cfg.DropShadow != preview.NewDropShadow(preview.DropShadowSpec{}) {
		t.Fatalf("unexpected shadow: %+v", cfg.DropShadow)
	}
}

func TestNewFrameConfigExplicitValues(t *testing.T) {
	cfg, err := preview.NewFrameConfig(preview.FrameSpec{
		ID:            "pip",
		StackPosition: "FRONT",
		X:             ptr(10),
		Y:             ptr(20),
		Width:         int64(160),
		Height:        240.5,
		BorderRadius:  ptr(12),
	})
	if err != nil {
		t.Fatalf("NewFrameConfig: %v", err)
	}
	if cfg.Stack != preview.StackFront {
		t.Fatalf("stack = %q", cfg.Stack)
	}
	if cfg.Width != preview.Pixels(160) || cfg.Height != preview.Pixels(240.5) {
		t.Fatalf("dimensions = %v x %v", cfg.Width, cfg.Height)
	}
	if cfg.X != 10 || cfg.Y != 20 || cfg.BorderRadius != 12 {
		t.Fatalf("unexpected geometry: %+v", cfg)
	}
}

func TestNewFrameConfigZeroDimensionMeansFill(t *testing.T) {
	cfg, err := preview.NewFrameConfig(preview.FrameSpec{ID: "z", Width: 0, Height: "Fill"})
	if err != nil {
		t.Fatalf("NewFrameConfig: %v", err)
	}
	if !cfg.Width.Fill || !cfg.Height.Fill {
		t.Fatalf("expected fill, got %v x %v", cfg.Width, cfg.Height)
	}
}

func TestNewFrameConfigRejects(t *testing.T) {
	tests := []struct {
		name string
		spec preview.FrameSpec
	}{
		{"empty id", preview.FrameSpec{Width: 100}},
		{"blank id", preview.FrameSpec{ID: "   "}},
		{"stack", preview.FrameSpec{ID: "a", StackPosition: "middle"}},
		{"negative width", preview.FrameSpec{ID: "a", Width: -1}},
		{"bad height", preview.FrameSpec{ID: "a", Height: "tall"}},
		{"bad type", preview.FrameSpec{ID: "a", Width: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := preview.NewFrameConfig(tt.spec)
			if !errors.Is(err, services.ErrInvalidFrame) {
				t.Fatalf("expected ErrInvalidFrame, got %v", err)
			}
		})
	}
}

func TestStyleFor(t *testing.T) {
	opacity, radius, color := 0.4, 8.0, "#000"
	cfg, err := preview.NewFrameConfig(preview.FrameSpec{
		ID:            "pip",
		StackPosition: "front",
		X:             ptr(16),
		Y:             ptr(32),
		Width:         160,
		BorderRadius:  ptr(12),
		DropShadow:    &preview.DropShadowSpec{Opacity: &opacity, Radius: &radius, Color: &color},
	})
	if err != nil {
		t.Fatalf("NewFrameConfig: %v", err)
	}
	got := preview.StyleFor(cfg)
	want := preview.Style{
		Left:         "16px",
		Top:          "32px",
		Width:        "160px",
		Height:       "100vh",
		ZIndex:       "99999",
		BorderRadius: "12px",
		BoxShadow:    "0 0 8px 0 rgba(0, 0, 0, 0.4)",
	}
	if got != want {
		t.Fatalf("StyleFor = %+v, want %+v", got, want)
	}

	back := preview.StyleFor(preview.DefaultFrame())
	if back.ZIndex != "-1" || back.Width != "100vw" {
		t.Fatalf("unexpected default style: %+v", back)
	}
	if css := back.CSS(); css != "left: 0px; top: 0px; width: 100vw; height: 100vh; z-index: -1; border-radius: 0px; box-shadow: 0 0 0px 0 rgba(0, 0, 0, 0);" {
		t.Fatalf("CSS() = %q", css)
	}
}
