package preview

import (
	"fmt"
	"math"
	"strings"

	"reelcam/internal/services"
)

// DefaultFrameID names the frame synthesized when none are supplied.
const DefaultFrameID = "default"

// StackPosition places the preview behind or in front of host content.
type StackPosition string

const (
	StackBack  StackPosition = "back"
	StackFront StackPosition = "front"
)

// Dimension is either a pixel value or "fill" (the whole viewport axis).
type Dimension struct {
	Fill  bool
	Value float64
}

// Fill returns a viewport-filling dimension.
func Fill() Dimension { return Dimension{Fill: true} }

// Pixels returns a fixed dimension.
func Pixels(v float64) Dimension { return Dimension{Value: v} }

func (d Dimension) String() string {
	if d.Fill {
		return "fill"
	}
	return formatNumber(d.Value)
}

// FrameSpec is the partial frame config supplied by callers and config files.
// Width and Height accept a number or the string "fill".
type FrameSpec struct {
	ID            string          `toml:"id"`
	StackPosition string          `toml:"stack_position"`
	X             *float64        `toml:"x"`
	Y             *float64        `toml:"y"`
	Width         any             `toml:"width"`
	Height        any             `toml:"height"`
	BorderRadius  *float64        `toml:"border_radius"`
	DropShadow    *DropShadowSpec `toml:"drop_shadow"`
}

// FrameConfig is a fully defaulted preview frame. ID is its identity.
type FrameConfig struct {
	ID           string
	Stack        StackPosition
	X, Y         float64
	Width        Dimension
	Height       Dimension
	BorderRadius float64
	DropShadow   DropShadow
}

// DefaultFrame returns the frame used when no frames are configured.
func DefaultFrame() FrameConfig {
	frame, _ := NewFrameConfig(FrameSpec{ID: DefaultFrameID})
	return frame
}

// NewFrameConfig resolves spec into a FrameConfig. Omitted fields default to
// back, 0, 0, fill, fill, 0 and an empty shadow. Zero width or height also
// means fill.
func NewFrameConfig(spec FrameSpec) (FrameConfig, error) {
	if strings.TrimSpace(spec.ID) == "" {
		return FrameConfig{}, services.Wrap(services.ErrInvalidFrame, "preview", "build frame", "id required", nil)
	}
	cfg := FrameConfig{
		ID:           spec.ID,
		Stack:        StackBack,
		Width:        Fill(),
		Height:       Fill(),
		BorderRadius: deref(spec.BorderRadius),
		X:            deref(spec.X),
		Y:            deref(spec.Y),
	}

	switch strings.ToLower(strings.TrimSpace(spec.StackPosition)) {
	case "", string(StackBack):
	case string(StackFront):
		cfg.Stack = StackFront
	default:
		return FrameConfig{}, invalidField(spec.ID, "stack_position", spec.StackPosition)
	}

	var err error
	if cfg.Width, err = parseDimension(spec.Width); err != nil {
		return FrameConfig{}, invalidField(spec.ID, "width", spec.Width)
	}
	if cfg.Height, err = parseDimension(spec.Height); err != nil {
		return FrameConfig{}, invalidField(spec.ID, "height", spec.Height)
	}
	if cfg.BorderRadius < 0 {
		cfg.BorderRadius = 0
	}

	if spec.DropShadow != nil {
		cfg.DropShadow = NewDropShadow(*spec.DropShadow)
	} else {
		cfg.DropShadow = NewDropShadow(DropShadowSpec{})
	}
	return cfg, nil
}

func parseDimension(value any) (Dimension, error) {
	var n float64
	switch v := value.(type) {
	case nil:
		return Fill(), nil
	case Dimension:
		if v.Fill || v.Value == 0 {
			return Fill(), nil
		}
		n = v.Value
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "", "fill":
			return Fill(), nil
		}
		return Dimension{}, fmt.Errorf("unknown dimension %q", v)
	case int:
		n = float64(v)
	case int64:
		n = float64(v)
	case float64:
		n = v
	case float32:
		n = float64(v)
	default:
		return Dimension{}, fmt.Errorf("unsupported dimension type %T", value)
	}
	if math.IsNaN(n) || math.IsInf(n, 0) || n < 0 {
		return Dimension{}, fmt.Errorf("dimension out of range: %v", n)
	}
	if n == 0 {
		return Fill(), nil
	}
	return Pixels(n), nil
}

func invalidField(id, field string, value any) error {
	return services.Wrap(services.ErrInvalidFrame, "preview", "build frame",
		fmt.Sprintf("frame %q: invalid %s %v", id, field, value), nil)
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
