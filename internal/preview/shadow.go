package preview

import (
	"fmt"
	"strconv"
	"strings"
)

// DropShadowSpec is the partial drop shadow a caller supplies. Nil fields take
// their defaults independently.
type DropShadowSpec struct {
	Opacity *float64 `toml:"opacity"`
	Radius  *float64 `toml:"radius"`
	Color   *string  `toml:"color"`
}

// DropShadow is a resolved shadow. Opacity is within [0, 1] and Radius is
// never negative. An invalid Color renders as fully transparent.
type DropShadow struct {
	Opacity float64
	Radius  float64
	Color   Color
}

// NewDropShadow fills every omitted field of spec with its default: opacity 0,
// radius 0, color black. An empty color string counts as omitted.
func NewDropShadow(spec DropShadowSpec) DropShadow {
	shadow := DropShadow{Color: Black}
	if spec.Opacity != nil {
		shadow.Opacity = min(max(*spec.Opacity, 0), 1)
	}
	if spec.Radius != nil {
		shadow.Radius = max(*spec.Radius, 0)
	}
	if spec.Color != nil && strings.TrimSpace(*spec.Color) != "" {
		shadow.Color = ParseColor(strings.TrimSpace(*spec.Color))
	}
	return shadow
}

// BoxShadow renders the CSS box-shadow value, e.g. "0 0 8px 0 rgba(0, 0, 0, 0.4)".
func (d DropShadow) BoxShadow() string {
	channels := d.Color.String()
	opacity := d.Opacity
	if channels == "" {
		channels = "0, 0, 0"
		opacity = 0
	}
	return fmt.Sprintf("0 0 %spx 0 rgba(%s, %s)", formatNumber(d.Radius), channels, formatNumber(opacity))
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
