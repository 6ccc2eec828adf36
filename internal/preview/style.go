package preview

import (
	"fmt"
	"strings"
)

const (
	zIndexBack  = "-1"
	zIndexFront = "99999"
)

// Style holds the CSS-like attributes applied to the preview view.
type Style struct {
	Left         string
	Top          string
	Width        string
	Height       string
	ZIndex       string
	BorderRadius string
	BoxShadow    string
}

// StyleFor computes the view attributes for cfg. Fill dimensions map to the
// viewport units 100vw and 100vh.
func StyleFor(cfg FrameConfig) Style {
	return Style{
		Left:         px(cfg.X),
		Top:          px(cfg.Y),
		Width:        dimensionCSS(cfg.Width, "100vw"),
		Height:       dimensionCSS(cfg.Height, "100vh"),
		ZIndex:       zIndexFor(cfg.Stack),
		BorderRadius: px(cfg.BorderRadius),
		BoxShadow:    cfg.DropShadow.BoxShadow(),
	}
}

// CSS renders the style as a declaration list.
func (s Style) CSS() string {
	pairs := [][2]string{
		{"left", s.Left},
		{"top", s.Top},
		{"width", s.Width},
		{"height", s.Height},
		{"z-index", s.ZIndex},
		{"border-radius", s.BorderRadius},
		{"box-shadow", s.BoxShadow},
	}
	var b strings.Builder
	for _, pair := range pairs {
		if pair[1] == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s: %s;", pair[0], pair[1])
	}
	return b.String()
}

func zIndexFor(stack StackPosition) string {
	if stack == StackFront {
		return zIndexFront
	}
	return zIndexBack
}

func dimensionCSS(d Dimension, fill string) string {
	if d.Fill {
		return fill
	}
	return px(d.Value)
}

func px(v float64) string {
	return formatNumber(v) + "px"
}
