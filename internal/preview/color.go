package preview

import (
	"fmt"
	"regexp"
	"strconv"
)

var (
	shorthandHex = regexp.MustCompile(`(?i)^#?([a-f\d])([a-f\d])([a-f\d])$`)
	fullHex      = regexp.MustCompile(`(?i)^#?([a-f\d]{2})([a-f\d]{2})([a-f\d]{2})$`)
)

// Color is an RGB triple. Valid is false when the source string was not a
// recognizable hex color.
type Color struct {
	R, G, B uint8
	Valid   bool
}

// Black is the default drop shadow color.
var Black = Color{Valid: true}

// ParseColor parses "#rgb", "rgb", "#rrggbb" or "rrggbb" (any case). Anything
// else yields an invalid Color; it never fails.
func ParseColor(hex string) Color {
	normalized := shorthandHex.ReplaceAllString(hex, "$1$1$2$2$3$3")
	groups := fullHex.FindStringSubmatch(normalized)
	if groups == nil {
		return Color{}
	}
	var channels [3]uint8
	for i, group := range groups[1:] {
		value, err := strconv.ParseUint(group, 16, 8)
		if err != nil {
			return Color{}
		}
		channels[i] = uint8(value)
	}
	return Color{R: channels[0], G: channels[1], B: channels[2], Valid: true}
}

// String renders the channel list "r, g, b", or "" for an invalid color.
func (c Color) String() string {
	if !c.Valid {
		return ""
	}
	return fmt.Sprintf("%d, %d, %d", c.R, c.G, c.B)
}

// Hex renders "#rrggbb", or "" for an invalid color.
func (c Color) Hex() string {
	if !c.Valid {
		return ""
	}
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
