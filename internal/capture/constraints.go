package capture

import (
	"fmt"
	"strings"
)

// Facing selects the front ("user") or back ("environment") camera.
type Facing string

const (
	FacingFront Facing = "front"
	FacingBack  Facing = "back"
)

// ParseFacing accepts front/back (and the user/environment aliases).
func ParseFacing(value string) (Facing, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "front", "user", "":
		return FacingFront, nil
	case "back", "environment", "rear":
		return FacingBack, nil
	default:
		return "", fmt.Errorf("unknown camera %q (want front or back)", value)
	}
}

// Opposite returns the other camera.
func (f Facing) Opposite() Facing {
	if f == FacingBack {
		return FacingFront
	}
	return FacingBack
}

// Mode is the facing mode name reported to platforms.
func (f Facing) Mode() string {
	if f == FacingBack {
		return "environment"
	}
	return "user"
}

// Quality is a resolution preset.
type Quality string

const (
	QualityQVGA    Quality = "qvga"
	Quality480p    Quality = "480p"
	Quality720p    Quality = "720p"
	Quality1080p   Quality = "1080p"
	Quality2160p   Quality = "2160p"
	QualityLowest  Quality = "lowest"
	QualityHighest Quality = "highest"
)

// Qualities lists every preset in ascending order.
var Qualities = []Quality{QualityQVGA, QualityLowest, Quality480p, Quality720p, Quality1080p, Quality2160p, QualityHighest}

// ParseQuality accepts a preset name, case-insensitively. Empty means highest.
func ParseQuality(value string) (Quality, error) {
	normalized := Quality(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return QualityHighest, nil
	}
	for _, q := range Qualities {
		if q == normalized {
			return q, nil
		}
	}
	return "", fmt.Errorf("unknown quality %q", value)
}

// Constraints is what a platform is asked to open.
type Constraints struct {
	Facing     Facing
	FacingMode string
	Width      int
	Height     int
	Audio      bool
}

// ConstraintsFor maps a facing and quality preset to stream constraints.
// Unknown presets resolve like highest.
func ConstraintsFor(facing Facing, quality Quality, audio bool) Constraints {
	c := Constraints{Facing: facing, FacingMode: facing.Mode(), Audio: audio}
	switch quality {
	case QualityQVGA:
		c.Width, c.Height = 240, 320
	case Quality480p, QualityLowest:
		c.Width, c.Height = 480, 720
	case Quality720p:
		c.Width, c.Height = 720, 1280
	case Quality1080p:
		c.Width, c.Height = 1920, 1080
	default:
		c.Width, c.Height = 2160, 3840
	}
	return c
}
