package recorder

import (
	"fmt"
	"strings"
	"time"
)

// State is the controller lifecycle state.
type State string

const (
	StateIdle      State = "idle"
	StateRecording State = "recording"
	StateStopping  State = "stopping"
)

// Strategy selects how Stop waits for the encoder flush.
type Strategy string

const (
	StrategyEvent Strategy = "event"
	StrategyPoll  Strategy = "poll"
)

// ParseStrategy accepts "event" (default for blank) or "poll".
func ParseStrategy(value string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", string(StrategyEvent):
		return StrategyEvent, nil
	case string(StrategyPoll):
		return StrategyPoll, nil
	default:
		return "", fmt.Errorf("unknown stop strategy %q", value)
	}
}

// Poll defaults used when Options leaves them zero. Together they wait 12s,
// past the ffmpeg platform's default 10s stop timeout.
const (
	DefaultPollInterval = 10 * time.Millisecond
	DefaultPollAttempts = 1200
)

// Recording is the assembled output of one stop cycle. Placeholder is set when
// there was no encoder to stop. Superseded is set when the controller was
// reset while the stop drained.
type Recording struct {
	Data        []byte
	Format      string
	Chunks      int
	StartedAt   time.Time
	EndedAt     time.Time
	Placeholder bool
	Superseded  bool
}

// Duration is EndedAt - StartedAt.
func (r Recording) Duration() time.Duration {
	if r.StartedAt.IsZero() || r.EndedAt.IsZero() {
		return 0
	}
	return r.EndedAt.Sub(r.StartedAt)
}
