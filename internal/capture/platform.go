package capture

import (
	"context"
	"errors"
)

// ErrUnavailable reports that the host has no usable capture device.
var ErrUnavailable = errors.New("capture device unavailable")

// EncoderState mirrors the encoder's own notion of activity.
type EncoderState string

const (
	EncoderInactive  EncoderState = "inactive"
	EncoderRecording EncoderState = "recording"
	EncoderPaused    EncoderState = "paused"
)

// Startable reports whether Start may be called in this state.
func (s EncoderState) Startable() bool {
	return s == EncoderInactive || s == EncoderPaused
}

// Platform is the capture capability of the host.
type Platform interface {
	Open(ctx context.Context, constraints Constraints) (Stream, error)
	SupportsFormat(mime string) bool
	NewEncoder(stream Stream, mime string) (Encoder, error)
}

// Stream is an opened camera (and optionally microphone).
type Stream interface {
	DeviceID() string
	Close() error
}

// Encoder turns a stream into container data. Stop returns immediately;
// flushed chunks and the completion signal arrive on the subscription that
// was current when Stop was called.
type Encoder interface {
	State() EncoderState
	Start() error
	Stop() error
	Subscribe() *Subscription
	Close() error
}

// LevelMeter is implemented by encoders that report microphone input levels
// while recording. Levels are RMS in dBFS, roughly every 100ms.
type LevelMeter interface {
	OnLevel(fn func(db float64))
}
