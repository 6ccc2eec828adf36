package testsupport

import (
	"context"
	"sync"

	"reelcam/internal/capture"
)

// FakeStream is an in-memory capture stream.
type FakeStream struct {
	mu     sync.Mutex
	ID     string
	closes int
}

func (s *FakeStream) DeviceID() string { return s.ID }

func (s *FakeStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closes++
	return nil
}

// Closes reports how many times Close was called.
func (s *FakeStream) Closes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closes
}

// FakeEncoder implements capture.Encoder. Unless Manual is set, Stop flushes
// Chunks to the current subscription from a separate goroutine and then
// signals completion.
type FakeEncoder struct {
	mu       sync.Mutex
	state    capture.EncoderState
	sub      *capture.Subscription
	Chunks   [][]byte
	Manual   bool
	StartErr error
	StopErr  error
	starts   int
	stops    int
	closes   int
	onLevel  func(float64)
}

// NewFakeEncoder returns an inactive encoder that flushes chunks on stop.
func NewFakeEncoder(chunks ...[]byte) *FakeEncoder {
	return &FakeEncoder{state: capture.EncoderInactive, Chunks: chunks}
}

func (e *FakeEncoder) State() capture.EncoderState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// SetState forces the reported state.
func (e *FakeEncoder) SetState(state capture.EncoderState) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = state
}

func (e *FakeEncoder) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.StartErr != nil {
		return e.StartErr
	}
	e.starts++
	e.state = capture.EncoderRecording
	return nil
}

func (e *FakeEncoder) Stop() error {
	e.mu.Lock()
	if e.StopErr != nil {
		e.mu.Unlock()
		return e.StopErr
	}
	e.stops++
	e.state = capture.EncoderInactive
	manual := e.Manual
	e.mu.Unlock()
	if !manual {
		go e.Flush()
	}
	return nil
}

func (e *FakeEncoder) Subscribe() *capture.Subscription {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sub = capture.NewSubscription()
	return e.sub
}

// Flush publishes Chunks to the current subscription and finishes it.
func (e *FakeEncoder) Flush() {
	e.mu.Lock()
	sub, chunks := e.sub, e.Chunks
	e.mu.Unlock()
	if sub == nil {
		return
	}
	for _, chunk := range chunks {
		if !sub.Publish(chunk) {
			return
		}
	}
	sub.Finish()
}

func (e *FakeEncoder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closes++
	e.state = capture.EncoderInactive
	return nil
}

func (e *FakeEncoder) OnLevel(fn func(db float64)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onLevel = fn
}

// EmitLevel delivers db to the registered level handler, if any.
func (e *FakeEncoder) EmitLevel(db float64) {
	e.mu.Lock()
	fn := e.onLevel
	e.mu.Unlock()
	if fn != nil {
		fn(db)
	}
}

// Counts returns the number of Start, Stop and Close calls.
func (e *FakeEncoder) Counts() (starts, stops, closes int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.starts, e.stops, e.closes
}

// FakePlatform implements capture.Platform over FakeStream and FakeEncoder.
type FakePlatform struct {
	mu           sync.Mutex
	OpenErr      error
	EncoderErr   error
	RejectFormat string
	Chunks       [][]byte
	ManualFlush  bool
	opened       []capture.Constraints
	streams      []*FakeStream
	encoders     []*FakeEncoder
}

// NewFakePlatform returns a platform whose encoders flush chunks on stop.
func NewFakePlatform(chunks ...[]byte) *FakePlatform {
	return &FakePlatform{Chunks: chunks}
}

func (p *FakePlatform) Open(_ context.Context, constraints capture.Constraints) (capture.Stream, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.OpenErr != nil {
		return nil, p.OpenErr
	}
	p.opened = append(p.opened, constraints)
	stream := &FakeStream{ID: "fake:" + string(constraints.Facing)}
	p.streams = append(p.streams, stream)
	return stream, nil
}

func (p *FakePlatform) SupportsFormat(mime string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return mime != p.RejectFormat
}

func (p *FakePlatform) NewEncoder(_ capture.Stream, _ string) (capture.Encoder, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.EncoderErr != nil {
		return nil, p.EncoderErr
	}
	enc := NewFakeEncoder(p.Chunks...)
	enc.Manual = p.ManualFlush
	p.encoders = append(p.encoders, enc)
	return enc, nil
}

// Opened returns the constraints of every successful Open.
func (p *FakePlatform) Opened() []capture.Constraints {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]capture.Constraints(nil), p.opened...)
}

// Streams returns every stream handed out.
func (p *FakePlatform) Streams() []*FakeStream {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*FakeStream(nil), p.streams...)
}

// LastEncoder returns the most recently created encoder, or nil.
func (p *FakePlatform) LastEncoder() *FakeEncoder {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.encoders) == 0 {
		return nil
	}
	return p.encoders[len(p.encoders)-1]
}
