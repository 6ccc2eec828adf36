package capture

import "sync"

// Subscription carries one stop cycle's output from an encoder to the
// recorder. Publish hands a chunk over synchronously, so once Done is closed
// every chunk of the cycle has already been received.
type Subscription struct {
	data       chan []byte
	done       chan struct{}
	closed     chan struct{}
	finishOnce sync.Once
	closeOnce  sync.Once
}

// NewSubscription returns an open subscription.
func NewSubscription() *Subscription {
	return &Subscription{
		data:   make(chan []byte),
		done:   make(chan struct{}),
		closed: make(chan struct{}),
	}
}

// Publish delivers chunk to the subscriber. It returns false when the
// subscriber has gone away.
func (s *Subscription) Publish(chunk []byte) bool {
	select {
	case <-s.closed:
		return false
	default:
	}
	select {
	case s.data <- chunk:
		return true
	case <-s.closed:
		return false
	}
}

// Finish signals that the cycle is complete. Safe to call more than once.
func (s *Subscription) Finish() {
	s.finishOnce.Do(func() { close(s.done) })
}

// Close detaches the subscriber; pending and later Publish calls return false.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() { close(s.closed) })
}

// Data yields published chunks.
func (s *Subscription) Data() <-chan []byte { return s.data }

// Done is closed by Finish.
func (s *Subscription) Done() <-chan struct{} { return s.done }

// Closed is closed by Close.
func (s *Subscription) Closed() <-chan struct{} { return s.closed }
