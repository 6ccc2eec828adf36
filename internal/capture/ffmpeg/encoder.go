package ffmpeg

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"reelcam/internal/capture"
	"reelcam/internal/logging"
)

// chunkSize bounds each published slice so large recordings arrive in parts.
const chunkSize = 256 << 10

var errNotRecording = errors.New("ffmpeg encoder is not recording")

type encoder struct {
	binary      string
	args        []string
	runner      Runner
	stopTimeout time.Duration
	audio       bool
	logger      *slog.Logger

	levelMu sync.Mutex
	onLevel func(db float64)

	mu     sync.Mutex
	state  capture.EncoderState
	proc   Process
	buf    *bytes.Buffer
	copied chan error
	sub    *capture.Subscription
	closed bool
}

func (e *encoder) State() capture.EncoderState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *encoder) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return errors.New("ffmpeg encoder closed")
	}
	if !e.state.Startable() {
		return fmt.Errorf("ffmpeg encoder cannot start from %s", e.state)
	}
	var meter func(float64)
	if e.audio {
		meter = e.emitLevel
	}
	proc, err := e.runner.Start(e.binary, e.args, meter)
	if err != nil {
		return err
	}

	buf := &bytes.Buffer{}
	copied := make(chan error, 1)
	go func(out io.Reader) {
		_, err := io.Copy(buf, out)
		copied <- err
	}(proc.Stdout())

	e.proc = proc
	e.buf = buf
	e.copied = copied
	e.state = capture.EncoderRecording
	e.logger.Debug("ffmpeg capture started")
	return nil
}

// OnLevel registers fn for input levels. Encoders without audio never call it.
func (e *encoder) OnLevel(fn func(db float64)) {
	e.levelMu.Lock()
	e.onLevel = fn
	e.levelMu.Unlock()
}

func (e *encoder) emitLevel(db float64) {
	e.levelMu.Lock()
	fn := e.onLevel
	e.levelMu.Unlock()
	if fn != nil {
		fn(db)
	}
}

func (e *encoder) Subscribe() *capture.Subscription {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sub = capture.NewSubscription()
	return e.sub
}

func (e *encoder) Stop() error {
	e.mu.Lock()
	if e.state != capture.EncoderRecording || e.proc == nil {
		e.mu.Unlock()
		return errNotRecording
	}
	proc, buf, copied, sub := e.proc, e.buf, e.copied, e.sub
	e.proc, e.buf, e.copied, e.sub = nil, nil, nil, nil
	e.state = capture.EncoderInactive
	e.mu.Unlock()

	if err := proc.Interrupt(); err != nil {
		e.logger.Debug("ffmpeg interrupt failed", logging.Error(err))
	}
	go e.flush(proc, buf, copied, sub)
	return nil
}

// flush waits for ffmpeg to exit, then hands the container bytes to sub.
func (e *encoder) flush(proc Process, buf *bytes.Buffer, copied <-chan error, sub *capture.Subscription) {
	timer := time.NewTimer(e.stopTimeout)
	defer timer.Stop()

	select {
	case err := <-copied:
		if err != nil {
			e.logger.Warn("ffmpeg output read failed", logging.Error(err))
		}
	case <-timer.C:
		e.logger.Warn("ffmpeg did not exit after quit request; killing",
			logging.Duration("timeout", e.stopTimeout),
			logging.String(logging.FieldEventType, "ffmpeg_stop_timeout"),
		)
		_ = proc.Kill()
		<-copied
	}
	if err := proc.Wait(); err != nil {
		e.logger.Debug("ffmpeg exited with error", logging.Error(err))
	}

	if sub == nil {
		return
	}
	data := buf.Bytes()
	e.logger.Debug("ffmpeg capture flushed", logging.Int("bytes", len(data)))
	for len(data) > 0 {
		n := min(chunkSize, len(data))
		if !sub.Publish(data[:n]) {
			return
		}
		data = data[n:]
	}
	sub.Finish()
}

func (e *encoder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true
	e.state = capture.EncoderInactive
	if e.proc == nil {
		return nil
	}
	proc, copied := e.proc, e.copied
	e.proc, e.buf, e.copied, e.sub = nil, nil, nil, nil
	if err := proc.Kill(); err != nil {
		return err
	}
	go func() {
		<-copied
		_ = proc.Wait()
	}()
	return nil
}
