package recorder_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"reelcam/internal/recorder"
	"reelcam/internal/services"
	"reelcam/internal/testsupport"
)

func TestPollStrategyTimesOutAtBound(t *testing.T) {
	var sleeps atomic.Int32
	ctrl := recorder.New(recorder.Options{
		Strategy:     recorder.StrategyPoll,
		PollInterval: 10 * time.Millisecond,
		PollAttempts: 5,
		Sleep: func(ctx context.Context, d time.Duration) error {
			if d != 10*time.Millisecond {
				t.Errorf("unexpected interval %v", d)
			}
			sleeps.Add(1)
			return nil
		},
	})
	enc := testsupport.NewFakeEncoder([]byte("never"))
	enc.Manual = true
	_ = ctrl.Start(context.Background(), enc)

	_, err := ctrl.Stop(context.Background(), enc, "video/mp4")
	if !errors.Is(err, services.ErrDrainTimeout) {
		t.Fatalf("expected ErrDrainTimeout, got %v", err)
	}
	if got := sleeps.Load(); got != 5 {
		t.Fatalf("expected exactly 5 checks, got %d", got)
	}
	if ctrl.State() != recorder.StateStopping {
		t.Fatalf("expected controller to remain stopping, got %q", ctrl.State())
	}
	if _, err := ctrl.Stop(context.Background(), enc, "video/mp4"); !errors.Is(err, services.ErrAlreadyStopping) {
		t.Fatalf("expected ErrAlreadyStopping after timeout, got %v", err)
	}
}

func TestPollStrategyCompletes(t *testing.T) {
	enc := testsupport.NewFakeEncoder([]byte("he"), []byte("llo"))
	enc.Manual = true

	var sleeps atomic.Int32
	ctrl := recorder.New(recorder.Options{
		Strategy:     recorder.StrategyPoll,
		PollAttempts: 500,
		Sleep: func(ctx context.Context, d time.Duration) error {
			if sleeps.Add(1) == 3 {
				enc.Flush()
			}
			time.Sleep(time.Millisecond)
			return nil
		},
	})
	_ = ctrl.Start(context.Background(), enc)

	rec, err := ctrl.Stop(context.Background(), enc, "video/webm;codecs=h264")
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if string(rec.Data) != "hello" || rec.Format != "video/webm;codecs=h264" {
		t.Fatalf("unexpected recording %+v", rec)
	}
	if got := sleeps.Load(); got < 3 {
		t.Fatalf("expected at least 3 checks before completion, got %d", got)
	}
	if ctrl.State() != recorder.StateIdle {
		t.Fatalf("expected idle, got %q", ctrl.State())
	}
}

func TestPollStrategyHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ctrl := recorder.New(recorder.Options{
		Strategy: recorder.StrategyPoll,
		Sleep: func(ctx context.Context, d time.Duration) error {
			cancel()
			return ctx.Err()
		},
	})
	enc := testsupport.NewFakeEncoder()
	enc.Manual = true
	_ = ctrl.Start(context.Background(), enc)

	if _, err := ctrl.Stop(ctx, enc, "video/mp4"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if ctrl.State() != recorder.StateStopping {
		t.Fatalf("expected stopping, got %q", ctrl.State())
	}
}

func TestParseStrategy(t *testing.T) {
	if s, err := recorder.ParseStrategy(""); err != nil || s != recorder.StrategyEvent {
		t.Fatalf("ParseStrategy(blank) = %q, %v", s, err)
	}
	if s, err := recorder.ParseStrategy("POLL"); err != nil || s != recorder.StrategyPoll {
		t.Fatalf("ParseStrategy(POLL) = %q, %v", s, err)
	}
	if _, err := recorder.ParseStrategy("both"); err == nil {
		t.Fatal("expected error for unknown strategy")
	}
}
