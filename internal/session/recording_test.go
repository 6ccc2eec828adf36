package session

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"reelcam/internal/artifact"
	"reelcam/internal/capture"
	"reelcam/internal/devicewatch"
	"reelcam/internal/recorder"
	"reelcam/internal/services"
	"reelcam/internal/testsupport"
)

func TestHeadlessRecordingIsPlaceholder(t *testing.T) {
	h := newHarness(t, testsupport.NewConfig(t), nil)
	ctx := context.Background()
	if err := h.manager.Initialize(ctx, Options{}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	if err := h.manager.StartRecording(ctx); err != nil {
		t.Fatalf("StartRecording: %v", err)
	}
	if h.manager.RecordingState() != recorder.StateIdle {
		t.Fatalf("expected idle, got %s", h.manager.RecordingState())
	}
	result, err := h.manager.StopRecording(ctx)
	if err != nil {
		t.Fatalf("StopRecording: %v", err)
	}
	if !artifact.IsPlaceholder(result.Handle) {
		t.Fatalf("expected placeholder handle, got %q", result.Handle)
	}
	if _, err := h.manager.GetDuration(); !errors.Is(err, services.ErrNotStarted) {
		t.Fatalf("expected ErrNotStarted, got %v", err)
	}
	h.manager.FlipCamera(ctx)
	if h.manager.Facing() != capture.FacingFront {
		t.Fatal("flip without capture must not change facing")
	}
}

func TestRecordStopProducesArtifact(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithHistory())
	store := testsupport.MustOpenHistory(t, cfg)
	platform := testsupport.NewFakePlatform(testsupport.MP4Header(), []byte("moof-mdat"))
	h := newHarness(t, cfg, platform, WithHistory(store))
	ctx := context.Background()

	if err := h.manager.Initialize(ctx, Options{Quality: "720p"}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if h.manager.Format() != "video/mp4" {
		t.Fatalf("expected video/mp4, got %q", h.manager.Format())
	}
	if err := h.manager.StartRecording(ctx); err != nil {
		t.Fatalf("StartRecording: %v", err)
	}
	h.clock.Advance(3 * time.Second)
	running, err := h.manager.GetDuration()
	if err != nil || running.Seconds != 3 {
		t.Fatalf("expected 3s in progress, got %v, %v", running, err)
	}
	h.clock.Advance(2 * time.Second)

	result, err := h.manager.StopRecording(ctx)
	if err != nil {
		t.Fatalf("StopRecording: %v", err)
	}
	if !strings.HasPrefix(result.Handle, "blob:reelcam/") {
		t.Fatalf("unexpected handle %q", result.Handle)
	}
	if result.Format != "video/mp4" || result.Duration != 5*time.Second {
		t.Fatalf("unexpected result %#v", result)
	}
	want := len(testsupport.MP4Header()) + len("moof-mdat")
	data, err := h.manager.ArtifactBytes(result.Handle)
	if err != nil || len(data) != want {
		t.Fatalf("expected %d bytes, got %d (%v)", want, len(data), err)
	}
	meta, err := h.manager.Artifact(result.Handle)
	if err != nil || !strings.HasPrefix(meta.DetectedType, "video/") {
		t.Fatalf("unexpected artifact %#v (%v)", meta, err)
	}

	h.clock.Advance(time.Minute)
	final, err := h.manager.GetDuration()
	if err != nil || final.Seconds != 5 {
		t.Fatalf("expected final duration 5s, got %v, %v", final, err)
	}

	entries, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("history List: %v", err)
	}
	if len(entries) != 1 || entries[0].Handle != result.Handle || entries[0].Quality != "720p" {
		t.Fatalf("unexpected history %#v", entries)
	}
	if entries[0].SessionID != h.manager.SessionID() {
		t.Fatal("history entry should carry the session id")
	}

	if !h.manager.RevokeArtifact(result.Handle) {
		t.Fatal("expected revoke to succeed")
	}
	if _, err := h.manager.Artifact(result.Handle); !errors.Is(err, artifact.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after revoke, got %v", err)
	}
}

func TestStopWithoutStartIsNotRecording(t *testing.T) {
	h := newHarness(t, testsupport.NewConfig(t), testsupport.NewFakePlatform())
	ctx := context.Background()
	if err := h.manager.Initialize(ctx, Options{}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if _, err := h.manager.StopRecording(ctx); !errors.Is(err, services.ErrNotRecording) {
		t.Fatalf("expected ErrNotRecording, got %v", err)
	}
}

func TestFallbackFormat(t *testing.T) {
	platform := testsupport.NewFakePlatform()
	platform.RejectFormat = capture.DefaultPreferredFormat
	h := newHarness(t, testsupport.NewConfig(t), platform)
	if err := h.manager.Initialize(context.Background(), Options{}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if h.manager.Format() != capture.DefaultFallbackFormat {
		t.Fatalf("expected fallback format, got %q", h.manager.Format())
	}
}

func TestPollStopTimesOutAndDestroyRecovers(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithPollStrategy(time.Millisecond, 3))
	platform := testsupport.NewFakePlatform([]byte("x"))
	platform.ManualFlush = true
	sleeps := 0
	h := newHarness(t, cfg, platform, WithSleep(func(context.Context, time.Duration) error {
		sleeps++
		return nil
	}))
	ctx := context.Background()

	if err := h.manager.Initialize(ctx, Options{}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if err := h.manager.StartRecording(ctx); err != nil {
		t.Fatalf("StartRecording: %v", err)
	}
	_, err := h.manager.StopRecording(ctx)
	if !errors.Is(err, services.ErrDrainTimeout) {
		t.Fatalf("expected ErrDrainTimeout, got %v", err)
	}
	if sleeps != 3 {
		t.Fatalf("expected 3 poll attempts, got %d", sleeps)
	}
	if h.manager.RecordingState() != recorder.StateStopping {
		t.Fatalf("expected stopping, got %s", h.manager.RecordingState())
	}
	if _, err := h.manager.StopRecording(ctx); !errors.Is(err, services.ErrAlreadyStopping) {
		t.Fatalf("expected ErrAlreadyStopping, got %v", err)
	}

	h.manager.Destroy(ctx)
	if h.manager.RecordingState() != recorder.StateIdle {
		t.Fatalf("expected idle after destroy, got %s", h.manager.RecordingState())
	}
}

func TestStaleStopDoesNotDisturbNextSession(t *testing.T) {
	platform := testsupport.NewFakePlatform([]byte("first"))
	platform.ManualFlush = true
	h := newHarness(t, testsupport.NewConfig(t), platform)
	ctx := context.Background()

	if err := h.manager.Initialize(ctx, Options{}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if err := h.manager.StartRecording(ctx); err != nil {
		t.Fatalf("StartRecording: %v", err)
	}
	oldEncoder := platform.LastEncoder()

	stopped := make(chan error, 1)
	go func() {
		_, err := h.manager.StopRecording(ctx)
		stopped <- err
	}()
	deadline := time.Now().Add(2 * time.Second)
	for h.manager.RecordingState() != recorder.StateStopping {
		if time.Now().After(deadline) {
			t.Fatalf("stop never started draining (state %s)", h.manager.RecordingState())
		}
		time.Sleep(time.Millisecond)
	}

	h.manager.Destroy(ctx)
	if err := h.manager.Initialize(ctx, Options{}); err != nil {
		t.Fatalf("second Initialize: %v", err)
	}
	if err := h.manager.StartRecording(ctx); err != nil {
		t.Fatalf("second StartRecording: %v", err)
	}
	newEncoder := platform.LastEncoder()
	if newEncoder == oldEncoder {
		t.Fatal("expected a fresh encoder for the second session")
	}

	h.clock.Advance(4 * time.Second)
	oldEncoder.Flush()
	select {
	case err := <-stopped:
		if err != nil {
			t.Fatalf("stale StopRecording: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("stale stop never completed")
	}

	if h.manager.RecordingState() != recorder.StateRecording {
		t.Fatalf("expected second session still recording, got %s", h.manager.RecordingState())
	}
	if newEncoder.State() != capture.EncoderRecording {
		t.Fatalf("expected new encoder recording, got %s", newEncoder.State())
	}
	h.clock.Advance(time.Second)
	d, err := h.manager.GetDuration()
	if err != nil || d.Seconds != 5 {
		t.Fatalf("expected 5s running duration, got %v, %v", d, err)
	}
}

func TestVolumeInputFollowsRecording(t *testing.T) {
	platform := testsupport.NewFakePlatform([]byte("clip"))
	h := newHarness(t, testsupport.NewConfig(t), platform)
	ctx := context.Background()

	var levels []float64
	h.manager.OnVolumeInput(func(db float64) { levels = append(levels, db) })
	if err := h.manager.Initialize(ctx, Options{}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if err := h.manager.StartRecording(ctx); err != nil {
		t.Fatalf("StartRecording: %v", err)
	}
	enc := platform.LastEncoder()
	enc.EmitLevel(-32.5)
	enc.EmitLevel(-18)
	if len(levels) != 2 || levels[0] != -32.5 || levels[1] != -18 {
		t.Fatalf("unexpected levels %v", levels)
	}

	h.manager.OnVolumeInput(nil)
	enc.EmitLevel(-10)
	if len(levels) != 2 {
		t.Fatalf("expected no delivery after handler removal, got %v", levels)
	}
	if _, err := h.manager.StopRecording(ctx); err != nil {
		t.Fatalf("StopRecording: %v", err)
	}
}

func TestFlipCamera(t *testing.T) {
	platform := testsupport.NewFakePlatform()
	h := newHarness(t, testsupport.NewConfig(t), platform)
	ctx := context.Background()
	if err := h.manager.Initialize(ctx, Options{}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	h.manager.FlipCamera(ctx)
	if h.manager.Facing() != capture.FacingBack {
		t.Fatalf("expected back facing, got %s", h.manager.Facing())
	}
	opened := platform.Opened()
	if len(opened) != 2 || opened[1].FacingMode != "environment" {
		t.Fatalf("expected reopen with environment facing, got %#v", opened)
	}

	if err := h.manager.StartRecording(ctx); err != nil {
		t.Fatalf("StartRecording: %v", err)
	}
	h.manager.FlipCamera(ctx)
	if h.manager.Facing() != capture.FacingBack {
		t.Fatal("flip while recording must not change facing")
	}
	if len(platform.Opened()) != 2 {
		t.Fatal("flip while recording must not reopen")
	}
}

func TestSetQualityAndCamera(t *testing.T) {
	platform := testsupport.NewFakePlatform()
	h := newHarness(t, testsupport.NewConfig(t), platform)
	ctx := context.Background()

	if err := h.manager.SetQuality(ctx, "1080p"); err != nil {
		t.Fatalf("SetQuality without session: %v", err)
	}
	if err := h.manager.Initialize(ctx, Options{}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if err := h.manager.SetQuality(ctx, "QVGA"); err != nil {
		t.Fatalf("SetQuality: %v", err)
	}
	opened := platform.Opened()
	last := opened[len(opened)-1]
	if last.Width != 240 || last.Height != 320 || h.manager.Quality() != capture.QualityQVGA {
		t.Fatalf("expected qvga reopen, got %#v", last)
	}
	if err := h.manager.SetCamera(ctx, "environment"); err != nil {
		t.Fatalf("SetCamera: %v", err)
	}
	if h.manager.Facing() != capture.FacingBack {
		t.Fatal("expected back facing")
	}
	if err := h.manager.SetQuality(ctx, "potato"); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestDeviceEvents(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	platform := testsupport.NewFakePlatform()
	h := newHarness(t, cfg, platform)
	ctx := context.Background()
	if err := h.manager.Initialize(ctx, Options{}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	h.manager.handleDeviceEvent(ctx, devicewatch.Event{Action: devicewatch.ActionRemove, Device: "fake:back"})
	if !h.manager.CaptureAvailable() {
		t.Fatal("removal of another device must not close capture")
	}

	h.manager.handleDeviceEvent(ctx, devicewatch.Event{Action: devicewatch.ActionRemove, Device: "fake:front"})
	if h.manager.CaptureAvailable() {
		t.Fatal("expected capture closed after removal")
	}
	if err := h.manager.StartRecording(ctx); err != nil {
		t.Fatalf("StartRecording degraded: %v", err)
	}

	h.manager.handleDeviceEvent(ctx, devicewatch.Event{Action: devicewatch.ActionAdd, Device: cfg.Capture.FrontDevice})
	if !h.manager.CaptureAvailable() {
		t.Fatal("expected capture reopened after add")
	}
}
