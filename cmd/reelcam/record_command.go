package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"reelcam/internal/artifact"
	"reelcam/internal/capture"
	"reelcam/internal/capture/ffmpeg"
	"reelcam/internal/config"
	"reelcam/internal/logging"
	"reelcam/internal/services"
	"reelcam/internal/session"
)

// newPlatform builds the capture platform for record. Tests swap it out.
var newPlatform = func(cfg *config.Config, logger *slog.Logger) capture.Platform {
	return ffmpeg.New(cfg, ffmpeg.WithLogger(logger))
}

type recordFlags struct {
	duration    time.Duration
	camera      string
	quality     string
	audio       bool
	noAudio     bool
	frameFile   string
	output      string
	hidePreview bool
}

func newRecordCommand(ctx *commandContext) *cobra.Command {
	var flags recordFlags

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record from the camera until the duration elapses or Ctrl+C",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecord(cmd, ctx, flags)
		},
	}

	cmd.Flags().DurationVarP(&flags.duration, "duration", "d", 0, "Stop after this long (0 waits for Ctrl+C)")
	cmd.Flags().StringVar(&flags.camera, "camera", "", "Camera to open: front or back")
	cmd.Flags().StringVarP(&flags.quality, "quality", "q", "", "Quality preset (qvga, 480p, 720p, 1080p, 2160p, lowest, highest)")
	cmd.Flags().BoolVar(&flags.audio, "audio", false, "Record microphone audio")
	cmd.Flags().BoolVar(&flags.noAudio, "no-audio", false, "Record video only")
	cmd.MarkFlagsMutuallyExclusive("audio", "no-audio")
	cmd.Flags().StringVar(&flags.frameFile, "frame-file", "", "TOML file holding [[frames]] tables for the preview")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Write the recording to this path")
	cmd.Flags().BoolVar(&flags.hidePreview, "hide-preview", false, "Keep the preview hidden")
	return cmd
}

func runRecord(cmd *cobra.Command, ctx *commandContext, flags recordFlags) error {
	cfg := ctx.configValue()
	logger, err := ctx.logger(cmd)
	if err != nil {
		return err
	}

	runID := time.Now().Format("20060102T150405")
	sessionLog := filepath.Join(cfg.SessionLogDir(), runID+".log")
	handler, closer, err := logging.NewFileHandler(sessionLog, "json", "debug")
	if err != nil {
		logging.WarnWithContext(logger, "session log unavailable", "session_log_unavailable",
			logging.String("path", sessionLog),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check log_dir permissions"),
			logging.String(logging.FieldImpact, "session records only go to the main log"),
		)
	} else {
		defer closer.Close()
		logger = logging.TeeLogger(logger, handler)
	}

	opts := session.Options{
		Camera:  flags.camera,
		Quality: flags.quality,
	}
	if flags.audio || flags.noAudio {
		audio := flags.audio
		opts.Audio = &audio
	}
	if flags.hidePreview {
		show := false
		opts.AutoShow = &show
	}
	if strings.TrimSpace(flags.frameFile) != "" {
		frames, err := config.LoadFrames(flags.frameFile)
		if err != nil {
			return err
		}
		opts.PreviewFrames = frames
	}

	managerOpts := []session.Option{
		session.WithLogger(logger),
		session.WithPlatform(newPlatform(cfg, logger)),
	}
	if cfg.History.Enabled {
		store, err := ctx.openHistory()
		if err != nil {
			return err
		}
		defer store.Close()
		managerOpts = append(managerOpts, session.WithHistory(store))
	}
	manager := session.New(cfg, managerOpts...)

	runCtx, stop := signal.NotifyContext(services.WithRequestID(cmd.Context(), "record-"+runID), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := manager.Initialize(runCtx, opts); err != nil {
		return err
	}
	defer manager.Destroy(context.Background())

	out := cmd.OutOrStdout()
	if !manager.CaptureAvailable() {
		fmt.Fprintln(out, "No capture device available; recording will produce a placeholder")
	}
	var peak inputPeak
	manager.OnVolumeInput(peak.observe)
	if err := manager.StartRecording(runCtx); err != nil {
		return err
	}
	fmt.Fprintf(out, "Recording %s camera at %s (session %s)\n", manager.Facing(), manager.Quality(), manager.SessionID())

	waitForStop(runCtx, flags.duration)

	stopCtx, cancel := context.WithTimeout(services.WithRequestID(context.Background(), "record-"+runID), cfg.StopTimeout()+5*time.Second)
	defer cancel()
	result, err := manager.StopRecording(stopCtx)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Handle:   %s\n", result.Handle)
	fmt.Fprintf(out, "Format:   %s\n", valueOrDash(result.Format))
	fmt.Fprintf(out, "Duration: %s\n", formatDuration(result.Duration))
	fmt.Fprintf(out, "Size:     %s\n", formatBytes(result.Bytes))
	if db, ok := peak.value(); ok {
		fmt.Fprintf(out, "Peak:     %.1f dBFS\n", db)
	}

	if flags.output == "" || result.Handle == artifact.PlaceholderHandle {
		return nil
	}
	target, err := config.ExpandPath(flags.output)
	if err != nil {
		return err
	}
	written, err := manager.SaveArtifact(result.Handle, target)
	if err != nil {
		return err
	}
	manager.RevokeArtifact(result.Handle)
	fmt.Fprintf(out, "Saved:    %s\n", written)
	return nil
}

// waitForStop blocks until d elapses or ctx ends. A zero d waits for ctx only.
func waitForStop(ctx context.Context, d time.Duration) {
	if d <= 0 {
		<-ctx.Done()
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

// inputPeak keeps the loudest microphone level seen during a recording.
type inputPeak struct {
	mu   sync.Mutex
	db   float64
	seen bool
}

func (p *inputPeak) observe(db float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.seen || db > p.db {
		p.db, p.seen = db, true
	}
}

func (p *inputPeak) value() (float64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.db, p.seen
}
