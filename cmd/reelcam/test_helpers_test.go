package main

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"reelcam/internal/capture"
	"reelcam/internal/config"
	"reelcam/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	platform   *testsupport.FakePlatform
}

// setupCLITestEnv writes a config rooted in a temp dir and routes record
// through a fake capture platform. extra is appended to the config file.
func setupCLITestEnv(t *testing.T, extra string) *cliTestEnv {
	t.Helper()
	for _, key := range []string{"REELCAM_FFMPEG", "REELCAM_FRONT_DEVICE", "REELCAM_BACK_DEVICE"} {
		t.Setenv(key, "")
	}
	t.Setenv("HOME", t.TempDir())

	cfg := testsupport.NewConfig(t, testsupport.WithHistory(), testsupport.WithDeviceNodes())
	configPath := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	writeTestConfig(t, configPath, cfg, extra)

	platform := testsupport.NewFakePlatform(testsupport.MP4Header(), []byte("moov"))
	previous := newPlatform
	newPlatform = func(*config.Config, *slog.Logger) capture.Platform { return platform }
	t.Cleanup(func() { newPlatform = previous })

	return &cliTestEnv{cfg: cfg, configPath: configPath, platform: platform}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config, extra string) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\nstate_dir = %q\nlog_dir = %q\n\n[capture]\nfront_device = %q\nback_device = %q\n\n[history]\nenabled = %t\n\n[logging]\nlevel = \"debug\"\n",
		cfg.Paths.StateDir,
		cfg.Paths.LogDir,
		cfg.Capture.FrontDevice,
		cfg.Capture.BackDevice,
		cfg.History.Enabled,
	)
	if err := os.WriteFile(path, []byte(content+extra), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}
