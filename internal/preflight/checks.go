package preflight

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

const versionCheckTimeout = 2 * time.Second

// CheckFFmpeg verifies the ffmpeg binary resolves on PATH and reports its
// version line when `-version` answers in time.
func CheckFFmpeg(ctx context.Context, binary string) Result {
	const name = "FFmpeg"

	binary = strings.TrimSpace(binary)
	if binary == "" {
		return Result{Name: name, Detail: "command not configured"}
	}
	resolved, err := exec.LookPath(binary)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("binary %q not found", binary)}
	}

	checkCtx, cancel := context.WithTimeout(ctx, versionCheckTimeout)
	defer cancel()

	output, err := exec.CommandContext(checkCtx, resolved, "-hide_banner", "-version").Output()
	if err != nil {
		return Result{Name: name, Passed: true, Detail: resolved}
	}
	return Result{Name: name, Passed: true, Detail: versionLine(string(output), resolved)}
}

// versionLine extracts "ffmpeg version X" from `ffmpeg -version` output.
func versionLine(output, fallback string) string {
	first, _, _ := strings.Cut(strings.TrimSpace(output), "\n")
	fields := strings.Fields(first)
	if len(fields) >= 3 && fields[1] == "version" {
		return fields[2]
	}
	return fallback
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckDeviceNode verifies a capture node exists and can be opened read/write.
func CheckDeviceNode(name, path string) Result {
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{Name: name, Detail: "device not configured"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: not present)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	kind := "file"
	if info.Mode()&os.ModeCharDevice != 0 {
		kind = "character device"
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s, read/write ok)", path, kind)}
}
