package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
)

// Process is a running capture.
type Process interface {
	Stdout() io.Reader
	// Interrupt asks ffmpeg to finish the file and exit.
	Interrupt() error
	Wait() error
	Kill() error
}

// Runner abstracts command execution for testability.
// Start reports audio levels found on stderr to onLevel when it is non-nil.
type Runner interface {
	Output(ctx context.Context, binary string, args []string) ([]byte, error)
	Start(binary string, args []string, onLevel func(db float64)) (Process, error)
}

type commandRunner struct{}

func (commandRunner) Output(ctx context.Context, binary string, args []string) ([]byte, error) {
	return exec.CommandContext(ctx, binary, args...).Output()
}

func (commandRunner) Start(binary string, args []string, onLevel func(db float64)) (Process, error) {
	cmd := exec.Command(binary, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	proc := &commandProcess{cmd: cmd, stdin: stdin, stdout: stdout}
	cmd.Stderr = &proc.stderr
	if onLevel != nil {
		cmd.Stderr = &levelWriter{emit: onLevel, rest: &proc.stderr}
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", binary, err)
	}
	return proc, nil
}

type commandProcess struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.Reader
	stderr tailBuffer

	interruptOnce sync.Once
}

func (p *commandProcess) Stdout() io.Reader { return p.stdout }

func (p *commandProcess) Interrupt() error {
	var err error
	p.interruptOnce.Do(func() {
		_, err = io.WriteString(p.stdin, "q")
		_ = p.stdin.Close()
	})
	return err
}

func (p *commandProcess) Wait() error {
	if err := p.cmd.Wait(); err != nil {
		if detail := strings.TrimSpace(p.stderr.String()); detail != "" {
			return fmt.Errorf("%w: %s", err, detail)
		}
		return err
	}
	return nil
}

func (p *commandProcess) Kill() error {
	if p.cmd.Process == nil {
		return nil
	}
	if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	return nil
}

// tailBuffer keeps the last few KiB of stderr for error reporting.
type tailBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

const tailLimit = 4 << 10

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf.Write(p)
	if over := t.buf.Len() - tailLimit; over > 0 {
		t.buf.Next(over)
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.buf.String()
}
