package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"reelcam/internal/logging"
	"reelcam/internal/services"
)

func TestNewWritesToWriterAndFile(t *testing.T) {
	var stderr bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "reelcam.log")
	logger, err := logging.New(logging.Options{Format: "console", OutputPaths: []string{path, path}, Writer: &stderr})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("hello file")

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if strings.Count(string(content), "hello file") != 1 {
		t.Fatalf("expected one message in log file, got %q", content)
	}
	if !strings.Contains(stderr.String(), "hello file") {
		t.Fatalf("expected message on writer, got %q", stderr.String())
	}
}

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-info.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logging.NewComponentLogger(logger, "recorder").Info("message without caller", logging.String("state", "idle"))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(content)
	if strings.Contains(line, ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", line)
	}
	if !strings.Contains(line, "recorder: message without caller") || !strings.Contains(line, "state=idle") {
		t.Fatalf("unexpected console line %q", line)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-debug.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "debug", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("message with caller")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), ".go:") {
		t.Fatalf("expected caller information in debug logs, got %q", content)
	}
}

func TestConsoleLoggerShowsSessionPrefix(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "session.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.WithSessionID(logger, "0123456789abcdef").Info("opened")

	content, _ := os.ReadFile(logPath)
	if !strings.Contains(string(content), "[01234567] opened") {
		t.Fatalf("expected short session prefix, got %q", content)
	}
	if strings.Contains(string(content), "session_id=") {
		t.Fatalf("expected session id to be promoted out of the attrs, got %q", content)
	}
}

func TestJSONLoggerKeys(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "json.log")
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("json message", logging.String("k", "v"))

	content, _ := os.ReadFile(logPath)
	for _, want := range []string{`"ts":`, `"level":"info"`, `"msg":"json message"`, `"k":"v"`} {
		if !strings.Contains(string(content), want) {
			t.Fatalf("expected %s in %q", want, content)
		}
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"invalid": slog.LevelInfo,
	}
	for input, want := range tests {
		if got := logging.ParseLevel(input); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestWithContextAddsFields(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	ctx := services.WithSessionID(context.Background(), "sess-9")
	ctx = services.WithOperation(ctx, "stop_recording")
	ctx = services.WithRequestID(ctx, "req-xyz")

	logging.WithContext(ctx, base).Info("contextual log")

	out := buf.String()
	for _, want := range []string{`"session_id":"sess-9"`, `"operation":"stop_recording"`, `"correlation_id":"req-xyz"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in %q", want, out)
		}
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	logging.WarnWithContext(logger, "start ignored", "start_noop", logging.String(logging.FieldImpact, "recording continues"))

	out := buf.String()
	for _, want := range []string{`"event_type":"start_noop"`, `"error_hint":`, `"impact":"recording continues"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in %q", want, out)
		}
	}
	if strings.Count(out, `"impact"`) != 1 {
		t.Fatalf("expected caller impact to win, got %q", out)
	}
}

func TestComponentLoggerOverride(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	quiet := logging.ComponentLogger(base, "devicewatch", map[string]string{"DeviceWatch": "warn"})
	quiet.Info("suppressed")
	if buf.Len() != 0 {
		t.Fatalf("expected override to suppress info, got %q", buf.String())
	}

	loud := logging.ComponentLogger(base, "recorder", map[string]string{"devicewatch": "warn"})
	loud.Debug("kept")
	if !strings.Contains(buf.String(), `"component":"recorder"`) {
		t.Fatalf("expected component attr, got %q", buf.String())
	}
}

func TestNewFileHandler(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions", "one.log")
	handler, closer, err := logging.NewFileHandler(path, "json", "info")
	if err != nil {
		t.Fatalf("NewFileHandler: %v", err)
	}
	logging.TeeLogger(logging.NewNop(), handler).Info("mirrored")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	content, _ := os.ReadFile(path)
	if !strings.Contains(string(content), "mirrored") {
		t.Fatalf("expected mirrored record, got %q", content)
	}
}

func TestErrorWithContextInjectsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	logging.ErrorWithContext(logger, "drain failed", "recorder_drain_failed", logging.String(logging.FieldErrorHint, "destroy the session"))

	out := buf.String()
	for _, want := range []string{`"level":"ERROR"`, `"event_type":"recorder_drain_failed"`, `"error_hint":"destroy the session"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in %q", want, out)
		}
	}
	if strings.Contains(out, `"impact"`) {
		t.Fatalf("error records do not require impact, got %q", out)
	}
}

func TestWithSessionID(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))
	logging.WithSessionID(base, "sess-abc").With("facing", "front").Info("camera opened")

	out := buf.String()
	for _, want := range []string{`"session_id":"sess-abc"`, `"facing":"front"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in %q", want, out)
		}
	}
	if got := logging.WithSessionID(base, "  "); got != base {
		t.Fatal("expected blank session id to return the same logger")
	}
}

func TestTeeLoggerRespectsEachLevel(t *testing.T) {
	var infoBuf, debugBuf bytes.Buffer
	logger := logging.TeeLogger(
		slog.New(slog.NewJSONHandler(&infoBuf, &slog.HandlerOptions{Level: slog.LevelInfo})),
		slog.NewJSONHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug}),
		nil,
	)
	logger.Debug("poll tick")
	if infoBuf.Len() != 0 {
		t.Fatalf("info sink received debug record: %q", infoBuf.String())
	}
	if !strings.Contains(debugBuf.String(), "poll tick") {
		t.Fatalf("debug sink missed record: %q", debugBuf.String())
	}

	logger.With("facing", "back").Info("opened")
	for _, buf := range []*bytes.Buffer{&infoBuf, &debugBuf} {
		if !strings.Contains(buf.String(), `"facing":"back"`) {
			t.Fatalf("expected attrs in both sinks, got %q", buf.String())
		}
	}

	var only bytes.Buffer
	logging.TeeLogger(nil, slog.NewJSONHandler(&only, nil)).Info("no base")
	if only.Len() == 0 {
		t.Fatal("expected output with nil base")
	}
}
