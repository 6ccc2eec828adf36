package ffmpeg

import (
	"bytes"
	"io"
	"math"
	"strconv"
	"strings"
	"sync"
)

const (
	levelKey = "lavfi.astats.Overall.RMS_level"
	// levelSamples is 100ms at the alsa input's default 48kHz.
	levelSamples = 4800
	// SilenceLevel stands in for ffmpeg's -inf on digital silence.
	SilenceLevel = -120.0
)

// levelFilter meters the audio input once per levelSamples and prints the
// RMS level to stderr, where levelWriter picks it up.
func levelFilter() string {
	return "asetnsamples=n=" + strconv.Itoa(levelSamples) + ":p=0," +
		"astats=metadata=1:reset=1," +
		"ametadata=mode=print:key=" + levelKey + ":file=/dev/stderr"
}

// parseLevel reads one "lavfi.astats.Overall.RMS_level=<dB>" line.
func parseLevel(line string) (float64, bool) {
	value, ok := strings.CutPrefix(strings.TrimSpace(line), levelKey+"=")
	if !ok {
		return 0, false
	}
	db, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(db) {
		return 0, false
	}
	if math.IsInf(db, -1) || db < SilenceLevel {
		return SilenceLevel, true
	}
	return min(db, 0), true
}

// levelWriter splits ffmpeg stderr into lines, reports level lines to emit
// and passes everything else through to rest.
type levelWriter struct {
	mu      sync.Mutex
	pending []byte
	emit    func(db float64)
	rest    io.Writer
}

func (w *levelWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending = append(w.pending, p...)
	for {
		idx := bytes.IndexByte(w.pending, '\n')
		if idx < 0 {
			break
		}
		line := string(w.pending[:idx])
		w.pending = w.pending[idx+1:]
		if db, ok := parseLevel(line); ok {
			w.emit(db)
			continue
		}
		if strings.HasPrefix(line, "frame:") {
			continue
		}
		_, _ = w.rest.Write([]byte(line + "\n"))
	}
	return len(p), nil
}
