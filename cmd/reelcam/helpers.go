package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
)

func formatBytes(n int64) string {
	if n <= 0 {
		return "0 B"
	}
	return humanize.Bytes(uint64(n))
}

// formatDuration renders d as m:ss.t, or h:mm:ss past an hour.
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	if d >= time.Hour {
		h := int(d / time.Hour)
		m := int(d % time.Hour / time.Minute)
		s := int(d % time.Minute / time.Second)
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	m := int(d / time.Minute)
	tenths := int(d % time.Minute / (100 * time.Millisecond))
	return fmt.Sprintf("%d:%02d.%d", m, tenths/10, tenths%10)
}

func relativeTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.Time(t)
}

func valueOrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
