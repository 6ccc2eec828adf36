package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidFrame    = errors.New("invalid frame config")
	ErrFrameNotFound   = errors.New("frame not found")
	ErrNotRecording    = errors.New("not recording")
	ErrAlreadyStopping = errors.New("stop already in progress")
	ErrDrainTimeout    = errors.New("drain timeout")
	ErrNotStarted      = errors.New("recording not started")
	ErrEncoder         = errors.New("encoder error")
	ErrConfiguration   = errors.New("configuration error")
)

// Kind values reported by ErrorKind.
const (
	KindValidation = "validation"
	KindState      = "state"
	KindTimeout    = "timeout"
	KindEncoder    = "encoder"
	KindConfig     = "configuration"
	KindUnknown    = "unknown"
)

// ErrorClassifier allows errors to declare their own classification.
type ErrorClassifier interface {
	ErrorKind() string
}

// Wrap builds an error message that includes component context while tagging
// it with the provided marker. The marker should be one of the exported
// sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrEncoder
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// ErrorKind classifies err for logging and CLI exit handling. Caller input
// problems are "validation"; lifecycle misuse is "state".
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	var classifier ErrorClassifier
	if errors.As(err, &classifier) {
		if kind := strings.TrimSpace(classifier.ErrorKind()); kind != "" {
			return kind
		}
	}
	switch {
	case errors.Is(err, ErrInvalidFrame), errors.Is(err, ErrFrameNotFound):
		return KindValidation
	case errors.Is(err, ErrNotRecording), errors.Is(err, ErrNotStarted), errors.Is(err, ErrAlreadyStopping):
		return KindState
	case errors.Is(err, ErrDrainTimeout):
		return KindTimeout
	case errors.Is(err, ErrEncoder):
		return KindEncoder
	case errors.Is(err, ErrConfiguration):
		return KindConfig
	default:
		return KindUnknown
	}
}

// IsValidation reports whether err was caused by caller-supplied input.
func IsValidation(err error) bool {
	kind := ErrorKind(err)
	return kind == KindValidation || kind == KindConfig
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "session failure"
	}
	return strings.Join(parts, ": ")
}
