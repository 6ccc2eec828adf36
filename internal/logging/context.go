package logging

import (
	"context"
	"log/slog"
	"strings"

	"reelcam/internal/services"
)

// Standard structured logging keys.
const (
	FieldComponent = "component"
	FieldSessionID = "session_id"
	// FieldOperation names the public session operation being served.
	FieldOperation = "operation"
	// FieldState is the recorder or device state when the record was written.
	FieldState         = "state"
	FieldCorrelationID = "correlation_id"
	// FieldEventType classifies WARN and ERROR records for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint tells the operator what to try next.
	FieldErrorHint = "error_hint"
	// FieldImpact is the user-facing consequence of a warning.
	FieldImpact = "impact"
)

// WithContext tags logger with the session, operation and correlation IDs
// carried by ctx.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if ctx == nil {
		return logger
	}
	var args []any
	if id, ok := services.SessionIDFromContext(ctx); ok {
		args = append(args, String(FieldSessionID, id))
	}
	if op, ok := services.OperationFromContext(ctx); ok {
		args = append(args, String(FieldOperation, op))
	}
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		args = append(args, String(FieldCorrelationID, rid))
	}
	if len(args) == 0 {
		return logger
	}
	return logger.With(args...)
}

// WithSessionID returns a logger whose records all carry session_id. A blank
// id returns logger unchanged.
func WithSessionID(logger *slog.Logger, sessionID string) *slog.Logger {
	if logger == nil {
		return NewNop()
	}
	if strings.TrimSpace(sessionID) == "" {
		return logger
	}
	return logger.With(String(FieldSessionID, sessionID))
}
