// Package logging builds the slog loggers used across reelcam.
//
// New picks the console or JSON handler and its outputs. WithContext and
// WithSessionID tag records with the identifiers carried by a session
// operation, and ComponentLogger applies the per-component levels from the
// [logging] config section.
package logging
