// Package services defines shared markers consumed by the recording session
// components and the CLI.
//
// Key responsibilities:
//   - Context helpers that stamp session IDs, operation names, and correlation
//     identifiers for logging.
//   - Sentinel error markers plus the Wrap helper so callers can match on
//     errors.Is regardless of the component that produced the failure.
//   - ErrorKind classification separating caller mistakes (validation) from
//     lifecycle misuse and runtime failures.
package services
