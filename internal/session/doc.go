// Package session composes the preview registry, the capture session, and the
// recording controller into the Manager that hosts drive.
//
// A Manager is constructed with New and owned by its host; there is no
// package-level instance. Initialize may be called again to replace the
// running session, and Destroy is safe at any time.
//
// Capability absence is never an error. Without a capture platform, or when
// another process holds the capture lock, the Manager runs in degraded mode:
// preview operations work, StartRecording is a logged no-op, and
// StopRecording returns the placeholder artifact.
//
// Operations may be called from any goroutine. The manager lock is released
// while a stop drains so preview operations stay responsive.
package session
