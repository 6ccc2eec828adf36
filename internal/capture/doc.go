// Package capture owns the camera/microphone side of a recording session.
//
// Platform, Stream and Encoder describe the capture capability of the host;
// a nil Platform or an Open failure simply means no capture is available.
// Session opens a stream for the requested facing and quality preset,
// negotiates the container format, and hands the Encoder to the recorder.
// Encoders deliver flushed data through a per-stop Subscription.
package capture
