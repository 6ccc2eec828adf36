// Package ffmpeg implements capture.Platform on Linux by driving the ffmpeg
// binary against V4L2 camera nodes and an ALSA microphone.
//
// The encoder writes a fragmented container to stdout. Stop asks ffmpeg to
// quit with "q" on stdin, waits for the muxer to flush, and then publishes
// the buffered bytes on the current capture.Subscription before finishing
// it. Command execution sits behind Runner so tests can drive the encoder
// without a camera.
package ffmpeg
