// Package preflight reports whether the host can capture video.
//
// These checks run in two contexts:
//   - The ffmpeg platform calls CheckDeviceNode before spawning a capture so
//     a missing camera surfaces as capture.ErrUnavailable.
//   - The CLI "reelcam devices" command calls RunAll and renders every
//     result as a table.
//
// Optional results never make Ready return false.
package preflight
