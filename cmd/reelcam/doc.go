// Command reelcam records from a local camera through a session manager and
// inspects the pieces around it: preview frames, colors, capture devices,
// the recording history, and configuration.
package main
