// Package preview models the on-screen overlay frames a camera preview is
// rendered into.
//
// FrameSpec and DropShadowSpec are the partial, caller-facing forms (every
// field optional, TOML-decodable); NewFrameConfig and NewDropShadow resolve
// them into fully defaulted values exactly once. Registry keeps the ordered,
// id-unique set of frames plus the current pointer, and Surface applies the
// computed Style of the current frame to an external View.
package preview
