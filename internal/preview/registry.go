package preview

import (
	"strings"

	"reelcam/internal/services"
)

// RenderFunc receives the frame that should now be on screen.
type RenderFunc func(FrameConfig)

// Registry is an ordered, id-unique set of frames with a current pointer.
// It is not safe for concurrent use; the session manager serializes access.
type Registry struct {
	frames  []FrameConfig
	current string
	render  RenderFunc
}

// NewRegistry returns an empty registry. render may be nil.
func NewRegistry(render RenderFunc) *Registry {
	return &Registry{render: render}
}

// SetRenderer replaces the render callback.
func (r *Registry) SetRenderer(render RenderFunc) {
	r.render = render
}

// Reset replaces the contents with frames, applying add semantics to repeated
// ids, and points current at the first frame. An empty input yields the single
// default frame. Nothing is rendered.
func (r *Registry) Reset(frames []FrameConfig) error {
	for _, frame := range frames {
		if err := checkID(frame.ID, "reset"); err != nil {
			return err
		}
	}
	r.frames = r.frames[:0]
	r.current = ""
	if len(frames) == 0 {
		frames = []FrameConfig{DefaultFrame()}
	}
	for _, frame := range frames {
		if idx := r.index(frame.ID); idx >= 0 {
			r.frames[idx] = frame
			continue
		}
		r.frames = append(r.frames, frame)
	}
	r.current = r.frames[0].ID
	return nil
}

// Add appends cfg, or replaces the existing entry with the same id exactly as
// Edit would.
func (r *Registry) Add(cfg FrameConfig) error {
	if err := checkID(cfg.ID, "add"); err != nil {
		return err
	}
	if r.index(cfg.ID) >= 0 {
		return r.Edit(cfg)
	}
	r.frames = append(r.frames, cfg)
	return nil
}

// Edit replaces the entry with cfg.ID (appending when absent) and re-renders
// when that entry is current.
func (r *Registry) Edit(cfg FrameConfig) error {
	if err := checkID(cfg.ID, "edit"); err != nil {
		return err
	}
	if idx := r.index(cfg.ID); idx >= 0 {
		r.frames[idx] = cfg
	} else {
		r.frames = append(r.frames, cfg)
	}
	if r.current != "" && r.current == cfg.ID {
		r.emit(cfg)
	}
	return nil
}

// SwitchTo makes id current and renders it. Unknown ids leave the current
// pointer untouched.
func (r *Registry) SwitchTo(id string) error {
	if err := checkID(id, "switch"); err != nil {
		return err
	}
	idx := r.index(id)
	if idx < 0 {
		return services.Wrap(services.ErrFrameNotFound, "preview", "switch", "id "+quote(id), nil)
	}
	r.current = id
	r.emit(r.frames[idx])
	return nil
}

// Current returns the current frame, if any.
func (r *Registry) Current() (FrameConfig, bool) {
	if r.current == "" {
		return FrameConfig{}, false
	}
	idx := r.index(r.current)
	if idx < 0 {
		return FrameConfig{}, false
	}
	return r.frames[idx], true
}

// Frames returns a copy of the frames in insertion order.
func (r *Registry) Frames() []FrameConfig {
	return append([]FrameConfig(nil), r.frames...)
}

// Len reports the number of frames.
func (r *Registry) Len() int {
	return len(r.frames)
}

// Clear empties the registry and drops the current pointer.
func (r *Registry) Clear() {
	r.frames = nil
	r.current = ""
}

func (r *Registry) index(id string) int {
	for i, frame := range r.frames {
		if frame.ID == id {
			return i
		}
	}
	return -1
}

func (r *Registry) emit(cfg FrameConfig) {
	if r.render != nil {
		r.render(cfg)
	}
}

func checkID(id, operation string) error {
	if strings.TrimSpace(id) == "" {
		return services.Wrap(services.ErrInvalidFrame, "preview", operation, "id required", nil)
	}
	return nil
}

func quote(s string) string {
	return `"` + s + `"`
}
