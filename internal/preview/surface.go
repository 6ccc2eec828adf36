package preview

import "sync"

// View is the external render target for the camera preview.
type View interface {
	Apply(style Style)
	SetHidden(hidden bool)
	Remove()
}

// Surface owns a View. It starts hidden, tracks visibility, and ignores
// calls once removed.
type Surface struct {
	mu      sync.Mutex
	view    View
	hidden  bool
	removed bool
	style   Style
}

// NewSurface wraps view and hides it until Show is called.
func NewSurface(view View) *Surface {
	s := &Surface{view: view, hidden: true}
	if view != nil {
		view.SetHidden(true)
	}
	return s
}

// Render applies the style of cfg.
func (s *Surface) Render(cfg FrameConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.view == nil || s.removed {
		return
	}
	s.style = StyleFor(cfg)
	s.view.Apply(s.style)
}

// Show makes the view visible.
func (s *Surface) Show() { s.setHidden(false) }

// Hide hides the view without touching its style.
func (s *Surface) Hide() { s.setHidden(true) }

// Visible reports whether the view is currently shown.
func (s *Surface) Visible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.removed && !s.hidden
}

// Style returns the most recently applied style.
func (s *Surface) Style() Style {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.style
}

// Remove detaches the view. Repeated calls are no-ops.
func (s *Surface) Remove() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.view == nil || s.removed {
		return
	}
	s.removed = true
	s.view.Remove()
}

func (s *Surface) setHidden(hidden bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.view == nil || s.removed {
		return
	}
	s.hidden = hidden
	s.view.SetHidden(hidden)
}
