package testsupport

import (
	"sync"

	"reelcam/internal/preview"
)

// FakeView records everything applied to it.
type FakeView struct {
	mu      sync.Mutex
	styles  []preview.Style
	hidden  bool
	removed bool
}

func (v *FakeView) Apply(style preview.Style) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.styles = append(v.styles, style)
}

func (v *FakeView) SetHidden(hidden bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.hidden = hidden
}

func (v *FakeView) Remove() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.removed = true
}

// Styles returns every applied style in order.
func (v *FakeView) Styles() []preview.Style {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]preview.Style(nil), v.styles...)
}

// LastStyle returns the most recent style, if any.
func (v *FakeView) LastStyle() (preview.Style, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.styles) == 0 {
		return preview.Style{}, false
	}
	return v.styles[len(v.styles)-1], true
}

func (v *FakeView) Hidden() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.hidden
}

func (v *FakeView) Removed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.removed
}
