package prefs

import (
	"sync"

	"github.com/AnyUserName/wallgen/internal/logging"
)

// View modes.
const (
	ViewGrid    = "grid"
	ViewList    = "list"
	ViewMasonry = "masonry"
)

// ViewModes lists the selectable modes in display order.
var ViewModes = []string{ViewGrid, ViewList, ViewMasonry}

// ViewMode is the gallery layout preference.
type ViewMode struct {
	store Storage

	mu        sync.Mutex
	value     string
	listeners []func(mode string)
}

// NewViewMode picks the initial mode: a stored mode wins except that grid
// becomes masonry on mobile; without one, mobile gets masonry and desktop
// gets grid.
func NewViewMode(store Storage, mobile bool) *ViewMode {
	v := &ViewMode{store: store}
	stored, ok := store.Get(KeyViewMode)
	switch {
	case ok && stored != "":
		v.value = stored
		if mobile && stored == ViewGrid {
			v.value = ViewMasonry
		}
	case mobile:
		v.value = ViewMasonry
	default:
		v.value = ViewGrid
	}
	return v
}

// Value returns the current mode.
func (v *ViewMode) Value() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.value
}

// OnChange registers fn to be called with the new mode when Set changes it.
func (v *ViewMode) OnChange(fn func(mode string)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.listeners = append(v.listeners, fn)
}

// Set stores mode and notifies listeners if it differs from the current one.
func (v *ViewMode) Set(mode string) {
	v.mu.Lock()
	old := v.value
	v.value = mode
	listeners := append([]func(string){}, v.listeners...)
	v.mu.Unlock()

	if err := v.store.Set(KeyViewMode, mode); err != nil {
		logging.Warn("persist view mode: %v", err)
	}
	if old == mode {
		return
	}
	for _, fn := range listeners {
		fn(mode)
	}
}
