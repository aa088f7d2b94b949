package selection

import (
	"errors"
	"fmt"
	"sync"

	"github.com/AnyUserName/wallgen/internal/device"
	"github.com/AnyUserName/wallgen/internal/logging"
	"github.com/AnyUserName/wallgen/internal/prefs"
	"github.com/AnyUserName/wallgen/internal/series"
)

var (
	ErrUnknownSeries = errors.New("unknown series")
	ErrUnavailable   = errors.New("series not available for device")
)

// ChangeFunc receives the previous and the new series.
type ChangeFunc func(oldSeries, newSeries string)

// Selection is the current series of one visitor. Set, InitFromRoute and
// device changes are the only mutation paths; each persists the value.
type Selection struct {
	table *series.Table
	store prefs.Storage

	mu        sync.Mutex
	class     string
	current   string
	nextID    int
	listeners map[int]ChangeFunc
}

// New restores the persisted series when the device may show it and
// otherwise starts at the device default.
func New(table *series.Table, store prefs.Storage, width int) *Selection {
	s := &Selection{
		table:     table,
		store:     store,
		class:     device.Classify(width),
		listeners: make(map[int]ChangeFunc),
	}
	if v, ok := store.Get(prefs.KeyCurrentSeries); ok && table.IsAvailable(v, s.class) {
		s.current = v
	} else {
		s.current = table.DefaultFor(s.class)
	}
	return s
}

// Current returns the current series id.
func (s *Selection) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Config returns the configuration of the current series.
func (s *Selection) Config() series.Config {
	c, _ := s.table.Get(s.Current())
	return c
}

// Device returns the device class the selection is validated against.
func (s *Selection) Device() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.class
}

// Available lists the series the current device may show.
func (s *Selection) Available() []string {
	return s.table.AvailableFor(s.Device())
}

// OnChange registers fn for series transitions and returns a function
// that removes it.
func (s *Selection) OnChange(fn ChangeFunc) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// Set switches to id. Unknown or unavailable ids are logged and rejected,
// leaving the current series unchanged.
func (s *Selection) Set(id string) error {
	if !s.table.Known(id) {
		logging.Warn("invalid series: %s", id)
		return fmt.Errorf("%w: %q", ErrUnknownSeries, id)
	}
	s.mu.Lock()
	if !s.table.IsAvailable(id, s.class) {
		class := s.class
		s.mu.Unlock()
		logging.Warn("series %s is not available for %s device", id, class)
		return fmt.Errorf("%w: %q on %s", ErrUnavailable, id, class)
	}
	s.mu.Unlock()
	s.apply(id)
	return nil
}

// InitFromRoute adopts the series named by a route. An unavailable series
// falls back to the device default; unknown ids are ignored.
func (s *Selection) InitFromRoute(id string) {
	if id == "" || !s.table.Known(id) {
		return
	}
	s.mu.Lock()
	class := s.class
	s.mu.Unlock()
	if !s.table.IsAvailable(id, class) {
		id = s.table.DefaultFor(class)
	}
	s.apply(id)
}

// DeviceChanged re-validates the current series for a new device class
// and switches to that device's default when needed.
func (s *Selection) DeviceChanged(newClass, _ string) {
	s.mu.Lock()
	s.class = newClass
	cur := s.current
	s.mu.Unlock()
	if s.table.IsAvailable(cur, newClass) {
		return
	}
	s.apply(s.table.DefaultFor(newClass))
}

// Watch follows device-class changes reported by w.
func (s *Selection) Watch(w *device.Watcher) (unsubscribe func()) {
	return w.OnChange(s.DeviceChanged)
}

func (s *Selection) apply(id string) {
	s.mu.Lock()
	old := s.current
	s.current = id
	var fns []ChangeFunc
	if old != id {
		for i := 0; i < s.nextID; i++ {
			if fn, ok := s.listeners[i]; ok {
				fns = append(fns, fn)
			}
		}
	}
	s.mu.Unlock()

	if err := s.store.Set(prefs.KeyCurrentSeries, id); err != nil {
		logging.Warn("persist current series: %v", err)
	}
	for _, fn := range fns {
		fn(old, id)
	}
}
