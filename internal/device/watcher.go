package device

import (
	"sync"
	"time"
)

// DefaultSettle is how long Watcher waits after the last resize before
// comparing device classes.
const DefaultSettle = 16 * time.Millisecond

// ChangeFunc receives the new and previous device class.
type ChangeFunc func(newClass, oldClass string)

// Watcher tracks the viewport width and notifies listeners when the
// device class changes. A burst of resizes produces at most one
// notification, comparing the class before the burst with the class
// after it.
type Watcher struct {
	settle time.Duration

	mu        sync.Mutex
	width     int
	pending   bool
	pendingOf string // class before the current burst
	gen       uint64
	timer     *time.Timer
	closed    bool
	nextID    int
	listeners map[int]ChangeFunc
}

// NewWatcher starts at width. settle <= 0 uses DefaultSettle.
func NewWatcher(width int, settle time.Duration) *Watcher {
	if settle <= 0 {
		settle = DefaultSettle
	}
	return &Watcher{
		settle:    settle,
		width:     width,
		listeners: make(map[int]ChangeFunc),
	}
}

// Width returns the last recorded width.
func (w *Watcher) Width() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.width
}

// Class returns the device class of the last recorded width.
func (w *Watcher) Class() string {
	return Classify(w.Width())
}

// Resize records a new width and schedules the deferred class check.
func (w *Watcher) Resize(width int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if !w.pending {
		w.pending = true
		w.pendingOf = Classify(w.width)
	}
	w.width = width
	if w.timer != nil {
		w.timer.Stop()
	}
	w.gen++
	gen := w.gen
	w.timer = time.AfterFunc(w.settle, func() { w.check(gen) })
}

func (w *Watcher) check(gen uint64) {
	w.mu.Lock()
	if w.closed || gen != w.gen {
		w.mu.Unlock()
		return
	}
	w.timer = nil
	w.pending = false
	oldClass, newClass := w.pendingOf, Classify(w.width)
	if oldClass == newClass {
		w.mu.Unlock()
		return
	}
	fns := make([]ChangeFunc, 0, len(w.listeners))
	for id := 0; id < w.nextID; id++ {
		if fn, ok := w.listeners[id]; ok {
			fns = append(fns, fn)
		}
	}
	w.mu.Unlock()

	for _, fn := range fns {
		fn(newClass, oldClass)
	}
}

// OnChange registers fn and returns a function that removes it.
// Listeners run in registration order.
func (w *Watcher) OnChange(fn ChangeFunc) (unsubscribe func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	id := w.nextID
	w.nextID++
	w.listeners[id] = fn
	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		delete(w.listeners, id)
	}
}

// Close stops the pending check. Timers firing afterwards are ignored.
func (w *Watcher) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.listeners = make(map[int]ChangeFunc)
}
