package selection

import (
	"sync"
	"time"
)

// Guard defaults.
const (
	DefaultMaxNavigations = 5
	DefaultWindow         = time.Second
	DefaultHistorySize    = 10
	DefaultRepeatWindow   = 200 * time.Millisecond
)

// GuardConfig tunes a Guard. Zero fields take the defaults; a negative
// RepeatWindow disables repeat suppression.
type GuardConfig struct {
	MaxNavigations int
	Window         time.Duration
	HistorySize    int
	RepeatWindow   time.Duration
	Now            func() time.Time
}

type redirect struct {
	from, to string
	at       time.Time
}

// Guard rate-limits navigations over a rolling window and remembers
// recent redirects. One Guard belongs to one visitor.
type Guard struct {
	cfg GuardConfig

	mu      sync.Mutex
	events  []time.Time
	history []redirect
}

// NewGuard applies defaults to cfg.
func NewGuard(cfg GuardConfig) *Guard {
	if cfg.MaxNavigations <= 0 {
		cfg.MaxNavigations = DefaultMaxNavigations
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = DefaultHistorySize
	}
	if cfg.RepeatWindow == 0 {
		cfg.RepeatWindow = DefaultRepeatWindow
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Guard{cfg: cfg}
}

// Admit records a navigation and reports whether redirects are still
// permitted, i.e. no more than MaxNavigations happened within Window.
func (g *Guard) Admit() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.cfg.Now()
	cutoff := now.Add(-g.cfg.Window)
	keep := g.events[:0]
	for _, t := range g.events {
		if t.After(cutoff) {
			keep = append(keep, t)
		}
	}
	g.events = append(keep, now)
	return len(g.events) <= g.cfg.MaxNavigations
}

// Repeated reports whether the redirect from → to was issued within
// RepeatWindow.
func (g *Guard) Repeated(from, to string) bool {
	if g.cfg.RepeatWindow < 0 {
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.cfg.Now()
	for i := len(g.history) - 1; i >= 0; i-- {
		r := g.history[i]
		if r.from == from && r.to == to && now.Sub(r.at) < g.cfg.RepeatWindow {
			return true
		}
	}
	return false
}

// Remember appends a redirect to the bounded history.
func (g *Guard) Remember(from, to string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.history = append(g.history, redirect{from: from, to: to, at: g.cfg.Now()})
	if over := len(g.history) - g.cfg.HistorySize; over > 0 {
		g.history = append(g.history[:0], g.history[over:]...)
	}
}

// HistoryLen returns the number of remembered redirects.
func (g *Guard) HistoryLen() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.history)
}
