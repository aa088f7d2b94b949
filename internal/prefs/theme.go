package prefs

import (
	"sync"

	"github.com/AnyUserName/wallgen/internal/logging"
)

// Theme values.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

func validTheme(v string) bool { return v == ThemeLight || v == ThemeDark }

// Theme is the light/dark preference. A stored value wins; otherwise the
// system preference applies and keeps applying until the user sets one.
type Theme struct {
	store Storage

	mu        sync.Mutex
	value     string
	listeners []func(theme string)
}

// NewTheme loads the stored theme, falling back to the system preference.
func NewTheme(store Storage, systemDark bool) *Theme {
	t := &Theme{store: store, value: systemTheme(systemDark)}
	if v, ok := store.Get(KeyTheme); ok && validTheme(v) {
		t.value = v
	}
	return t
}

func systemTheme(dark bool) string {
	if dark {
		return ThemeDark
	}
	return ThemeLight
}

// Value returns the current theme.
func (t *Theme) Value() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.value
}

// IsDark reports whether the dark theme is active.
func (t *Theme) IsDark() bool { return t.Value() == ThemeDark }

// OnToggle registers fn to be called with the new theme after Toggle.
func (t *Theme) OnToggle(fn func(theme string)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners = append(t.listeners, fn)
}

// Set applies and persists v. Invalid values are ignored.
func (t *Theme) Set(v string) {
	if !validTheme(v) {
		logging.Debug("ignoring invalid theme %q", v)
		return
	}
	t.mu.Lock()
	t.value = v
	t.mu.Unlock()
	t.persist(v)
}

// Toggle flips between light and dark and notifies OnToggle listeners.
func (t *Theme) Toggle() string {
	t.mu.Lock()
	if t.value == ThemeLight {
		t.value = ThemeDark
	} else {
		t.value = ThemeLight
	}
	v := t.value
	listeners := append([]func(string){}, t.listeners...)
	t.mu.Unlock()

	t.persist(v)
	for _, fn := range listeners {
		fn(v)
	}
	return v
}

// SystemChanged follows a system preference change unless the user has a
// stored theme.
func (t *Theme) SystemChanged(dark bool) {
	if _, ok := t.store.Get(KeyTheme); ok {
		return
	}
	t.mu.Lock()
	t.value = systemTheme(dark)
	t.mu.Unlock()
}

func (t *Theme) persist(v string) {
	if err := t.store.Set(KeyTheme, v); err != nil {
		logging.Warn("persist theme: %v", err)
	}
}
