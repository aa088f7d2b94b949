// Package prefs holds per-visitor preferences: a namespaced key/value
// Storage with memory, JSON-file and HTTP-cookie backends, plus the Theme
// and ViewMode state objects built on it.
package prefs

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Storage keys. Each key is independent; removing one never touches
// another.
const (
	KeyTheme         = "wallpaper-gallery-theme"
	KeyViewMode      = "wallpaper-gallery-view-mode"
	KeySort          = "wallpaper-gallery-sort"
	KeyCategory      = "wallpaper-gallery-category"
	KeyCurrentSeries = "wallpaper-gallery-current-series"
	KeyUserChoice    = "wallpaper-gallery-user-explicit-choice"
)

// Keys lists every storage key in use.
var Keys = []string{KeyTheme, KeyViewMode, KeySort, KeyCategory, KeyCurrentSeries, KeyUserChoice}

// Storage is a string key/value store. Implementations are safe for
// concurrent use.
type Storage interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Remove(key string) error
}

// Memory is an in-process Storage.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemory returns an empty Memory storage.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

func (m *Memory) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *Memory) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// File persists values as a JSON object. Every mutation rewrites the file.
type File struct {
	path string
	mu   sync.Mutex
	mem  map[string]string
}

// OpenFile loads path if it exists. A missing file starts empty.
func OpenFile(path string) (*File, error) {
	f := &File{path: path, mem: make(map[string]string)}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return f, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read preferences: %w", err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &f.mem); err != nil {
			return nil, fmt.Errorf("parse preferences %s: %w", path, err)
		}
	}
	return f, nil
}

func (f *File) Get(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.mem[key]
	return v, ok
}

func (f *File) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mem[key] = value
	return f.flush()
}

func (f *File) Remove(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.mem[key]; !ok {
		return nil
	}
	delete(f.mem, key)
	return f.flush()
}

func (f *File) flush() error {
	data, err := json.MarshalIndent(f.mem, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

// CookieMaxAge is how long preference cookies live.
const CookieMaxAge = 365 * 24 * time.Hour

// Cookies backs Storage with HTTP cookies for one request/response pair.
// Reads see the request cookies plus any writes made through this value.
type Cookies struct {
	w      http.ResponseWriter
	mu     sync.Mutex
	values map[string]string
}

// NewCookies snapshots the known preference cookies of r. Writes are sent
// on w as Set-Cookie headers, so they must happen before the body.
func NewCookies(w http.ResponseWriter, r *http.Request) *Cookies {
	c := &Cookies{w: w, values: make(map[string]string)}
	for _, key := range Keys {
		ck, err := r.Cookie(key)
		if err != nil {
			continue
		}
		if v, err := url.QueryUnescape(ck.Value); err == nil {
			c.values[key] = v
		}
	}
	return c
}

func (c *Cookies) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[key]
	return v, ok
}

func (c *Cookies) Set(key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
	http.SetCookie(c.w, &http.Cookie{
		Name:     key,
		Value:    url.QueryEscape(value),
		Path:     "/",
		MaxAge:   int(CookieMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (c *Cookies) Remove(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, key)
	http.SetCookie(c.w, &http.Cookie{Name: key, Value: "", Path: "/", MaxAge: -1})
	return nil
}
