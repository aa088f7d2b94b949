package prefs

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
)

func exerciseStorage(t *testing.T, s Storage) {
	t.Helper()
	if _, ok := s.Get(KeyTheme); ok {
		t.Fatal("fresh storage should be empty")
	}
	for _, k := range Keys {
		if err := s.Set(k, "v-"+k); err != nil {
			t.Fatalf("set %s: %v", k, err)
		}
	}
	if err := s.Remove(KeySort); err != nil {
		t.Fatal(err)
	}
	for _, k := range Keys {
		v, ok := s.Get(k)
		if k == KeySort {
			if ok {
				t.Errorf("%s should be removed", k)
			}
			continue
		}
		if !ok || v != "v-"+k {
			t.Errorf("%s = %q, %v; removing another key must not affect it", k, v, ok)
		}
	}
}

func TestMemory(t *testing.T) {
	exerciseStorage(t, NewMemory())
}

func TestFilePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "prefs.json")
	f, err := OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	exerciseStorage(t, f)

	reopened, err := OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if v, ok := reopened.Get(KeyCategory); !ok || v != "v-"+KeyCategory {
		t.Errorf("reopened value = %q, %v", v, ok)
	}
	if _, ok := reopened.Get(KeySort); ok {
		t.Error("removed key came back after reopen")
	}
}

func TestCookies(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: KeyCategory, Value: "%E9%A3%8E%E6%99%AF"})
	req.AddCookie(&http.Cookie{Name: "unrelated", Value: "x"})
	rec := httptest.NewRecorder()

	c := NewCookies(rec, req)
	if v, ok := c.Get(KeyCategory); !ok || v != "风景" {
		t.Errorf("category = %q, %v", v, ok)
	}
	if _, ok := c.Get("unrelated"); ok {
		t.Error("only preference cookies should be read")
	}

	if err := c.Set(KeyCurrentSeries, "mobile"); err != nil {
		t.Fatal(err)
	}
	if err := c.Remove(KeyCategory); err != nil {
		t.Fatal(err)
	}

	set := map[string]*http.Cookie{}
	for _, ck := range rec.Result().Cookies() {
		set[ck.Name] = ck
	}
	if ck := set[KeyCurrentSeries]; ck == nil || ck.Value != "mobile" || ck.MaxAge <= 0 {
		t.Errorf("series cookie = %+v", ck)
	}
	if ck := set[KeyCategory]; ck == nil || ck.MaxAge >= 0 {
		t.Errorf("category cookie should be expired: %+v", ck)
	}
}

func TestThemeInitialValue(t *testing.T) {
	if th := NewTheme(NewMemory(), true); th.Value() != ThemeDark {
		t.Errorf("system dark: got %s", th.Value())
	}
	store := NewMemory()
	_ = store.Set(KeyTheme, ThemeLight)
	if th := NewTheme(store, true); th.Value() != ThemeLight {
		t.Errorf("stored value should win: got %s", th.Value())
	}
	_ = store.Set(KeyTheme, "purple")
	if th := NewTheme(store, false); th.Value() != ThemeLight {
		t.Errorf("invalid stored value should fall back to system: got %s", th.Value())
	}
}

func TestThemeToggleAndSystem(t *testing.T) {
	store := NewMemory()
	th := NewTheme(store, false)

	th.SystemChanged(true)
	if !th.IsDark() {
		t.Error("without a stored theme the system preference is followed")
	}

	var tracked []string
	th.OnToggle(func(v string) { tracked = append(tracked, v) })
	if got := th.Toggle(); got != ThemeLight {
		t.Errorf("toggle = %s", got)
	}
	if v, _ := store.Get(KeyTheme); v != ThemeLight {
		t.Errorf("stored = %s", v)
	}
	if len(tracked) != 1 || tracked[0] != ThemeLight {
		t.Errorf("tracked = %v", tracked)
	}

	th.SystemChanged(true)
	if th.IsDark() {
		t.Error("stored theme must not follow the system")
	}

	th.Set("neon")
	if th.Value() != ThemeLight {
		t.Error("invalid Set should be ignored")
	}
}

func TestViewModeDefaults(t *testing.T) {
	cases := []struct {
		name   string
		stored string
		mobile bool
		want   string
	}{
		{"desktop default", "", false, ViewGrid},
		{"mobile default", "", true, ViewMasonry},
		{"mobile coerces grid", ViewGrid, true, ViewMasonry},
		{"mobile keeps list", ViewList, true, ViewList},
		{"desktop keeps masonry", ViewMasonry, false, ViewMasonry},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			store := NewMemory()
			if c.stored != "" {
				_ = store.Set(KeyViewMode, c.stored)
			}
			if got := NewViewMode(store, c.mobile).Value(); got != c.want {
				t.Errorf("got %s, want %s", got, c.want)
			}
		})
	}
}

func TestViewModeSetTracksChanges(t *testing.T) {
	store := NewMemory()
	v := NewViewMode(store, false)
	var tracked []string
	v.OnChange(func(m string) { tracked = append(tracked, m) })

	v.Set(ViewGrid)
	v.Set(ViewList)
	v.Set(ViewList)

	if len(tracked) != 1 || tracked[0] != ViewList {
		t.Errorf("tracked = %v", tracked)
	}
	if s, _ := store.Get(KeyViewMode); s != ViewList {
		t.Errorf("stored = %s", s)
	}
}
