package series

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestDefaultTable(t *testing.T) {
	tbl := Default()
	if err := tbl.Validate(); err != nil {
		t.Fatalf("default table invalid: %v", err)
	}
	if got := tbl.IDs(); !reflect.DeepEqual(got, []string{"desktop", "mobile", "avatar"}) {
		t.Errorf("IDs = %v", got)
	}
	avatar, ok := tbl.Get("avatar")
	if !ok || avatar.HasPreview || avatar.PreviewDir != "" {
		t.Errorf("avatar config: %+v", avatar)
	}
}

func TestAvailability(t *testing.T) {
	tbl := Default()
	tests := []struct {
		series, device string
		want           bool
	}{
		{"desktop", DeviceDesktop, true},
		{"avatar", DeviceDesktop, true},
		{"mobile", DeviceDesktop, false},
		{"mobile", DeviceMobile, true},
		{"desktop", DeviceMobile, false},
		{"avatar", DeviceMobile, true},
		{"desktop", "tablet", true},
	}
	for _, tt := range tests {
		if got := tbl.IsAvailable(tt.series, tt.device); got != tt.want {
			t.Errorf("IsAvailable(%s, %s) = %v, want %v", tt.series, tt.device, got, tt.want)
		}
	}
	if got := tbl.DefaultFor(DeviceMobile); got != "mobile" {
		t.Errorf("DefaultFor(mobile) = %q", got)
	}
}

func TestDefaultForMisconfigured(t *testing.T) {
	tbl := Default()
	tbl.Devices.Defaults[DeviceMobile] = "desktop"
	if got := tbl.DefaultFor(DeviceMobile); got != "mobile" {
		t.Errorf("unavailable default should fall back to first available, got %q", got)
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "series.yaml")
	raw := `
series:
  desktop:
    name: Desktop
    wallpaper_dir: wallpaper/desktop
    thumbnail_dir: thumbnail/desktop
    preview_dir: preview/desktop
    has_preview: true
  avatar:
    name: Avatars
    wallpaper_dir: wallpaper/avatar
    thumbnail_dir: thumbnail/avatar
order: [desktop, avatar]
devices:
  available:
    desktop: [desktop, avatar]
    mobile: [avatar]
  defaults:
    desktop: desktop
    mobile: avatar
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}
	tbl, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tbl.Known("mobile") {
		t.Error("mobile should be replaced by the file's series list")
	}
	d, _ := tbl.Get("desktop")
	if d.ID != "desktop" || d.OutputFile != "desktop.json" {
		t.Errorf("defaults not filled: %+v", d)
	}
	if got := tbl.DefaultFor(DeviceMobile); got != "avatar" {
		t.Errorf("DefaultFor(mobile) = %q", got)
	}
}

func TestLoadRejectsUnknownSeries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	raw := `
devices:
  available:
    desktop: [desktop, wallpapers]
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error")
	}
}
