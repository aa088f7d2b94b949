package series

import (
	"fmt"
	"os"
	"slices"
	"sort"

	"gopkg.in/yaml.v3"
)

// Config describes one content collection and where its files live.
type Config struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	WallpaperDir string `yaml:"wallpaper_dir"`
	ThumbnailDir string `yaml:"thumbnail_dir"`
	PreviewDir   string `yaml:"preview_dir,omitempty"`
	OutputFile   string `yaml:"output_file"`
	HasPreview   bool   `yaml:"has_preview"`
}

// Device classes known to the availability table.
const (
	DeviceDesktop = "desktop"
	DeviceMobile  = "mobile"
)

// DeviceTable maps a device class to the series it may show and the
// series it falls back to.
type DeviceTable struct {
	Available map[string][]string `yaml:"available"`
	Defaults  map[string]string   `yaml:"defaults"`
}

// Table is the full static configuration: every series plus the device
// availability rules. It is loaded once and never mutated afterwards.
type Table struct {
	Series  map[string]Config `yaml:"series"`
	Order   []string          `yaml:"order"`
	Devices DeviceTable       `yaml:"devices"`
}

// Built-in series.
var builtin = map[string]Config{
	"desktop": {
		ID:           "desktop",
		Name:         "电脑壁纸",
		WallpaperDir: "wallpaper/desktop",
		ThumbnailDir: "thumbnail/desktop",
		PreviewDir:   "preview/desktop",
		OutputFile:   "desktop.json",
		HasPreview:   true,
	},
	"mobile": {
		ID:           "mobile",
		Name:         "手机壁纸",
		WallpaperDir: "wallpaper/mobile",
		ThumbnailDir: "thumbnail/mobile",
		PreviewDir:   "preview/mobile",
		OutputFile:   "mobile.json",
		HasPreview:   true,
	},
	"avatar": {
		ID:           "avatar",
		Name:         "头像",
		WallpaperDir: "wallpaper/avatar",
		ThumbnailDir: "thumbnail/avatar",
		OutputFile:   "avatar.json",
		HasPreview:   false,
	},
}

// Default returns the built-in table.
func Default() *Table {
	t := &Table{
		Series: make(map[string]Config, len(builtin)),
		Order:  []string{"desktop", "mobile", "avatar"},
		Devices: DeviceTable{
			Available: map[string][]string{
				DeviceDesktop: {"desktop", "avatar"},
				DeviceMobile:  {"mobile", "avatar"},
			},
			Defaults: map[string]string{
				DeviceDesktop: "desktop",
				DeviceMobile:  "mobile",
			},
		},
	}
	for id, c := range builtin {
		t.Series[id] = c
	}
	return t
}

// Load reads a YAML table from path. Sections missing from the file keep
// their built-in values.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read series config: %w", err)
	}
	var file Table
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse series config: %w", err)
	}

	t := Default()
	if len(file.Series) > 0 {
		t.Series = make(map[string]Config, len(file.Series))
		for id, c := range file.Series {
			if c.ID == "" {
				c.ID = id
			}
			if c.OutputFile == "" {
				c.OutputFile = id + ".json"
			}
			t.Series[id] = c
		}
		t.Order = file.Order
	}
	if len(file.Devices.Available) > 0 {
		t.Devices.Available = file.Devices.Available
	}
	if len(file.Devices.Defaults) > 0 {
		t.Devices.Defaults = file.Devices.Defaults
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks that the table is self-consistent.
func (t *Table) Validate() error {
	for id, c := range t.Series {
		if c.ID != id {
			return fmt.Errorf("series %q: id mismatch %q", id, c.ID)
		}
		if c.WallpaperDir == "" || c.ThumbnailDir == "" {
			return fmt.Errorf("series %q: wallpaper_dir and thumbnail_dir are required", id)
		}
		if c.HasPreview && c.PreviewDir == "" {
			return fmt.Errorf("series %q: has_preview set without preview_dir", id)
		}
	}
	for _, id := range t.Order {
		if _, ok := t.Series[id]; !ok {
			return fmt.Errorf("order lists unknown series %q", id)
		}
	}
	for device, ids := range t.Devices.Available {
		for _, id := range ids {
			if _, ok := t.Series[id]; !ok {
				return fmt.Errorf("device %q lists unknown series %q", device, id)
			}
		}
	}
	return nil
}

// Get returns a series by id.
func (t *Table) Get(id string) (Config, bool) {
	c, ok := t.Series[id]
	return c, ok
}

// Known reports whether id names a configured series.
func (t *Table) Known(id string) bool {
	_, ok := t.Series[id]
	return ok
}

// IDs returns series ids in configured order, followed by any series the
// order list does not mention, sorted.
func (t *Table) IDs() []string {
	ids := slices.Clone(t.Order)
	var rest []string
	for id := range t.Series {
		if !slices.Contains(ids, id) {
			rest = append(rest, id)
		}
	}
	sort.Strings(rest)
	return append(ids, rest...)
}

// AvailableFor returns the series a device class may show. Unknown device
// classes use the desktop list.
func (t *Table) AvailableFor(device string) []string {
	if ids, ok := t.Devices.Available[device]; ok {
		return ids
	}
	return t.Devices.Available[DeviceDesktop]
}

// IsAvailable reports whether id may be shown on the device class.
func (t *Table) IsAvailable(id, device string) bool {
	return slices.Contains(t.AvailableFor(device), id)
}

// DefaultFor returns the device's default series. A default that is not in
// the device's availability list is replaced by the first available series
// so callers always get a valid answer.
func (t *Table) DefaultFor(device string) string {
	def, ok := t.Devices.Defaults[device]
	if !ok {
		def = t.Devices.Defaults[DeviceDesktop]
	}
	if t.IsAvailable(def, device) {
		return def
	}
	if avail := t.AvailableFor(device); len(avail) > 0 {
		return avail[0]
	}
	return def
}
