package export

import (
	"path/filepath"
	"testing"

	"github.com/AnyUserName/wallgen/internal/catalog"
)

func sampleEntries() []catalog.Entry {
	return []catalog.Entry{
		{
			ID:            "desktop-1",
			Filename:      "a.jpg",
			Category:      "风景",
			Subcategory:   "山",
			Path:          "/wallpaper/desktop/a.jpg",
			ThumbnailPath: "/thumbnail/desktop/a.webp",
			PreviewPath:   "/preview/desktop/a.webp",
			Size:          2048,
			Format:        "JPG",
			CreatedAt:     "2025-01-02T03:04:05.000Z",
			Tags:          []string{"风景", "山"},
			Resolution:    catalog.NewResolution(3840, 2160),
		},
		{
			ID:            "desktop-2",
			Filename:      "b.png",
			Category:      "游戏",
			Path:          "/wallpaper/desktop/b.png",
			ThumbnailPath: "/thumbnail/desktop/b.webp",
			Size:          10,
			Format:        "PNG",
			CreatedAt:     "2025-01-02T03:04:05.000Z",
			Tags:          []string{"游戏"},
		},
	}
}

func TestFlatten(t *testing.T) {
	rows := Flatten("desktop", sampleEntries())
	if len(rows) != 2 {
		t.Fatalf("rows = %d", len(rows))
	}
	if rows[0].Tags != "风景|山" || rows[0].Width != 3840 || rows[0].ResolutionLabel != "4K" {
		t.Errorf("row 0 = %+v", rows[0])
	}
	if rows[1].Width != 0 || rows[1].ResolutionLabel != "" {
		t.Errorf("unprobed row carries a resolution: %+v", rows[1])
	}
}

func TestWriteReadFormats(t *testing.T) {
	for _, name := range []string{"out.parquet", "out.jsonl"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			if err := WriteFile(path, Flatten("desktop", sampleEntries())); err != nil {
				t.Fatalf("write: %v", err)
			}
			rows, err := ReadFile(path)
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if len(rows) != 2 {
				t.Fatalf("rows = %d", len(rows))
			}
			e := rows[0].Entry()
			if e.ID != "desktop-1" || e.Subcategory != "山" || len(e.Tags) != 2 {
				t.Errorf("entry = %+v", e)
			}
			if e.Resolution == nil || e.Resolution.Label != "4K" {
				t.Errorf("resolution = %+v", e.Resolution)
			}
			if rows[1].Entry().Resolution != nil {
				t.Error("unprobed entry gained a resolution")
			}
		})
	}
}

func TestUnsupportedFormat(t *testing.T) {
	if err := WriteFile(filepath.Join(t.TempDir(), "x.csv"), nil); err == nil {
		t.Error("expected error for .csv")
	}
	if _, err := ReadFile("x.csv"); err == nil {
		t.Error("expected error for .csv")
	}
}
