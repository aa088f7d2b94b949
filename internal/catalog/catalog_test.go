package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/AnyUserName/wallgen/internal/probe"
	"github.com/AnyUserName/wallgen/internal/scanner"
	"github.com/AnyUserName/wallgen/internal/series"
)

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func desktop(t *testing.T) series.Config {
	t.Helper()
	cfg, ok := series.Default().Get("desktop")
	if !ok {
		t.Fatal("desktop series missing")
	}
	return cfg
}

type stubProber map[string]probe.Dimensions

func (s stubProber) Probe(_ context.Context, path string) (probe.Dimensions, bool) {
	d, ok := s[filepath.Base(path)]
	return d, ok
}

func TestTierPartition(t *testing.T) {
	cases := []struct {
		long int
		want string
	}{
		{0, "SD"}, {1279, "SD"}, {1280, "720P"}, {1919, "720P"},
		{1920, "1080P"}, {2559, "1080P"}, {2560, "2K"}, {3839, "2K"},
		{3840, "4K"}, {7679, "4K"}, {7680, "8K"}, {20000, "8K"},
	}
	for _, c := range cases {
		if got := TierFor(c.long).Label; got != c.want {
			t.Errorf("TierFor(%d) = %s, want %s", c.long, got, c.want)
		}
	}

	// Exactly one tier contains every value.
	for long := 0; long < 9000; long += 7 {
		n := 0
		for i, tier := range Tiers {
			upper := int(^uint(0) >> 1)
			if i > 0 {
				upper = Tiers[i-1].MinWidth
			}
			if long >= tier.MinWidth && long < upper {
				n++
			}
		}
		if n != 1 {
			t.Fatalf("long side %d falls into %d tiers", long, n)
		}
	}

	r := NewResolution(2160, 3840)
	if r.Label != "4K" || r.Type != "warning" {
		t.Errorf("portrait 4K classified as %+v", r)
	}
}

func TestEncodeURIComponent(t *testing.T) {
	cases := map[string]string{
		"abc-_.!~*'()": "abc-_.!~*'()",
		"a b":          "a%20b",
		"猫":            "%E7%8C%AB",
		"a/b?c=d&e":    "a%2Fb%3Fc%3Dd%26e",
		"+$,;:@":       "%2B%24%2C%3B%3A%40",
	}
	for in, want := range cases {
		if got := EncodeURIComponent(in); got != want {
			t.Errorf("EncodeURIComponent(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAssetPaths(t *testing.T) {
	cfg := desktop(t)

	img, thumb, preview := AssetPaths(cfg, "动漫/原神/a b.jpg")
	if img != "/wallpaper/desktop/%E5%8A%A8%E6%BC%AB/%E5%8E%9F%E7%A5%9E/a%20b.jpg" {
		t.Errorf("image path = %s", img)
	}
	if thumb != "/thumbnail/desktop/%E5%8A%A8%E6%BC%AB/%E5%8E%9F%E7%A5%9E/a%20b.webp" {
		t.Errorf("thumbnail path = %s", thumb)
	}
	if preview != "/preview/desktop/%E5%8A%A8%E6%BC%AB/%E5%8E%9F%E7%A5%9E/a%20b.webp" {
		t.Errorf("preview path = %s", preview)
	}

	_, thumb, _ = AssetPaths(cfg, "root.png")
	if thumb != "/thumbnail/desktop/root.webp" {
		t.Errorf("root thumbnail = %s", thumb)
	}

	avatar, _ := series.Default().Get("avatar")
	if _, _, p := AssetPaths(avatar, "x/y.png"); p != "" {
		t.Errorf("avatar has no previews, got %q", p)
	}
}

func records() []scanner.FileRecord {
	return []scanner.FileRecord{
		{Name: "small.jpg", Size: 10, Category: "风景", RelativePath: "风景/small.jpg", SHA: "s1"},
		{Name: "big.png", Size: 300, Category: "动漫", Subcategory: "原神", RelativePath: "动漫/原神/big.png", SHA: "s2"},
		{Name: "mid-a.webp", Size: 100, Category: "风景", RelativePath: "风景/mid-a.webp", SHA: "s3"},
		{Name: "mid-b.jpeg", Size: 100, Category: "动漫", RelativePath: "动漫/mid-b.jpeg", SHA: "s4"},
	}
}

func TestBuildOrdersBySizeAndAssignsIDs(t *testing.T) {
	b := &Builder{Series: desktop(t), Now: func() time.Time { return fixedNow }, Workers: 3}
	entries := b.Build(context.Background(), records())

	want := []string{"big.png", "mid-a.webp", "mid-b.jpeg", "small.jpg"}
	for i, e := range entries {
		if e.Filename != want[i] {
			t.Errorf("position %d: got %s, want %s", i, e.Filename, want[i])
		}
		if want := fmt.Sprintf("desktop-%d", i+1); e.ID != want {
			t.Errorf("position %d: id %s", i, e.ID)
		}
		if i > 0 && entries[i-1].Size < e.Size {
			t.Errorf("size order broken at %d", i)
		}
	}

	big := entries[0]
	if big.Format != "PNG" || entries[2].Format != "JPEG" {
		t.Errorf("formats: %s %s", big.Format, entries[2].Format)
	}
	if len(big.Tags) != 2 || big.Tags[0] != "动漫" || big.Tags[1] != "原神" {
		t.Errorf("tags = %v", big.Tags)
	}
	if tags := entries[3].Tags; len(tags) != 1 || tags[0] != "风景" {
		t.Errorf("tags without subcategory = %v", tags)
	}
	if big.CreatedAt != "2025-03-01T12:00:00.000Z" {
		t.Errorf("remote createdAt should fall back to generation time, got %s", big.CreatedAt)
	}
	if big.Resolution != nil {
		t.Error("remote records are never probed")
	}
	if big.SHA != "s2" {
		t.Errorf("sha = %s", big.SHA)
	}
}

func TestBuildLocalRecords(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a.jpg")
	if err := os.WriteFile(path, []byte("jpeg bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	mtime := time.Date(2024, 6, 5, 8, 30, 15, 250_000_000, time.UTC)
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatal(err)
	}

	recs := []scanner.FileRecord{
		{Name: "a.jpg", Size: 10, Category: "x", RelativePath: "x/a.jpg", FullPath: path},
		{Name: "gone.jpg", Size: 5, Category: "x", RelativePath: "x/gone.jpg", FullPath: filepath.Join(root, "gone.jpg")},
	}
	b := &Builder{
		Series: desktop(t),
		Prober: stubProber{"a.jpg": {Width: 3840, Height: 2160}},
		Hash:   true,
		Now:    func() time.Time { return fixedNow },
	}
	entries := b.Build(context.Background(), recs)

	a := entries[0]
	if a.CreatedAt != "2024-06-05T08:30:15.250Z" {
		t.Errorf("createdAt = %s", a.CreatedAt)
	}
	if a.Resolution == nil || a.Resolution.Label != "4K" {
		t.Errorf("resolution = %+v", a.Resolution)
	}
	if len(a.SHA) != 16 {
		t.Errorf("expected local fingerprint, got %q", a.SHA)
	}

	gone := entries[1]
	if gone.CreatedAt != FormatTime(fixedNow) {
		t.Errorf("missing file should use generation time, got %s", gone.CreatedAt)
	}
	if gone.Resolution != nil {
		t.Error("failed probe must omit resolution")
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	b := &Builder{Series: desktop(t), Now: func() time.Time { return fixedNow }, Workers: 4}
	first, _ := json.Marshal(b.Build(context.Background(), records()))
	second, _ := json.Marshal(b.Build(context.Background(), records()))
	if string(first) != string(second) {
		t.Error("rebuilding identical input produced different entries")
	}
}

func TestBuildIndex(t *testing.T) {
	b := &Builder{Series: desktop(t), Now: func() time.Time { return fixedNow }}
	entries := b.Build(context.Background(), append(records(),
		scanner.FileRecord{Name: "c.jpg", Size: 1, Category: "动漫", Subcategory: "原神", RelativePath: "动漫/原神/c.jpg"},
		scanner.FileRecord{Name: "d.jpg", Size: 1, Category: "Big City", RelativePath: "Big City/d.jpg"},
	))
	index := BuildIndex(entries)

	if len(index) != 3 {
		t.Fatalf("categories = %d", len(index))
	}
	if index[0].Name != "动漫" || index[0].Count != 3 {
		t.Errorf("first category = %+v", index[0])
	}
	if index[0].Thumbnail != entries[0].ThumbnailPath {
		t.Errorf("thumbnail should come from the largest entry")
	}
	if subs := index[0].Subcategories; len(subs) != 1 || subs[0].Name != "原神" || subs[0].Count != 2 {
		t.Errorf("subcategories = %+v", subs)
	}
	if index[1].Subcategories != nil {
		t.Errorf("category without subcategories should omit them: %+v", index[1])
	}
	last := index[2]
	if last.ID != "big-city" || last.File != "Big City.json" {
		t.Errorf("slug/file = %s %s", last.ID, last.File)
	}
}

func TestWriterSplit(t *testing.T) {
	dir := t.TempDir()
	cfg := desktop(t)
	b := &Builder{Series: cfg, Now: func() time.Time { return fixedNow }}
	entries := b.Build(context.Background(), records())

	w := &Writer{OutDir: dir, Env: "test", Split: true, Now: func() time.Time { return fixedNow }}
	out, err := w.Write(cfg, entries)
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	doc, err := ReadDocument(out.SeriesFile)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Schema != SchemaEntries || doc.Total != 4 || doc.Env != "test" || doc.SeriesName != cfg.Name {
		t.Errorf("series document = %+v", doc)
	}
	got, err := doc.Entries()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 4 || got[0].ID != "desktop-1" {
		t.Errorf("decoded entries = %+v", got)
	}

	idx, err := ReadDocument(filepath.Join(dir, "desktop", IndexFile))
	if err != nil {
		t.Fatal(err)
	}
	if !idx.IsIndex() || idx.CategoryCount != 2 || idx.Total != 4 {
		t.Errorf("index document = %+v", idx)
	}
	cats, err := idx.Categories()
	if err != nil {
		t.Fatal(err)
	}

	sum := 0
	for _, c := range cats {
		part, err := LoadEntries(filepath.Join(dir, "desktop", c.File))
		if err != nil {
			t.Fatalf("category %s: %v", c.Name, err)
		}
		if len(part) != c.Count {
			t.Errorf("category %s: %d entries, index says %d", c.Name, len(part), c.Count)
		}
		sum += len(part)
	}
	if sum != len(entries) {
		t.Errorf("category files hold %d entries, want %d", sum, len(entries))
	}
	if len(out.CategoryFiles) != 2 {
		t.Errorf("category files = %v", out.CategoryFiles)
	}
}

func TestWriterSplitRejectsIndexCategory(t *testing.T) {
	dir := t.TempDir()
	cfg := desktop(t)
	entries := validEntries(t)
	entries[2].Category = "index"
	entries[2].Tags = Tags("index", "")

	w := &Writer{OutDir: dir, Split: true, Now: func() time.Time { return fixedNow }}
	if _, err := w.Write(cfg, entries); !errors.Is(err, ErrReservedCategory) {
		t.Fatalf("expected ErrReservedCategory, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "desktop", IndexFile)); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("index file should not be written: %v", err)
	}

	w.Split = false
	if _, err := w.Write(cfg, entries); err != nil {
		t.Errorf("unsplit write: %v", err)
	}
}

func TestWriterEmptySeries(t *testing.T) {
	dir := t.TempDir()
	cfg := desktop(t)
	w := &Writer{OutDir: dir, Split: true}
	out, err := w.Write(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	doc, err := ReadDocument(out.SeriesFile)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Total != 0 || doc.Env != DefaultEnv {
		t.Errorf("empty document = %+v", doc)
	}
	entries, err := doc.Entries()
	if err != nil || len(entries) != 0 {
		t.Errorf("entries = %v, err = %v", entries, err)
	}
	if _, err := os.Stat(filepath.Join(dir, "desktop")); !os.IsNotExist(err) {
		t.Error("empty series must not produce split output")
	}
}

func TestComputeStats(t *testing.T) {
	entries := []Entry{
		{Category: "a", Subcategory: "x", Format: "JPG", Size: 5, Resolution: NewResolution(3840, 2160)},
		{Category: "b", Format: "PNG", Size: 3},
		{Category: "a", Subcategory: "x", Format: "JPG", Size: 2, Resolution: NewResolution(800, 600)},
	}
	s := ComputeStats(entries)
	if s.Total != 3 || s.TotalBytes != 10 || s.Unprobed != 1 {
		t.Errorf("totals = %+v", s)
	}
	if s.Categories[0] != (Count{"a", 2}) {
		t.Errorf("categories = %+v", s.Categories)
	}
	if s.Subcategories[0] != (Count{"a/x", 2}) {
		t.Errorf("subcategories = %+v", s.Subcategories)
	}
	if len(s.Resolutions) != 2 || s.Formats[0] != (Count{"JPG", 2}) {
		t.Errorf("resolutions = %+v formats = %+v", s.Resolutions, s.Formats)
	}
}
