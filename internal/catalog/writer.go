package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/AnyUserName/wallgen/internal/codec"
	"github.com/AnyUserName/wallgen/internal/series"
)

// ErrReservedCategory is returned when a category file would replace the
// category index of a split series.
var ErrReservedCategory = errors.New("category name collides with the index file")

// DefaultEnv is stamped into documents when no environment tag is set.
const DefaultEnv = "production"

// Writer serializes catalogs under OutDir.
type Writer struct {
	OutDir string
	Env    string
	// Split also writes {series}/index.json and one file per category.
	Split bool
	Now   func() time.Time
}

// Written lists the files produced for one series.
type Written struct {
	SeriesFile    string
	IndexFile     string
	CategoryFiles []string
	Index         []CategoryIndexEntry
}

// Write emits the series document and, in split mode with at least one
// entry, the per-series index and category documents. Existing files are
// overwritten.
func (w *Writer) Write(cfg series.Config, entries []Entry) (*Written, error) {
	if entries == nil {
		entries = []Entry{}
	}
	if err := os.MkdirAll(w.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	blob, err := codec.EncodeJSON(entries)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", cfg.ID, err)
	}
	out := &Written{SeriesFile: filepath.Join(w.OutDir, cfg.OutputFile)}
	doc := &Document{
		GeneratedAt: w.stamp(),
		Series:      cfg.ID,
		SeriesName:  cfg.Name,
		Total:       len(entries),
		Schema:      SchemaEntries,
		Env:         w.env(),
		Blob:        blob,
	}
	if err := WriteJSON(doc, out.SeriesFile); err != nil {
		return nil, err
	}

	if !w.Split || len(entries) == 0 {
		return out, nil
	}
	if err := w.writeSplit(cfg, entries, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (w *Writer) writeSplit(cfg series.Config, entries []Entry, out *Written) error {
	dir := filepath.Join(w.OutDir, cfg.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create series dir: %w", err)
	}

	out.Index = BuildIndex(entries)
	for _, c := range out.Index {
		if reservedCategory(c.Name) {
			return fmt.Errorf("%s/%s: %w", cfg.ID, c.Name, ErrReservedCategory)
		}
	}
	blob, err := codec.EncodeJSON(out.Index)
	if err != nil {
		return fmt.Errorf("encode %s index: %w", cfg.ID, err)
	}
	out.IndexFile = filepath.Join(dir, IndexFile)
	index := &Document{
		GeneratedAt:   w.stamp(),
		Series:        cfg.ID,
		SeriesName:    cfg.Name,
		Total:         len(entries),
		CategoryCount: len(out.Index),
		Schema:        SchemaSplit,
		Env:           w.env(),
		Blob:          blob,
	}
	if err := WriteJSON(index, out.IndexFile); err != nil {
		return err
	}

	for _, g := range GroupByCategory(entries) {
		blob, err := codec.EncodeJSON(g.Entries)
		if err != nil {
			return fmt.Errorf("encode %s/%s: %w", cfg.ID, g.Name, err)
		}
		path := filepath.Join(dir, g.Name+".json")
		doc := &Document{
			GeneratedAt: w.stamp(),
			Series:      cfg.ID,
			Category:    g.Name,
			Total:       len(g.Entries),
			Schema:      SchemaSplit,
			Blob:        blob,
		}
		if err := WriteJSON(doc, path); err != nil {
			return err
		}
		out.CategoryFiles = append(out.CategoryFiles, path)
	}
	return nil
}

func reservedCategory(name string) bool {
	return strings.EqualFold(name+".json", IndexFile)
}

func (w *Writer) stamp() string {
	if w.Now != nil {
		return FormatTime(w.Now())
	}
	return FormatTime(time.Now())
}

func (w *Writer) env() string {
	if w.Env == "" {
		return DefaultEnv
	}
	return w.Env
}

// WriteJSON writes v as indented JSON followed by a newline.
func WriteJSON(v any, path string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ReadDocument loads a document envelope without decoding its blob.
func ReadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &doc, nil
}

// Entries decodes the blob of a series or category document.
func (d *Document) Entries() ([]Entry, error) {
	if d.IsIndex() {
		return nil, fmt.Errorf("document for %s is a category index", d.Series)
	}
	var entries []Entry
	if err := codec.DecodeJSON(d.Blob, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Categories decodes the blob of a split index document.
func (d *Document) Categories() ([]CategoryIndexEntry, error) {
	if !d.IsIndex() {
		return nil, fmt.Errorf("document for %s is not a category index", d.Series)
	}
	var index []CategoryIndexEntry
	if err := codec.DecodeJSON(d.Blob, &index); err != nil {
		return nil, err
	}
	return index, nil
}

// LoadEntries reads a series or category document and decodes its entries.
func LoadEntries(path string) ([]Entry, error) {
	doc, err := ReadDocument(path)
	if err != nil {
		return nil, err
	}
	return doc.Entries()
}
