package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/AnyUserName/wallgen/internal/series"
)

// Report collects validation problems of one data directory.
type Report struct {
	Series   int
	Entries  int
	Problems []string
}

// OK reports whether no problem was found.
func (r *Report) OK() bool { return len(r.Problems) == 0 }

func (r *Report) addf(format string, args ...any) {
	r.Problems = append(r.Problems, fmt.Sprintf(format, args...))
}

// Validate checks every generated series of table under dir: blobs
// decode, totals match, ids follow the size order, derived fields agree
// with the series configuration and split files agree with the index.
// Series without a document are skipped.
func Validate(dir string, table *series.Table) (*Report, error) {
	r := &Report{}
	for _, id := range table.IDs() {
		cfg, _ := table.Get(id)
		path := filepath.Join(dir, cfg.OutputFile)
		doc, err := ReadDocument(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		r.Series++
		entries := validateSeries(r, cfg, doc)
		r.Entries += len(entries)
		if entries != nil {
			validateSplit(r, dir, cfg, entries)
		}
	}
	return r, nil
}

func validateSeries(r *Report, cfg series.Config, doc *Document) []Entry {
	if doc.Schema != SchemaEntries {
		r.addf("%s: schema %d, want %d", cfg.OutputFile, doc.Schema, SchemaEntries)
	}
	if doc.Series != cfg.ID {
		r.addf("%s: series %q, want %q", cfg.OutputFile, doc.Series, cfg.ID)
	}
	entries, err := doc.Entries()
	if err != nil {
		r.addf("%s: %v", cfg.OutputFile, err)
		return nil
	}
	if doc.Total != len(entries) {
		r.addf("%s: total %d, blob has %d entries", cfg.OutputFile, doc.Total, len(entries))
	}

	prefix := "/" + cfg.WallpaperDir + "/"
	var reserved []string
	for i, e := range entries {
		where := fmt.Sprintf("%s[%d] %s", cfg.ID, i, e.ID)
		if want := fmt.Sprintf("%s-%d", cfg.ID, i+1); e.ID != want {
			r.addf("%s: id out of sequence, want %s", where, want)
		}
		if i > 0 && e.Size > entries[i-1].Size {
			r.addf("%s: size %d larger than previous %d", where, e.Size, entries[i-1].Size)
		}
		if e.Category == "" {
			r.addf("%s: empty category", where)
		}
		if reservedCategory(e.Category) && !slices.Contains(reserved, e.Category) {
			reserved = append(reserved, e.Category)
			r.addf("%s: category %q collides with %s", where, e.Category, IndexFile)
		}
		if !strings.HasPrefix(e.Path, prefix) {
			r.addf("%s: path %q outside %s", where, e.Path, prefix)
		}
		if !strings.HasSuffix(e.ThumbnailPath, ".webp") {
			r.addf("%s: thumbnail %q is not webp", where, e.ThumbnailPath)
		}
		if e.HasPreview() != cfg.HasPreview {
			r.addf("%s: preview presence %v, series has_preview %v", where, e.HasPreview(), cfg.HasPreview)
		}
		if !slices.Equal(e.Tags, Tags(e.Category, e.Subcategory)) {
			r.addf("%s: tags %v do not match category", where, e.Tags)
		}
		if e.Created().IsZero() {
			r.addf("%s: unparseable createdAt %q", where, e.CreatedAt)
		}
		if res := e.Resolution; res != nil {
			t := TierFor(e.LongSide())
			if _, known := TierByLabel(res.Label); !known {
				r.addf("%s: unknown resolution label %q", where, res.Label)
			} else if res.Label != t.Label || res.Type != t.Type {
				r.addf("%s: resolution %s/%s, want %s/%s", where, res.Label, res.Type, t.Label, t.Type)
			}
		}
	}
	return entries
}

func validateSplit(r *Report, dir string, cfg series.Config, entries []Entry) {
	indexPath := filepath.Join(dir, cfg.ID, IndexFile)
	doc, err := ReadDocument(indexPath)
	if errors.Is(err, os.ErrNotExist) {
		return
	}
	where := filepath.Join(cfg.ID, IndexFile)
	if err != nil {
		r.addf("%s: %v", where, err)
		return
	}
	index, err := doc.Categories()
	if err != nil {
		r.addf("%s: %v", where, err)
		return
	}
	if doc.CategoryCount != len(index) {
		r.addf("%s: categoryCount %d, index has %d", where, doc.CategoryCount, len(index))
	}

	sum := 0
	for i, c := range index {
		sum += c.Count
		if i > 0 && c.Count > index[i-1].Count {
			r.addf("%s: %s not sorted by count", where, c.Name)
		}
		validateCategory(r, dir, cfg, c)
	}
	if sum != len(entries) {
		r.addf("%s: category counts sum to %d, series has %d", where, sum, len(entries))
	}
}

func validateCategory(r *Report, dir string, cfg series.Config, c CategoryIndexEntry) {
	where := filepath.Join(cfg.ID, c.File)
	doc, err := ReadDocument(filepath.Join(dir, cfg.ID, c.File))
	if err != nil {
		r.addf("%s: %v", where, err)
		return
	}
	entries, err := doc.Entries()
	if err != nil {
		r.addf("%s: %v", where, err)
		return
	}
	if doc.Category != c.Name || doc.Schema != SchemaSplit {
		r.addf("%s: category %q schema %d", where, doc.Category, doc.Schema)
	}
	if len(entries) != c.Count || doc.Total != c.Count {
		r.addf("%s: %d entries (total %d), index says %d", where, len(entries), doc.Total, c.Count)
	}
	for _, e := range entries {
		if e.Category != c.Name {
			r.addf("%s: entry %s has category %q", where, e.ID, e.Category)
		}
	}
}
