package catalog

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/AnyUserName/wallgen/internal/hasher"
	"github.com/AnyUserName/wallgen/internal/logging"
	"github.com/AnyUserName/wallgen/internal/probe"
	"github.com/AnyUserName/wallgen/internal/scanner"
	"github.com/AnyUserName/wallgen/internal/series"
)

// Prober reads pixel dimensions of a local file. *probe.Chain satisfies it.
type Prober interface {
	Probe(ctx context.Context, path string) (probe.Dimensions, bool)
}

// Builder turns scanned file records into ordered catalog entries.
type Builder struct {
	Series series.Config
	// Prober is consulted for local files. Nil skips probing.
	Prober Prober
	// Hash fingerprints local files with xxHash64 for the sha field.
	Hash bool
	// Workers bounds concurrent per-file work. Values below 1 mean 1.
	Workers int
	// Now supplies the fallback creation time. Defaults to time.Now.
	Now func() time.Time
}

// Build derives one entry per record, sorts by size descending (stable
// with respect to scan order) and assigns ids "{series}-{k}" with k
// starting at 1. The result is never nil.
func (b *Builder) Build(ctx context.Context, records []scanner.FileRecord) []Entry {
	now := time.Now
	if b.Now != nil {
		now = b.Now
	}
	genTime := now()

	workers := b.Workers
	if workers < 1 {
		workers = 1
	}

	entries := make([]Entry, len(records))
	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)

	for i, rec := range records {
		wg.Add(1)
		go func(idx int, r scanner.FileRecord) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			entries[idx] = b.entry(ctx, r, genTime)
		}(i, rec)
	}
	wg.Wait()

	slices.SortStableFunc(entries, func(a, c Entry) int {
		return cmp.Compare(c.Size, a.Size)
	})
	for i := range entries {
		entries[i].ID = fmt.Sprintf("%s-%d", b.Series.ID, i+1)
	}
	return entries
}

func (b *Builder) entry(ctx context.Context, r scanner.FileRecord, genTime time.Time) Entry {
	img, thumb, preview := AssetPaths(b.Series, r.RelativePath)
	e := Entry{
		Filename:      r.Name,
		Category:      r.Category,
		Subcategory:   r.Subcategory,
		Path:          img,
		ThumbnailPath: thumb,
		PreviewPath:   preview,
		Size:          r.Size,
		Format:        strings.ToUpper(strings.TrimPrefix(filepath.Ext(r.Name), ".")),
		CreatedAt:     FormatTime(genTime),
		SHA:           r.SHA,
		Tags:          Tags(r.Category, r.Subcategory),
	}

	if !r.IsLocal() {
		return e
	}

	if info, err := os.Stat(r.FullPath); err == nil {
		e.CreatedAt = FormatTime(info.ModTime())
	} else {
		logging.Debug("stat %s: %v (using generation time)", r.FullPath, err)
	}

	if b.Hash && e.SHA == "" {
		if sum, err := hasher.File(r.FullPath); err == nil {
			e.SHA = sum
		} else {
			logging.Warn("hash %s: %v", r.FullPath, err)
		}
	}

	if b.Prober != nil {
		if d, ok := b.Prober.Probe(ctx, r.FullPath); ok {
			e.Resolution = NewResolution(d.Width, d.Height)
		}
	}
	return e
}

// Tags returns [category] or [category, subcategory].
func Tags(category, subcategory string) []string {
	if subcategory == "" {
		return []string{category}
	}
	return []string{category, subcategory}
}
