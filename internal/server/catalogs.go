package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/AnyUserName/wallgen/internal/catalog"
	"github.com/AnyUserName/wallgen/internal/logging"
	"github.com/AnyUserName/wallgen/internal/metrics"
	"github.com/AnyUserName/wallgen/internal/series"
)

// ErrCatalogMissing is returned when a series has not been generated.
var ErrCatalogMissing = errors.New("catalog not generated")

// Catalog is a decoded series document.
type Catalog struct {
	Series      string
	GeneratedAt string
	ETag        string
	Entries     []catalog.Entry

	modTime time.Time
	size    int64
}

// Catalogs decodes series documents from a data directory and keeps them
// until the file on disk changes.
type Catalogs struct {
	Dir string

	mu    sync.Mutex
	cache map[string]*Catalog
}

// NewCatalogs creates a cache over dir.
func NewCatalogs(dir string) *Catalogs {
	return &Catalogs{Dir: dir, cache: make(map[string]*Catalog)}
}

// Load returns the catalog of cfg, decoding it again only when the
// document's size or modification time changed.
func (c *Catalogs) Load(cfg series.Config) (*Catalog, error) {
	path := filepath.Join(c.Dir, cfg.OutputFile)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			metrics.CatalogLoadsTotal.WithLabelValues(cfg.ID, "missing").Inc()
			return nil, fmt.Errorf("%w: %s", ErrCatalogMissing, cfg.ID)
		}
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if cached, ok := c.cache[cfg.ID]; ok && cached.modTime.Equal(info.ModTime()) && cached.size == info.Size() {
		return cached, nil
	}

	cat, err := decodeCatalog(path)
	if err != nil {
		metrics.CatalogLoadsTotal.WithLabelValues(cfg.ID, "error").Inc()
		return nil, err
	}
	cat.modTime = info.ModTime()
	cat.size = info.Size()
	c.cache[cfg.ID] = cat
	metrics.CatalogLoadsTotal.WithLabelValues(cfg.ID, "ok").Inc()
	logging.Debug("loaded catalog %s: %d entries", cfg.ID, len(cat.Entries))
	return cat, nil
}

func decodeCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc catalog.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	entries, err := doc.Entries()
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &Catalog{
		Series:      doc.Series,
		GeneratedAt: doc.GeneratedAt,
		ETag:        fmt.Sprintf(`"%016x"`, xxhash.Sum64(data)),
		Entries:     entries,
	}, nil
}
