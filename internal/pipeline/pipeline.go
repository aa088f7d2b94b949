package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/AnyUserName/wallgen/internal/catalog"
	"github.com/AnyUserName/wallgen/internal/logging"
	"github.com/AnyUserName/wallgen/internal/metrics"
	"github.com/AnyUserName/wallgen/internal/scanner"
	"github.com/AnyUserName/wallgen/internal/series"
	"github.com/AnyUserName/wallgen/internal/tracing"
)

// Source names reported in results.
const (
	SourceLocal  = "local"
	SourceRemote = "remote"
	SourceNone   = "none"
)

// Config holds all parameters for a generation run.
type Config struct {
	Table *series.Table
	// SeriesIDs restricts the run. Empty means every series in table order.
	SeriesIDs []string
	OutDir    string
	Local     scanner.LocalSource
	// Remote is the listing fallback used when no local root has the
	// series directory. Nil disables it.
	Remote  *scanner.RemoteSource
	Prober  catalog.Prober
	Hash    bool
	Workers int
	Split   bool
	Env     string
	Now     func() time.Time
}

// Result reports what one series produced.
type Result struct {
	Series   series.Config
	Source   string
	Root     string // local directory or remote repository
	Entries  []catalog.Entry
	Stats    catalog.Stats
	Written  *catalog.Written
	Duration time.Duration
}

// Pipeline generates catalogs series by series.
type Pipeline struct {
	cfg    Config
	writer *catalog.Writer
}

// New creates a configured pipeline.
func New(cfg Config) *Pipeline {
	if cfg.Table == nil {
		cfg.Table = series.Default()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &Pipeline{
		cfg: cfg,
		writer: &catalog.Writer{
			OutDir: cfg.OutDir,
			Env:    cfg.Env,
			Split:  cfg.Split,
			Now:    cfg.Now,
		},
	}
}

// Run processes every selected series in order. The first failing series
// aborts the run; results of the series before it are still returned.
func (p *Pipeline) Run(ctx context.Context) ([]Result, error) {
	ids := p.cfg.SeriesIDs
	if len(ids) == 0 {
		ids = p.cfg.Table.IDs()
	}

	results := make([]Result, 0, len(ids))
	for _, id := range ids {
		cfg, ok := p.cfg.Table.Get(id)
		if !ok {
			return results, fmt.Errorf("unknown series %q", id)
		}
		res, err := p.RunSeries(ctx, cfg)
		if err != nil {
			return results, fmt.Errorf("series %s: %w", id, err)
		}
		results = append(results, *res)
	}
	return results, nil
}

// RunSeries lists, builds and writes one series.
func (p *Pipeline) RunSeries(ctx context.Context, cfg series.Config) (res *Result, err error) {
	ctx, span := tracing.Tracer("wallgen/pipeline").Start(ctx, "GenerateSeries")
	defer span.End()
	span.SetAttributes(attribute.String("series", cfg.ID))

	start := time.Now()
	source := SourceNone
	defer func() {
		status := "ok"
		if err != nil {
			status = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		metrics.GeneratorRunsTotal.WithLabelValues(cfg.ID, source, status).Inc()
		metrics.GeneratorDuration.WithLabelValues(cfg.ID).Observe(time.Since(start).Seconds())
	}()

	logging.Info("processing series %s (%s)", cfg.Name, cfg.ID)

	records, source, root, err := p.list(ctx, cfg)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.String("source", source),
		attribute.Int("files", len(records)),
	)
	if len(records) == 0 {
		logging.Info("no image files found for %s", cfg.Name)
	}

	b := &catalog.Builder{
		Series:  cfg,
		Prober:  p.cfg.Prober,
		Hash:    p.cfg.Hash,
		Workers: p.cfg.Workers,
		Now:     p.cfg.Now,
	}
	entries := b.Build(ctx, records)

	written, err := p.writer.Write(cfg, entries)
	if err != nil {
		return nil, err
	}

	stats := catalog.ComputeStats(entries)
	metrics.GeneratorEntries.WithLabelValues(cfg.ID).Set(float64(stats.Total))
	metrics.GeneratorUnprobed.WithLabelValues(cfg.ID).Set(float64(stats.Unprobed))

	return &Result{
		Series:   cfg,
		Source:   source,
		Root:     root,
		Entries:  entries,
		Stats:    stats,
		Written:  written,
		Duration: time.Since(start),
	}, nil
}

// list prefers the first local root holding the series directory and
// falls back to the remote listing only when none exists.
func (p *Pipeline) list(ctx context.Context, cfg series.Config) ([]scanner.FileRecord, string, string, error) {
	if _, dir, ok := p.cfg.Local.Locate(cfg.WallpaperDir); ok {
		logging.Info("using local directory %s", dir)
		records, err := scanner.ScanDir(dir)
		if err != nil {
			return nil, SourceLocal, dir, fmt.Errorf("scan %s: %w", dir, err)
		}
		return records, SourceLocal, dir, nil
	}

	if p.cfg.Remote == nil {
		logging.Warn("no local directory for %s and remote listing disabled", cfg.WallpaperDir)
		return nil, SourceNone, "", nil
	}

	logging.Info("falling back to remote listing %s/%s", p.cfg.Remote.Owner, p.cfg.Remote.Repo)
	records, err := p.cfg.Remote.List(ctx, cfg.WallpaperDir)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, SourceRemote, "", err
		}
		return nil, SourceRemote, "", fmt.Errorf("remote listing: %w", err)
	}
	return records, SourceRemote, p.cfg.Remote.Owner + "/" + p.cfg.Remote.Repo, nil
}
