// Package popularity records view and download events in SQLite and
// aggregates them into the score maps used by popularity sorts.
package popularity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/AnyUserName/wallgen/internal/filter"
	"github.com/AnyUserName/wallgen/internal/logging"
	"github.com/AnyUserName/wallgen/internal/metrics"
)

// Event kinds.
const (
	KindView     = "view"
	KindDownload = "download"
)

// Windows of the time-bounded maps.
const (
	WeeklyWindow  = 7 * 24 * time.Hour
	MonthlyWindow = 30 * 24 * time.Hour
)

// DownloadWeight is how much one download counts relative to a view.
const DownloadWeight = 2

// ErrInvalidKind is returned for kinds other than view and download.
var ErrInvalidKind = errors.New("invalid event kind")

// Store persists events.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open migrates and opens the database at path.
func Open(path string) (*Store, error) {
	if err := RunMigrations(path); err != nil {
		return nil, err
	}
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	logging.Debug("popularity store opened at %s", path)
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores one event for the entry identified by key.
func (s *Store) Record(ctx context.Context, seriesID, key, kind string) error {
	if kind != KindView && kind != KindDownload {
		return fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO events (series, entry_key, kind, created_at) VALUES (?, ?, ?, ?)`,
		seriesID, key, kind, s.now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("record %s: %w", kind, err)
	}
	metrics.PopularityEventsTotal.WithLabelValues(seriesID, kind).Inc()
	return nil
}

// Snapshot aggregates all events of a series into the all-time, weekly
// and monthly maps.
func (s *Store) Snapshot(ctx context.Context, seriesID string) (filter.Popularity, error) {
	now := s.now()
	var p filter.Popularity
	var err error
	if p.All, err = s.scores(ctx, seriesID, time.Time{}); err != nil {
		return p, err
	}
	if p.Weekly, err = s.scores(ctx, seriesID, now.Add(-WeeklyWindow)); err != nil {
		return p, err
	}
	if p.Monthly, err = s.scores(ctx, seriesID, now.Add(-MonthlyWindow)); err != nil {
		return p, err
	}
	return p, nil
}

func (s *Store) scores(ctx context.Context, seriesID string, since time.Time) (filter.Scores, error) {
	var sinceMs int64
	if !since.IsZero() {
		sinceMs = since.UnixMilli()
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT entry_key,
		       SUM(CASE WHEN kind = 'view' THEN 1 ELSE 0 END),
		       SUM(CASE WHEN kind = 'download' THEN 1 ELSE 0 END)
		FROM events
		WHERE series = ? AND created_at >= ?
		GROUP BY entry_key`, seriesID, sinceMs)
	if err != nil {
		return nil, fmt.Errorf("query scores: %w", err)
	}
	defer rows.Close()

	out := make(filter.Scores)
	for rows.Next() {
		var key string
		var st filter.Stat
		if err := rows.Scan(&key, &st.Views, &st.Downloads); err != nil {
			return nil, fmt.Errorf("scan scores: %w", err)
		}
		st.Score = Score(st.Views, st.Downloads)
		out[key] = st
	}
	return out, rows.Err()
}

// Score weighs views and downloads into one number.
func Score(views, downloads int64) float64 {
	return float64(views + DownloadWeight*downloads)
}
