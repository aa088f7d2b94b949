// Package export flattens catalog entries into tabular rows and writes
// them as Parquet or JSONL for offline analysis.
package export

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/AnyUserName/wallgen/internal/catalog"
	"github.com/AnyUserName/wallgen/internal/logging"
)

// Row is one entry with its resolution flattened into columns.
type Row struct {
	Series          string `parquet:"series" json:"series"`
	ID              string `parquet:"id" json:"id"`
	Filename        string `parquet:"filename" json:"filename"`
	Category        string `parquet:"category" json:"category"`
	Subcategory     string `parquet:"subcategory,optional" json:"subcategory,omitempty"`
	Path            string `parquet:"path" json:"path"`
	ThumbnailPath   string `parquet:"thumbnail_path" json:"thumbnailPath"`
	PreviewPath     string `parquet:"preview_path,optional" json:"previewPath,omitempty"`
	Size            int64  `parquet:"size" json:"size"`
	Format          string `parquet:"format" json:"format"`
	CreatedAt       string `parquet:"created_at" json:"createdAt"`
	SHA             string `parquet:"sha,optional" json:"sha,omitempty"`
	Tags            string `parquet:"tags" json:"tags"`
	Width           int32  `parquet:"width" json:"width"`
	Height          int32  `parquet:"height" json:"height"`
	ResolutionLabel string `parquet:"resolution_label,optional" json:"resolutionLabel,omitempty"`
}

// TagSeparator joins entry tags into the tags column.
const TagSeparator = "|"

// Flatten converts entries of one series into rows.
func Flatten(seriesID string, entries []catalog.Entry) []Row {
	rows := make([]Row, 0, len(entries))
	for _, e := range entries {
		r := Row{
			Series:        seriesID,
			ID:            e.ID,
			Filename:      e.Filename,
			Category:      e.Category,
			Subcategory:   e.Subcategory,
			Path:          e.Path,
			ThumbnailPath: e.ThumbnailPath,
			PreviewPath:   e.PreviewPath,
			Size:          e.Size,
			Format:        e.Format,
			CreatedAt:     e.CreatedAt,
			SHA:           e.SHA,
			Tags:          strings.Join(e.Tags, TagSeparator),
		}
		if e.Resolution != nil {
			r.Width = int32(e.Resolution.Width)
			r.Height = int32(e.Resolution.Height)
			r.ResolutionLabel = e.Resolution.Label
		}
		rows = append(rows, r)
	}
	return rows
}

// Entry rebuilds a catalog entry from a row.
func (r Row) Entry() catalog.Entry {
	e := catalog.Entry{
		ID:            r.ID,
		Filename:      r.Filename,
		Category:      r.Category,
		Subcategory:   r.Subcategory,
		Path:          r.Path,
		ThumbnailPath: r.ThumbnailPath,
		PreviewPath:   r.PreviewPath,
		Size:          r.Size,
		Format:        r.Format,
		CreatedAt:     r.CreatedAt,
		SHA:           r.SHA,
	}
	if r.Tags != "" {
		e.Tags = strings.Split(r.Tags, TagSeparator)
	}
	if r.Width > 0 && r.Height > 0 {
		e.Resolution = catalog.NewResolution(int(r.Width), int(r.Height))
	}
	return e
}

// WriteFile writes rows to path. The format follows the extension:
// .parquet or .jsonl.
func WriteFile(path string, rows []Row) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".parquet":
		if err := parquet.WriteFile(path, rows); err != nil {
			return fmt.Errorf("write parquet %s: %w", path, err)
		}
	case ".jsonl", ".json":
		if err := writeJSONL(path, rows); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported export format: %s (supported: .parquet, .jsonl)", ext)
	}
	logging.Debug("exported %d rows to %s", len(rows), path)
	return nil
}

func writeJSONL(path string, rows []Row) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, r := range rows {
		if err := enc.Encode(r); err != nil {
			f.Close()
			return fmt.Errorf("encode row %s: %w", r.ID, err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadFile loads rows written by WriteFile.
func ReadFile(path string) ([]Row, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".parquet":
		return readParquet(path)
	case ".jsonl", ".json":
		return readJSONL(path)
	default:
		return nil, fmt.Errorf("unsupported export format: %s (supported: .parquet, .jsonl)", ext)
	}
}

func readParquet(path string) ([]Row, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}
	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}

	reader := parquet.NewGenericReader[Row](pf)
	defer reader.Close()

	out := make([]Row, 0, pf.NumRows())
	batch := make([]Row, 128)
	for {
		n, err := reader.Read(batch)
		out = append(out, batch[:n]...)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read parquet: %w", err)
		}
	}
	return out, nil
}

func readJSONL(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []Row
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var r Row
		if err := json.Unmarshal([]byte(line), &r); err != nil {
			return nil, fmt.Errorf("parse line %d: %w", len(out)+1, err)
		}
		out = append(out, r)
	}
	return out, sc.Err()
}
