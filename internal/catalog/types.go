package catalog

import "time"

// Entry is one image in a series catalog.
type Entry struct {
	ID            string      `json:"id"`
	Filename      string      `json:"filename"`
	Category      string      `json:"category"`
	Subcategory   string      `json:"subcategory,omitempty"`
	Path          string      `json:"path"`
	ThumbnailPath string      `json:"thumbnailPath"`
	PreviewPath   string      `json:"previewPath,omitempty"`
	Size          int64       `json:"size"`
	Format        string      `json:"format"`    // uppercased extension, e.g. "JPG"
	CreatedAt     string      `json:"createdAt"` // ISO-8601 UTC, millisecond precision
	SHA           string      `json:"sha"`       // remote blob sha or local xxhash64
	Tags          []string    `json:"tags"`
	Resolution    *Resolution `json:"resolution,omitempty"` // nil when probing failed or was skipped
}

// HasSubcategory reports whether the entry has a second-level category.
func (e Entry) HasSubcategory() bool { return e.Subcategory != "" }

// HasPreview reports whether the series publishes a preview image.
func (e Entry) HasPreview() bool { return e.PreviewPath != "" }

// Created parses CreatedAt. Unparseable values yield the zero time.
func (e Entry) Created() time.Time {
	t, err := time.Parse(time.RFC3339Nano, e.CreatedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}

// LongSide returns the longer image side, or 0 without resolution data.
func (e Entry) LongSide() int {
	if e.Resolution == nil {
		return 0
	}
	return max(e.Resolution.Width, e.Resolution.Height)
}

// Resolution holds probed pixel dimensions and the display tier.
type Resolution struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Label  string `json:"label"` // tier label, e.g. "4K"
	Type   string `json:"type"`  // display severity, e.g. "warning"
}

// SubcategoryCount is a subcategory facet inside a category.
type SubcategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// CategoryIndexEntry describes one category file of a split series.
type CategoryIndexEntry struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Count         int                `json:"count"`
	Thumbnail     string             `json:"thumbnail"`
	File          string             `json:"file"`
	Subcategories []SubcategoryCount `json:"subcategories,omitempty"`
}

// Document is the on-disk envelope shared by series, index and category
// files. Blob carries the codec-encoded payload.
type Document struct {
	GeneratedAt   string `json:"generatedAt"`
	Series        string `json:"series"`
	SeriesName    string `json:"seriesName,omitempty"`
	Category      string `json:"category,omitempty"`
	Total         int    `json:"total"`
	CategoryCount int    `json:"categoryCount,omitempty"`
	Schema        int    `json:"schema"`
	Env           string `json:"env,omitempty"`
	Blob          string `json:"blob"`
}

// Schema versions.
const (
	// SchemaEntries marks a full series document whose blob is []Entry.
	SchemaEntries = 1
	// SchemaSplit marks split output: index documents carry
	// []CategoryIndexEntry, category documents carry []Entry.
	SchemaSplit = 2
)

// IndexFile is the name of the category index inside a series directory.
const IndexFile = "index.json"

// IsIndex reports whether the document is a split index.
func (d *Document) IsIndex() bool {
	return d.Schema == SchemaSplit && d.Category == ""
}

// TimeFormat renders timestamps the way browsers print Date.toISOString.
const TimeFormat = "2006-01-02T15:04:05.000Z"

// FormatTime formats t in UTC with TimeFormat.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}
