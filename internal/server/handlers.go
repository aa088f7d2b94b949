package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/AnyUserName/wallgen/internal/catalog"
	"github.com/AnyUserName/wallgen/internal/device"
	"github.com/AnyUserName/wallgen/internal/filter"
	"github.com/AnyUserName/wallgen/internal/logging"
	"github.com/AnyUserName/wallgen/internal/prefs"
	"github.com/AnyUserName/wallgen/internal/selection"
	"github.com/AnyUserName/wallgen/internal/series"
	"github.com/AnyUserName/wallgen/internal/tracing"
)

var tracer = tracing.Tracer("wallgen/server")

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		logging.Error("failed to encode JSON response: %v", err)
	}
}

func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	writeJSON(w, map[string]string{"error": message})
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// viewportWidth reads the width from ?w=, then the viewport client hints,
// then guesses from the User-Agent.
func viewportWidth(r *http.Request) int {
	for _, v := range []string{
		r.URL.Query().Get("w"),
		r.Header.Get("Sec-CH-Viewport-Width"),
		r.Header.Get("Viewport-Width"),
	} {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			return n
		}
	}
	return device.GuessWidth(r.UserAgent())
}

func refererPath(r *http.Request) string {
	ref := r.Referer()
	if ref == "" {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil || (u.Host != "" && u.Host != r.Host) {
		return ""
	}
	return u.Path
}

// Page describes what a series route renders.
type Page struct {
	Series            string          `json:"series"`
	Name              string          `json:"name"`
	Device            string          `json:"device"`
	Available         []string        `json:"available"`
	Catalog           string          `json:"catalog"`
	Index             string          `json:"index,omitempty"`
	HasPreview        bool            `json:"hasPreview"`
	Throttled         bool            `json:"throttled,omitempty"`
	SortOptions       []filter.Option `json:"sortOptions"`
	FormatOptions     []filter.Option `json:"formatOptions"`
	ResolutionOptions []filter.Option `json:"resolutionOptions"`
}

// AllResolutionsLabel labels the leading "all" resolution option.
const AllResolutionsLabel = "全部分辨率"

func resolutionOptions() []filter.Option {
	opts := []filter.Option{{Value: filter.All, Label: AllResolutionsLabel}}
	for _, t := range catalog.Tiers {
		opts = append(opts, filter.Option{Value: t.Label, Label: t.Label})
	}
	return opts
}

// navigate handles "/" and "/{series}". Preferences live in cookies; the
// loop guard is kept per visitor. ?choice=1 marks a user-initiated switch.
func (s *Server) navigate(w http.ResponseWriter, r *http.Request) {
	width := viewportWidth(r)
	guard := s.visitors.guard(s.visitors.identify(w, r))
	store := prefs.NewCookies(w, r)
	nav := &selection.Navigator{Table: s.table, Store: store, Guard: guard}

	d := nav.Navigate(selection.Navigation{
		From:          refererPath(r),
		To:            r.URL.Path,
		UserInitiated: r.URL.Query().Get("choice") == "1",
	}, width)

	if d.Redirect {
		target := d.Path
		if wq := r.URL.Query().Get("w"); wq != "" {
			target += "?w=" + url.QueryEscape(wq)
		}
		http.Redirect(w, r, target, http.StatusFound)
		return
	}

	id := d.Series
	if id == "" && (r.URL.Path == "/" || r.URL.Path == "") {
		// Throttled root: render the recommendation in place.
		id = (&selection.Resolver{Table: s.table, Store: store}).Resolve(width)
	}
	cfg, ok := s.table.Get(id)
	if !ok {
		writeJSONError(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, s.page(cfg, width, d.Throttled))
}

func (s *Server) page(cfg series.Config, width int, throttled bool) Page {
	class := device.Classify(width)
	p := Page{
		Series:            cfg.ID,
		Name:              cfg.Name,
		Device:            class,
		Available:         s.table.AvailableFor(class),
		Catalog:           "/data/" + cfg.OutputFile,
		HasPreview:        cfg.HasPreview,
		Throttled:         throttled,
		SortOptions:       filter.SortOptions,
		FormatOptions:     filter.FormatOptions,
		ResolutionOptions: resolutionOptions(),
	}
	if _, err := os.Stat(filepath.Join(s.dataDir, cfg.ID, catalog.IndexFile)); err == nil {
		p.Index = "/data/" + cfg.ID + "/" + catalog.IndexFile
	}
	return p
}

// SeriesInfo is one element of the series listing.
type SeriesInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Available   bool   `json:"available"`
	Recommended bool   `json:"recommended"`
}

func (s *Server) listSeries(w http.ResponseWriter, r *http.Request) {
	width := viewportWidth(r)
	class := device.Classify(width)
	rec := (&selection.Resolver{Table: s.table, Store: prefs.NewCookies(w, r)}).Resolve(width)
	out := make([]SeriesInfo, 0, len(s.table.IDs()))
	for _, id := range s.table.IDs() {
		cfg, _ := s.table.Get(id)
		out = append(out, SeriesInfo{
			ID:          id,
			Name:        cfg.Name,
			Available:   s.table.IsAvailable(id, class),
			Recommended: id == rec,
		})
	}
	writeJSON(w, out)
}

// loadSeries resolves the {series} variable and its catalog, writing the
// error response itself when it fails.
func (s *Server) loadSeries(w http.ResponseWriter, r *http.Request) (series.Config, *Catalog, bool) {
	id := mux.Vars(r)["series"]
	cfg, ok := s.table.Get(id)
	if !ok {
		writeJSONError(w, "unknown series", http.StatusNotFound)
		return cfg, nil, false
	}
	cat, err := s.catalogs.Load(cfg)
	if err != nil {
		if errors.Is(err, ErrCatalogMissing) {
			writeJSONError(w, err.Error(), http.StatusNotFound)
		} else {
			logging.Error("load catalog %s: %v", id, err)
			writeJSONError(w, "failed to load catalog", http.StatusInternalServerError)
		}
		return cfg, nil, false
	}
	return cfg, cat, true
}

// stateFromQuery builds a filter state from query parameters. The search
// query is applied at once; there is no keystroke stream to debounce.
func stateFromQuery(q url.Values) filter.State {
	st := filter.DefaultState()
	st.SearchQuery = strings.TrimSpace(q.Get("q"))
	st.DebouncedQuery = st.SearchQuery
	if v := q.Get("sort"); v != "" {
		st.SortBy = v
	}
	for _, f := range []struct {
		key string
		dst *string
	}{
		{"format", &st.Format},
		{"resolution", &st.Resolution},
		{"category", &st.Category},
		{"subcategory", &st.Subcategory},
	} {
		if v := q.Get(f.key); v != "" {
			*f.dst = v
		}
	}
	return st
}

func intParam(q url.Values, key string, def int) int {
	n, err := strconv.Atoi(q.Get(key))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// WallpaperPage is the response of the wallpapers endpoint.
type WallpaperPage struct {
	Series      string          `json:"series"`
	GeneratedAt string          `json:"generatedAt"`
	Total       int             `json:"total"`
	Filtered    int             `json:"filtered"`
	Page        int             `json:"page"`
	PerPage     int             `json:"perPage"`
	HasMore     bool            `json:"hasMore"`
	State       filter.State    `json:"state"`
	Items       []catalog.Entry `json:"items"`
}

func (s *Server) listWallpapers(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "ListWallpapers")
	defer span.End()

	cfg, cat, ok := s.loadSeries(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	st := stateFromQuery(q)

	var pop filter.Popularity
	if s.popularity != nil {
		var err error
		if pop, err = s.popularity.Snapshot(ctx, cfg.ID); err != nil {
			// Popularity sorts degrade to catalog order.
			logging.Warn("popularity snapshot for %s: %v", cfg.ID, err)
			span.RecordError(err)
		}
	}

	result := filter.FilterAndSort(cat.Entries, st, pop)

	page := intParam(q, "page", 1)
	perPage := min(intParam(q, "per_page", DefaultPerPage), MaxPerPage)
	start := len(result)
	if page-1 <= len(result)/perPage {
		start = min((page-1)*perPage, len(result))
	}
	end := min(start+perPage, len(result))

	span.SetAttributes(
		attribute.String("series", cfg.ID),
		attribute.String("sort", st.SortBy),
		attribute.Int("filtered", len(result)),
	)

	writeJSON(w, WallpaperPage{
		Series:      cfg.ID,
		GeneratedAt: cat.GeneratedAt,
		Total:       len(cat.Entries),
		Filtered:    len(result),
		Page:        page,
		PerPage:     perPage,
		HasMore:     end < len(result),
		State:       st,
		Items:       result[start:end],
	})
}

// CategoriesResponse is the response of the categories endpoint.
type CategoriesResponse struct {
	Series        string                  `json:"series"`
	Categories    []filter.CategoryOption `json:"categories"`
	Subcategories []filter.Option         `json:"subcategories,omitempty"`
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	_, span := tracer.Start(r.Context(), "ListCategories")
	defer span.End()

	cfg, cat, ok := s.loadSeries(w, r)
	if !ok {
		return
	}
	category := r.URL.Query().Get("category")
	etag := cat.ETag
	if category != "" {
		etag = fmt.Sprintf(`"%016x"`, xxhash.Sum64String(cat.ETag+"/"+category))
	}
	w.Header().Set("ETag", etag)
	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	opts := filter.CategoryOptions(cat.Entries)
	resp := CategoriesResponse{Series: cfg.ID, Categories: opts}
	if category != "" {
		resp.Subcategories = filter.SubcategoryOptions(category, opts)
	}
	writeJSON(w, resp)
}

func (s *Server) recordEvent(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "RecordEvent")
	defer span.End()

	if s.popularity == nil {
		writeJSONError(w, "popularity tracking disabled", http.StatusServiceUnavailable)
		return
	}
	cfg, cat, ok := s.loadSeries(w, r)
	if !ok {
		return
	}
	vars := mux.Vars(r)
	id, kind := vars["id"], vars["kind"]
	span.SetAttributes(attribute.String("series", cfg.ID), attribute.String("kind", kind))

	idx := -1
	for i := range cat.Entries {
		if cat.Entries[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		writeJSONError(w, "unknown wallpaper", http.StatusNotFound)
		return
	}

	if err := s.popularity.Record(ctx, cfg.ID, filter.Key(cat.Entries[idx]), kind); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logging.Error("record %s for %s: %v", kind, id, err)
		writeJSONError(w, "failed to record event", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
