// Package filter narrows and orders catalog entries for display.
package filter

import (
	"strings"

	"github.com/AnyUserName/wallgen/internal/catalog"
)

// All disables a facet.
const All = "all"

// State is the complete filter/sort selection. Search predicates use
// DebouncedQuery; SearchQuery is the raw input still waiting for the
// debounce to settle.
type State struct {
	SearchQuery    string `json:"searchQuery"`
	DebouncedQuery string `json:"debouncedQuery"`
	SortBy         string `json:"sortBy"`
	Format         string `json:"format"`
	Resolution     string `json:"resolution"`
	Category       string `json:"category"`
	Subcategory    string `json:"subcategory"`
}

// DefaultState has every facet disabled and the default sort.
func DefaultState() State {
	return State{
		SortBy:      DefaultSort,
		Format:      All,
		Resolution:  All,
		Category:    All,
		Subcategory: All,
	}
}

// HasActiveFilters reports whether any predicate narrows the result.
func (s State) HasActiveFilters() bool {
	return s.DebouncedQuery != "" ||
		active(s.Format) || active(s.Resolution) ||
		active(s.Category) || active(s.Subcategory)
}

func active(v string) bool { return v != "" && v != All }

// Apply returns the entries matching every active predicate of s, in
// input order. The input slice is not modified.
func Apply(entries []catalog.Entry, s State) []catalog.Entry {
	query := strings.ToLower(s.DebouncedQuery)
	out := make([]catalog.Entry, 0, len(entries))
	for _, e := range entries {
		if matches(e, s, query) {
			out = append(out, e)
		}
	}
	return out
}

// Matches reports whether e passes every active predicate of s.
func Matches(e catalog.Entry, s State) bool {
	return matches(e, s, strings.ToLower(s.DebouncedQuery))
}

func matches(e catalog.Entry, s State, query string) bool {
	if query != "" && !matchesQuery(e, query) {
		return false
	}
	if active(s.Format) && !strings.EqualFold(e.Format, s.Format) {
		return false
	}
	if active(s.Resolution) && catalog.TierFor(e.LongSide()).Label != s.Resolution {
		return false
	}
	if active(s.Category) && e.Category != s.Category {
		return false
	}
	if active(s.Subcategory) && e.Subcategory != s.Subcategory {
		return false
	}
	return true
}

// matchesQuery does a case-insensitive substring search over filename,
// category, subcategory and tags. query must already be lowercased.
func matchesQuery(e catalog.Entry, query string) bool {
	if strings.Contains(strings.ToLower(e.Filename), query) ||
		strings.Contains(strings.ToLower(e.Category), query) {
		return true
	}
	if e.HasSubcategory() && strings.Contains(strings.ToLower(e.Subcategory), query) {
		return true
	}
	for _, tag := range e.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}

// FilterAndSort applies s and then orders the result by s.SortBy.
func FilterAndSort(entries []catalog.Entry, s State, pop Popularity) []catalog.Entry {
	return Sort(Apply(entries, s), s.SortBy, pop)
}
