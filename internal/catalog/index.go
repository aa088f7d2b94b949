package catalog

import (
	"cmp"
	"regexp"
	"slices"
	"strings"
)

var whitespace = regexp.MustCompile(`\s+`)

// Slug turns a category name into its index id: runs of whitespace become
// "-" and the result is lowercased.
func Slug(name string) string {
	return strings.ToLower(whitespace.ReplaceAllString(name, "-"))
}

// Group is the entries of one category in catalog order.
type Group struct {
	Name    string
	Entries []Entry
}

// GroupByCategory partitions entries by category, preserving the order
// in which categories first appear and the order of entries inside each.
func GroupByCategory(entries []Entry) []Group {
	pos := make(map[string]int)
	var groups []Group
	for _, e := range entries {
		i, ok := pos[e.Category]
		if !ok {
			i = len(groups)
			pos[e.Category] = i
			groups = append(groups, Group{Name: e.Category})
		}
		groups[i].Entries = append(groups[i].Entries, e)
	}
	return groups
}

// BuildIndex summarizes categories for the split index: sorted by count
// descending (ties keep first-appearance order), subcategories likewise.
// The thumbnail is the first entry's thumbnail, falling back to its path.
func BuildIndex(entries []Entry) []CategoryIndexEntry {
	groups := GroupByCategory(entries)
	index := make([]CategoryIndexEntry, 0, len(groups))
	for _, g := range groups {
		first := g.Entries[0]
		thumb := first.ThumbnailPath
		if thumb == "" {
			thumb = first.Path
		}
		index = append(index, CategoryIndexEntry{
			ID:            Slug(g.Name),
			Name:          g.Name,
			Count:         len(g.Entries),
			Thumbnail:     thumb,
			File:          g.Name + ".json",
			Subcategories: SubcategoryCounts(g.Entries),
		})
	}
	slices.SortStableFunc(index, func(a, b CategoryIndexEntry) int {
		return cmp.Compare(b.Count, a.Count)
	})
	return index
}

// SubcategoryCounts counts subcategories in first-appearance order, then
// sorts by count descending. Entries without a subcategory are skipped,
// so zero counts never appear. Returns nil when there are none.
func SubcategoryCounts(entries []Entry) []SubcategoryCount {
	pos := make(map[string]int)
	var out []SubcategoryCount
	for _, e := range entries {
		if !e.HasSubcategory() {
			continue
		}
		i, ok := pos[e.Subcategory]
		if !ok {
			i = len(out)
			pos[e.Subcategory] = i
			out = append(out, SubcategoryCount{Name: e.Subcategory})
		}
		out[i].Count++
	}
	slices.SortStableFunc(out, func(a, b SubcategoryCount) int {
		return cmp.Compare(b.Count, a.Count)
	})
	return out
}
