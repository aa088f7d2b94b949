package catalog

import (
	"cmp"
	"slices"
)

// Count is a labelled tally.
type Count struct {
	Name  string
	Count int
}

// Stats aggregates a list of entries for build reports and the stats
// command. Every Count slice is sorted by count descending, ties in
// first-appearance order.
type Stats struct {
	Total         int
	TotalBytes    int64
	Categories    []Count
	Subcategories []Count // keyed "category/subcategory"
	Resolutions   []Count // entries without resolution are not counted
	Formats       []Count
	Unprobed      int
}

// ComputeStats tallies entries.
func ComputeStats(entries []Entry) Stats {
	s := Stats{Total: len(entries)}
	var cats, subs, res, formats tally
	for _, e := range entries {
		s.TotalBytes += e.Size
		cats.add(e.Category)
		if e.HasSubcategory() {
			subs.add(e.Category + "/" + e.Subcategory)
		}
		if e.Resolution != nil {
			res.add(e.Resolution.Label)
		} else {
			s.Unprobed++
		}
		formats.add(e.Format)
	}
	s.Categories = cats.sorted()
	s.Subcategories = subs.sorted()
	s.Resolutions = res.sorted()
	s.Formats = formats.sorted()
	return s
}

type tally struct {
	pos    map[string]int
	counts []Count
}

func (t *tally) add(name string) {
	if t.pos == nil {
		t.pos = make(map[string]int)
	}
	i, ok := t.pos[name]
	if !ok {
		i = len(t.counts)
		t.pos[name] = i
		t.counts = append(t.counts, Count{Name: name})
	}
	t.counts[i].Count++
}

func (t *tally) sorted() []Count {
	slices.SortStableFunc(t.counts, func(a, b Count) int {
		return cmp.Compare(b.Count, a.Count)
	})
	return t.counts
}
