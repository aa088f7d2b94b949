package filter

import (
	"cmp"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/AnyUserName/wallgen/internal/catalog"
)

// Sort keys.
const (
	SortNewest     = "newest"
	SortOldest     = "oldest"
	SortPopular    = "popular"
	SortDownloads  = "downloads"
	SortViews      = "views"
	SortWeeklyHot  = "weekly-hot"
	SortMonthlyHot = "monthly-hot"
	SortLargest    = "largest"
	SortSmallest   = "smallest"
	SortNameAsc    = "name-asc"
	SortNameDesc   = "name-desc"
)

// DefaultSort applies to every series.
const DefaultSort = SortNewest

// NameLocale drives the collation of name sorts.
var NameLocale = language.Chinese

// Option is a selectable value with a display label.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// SortOptions lists the sort keys offered in the gallery.
var SortOptions = []Option{
	{SortNewest, "最新优先"},
	{SortOldest, "最早优先"},
	{SortPopular, "最受欢迎"},
	{SortDownloads, "下载最多"},
	{SortViews, "浏览最多"},
	{SortWeeklyHot, "本周热门"},
	{SortMonthlyHot, "本月热门"},
	{SortLargest, "最大优先"},
	{SortSmallest, "最小优先"},
	{SortNameAsc, "名称 A-Z"},
	{SortNameDesc, "名称 Z-A"},
}

// FormatOptions lists the format facet values.
var FormatOptions = []Option{
	{All, "全部格式"},
	{"jpg", "JPG"},
	{"png", "PNG"},
}

// IsSortKey reports whether key names a known sort.
func IsSortKey(key string) bool {
	return slices.ContainsFunc(SortOptions, func(o Option) bool { return o.Value == key })
}

// Sort returns a copy of entries ordered by key. All sorts are stable.
// An unknown key returns the input unchanged.
func Sort(entries []catalog.Entry, key string, pop Popularity) []catalog.Entry {
	var less func(a, b catalog.Entry) int
	switch key {
	case SortNewest:
		less = func(a, b catalog.Entry) int { return b.Created().Compare(a.Created()) }
	case SortOldest:
		less = func(a, b catalog.Entry) int { return a.Created().Compare(b.Created()) }
	case SortLargest:
		less = func(a, b catalog.Entry) int { return cmp.Compare(b.Size, a.Size) }
	case SortSmallest:
		less = func(a, b catalog.Entry) int { return cmp.Compare(a.Size, b.Size) }
	case SortNameAsc, SortNameDesc:
		c := collate.New(NameLocale)
		sign := 1
		if key == SortNameDesc {
			sign = -1
		}
		less = func(a, b catalog.Entry) int { return sign * c.CompareString(a.Filename, b.Filename) }
	case SortPopular:
		less = byStat(pop.All, Stat.score)
	case SortDownloads:
		less = byStat(pop.All, func(s Stat) float64 { return float64(s.Downloads) })
	case SortViews:
		less = byStat(pop.All, func(s Stat) float64 { return float64(s.Views) })
	case SortWeeklyHot:
		less = byStat(pop.windowed(pop.Weekly), Stat.score)
	case SortMonthlyHot:
		less = byStat(pop.windowed(pop.Monthly), Stat.score)
	default:
		return entries
	}

	out := slices.Clone(entries)
	slices.SortStableFunc(out, less)
	return out
}

func byStat(m Scores, value func(Stat) float64) func(a, b catalog.Entry) int {
	return func(a, b catalog.Entry) int {
		return cmp.Compare(value(m[Key(b)]), value(m[Key(a)]))
	}
}
