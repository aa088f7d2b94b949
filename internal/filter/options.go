package filter

import (
	"fmt"
	"sync"

	"github.com/AnyUserName/wallgen/internal/catalog"
)

// CategoryOption is one entry of the category facet.
type CategoryOption struct {
	Value         string                     `json:"value"`
	Label         string                     `json:"label"`
	Count         int                        `json:"count"`
	Subcategories []catalog.SubcategoryCount `json:"subcategories,omitempty"`
}

// AllCategoriesLabel labels the leading "all" option.
const AllCategoriesLabel = "全部分类"

// AllSubcategoriesLabel labels the leading "all" subcategory option.
const AllSubcategoriesLabel = "全部"

// CategoryOptions builds the category facet: an "all" option counting
// every entry, then each category by count descending with its
// subcategories by count descending.
func CategoryOptions(entries []catalog.Entry) []CategoryOption {
	index := catalog.BuildIndex(entries)
	opts := make([]CategoryOption, 0, len(index)+1)
	opts = append(opts, CategoryOption{Value: All, Label: AllCategoriesLabel, Count: len(entries)})
	for _, c := range index {
		if c.Name == "" {
			continue
		}
		opts = append(opts, CategoryOption{
			Value:         c.Name,
			Label:         c.Name,
			Count:         c.Count,
			Subcategories: c.Subcategories,
		})
	}
	return opts
}

// SubcategoryOptions lists the subcategory facet for the selected
// category. It is just "all" when no category is selected or the category
// has no subcategories.
func SubcategoryOptions(category string, opts []CategoryOption) []Option {
	out := []Option{{Value: All, Label: AllSubcategoriesLabel}}
	if !active(category) {
		return out
	}
	for _, o := range opts {
		if o.Value != category {
			continue
		}
		for _, sub := range o.Subcategories {
			out = append(out, Option{Value: sub.Name, Label: fmt.Sprintf("%s (%d)", sub.Name, sub.Count)})
		}
		break
	}
	return out
}

// OptionsCache memoizes CategoryOptions. The cached value is reused while
// the input length is unchanged.
type OptionsCache struct {
	mu     sync.Mutex
	opts   []CategoryOption
	length int
}

// Get returns the cached options, rebuilding them when the number of
// entries changed.
func (c *OptionsCache) Get(entries []catalog.Entry) []CategoryOption {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.opts != nil && len(entries) == c.length {
		return c.opts
	}
	c.opts = CategoryOptions(entries)
	c.length = len(entries)
	return c.opts
}

// Clear drops the cached options.
func (c *OptionsCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.opts = nil
	c.length = 0
}
