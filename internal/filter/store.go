package filter

import (
	"sync"
	"time"

	"github.com/AnyUserName/wallgen/internal/catalog"
	"github.com/AnyUserName/wallgen/internal/logging"
	"github.com/AnyUserName/wallgen/internal/prefs"
)

// DefaultDebounce is the search input quiet period.
const DefaultDebounce = 300 * time.Millisecond

// Store owns a visitor's filter state. SortBy and Category persist to
// storage; the other fields reset with each new Store. Subscribers are
// notified after every mutation, including debounced search commits.
type Store struct {
	storage  prefs.Storage
	debounce time.Duration
	cache    OptionsCache

	mu     sync.Mutex
	state  State
	pop    Popularity
	timer  *time.Timer
	gen    uint64
	closed bool
	nextID int
	subs   map[int]func(State)
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) StoreOption {
	return func(s *Store) { s.debounce = d }
}

// NewStore restores persisted sort and category preferences.
func NewStore(storage prefs.Storage, opts ...StoreOption) *Store {
	s := &Store{
		storage:  storage,
		debounce: DefaultDebounce,
		state:    DefaultState(),
		subs:     make(map[int]func(State)),
	}
	for _, o := range opts {
		o(s)
	}
	if v, ok := storage.Get(prefs.KeySort); ok && v != "" {
		s.state.SortBy = v
	}
	if v, ok := storage.Get(prefs.KeyCategory); ok && v != "" {
		s.state.Category = v
	}
	return s
}

// State returns a snapshot of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn and returns a function that removes it.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// update mutates the state under the lock, then persists and notifies
// outside it.
func (s *Store) update(fn func(*State)) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	before := s.state
	fn(&s.state)
	after := s.state
	subs := s.subscribers()
	s.mu.Unlock()

	if before.SortBy != after.SortBy {
		s.persist(prefs.KeySort, after.SortBy)
	}
	if before.Category != after.Category {
		s.persist(prefs.KeyCategory, after.Category)
	}
	for _, fn := range subs {
		fn(after)
	}
}

func (s *Store) subscribers() []func(State) {
	fns := make([]func(State), 0, len(s.subs))
	for id := 0; id < s.nextID; id++ {
		if fn, ok := s.subs[id]; ok {
			fns = append(fns, fn)
		}
	}
	return fns
}

func (s *Store) persist(key, value string) {
	if err := s.storage.Set(key, value); err != nil {
		logging.Warn("persist %s: %v", key, err)
	}
}

// SetSearchQuery records raw search input. The query takes effect once no
// further input arrives for the debounce period.
func (s *Store) SetSearchQuery(q string) {
	s.update(func(st *State) { st.SearchQuery = q })

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.gen++
	gen := s.gen
	s.timer = time.AfterFunc(s.debounce, func() { s.commitSearch(gen) })
}

func (s *Store) commitSearch(gen uint64) {
	s.mu.Lock()
	if s.closed || gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.mu.Unlock()
	s.update(func(st *State) { st.DebouncedQuery = st.SearchQuery })
}

// FlushSearch commits pending search input immediately.
func (s *Store) FlushSearch() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
	s.mu.Unlock()
	s.update(func(st *State) { st.DebouncedQuery = st.SearchQuery })
}

// SetSort selects a sort key. Unknown keys are kept and sort as no-ops.
func (s *Store) SetSort(key string) { s.update(func(st *State) { st.SortBy = key }) }

func (s *Store) SetFormat(v string) { s.update(func(st *State) { st.Format = v }) }

func (s *Store) SetResolution(v string) { s.update(func(st *State) { st.Resolution = v }) }

// SetCategory selects a category. The subcategory is left alone; see
// ResetSubcategory.
func (s *Store) SetCategory(v string) { s.update(func(st *State) { st.Category = v }) }

func (s *Store) SetSubcategory(v string) { s.update(func(st *State) { st.Subcategory = v }) }

// SetPopularity replaces the maps used by popularity sorts.
func (s *Store) SetPopularity(p Popularity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pop = p
}

// ResetSubcategory clears the subcategory facet. Call it when the
// category changes.
func (s *Store) ResetSubcategory() {
	s.update(func(st *State) { st.Subcategory = All })
}

// ResetFilters clears the search and every facet and applies defaultSort
// (DefaultSort when empty).
func (s *Store) ResetFilters(defaultSort string) {
	if defaultSort == "" {
		defaultSort = DefaultSort
	}
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
	s.mu.Unlock()
	s.update(func(st *State) {
		*st = DefaultState()
		st.SortBy = defaultSort
	})
}

// SetDefaultSortForSeries applies the default sort of a series. Every
// series currently sorts newest first.
func (s *Store) SetDefaultSortForSeries(string) {
	s.SetSort(DefaultSort)
}

// HasActiveFilters reports whether the committed state narrows results.
func (s *Store) HasActiveFilters() bool {
	return s.State().HasActiveFilters()
}

// Apply filters entries with the committed state.
func (s *Store) Apply(entries []catalog.Entry) []catalog.Entry {
	return Apply(entries, s.State())
}

// Sort orders entries by the committed sort key.
func (s *Store) Sort(entries []catalog.Entry) []catalog.Entry {
	s.mu.Lock()
	key, pop := s.state.SortBy, s.pop
	s.mu.Unlock()
	return Sort(entries, key, pop)
}

// FilteredAndSorted composes Apply and Sort.
func (s *Store) FilteredAndSorted(entries []catalog.Entry) []catalog.Entry {
	return s.Sort(s.Apply(entries))
}

// CategoryOptions returns the cached category facet for entries.
func (s *Store) CategoryOptions(entries []catalog.Entry) []CategoryOption {
	return s.cache.Get(entries)
}

// SubcategoryOptions returns the subcategory facet for the selected
// category.
func (s *Store) SubcategoryOptions(opts []CategoryOption) []Option {
	return SubcategoryOptions(s.State().Category, opts)
}

// ClearCategoryCache forces the next CategoryOptions call to rebuild.
func (s *Store) ClearCategoryCache() {
	s.cache.Clear()
}

// Close stops the debounce timer. Later mutations are ignored.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
