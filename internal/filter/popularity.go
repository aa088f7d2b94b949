package filter

import "github.com/AnyUserName/wallgen/internal/catalog"

// Stat is the popularity of one entry.
type Stat struct {
	Views     int64   `json:"views"`
	Downloads int64   `json:"downloads"`
	Score     float64 `json:"score"`
}

func (s Stat) score() float64 { return s.Score }

// Scores maps Key(entry) to its popularity.
type Scores map[string]Stat

// Popularity carries the all-time map and the time-windowed maps.
type Popularity struct {
	All     Scores `json:"all"`
	Weekly  Scores `json:"weekly"`
	Monthly Scores `json:"monthly"`
}

// windowed falls back to the all-time map when a window has no data.
func (p Popularity) windowed(m Scores) Scores {
	if len(m) > 0 {
		return m
	}
	return p.All
}

// Key identifies an entry in a Scores map. The public path is stable
// across regenerations, unlike the id.
func Key(e catalog.Entry) string { return e.Path }
