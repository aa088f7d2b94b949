// Package selection decides which series a visitor sees: the Resolver
// picks a series for a device, Selection holds the current series, and
// Navigator guards series routes against redirect loops.
package selection

import (
	"github.com/AnyUserName/wallgen/internal/device"
	"github.com/AnyUserName/wallgen/internal/prefs"
	"github.com/AnyUserName/wallgen/internal/series"
)

// Resolver recommends a series from persisted preferences.
type Resolver struct {
	Table *series.Table
	Store prefs.Storage
}

// Resolve recommends a series for a viewport width.
func (r *Resolver) Resolve(width int) string {
	return r.ResolveFor(device.Classify(width))
}

// ResolveFor returns, in order of preference, the explicit user choice,
// the last series, or the device default, skipping values the device may
// not show. The result is always a member of the device's availability
// set when that set is non-empty.
func (r *Resolver) ResolveFor(class string) string {
	for _, key := range []string{prefs.KeyUserChoice, prefs.KeyCurrentSeries} {
		if v, ok := r.Store.Get(key); ok && v != "" && r.Table.IsAvailable(v, class) {
			return v
		}
	}
	return r.Table.DefaultFor(class)
}
