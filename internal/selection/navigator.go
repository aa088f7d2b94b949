package selection

import (
	"strings"

	"github.com/AnyUserName/wallgen/internal/device"
	"github.com/AnyUserName/wallgen/internal/logging"
	"github.com/AnyUserName/wallgen/internal/metrics"
	"github.com/AnyUserName/wallgen/internal/prefs"
	"github.com/AnyUserName/wallgen/internal/series"
)

// Navigation is a requested route change. From is empty for the first
// navigation of a session; UserInitiated marks clicks as opposed to
// automatic redirects.
type Navigation struct {
	From          string
	To            string
	UserInitiated bool
}

// Decision is the outcome of a navigation.
type Decision struct {
	// Redirect is set when the visitor should be sent to Path instead.
	Redirect bool
	Path     string
	// Series is the series the target route shows, empty for other routes.
	Series string
	// Throttled is set when the guard suppressed redirection.
	Throttled bool
}

// Outcome labels used for metrics and logs.
func (d Decision) Outcome() string {
	switch {
	case d.Throttled:
		return "throttled"
	case d.Redirect:
		return "redirect"
	default:
		return "allow"
	}
}

// Navigator applies series routing rules for one visitor.
type Navigator struct {
	Table *series.Table
	Store prefs.Storage
	Guard *Guard
	// Recommend overrides the resolver. Tests use it to build loops.
	Recommend func(class string) string
}

// NewNavigator wires a navigator with a fresh guard.
func NewNavigator(table *series.Table, store prefs.Storage, cfg GuardConfig) *Navigator {
	return &Navigator{Table: table, Store: store, Guard: NewGuard(cfg)}
}

func (n *Navigator) recommend(class string) string {
	if n.Recommend != nil {
		return n.Recommend(class)
	}
	r := Resolver{Table: n.Table, Store: n.Store}
	return r.ResolveFor(class)
}

// SeriesOf extracts the series id of a "/{series}" route.
func (n *Navigator) SeriesOf(path string) (string, bool) {
	id := strings.Trim(path, "/")
	if id == "" || strings.Contains(id, "/") || !n.Table.Known(id) {
		return "", false
	}
	return id, true
}

// Navigate decides the route for a visitor whose viewport is width wide.
// "/" redirects to the recommended series. A series the device may not
// show redirects to the recommended series unless that is the same path.
// Allowed series routes persist the last series and, for user-initiated
// navigations, the explicit choice. Past the guard's rate limit, or when
// the same redirect was just issued, the navigation proceeds unredirected.
func (n *Navigator) Navigate(nav Navigation, width int) Decision {
	d := n.decide(nav, width)
	metrics.NavigationsTotal.WithLabelValues(d.Outcome()).Inc()
	return d
}

func (n *Navigator) decide(nav Navigation, width int) Decision {
	class := device.Classify(width)
	target, isSeries := n.SeriesOf(nav.To)

	if !n.Guard.Admit() {
		logging.Warn("possible navigation loop detected, skipping redirect for %s", nav.To)
		return Decision{Path: nav.To, Series: target, Throttled: true}
	}

	if nav.To == "/" || nav.To == "" {
		return n.redirect(nav, "/"+n.recommend(class))
	}

	if !isSeries {
		return Decision{Path: nav.To}
	}

	if !n.Table.IsAvailable(target, class) {
		rec := "/" + n.recommend(class)
		if rec != nav.To {
			return n.redirect(nav, rec)
		}
	}

	n.persist(prefs.KeyCurrentSeries, target)
	if nav.UserInitiated {
		n.persist(prefs.KeyUserChoice, target)
	}
	return Decision{Path: nav.To, Series: target}
}

func (n *Navigator) redirect(nav Navigation, to string) Decision {
	target, _ := n.SeriesOf(to)
	if n.Guard.Repeated(nav.To, to) {
		logging.Debug("suppressing repeated redirect %s -> %s", nav.To, to)
		src, _ := n.SeriesOf(nav.To)
		return Decision{Path: nav.To, Series: src, Throttled: true}
	}
	n.Guard.Remember(nav.To, to)
	return Decision{Redirect: true, Path: to, Series: target}
}

// RecordUserChoice persists id as both the explicit choice and the last
// series.
func (n *Navigator) RecordUserChoice(id string) {
	n.persist(prefs.KeyUserChoice, id)
	n.persist(prefs.KeyCurrentSeries, id)
}

// ClearUserChoice forgets the explicit choice; the last series is kept.
func (n *Navigator) ClearUserChoice() {
	if err := n.Store.Remove(prefs.KeyUserChoice); err != nil {
		logging.Warn("clear user choice: %v", err)
	}
}

func (n *Navigator) persist(key, value string) {
	if err := n.Store.Set(key, value); err != nil {
		logging.Warn("persist %s: %v", key, err)
	}
}
