package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AnyUserName/wallgen/internal/selection"
)

// VisitorCookie identifies a browser across requests.
const VisitorCookie = "wallpaper-gallery-visitor"

// VisitorTTL is how long an idle visitor's navigation guard is kept.
const VisitorTTL = 30 * time.Minute

type visitor struct {
	guard *selection.Guard
	seen  time.Time
}

// visitors holds one navigation guard per visitor.
type visitors struct {
	cfg selection.GuardConfig
	now func() time.Time

	mu  sync.Mutex
	all map[string]*visitor
}

func newVisitors(cfg selection.GuardConfig) *visitors {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &visitors{cfg: cfg, now: now, all: make(map[string]*visitor)}
}

// identify returns the visitor id of r, issuing a new one when the cookie
// is absent or malformed.
func (v *visitors) identify(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(VisitorCookie); err == nil {
		if id, err := uuid.Parse(c.Value); err == nil {
			return id.String()
		}
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     VisitorCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func (v *visitors) guard(id string) *selection.Guard {
	v.mu.Lock()
	defer v.mu.Unlock()
	now := v.now()
	for k, vis := range v.all {
		if now.Sub(vis.seen) > VisitorTTL {
			delete(v.all, k)
		}
	}
	vis, ok := v.all[id]
	if !ok {
		vis = &visitor{guard: selection.NewGuard(v.cfg)}
		v.all[id] = vis
	}
	vis.seen = now
	return vis.guard
}

func (v *visitors) len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.all)
}
