package probe

import (
	"context"
	"fmt"
	"strings"

	"github.com/AnyUserName/wallgen/internal/logging"
)

// Chain tries each available prober in order and returns the first
// success. It never returns an error: a failed probe means "no resolution".
type Chain struct {
	probers []Prober
}

// NewChain creates a chain, keeping only probers that are available.
func NewChain(probers ...Prober) *Chain {
	c := &Chain{}
	for _, p := range probers {
		if p.Available() {
			c.probers = append(c.probers, p)
		}
	}
	return c
}

// ByName builds a chain from a comma-separated list of prober names:
// "identify", "header", or "auto" (identify, then header). "none" or an
// empty string yields an empty chain.
func ByName(spec string) (*Chain, error) {
	var probers []Prober
	for _, name := range strings.Split(spec, ",") {
		switch strings.TrimSpace(strings.ToLower(name)) {
		case "", "none":
		case "identify":
			probers = append(probers, &IdentifyProber{})
		case "header":
			probers = append(probers, &HeaderProber{})
		case "auto":
			probers = append(probers, &IdentifyProber{}, &HeaderProber{})
		default:
			return nil, fmt.Errorf("unknown prober %q", name)
		}
	}
	return NewChain(probers...), nil
}

// Probe returns the dimensions of path, or ok=false when no prober could
// read them.
func (c *Chain) Probe(ctx context.Context, path string) (Dimensions, bool) {
	if c == nil {
		return Dimensions{}, false
	}
	for _, p := range c.probers {
		d, err := p.Probe(ctx, path)
		if err == nil && d.Valid() {
			return d, true
		}
		logging.Debug("probe %s failed for %s: %v", p.Name(), path, err)
	}
	return Dimensions{}, false
}

// Available returns the names of the usable probers.
func (c *Chain) Available() []string {
	if c == nil {
		return nil
	}
	var names []string
	for _, p := range c.probers {
		names = append(names, p.Name())
	}
	return names
}

// String returns a summary of available probers.
func (c *Chain) String() string {
	avail := c.Available()
	if len(avail) == 0 {
		return "no dimension probers available"
	}
	return fmt.Sprintf("probers: %s", strings.Join(avail, ", "))
}
