package catalog

// Tier is one step of the resolution ladder.
type Tier struct {
	Label    string
	Type     string
	MinWidth int
}

// Tiers is ordered by descending MinWidth. The last tier starts at 0 so
// every non-negative long side falls into exactly one tier.
var Tiers = []Tier{
	{Label: "8K", Type: "danger", MinWidth: 7680},
	{Label: "4K", Type: "warning", MinWidth: 3840},
	{Label: "2K", Type: "info", MinWidth: 2560},
	{Label: "1080P", Type: "success", MinWidth: 1920},
	{Label: "720P", Type: "primary", MinWidth: 1280},
	{Label: "SD", Type: "secondary", MinWidth: 0},
}

// TierFor returns the tier whose half-open interval [MinWidth, next higher
// MinWidth) contains longSide. Negative values are treated as 0.
func TierFor(longSide int) Tier {
	for _, t := range Tiers {
		if longSide >= t.MinWidth {
			return t
		}
	}
	return Tiers[len(Tiers)-1]
}

// TierByLabel looks up a tier by its label.
func TierByLabel(label string) (Tier, bool) {
	for _, t := range Tiers {
		if t.Label == label {
			return t, true
		}
	}
	return Tier{}, false
}

// NewResolution classifies width×height into a Resolution.
func NewResolution(width, height int) *Resolution {
	t := TierFor(max(width, height))
	return &Resolution{Width: width, Height: height, Label: t.Label, Type: t.Type}
}
