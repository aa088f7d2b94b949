package probe

import (
	"context"
	"errors"
)

// Dimensions is the pixel size of an image.
type Dimensions struct {
	Width  int
	Height int
}

// Valid reports whether both sides are positive.
func (d Dimensions) Valid() bool {
	return d.Width > 0 && d.Height > 0
}

// LongSide returns the larger of width and height.
func (d Dimensions) LongSide() int {
	return max(d.Width, d.Height)
}

// ErrUnavailable is returned by a prober whose backing tool is missing.
var ErrUnavailable = errors.New("probe: prober unavailable")

// Prober reads the pixel dimensions of an image file.
type Prober interface {
	// Name identifies the prober in logs (e.g. "identify", "header").
	Name() string

	// Available returns true if the prober is ready to use.
	// External tools (ImageMagick) may not be installed.
	Available() bool

	// Probe returns the dimensions of the image at path.
	Probe(ctx context.Context, path string) (Dimensions, error)
}
