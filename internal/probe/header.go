package probe

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/webp"
)

// HeaderProber reads dimensions from the image header in-process. Only the
// header is parsed; pixel data is never decoded.
type HeaderProber struct{}

func (p *HeaderProber) Name() string    { return "header" }
func (p *HeaderProber) Available() bool { return true }

func (p *HeaderProber) Probe(_ context.Context, path string) (Dimensions, error) {
	f, err := os.Open(path)
	if err != nil {
		return Dimensions{}, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return Dimensions{}, fmt.Errorf("decode header %s: %w", path, err)
	}
	d := Dimensions{Width: cfg.Width, Height: cfg.Height}
	if !d.Valid() {
		return Dimensions{}, fmt.Errorf("decode header %s: invalid dimensions %dx%d", path, cfg.Width, cfg.Height)
	}
	return d, nil
}
