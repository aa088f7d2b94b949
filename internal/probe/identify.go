package probe

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"
)

// IdentifyProber reads dimensions by shelling out to ImageMagick.
// It prefers "magick identify" (IM7) and falls back to "identify" (IM6).
// Install: brew install imagemagick / apt install imagemagick
type IdentifyProber struct {
	// Timeout bounds a single invocation. Zero means 10s.
	Timeout time.Duration

	once sync.Once
	bin  string
	args []string
}

func (p *IdentifyProber) Name() string { return "identify" }

func (p *IdentifyProber) Available() bool {
	p.once.Do(func() {
		if path, err := exec.LookPath("magick"); err == nil {
			p.bin = path
			p.args = []string{"identify"}
			return
		}
		if path, err := exec.LookPath("identify"); err == nil {
			p.bin = path
		}
	})
	return p.bin != ""
}

func (p *IdentifyProber) Probe(ctx context.Context, path string) (Dimensions, error) {
	if !p.Available() {
		return Dimensions{}, ErrUnavailable
	}
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// [0] restricts multi-frame files (animated gif/webp) to the first frame.
	args := append(append([]string{}, p.args...), "-format", "%w %h", path+"[0]")
	out, err := exec.CommandContext(ctx, p.bin, args...).Output()
	if err != nil {
		return Dimensions{}, fmt.Errorf("identify %s: %w", path, err)
	}
	return parseIdentify(string(out))
}

// parseIdentify parses "<width> <height>" as printed by -format "%w %h".
func parseIdentify(out string) (Dimensions, error) {
	fields := strings.Fields(out)
	if len(fields) < 2 {
		return Dimensions{}, fmt.Errorf("identify: unexpected output %q", out)
	}
	w, err := strconv.Atoi(fields[0])
	if err != nil {
		return Dimensions{}, fmt.Errorf("identify: width: %w", err)
	}
	h, err := strconv.Atoi(fields[1])
	if err != nil {
		return Dimensions{}, fmt.Errorf("identify: height: %w", err)
	}
	d := Dimensions{Width: w, Height: h}
	if !d.Valid() {
		return Dimensions{}, fmt.Errorf("identify: invalid dimensions %dx%d", w, h)
	}
	return d, nil
}
