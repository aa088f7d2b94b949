//go:build ignore

// gen_fixtures creates a small wallpaper repository for the E2E smoke test.
// Usage: go run gen_fixtures.go <repo_dir>
//
// Then: wallgen generate --repo <repo_dir> --no-remote --probe header --out <data_dir>
package main

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

type fixture struct {
	rel  string
	w, h int
}

var fixtures = []fixture{
	{"wallpaper/desktop/风景/山/peak.jpg", 3840, 2160},
	{"wallpaper/desktop/风景/通用/coast.png", 1920, 1080},
	{"wallpaper/desktop/动物/猫/kitten.jpg", 2560, 1440},
	{"wallpaper/desktop/游戏--arcade.png", 1280, 720},
	{"wallpaper/mobile/风景/lake.jpg", 1080, 2400},
	{"wallpaper/mobile/night.jpg", 720, 1280},
	{"wallpaper/avatar/动漫/a1.png", 512, 512},
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: gen_fixtures <repo_dir>")
		os.Exit(1)
	}
	dir := os.Args[1]

	for i, f := range fixtures {
		path := filepath.Join(dir, filepath.FromSlash(f.rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		if err := imaging.Save(gradient(f.w, f.h, uint8(i*35)), path, imaging.JPEGQuality(80)); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	fmt.Fprintf(os.Stderr, "[gen_fixtures] created %d wallpapers in %s\n", len(fixtures), dir)
}

func gradient(w, h int, base uint8) *image.NRGBA {
	img := imaging.New(w, h, color.NRGBA{R: base, G: 90, B: 160, A: 255})
	for y := 0; y < h; y += 8 {
		for x := 0; x < w; x += 8 {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / w),
				G: uint8(y * 255 / h),
				B: base,
				A: 255,
			})
		}
	}
	return img
}
