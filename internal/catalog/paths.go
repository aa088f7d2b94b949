package catalog

import (
	"path"
	"strings"

	"github.com/AnyUserName/wallgen/internal/series"
)

// EncodeURIComponent percent-encodes s the way browsers do: everything
// except A-Z a-z 0-9 and - _ . ! ~ * ' ( ) is escaped as UTF-8 bytes.
func EncodeURIComponent(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s) * 3)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}

// encodePath encodes every segment of a slash-separated path and keeps
// the separators.
func encodePath(p string) string {
	return strings.ReplaceAll(EncodeURIComponent(p), "%2F", "/")
}

// AssetPaths derives the public URLs of an image from its path relative to
// the series wallpaper directory. Thumbnail and preview mirror the folder
// structure under their own directories and always use .webp. preview is
// empty for series without previews.
func AssetPaths(cfg series.Config, relPath string) (image, thumbnail, preview string) {
	relPath = strings.ReplaceAll(relPath, "\\", "/")
	image = "/" + cfg.WallpaperDir + "/" + encodePath(relPath)

	dir, file := path.Split(relPath)
	stem := strings.TrimSuffix(file, path.Ext(file))
	variant := encodePath(dir) + EncodeURIComponent(stem) + ".webp"

	thumbnail = "/" + cfg.ThumbnailDir + "/" + variant
	if cfg.HasPreview {
		preview = "/" + cfg.PreviewDir + "/" + variant
	}
	return image, thumbnail, preview
}
