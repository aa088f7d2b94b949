package scanner

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	// Uncategorized is the category of files that carry no classification.
	Uncategorized = "未分类"

	// GenericFolder is the second-level folder name meaning "no subcategory".
	GenericFolder = "通用"

	// LegacySeparator splits "{category}--{name}" filenames at the scan root.
	LegacySeparator = "--"
)

// FileRecord represents a discovered image file.
type FileRecord struct {
	// Name is the base file name including extension.
	Name string
	// Size is the file size in bytes.
	Size int64
	// Category is never empty; unclassified files use Uncategorized.
	Category string
	// Subcategory is empty when the file has no second-level folder or sits
	// in the GenericFolder.
	Subcategory string
	// RelativePath is the slash-separated path relative to the series
	// wallpaper directory.
	RelativePath string
	// FullPath is the absolute path on disk for local scans.
	FullPath string
	// RemoteRef is the download URL for records listed remotely.
	RemoteRef string
	// SHA is the git blob sha reported by the remote listing.
	SHA string
}

// HasSubcategory reports whether the record has a second-level classification.
func (r FileRecord) HasSubcategory() bool {
	return r.Subcategory != ""
}

// IsLocal reports whether the record was found on the local filesystem.
func (r FileRecord) IsLocal() bool {
	return r.FullPath != ""
}

// imageExtensions lists recognized image file extensions.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// IsImage reports whether name has a supported image extension.
func IsImage(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

// ScanDir walks root and returns every image file below it, classified by
// its folder position. A missing root yields an empty list.
func ScanDir(root string) ([]FileRecord, error) {
	info, err := os.Stat(root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, nil
	}

	var records []FileRecord
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() || !IsImage(d.Name()) {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		category, subcategory := Classify(rel)
		records = append(records, FileRecord{
			Name:         d.Name(),
			Size:         fi.Size(),
			Category:     category,
			Subcategory:  subcategory,
			RelativePath: rel,
			FullPath:     path,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Classify derives category and subcategory from a slash-separated path
// relative to the series root.
//
//	L1/L2/.../file  → L1, L2 (empty when L2 is GenericFolder)
//	L1/file         → L1, ""
//	file            → legacy filename convention, ""
func Classify(relPath string) (category, subcategory string) {
	parts := strings.Split(relPath, "/")
	switch {
	case len(parts) >= 3:
		category = parts[0]
		if parts[1] != GenericFolder {
			subcategory = parts[1]
		}
	case len(parts) == 2:
		category = parts[0]
	default:
		category = CategoryFromFilename(parts[0])
	}
	if category == "" {
		category = Uncategorized
	}
	return category, subcategory
}

// CategoryFromFilename applies the legacy "{category}--{name}.ext"
// convention used by files placed directly at the scan root.
func CategoryFromFilename(name string) string {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	before, _, found := strings.Cut(stem, LegacySeparator)
	if found {
		if c := strings.TrimSpace(before); c != "" {
			return c
		}
	}
	return Uncategorized
}
