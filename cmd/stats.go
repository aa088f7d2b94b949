package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/wallgen/internal/catalog"
)

var statsCmd = &cobra.Command{
	Use:   "stats <data_dir_or_catalog>",
	Short: "Display statistics for generated catalogs",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(_ *cobra.Command, args []string) error {
	paths, err := catalogPaths(args[0])
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no catalogs found in %s", args[0])
	}
	for _, p := range paths {
		doc, err := catalog.ReadDocument(p)
		if err != nil {
			return err
		}
		if err := printStats(p, doc); err != nil {
			return err
		}
	}
	return nil
}

// catalogPaths returns path itself, or the top-level series documents of
// a data directory.
func catalogPaths(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	matches, err := filepath.Glob(filepath.Join(path, "*.json"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}

func printStats(path string, doc *catalog.Document) error {
	fmt.Println()
	fmt.Printf("  File:             %s\n", path)
	fmt.Printf("  Series:           %s %s\n", doc.Series, doc.SeriesName)
	if doc.Category != "" {
		fmt.Printf("  Category:         %s\n", doc.Category)
	}
	fmt.Printf("  Schema:           %d\n", doc.Schema)
	fmt.Printf("  Generated:        %s\n", doc.GeneratedAt)
	if doc.Env != "" {
		fmt.Printf("  Environment:      %s\n", doc.Env)
	}
	fmt.Printf("  Encoded blob:     %s\n", formatBytes(int64(len(doc.Blob))))

	if doc.IsIndex() {
		index, err := doc.Categories()
		if err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
		fmt.Printf("  Categories:       %d\n", len(index))
		for _, c := range index {
			fmt.Printf("    %-30s %5d  %s\n", truncKey(c.Name, 30), c.Count, c.File)
			for _, s := range c.Subcategories {
				fmt.Printf("      %-28s %5d\n", truncKey(s.Name, 28), s.Count)
			}
		}
		fmt.Println()
		return nil
	}

	entries, err := doc.Entries()
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	s := catalog.ComputeStats(entries)
	fmt.Printf("  Wallpapers:       %d  (%s)\n", s.Total, formatBytes(s.TotalBytes))
	if s.Total > 0 {
		fmt.Printf("  Probed:           %d / %d\n", s.Total-s.Unprobed, s.Total)
	}
	fmt.Println()
	printCounts("Categories", s.Categories, 0)
	printCounts("Subcategories", s.Subcategories, 10)
	printCounts("Resolutions", s.Resolutions, 0)
	printCounts("Formats", s.Formats, 0)

	var warnings []string
	for _, e := range entries {
		if e.SHA == "" && e.Resolution == nil {
			warnings = append(warnings, fmt.Sprintf("%s: no sha and no resolution", e.ID))
		}
	}
	if len(warnings) > 0 {
		fmt.Println()
		fmt.Printf("  Notes (%d):\n", len(warnings))
		for i, w := range warnings {
			if i == 10 {
				fmt.Printf("    … %d more\n", len(warnings)-10)
				break
			}
			fmt.Printf("    ⚠ %s\n", w)
		}
	}
	fmt.Println()
	return nil
}
