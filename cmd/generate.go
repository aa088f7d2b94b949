package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/wallgen/internal/catalog"
	"github.com/AnyUserName/wallgen/internal/pipeline"
	"github.com/AnyUserName/wallgen/internal/probe"
	"github.com/AnyUserName/wallgen/internal/scanner"
	"github.com/AnyUserName/wallgen/internal/series"
)

var (
	genOutDir         string
	genRepos          []string
	genConfig         string
	genSeries         []string
	genNoSplit        bool
	genSkipDimensions bool
	genProbe          string
	genHash           bool
	genWorkers        int
	genRemoteOwner    string
	genRemoteRepo     string
	genRemoteBranch   string
	genNoRemote       bool
)

var generateCmd = &cobra.Command{
	Use:     "generate",
	Aliases: []string{"build"},
	Short:   "Scan the wallpaper repository and write series catalogs",
	Long: `Scans each series directory of the wallpaper repository, derives
categories from the folder layout and writes encoded catalogs to the
output directory.

The first --repo root holding a series directory wins. When none does,
the GitHub contents API of --remote-owner/--remote-repo is listed instead.
Set SKIP_IMAGE_DIMENSIONS=true to skip resolution probing.

--probe auto tries ImageMagick identify and falls back to decoding image
headers in process, so resolutions are filled in even without ImageMagick.
Use --probe identify to leave resolutions out when identify is missing.`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&genOutDir, "out", "o", "public/data", "output directory")
	generateCmd.Flags().StringSliceVar(&genRepos, "repo", []string{"../nuanXinProPic", "../../nuanXinProPic"}, "candidate wallpaper repository roots, in order")
	generateCmd.Flags().StringVarP(&genConfig, "config", "c", "", "series table YAML (default: built-in table)")
	generateCmd.Flags().StringSliceVarP(&genSeries, "series", "s", nil, "series to generate (default: all)")
	generateCmd.Flags().BoolVar(&genNoSplit, "no-split", false, "skip per-category documents and the category index")
	generateCmd.Flags().BoolVar(&genSkipDimensions, "skip-dimensions", false, "do not probe image dimensions")
	generateCmd.Flags().StringVar(&genProbe, "probe", "auto", "dimension probers: auto, identify, header or none")
	generateCmd.Flags().BoolVar(&genHash, "hash", false, "hash local files into the sha field")
	generateCmd.Flags().IntVarP(&genWorkers, "workers", "w", 1, "parallel file workers")
	generateCmd.Flags().StringVar(&genRemoteOwner, "remote-owner", "IT-NuanxinPro", "GitHub owner of the wallpaper repository")
	generateCmd.Flags().StringVar(&genRemoteRepo, "remote-repo", "nuanXinProPic", "GitHub wallpaper repository")
	generateCmd.Flags().StringVar(&genRemoteBranch, "remote-branch", "main", "branch listed through the contents API")
	generateCmd.Flags().BoolVar(&genNoRemote, "no-remote", false, "never fall back to the GitHub API")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	start := time.Now()

	table := series.Default()
	if genConfig != "" {
		t, err := series.Load(genConfig)
		if err != nil {
			return fmt.Errorf("load series config: %w", err)
		}
		table = t
	}

	absOutput, err := filepath.Abs(genOutDir)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}
	roots := make([]string, 0, len(genRepos))
	for _, r := range genRepos {
		abs, err := filepath.Abs(r)
		if err != nil {
			return fmt.Errorf("resolve repo path %s: %w", r, err)
		}
		roots = append(roots, abs)
	}

	cfg := pipeline.Config{
		Table:     table,
		SeriesIDs: genSeries,
		OutDir:    absOutput,
		Local:     scanner.LocalSource{Roots: roots},
		Hash:      genHash,
		Workers:   genWorkers,
		Split:     !genNoSplit,
		Env:       os.Getenv("NODE_ENV"),
	}

	if genSkipDimensions || os.Getenv("SKIP_IMAGE_DIMENSIONS") == "true" {
		logVerbose("dimension probing disabled")
	} else {
		chain, err := probe.ByName(genProbe)
		if err != nil {
			return err
		}
		logVerbose("probers: %s", chain)
		cfg.Prober = chain
	}

	if !genNoRemote {
		cfg.Remote = &scanner.RemoteSource{
			Owner:  genRemoteOwner,
			Repo:   genRemoteRepo,
			Branch: genRemoteBranch,
			Token:  os.Getenv("GITHUB_TOKEN"),
		}
	}

	logVerbose("output:  %s", absOutput)
	logVerbose("roots:   %s", strings.Join(roots, ", "))
	logVerbose("split:   %v, workers: %d", cfg.Split, genWorkers)

	results, err := pipeline.New(cfg).Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	printGenerateReport(results, time.Since(start))
	return nil
}

func printGenerateReport(results []pipeline.Result, elapsed time.Duration) {
	fmt.Println()
	fmt.Println("╔══════════════════════════════════════════════════╗")
	fmt.Println("║            wallgen generate complete             ║")
	fmt.Println("╚══════════════════════════════════════════════════╝")
	fmt.Println()

	total := 0
	for _, r := range results {
		total += r.Stats.Total
		fmt.Printf("  %s (%s)\n", r.Series.Name, r.Series.ID)
		fmt.Printf("    Source:      %s %s\n", r.Source, r.Root)
		fmt.Printf("    Wallpapers:  %d  (%s)\n", r.Stats.Total, formatBytes(r.Stats.TotalBytes))
		if r.Written != nil {
			fmt.Printf("    Catalog:     %s\n", filepath.Base(r.Written.SeriesFile))
			if r.Written.IndexFile != "" {
				fmt.Printf("    Split:       %d categories\n", len(r.Written.CategoryFiles))
			}
		}
		if r.Stats.Total == 0 {
			fmt.Println()
			continue
		}
		printCounts("Categories", r.Stats.Categories, 0)
		printCounts("Subcategories", r.Stats.Subcategories, 10)
		printCounts("Resolutions", r.Stats.Resolutions, 0)
		printCounts("Formats", r.Stats.Formats, 0)
		if r.Stats.Unprobed > 0 {
			fmt.Printf("    Unprobed:    %d\n", r.Stats.Unprobed)
		}
		fmt.Println()
	}

	fmt.Printf("  Total:       %d wallpapers in %d series\n", total, len(results))
	fmt.Printf("  Time:        %s\n", elapsed.Round(time.Millisecond))
	fmt.Println()
}

// printCounts prints a tally, limited to the first max rows when max > 0.
func printCounts(title string, counts []catalog.Count, max int) {
	if len(counts) == 0 {
		return
	}
	n := len(counts)
	if max > 0 && n > max {
		n = max
		fmt.Printf("    %s (top %d of %d):\n", title, n, len(counts))
	} else {
		fmt.Printf("    %s:\n", title)
	}
	for _, c := range counts[:n] {
		fmt.Printf("      %-30s %5d\n", truncKey(c.Name, 30), c.Count)
	}
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(b)/(1<<30))
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

func truncKey(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return "..." + string(r[len(r)-max+3:])
}
