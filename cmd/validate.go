package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/wallgen/internal/catalog"
	"github.com/AnyUserName/wallgen/internal/series"
)

var validateConfig string

var validateCmd = &cobra.Command{
	Use:   "validate <data_dir>",
	Short: "Check generated catalogs for consistency",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	validateCmd.Flags().StringVarP(&validateConfig, "config", "c", "", "series table YAML (default: built-in table)")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(_ *cobra.Command, args []string) error {
	table := series.Default()
	if validateConfig != "" {
		t, err := series.Load(validateConfig)
		if err != nil {
			return fmt.Errorf("load series config: %w", err)
		}
		table = t
	}

	r, err := catalog.Validate(args[0], table)
	if err != nil {
		return err
	}
	if r.Series == 0 {
		return fmt.Errorf("no catalogs found in %s", args[0])
	}

	if r.OK() {
		fmt.Println("  ✓ Catalogs are valid")
		fmt.Printf("  ✓ %d series, %d wallpapers\n", r.Series, r.Entries)
		return nil
	}

	fmt.Printf("  ✗ Catalogs have %d problem(s):\n", len(r.Problems))
	for _, p := range r.Problems {
		fmt.Printf("    • %s\n", p)
	}
	return fmt.Errorf("validation failed with %d problems", len(r.Problems))
}
