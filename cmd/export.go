package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/wallgen/internal/catalog"
	"github.com/AnyUserName/wallgen/internal/export"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export <catalog.json>...",
	Short: "Flatten catalog entries into a Parquet or JSONL table",
	Long: `Decodes one or more series or category documents and writes their
entries as rows. The output format follows the --out extension
(.parquet or .jsonl).`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "wallpapers.parquet", "output file")
	rootCmd.AddCommand(exportCmd)
}

func runExport(_ *cobra.Command, args []string) error {
	var rows []export.Row
	for _, path := range args {
		doc, err := catalog.ReadDocument(path)
		if err != nil {
			return err
		}
		entries, err := doc.Entries()
		if err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
		logVerbose("%s: %d entries", path, len(entries))
		rows = append(rows, export.Flatten(doc.Series, entries)...)
	}
	if err := export.WriteFile(exportOut, rows); err != nil {
		return err
	}
	fmt.Printf("  ✓ %d rows written to %s\n", len(rows), exportOut)
	return nil
}
