package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/wallgen/internal/popularity"
	"github.com/AnyUserName/wallgen/internal/series"
	"github.com/AnyUserName/wallgen/internal/server"
)

var (
	serveAddr    string
	serveDataDir string
	serveConfig  string
	serveDB      string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the gallery preview server",
	Long: `Serves generated catalogs with the gallery's series routing and
filter/sort rules applied per request.

  GET  /                                   redirect to the recommended series
  GET  /{series}                           series page descriptor
  GET  /api/series/{series}/wallpapers     filtered, sorted, paged entries
  GET  /api/series/{series}/categories     category facet
  POST /api/series/{series}/wallpapers/{id}/{view|download}
  GET  /data/...                           generated files
  GET  /metrics, /healthz`,
	Example: `  wallgen serve --data public/data
  wallgen serve --addr :9000 --db popularity.db`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
	serveCmd.Flags().StringVarP(&serveDataDir, "data", "d", "public/data", "generated data directory")
	serveCmd.Flags().StringVarP(&serveConfig, "config", "c", "", "series table YAML (default: built-in table)")
	serveCmd.Flags().StringVar(&serveDB, "db", "", "SQLite popularity database (empty disables tracking)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	table := series.Default()
	if serveConfig != "" {
		t, err := series.Load(serveConfig)
		if err != nil {
			return fmt.Errorf("load series config: %w", err)
		}
		table = t
	}

	cfg := server.Config{Table: table, DataDir: serveDataDir}
	if serveDB != "" {
		store, err := popularity.Open(serveDB)
		if err != nil {
			return fmt.Errorf("open popularity store: %w", err)
		}
		defer store.Close()
		cfg.Popularity = store
		logVerbose("popularity store: %s", serveDB)
	}

	return server.New(cfg).ListenAndServe(cmd.Context(), serveAddr)
}
