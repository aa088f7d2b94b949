package cmd

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/AnyUserName/wallgen/internal/logging"
	"github.com/AnyUserName/wallgen/internal/tracing"
)

// Version is reported by --version.
var Version = "0.1.0"

var (
	verbose       bool
	trace         bool
	shutdownTrace func(context.Context) error
)

var rootCmd = &cobra.Command{
	Use:   "wallgen",
	Short: "Wallpaper gallery catalog generator",
	Long: `wallgen scans a wallpaper repository and writes the encoded JSON
catalogs a gallery front end consumes: one document per series, plus
per-category documents and a category index in split mode.

It also decodes, inspects, validates and exports catalogs, and runs a
preview server that applies the gallery's series routing and
filter/sort rules.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		_ = godotenv.Load()
		if verbose {
			logging.SetLevel(logging.LevelDebug)
		}
		if trace {
			shutdown, err := tracing.Init(os.Stderr, Version)
			if err != nil {
				return fmt.Errorf("init tracing: %w", err)
			}
			shutdownTrace = shutdown
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
		if shutdownTrace == nil {
			return nil
		}
		return shutdownTrace(cmd.Context())
	},
}

// Root returns the root command.
func Root() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&trace, "trace", false, "print OpenTelemetry spans to stderr")
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"wallgen %s (%s/%s, %s)\n",
		Version, runtime.GOOS, runtime.GOARCH, runtime.Version(),
	))
}

// logVerbose prints a message only when --verbose is set.
func logVerbose(format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[wallgen] "+format+"\n", args...)
	}
}
