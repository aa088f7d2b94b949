package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/wallgen/internal/catalog"
	"github.com/AnyUserName/wallgen/internal/codec"
)

var decodeCmd = &cobra.Command{
	Use:   "decode <catalog.json>",
	Short: "Print the decoded payload of a catalog document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDecode,
}

func init() {
	rootCmd.AddCommand(decodeCmd)
}

func runDecode(_ *cobra.Command, args []string) error {
	doc, err := catalog.ReadDocument(args[0])
	if err != nil {
		return err
	}
	text, err := codec.Decode(doc.Blob)
	if err != nil {
		return fmt.Errorf("decode %s: %w", args[0], err)
	}
	logVerbose("%s: series=%s schema=%d total=%d", args[0], doc.Series, doc.Schema, doc.Total)

	var payload any
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return fmt.Errorf("parse payload: %w", err)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(payload)
}
