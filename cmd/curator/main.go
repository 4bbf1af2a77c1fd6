// Package main is the entry point for the curator.
//
// ONE BINARY, THREE COMMANDS:
//
//	curator serve                     → run the HTTP API
//	curator ingest programming -n 5   → fetch, store and print a sample once
//	curator recommend me@example.com  → print recommendations for a user
//
// All three build the same object graph (see app.go), so a one-off ingest
// from the terminal behaves exactly like GET /api/articles/programming.
//
// The main package stays small: parse flags, build dependencies, call into
// internal/. Everything with behaviour lives in the internal packages.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "curator",
	Short: "News and recipe curator with TF-IDF recommendations",
	Long: `Curator pulls articles from several Japanese sites, keeps a deduplicated
corpus in SQLite, and recommends unread articles similar to a user's favorites.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to a YAML config file (env vars still override it)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(recommendCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
