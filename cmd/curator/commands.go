package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/sakif/news-curator/internal/server"
)

var (
	sampleSize int
	topN       int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(configFile)
		if err != nil {
			return err
		}

		srv := server.New(server.Config{
			Port:            a.cfg.HTTP.Port,
			ReadTimeout:     time.Duration(a.cfg.HTTP.ReadTimeoutSec) * time.Second,
			WriteTimeout:    time.Duration(a.cfg.HTTP.WriteTimeoutSec) * time.Second,
			ShutdownTimeout: time.Duration(a.cfg.HTTP.ShutdownSec) * time.Second,
			DBPath:          a.cfg.Database.Path,
		}, a.curator, a.db, a.logger)

		// Start() blocks until SIGINT/SIGTERM and closes the database itself.
		return srv.Start()
	},
}

var ingestCmd = &cobra.Command{
	Use:   "ingest <category>",
	Short: "Fetch one category and print a random sample as JSON",
	Example: `  curator ingest programming
  curator ingest soccer --sample 5`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(configFile)
		if err != nil {
			return err
		}
		defer a.db.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		docs, err := a.curator.Ingest(ctx, args[0], sampleSize)
		if err != nil {
			return err
		}
		return printJSON(docs)
	},
}

var recommendCmd = &cobra.Command{
	Use:   "recommend <email>",
	Short: "Print recommendations for a user as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(configFile)
		if err != nil {
			return err
		}
		defer a.db.Close()

		docs, err := a.curator.Recommend(cmd.Context(), args[0], topN)
		if err != nil {
			return err
		}
		return printJSON(docs)
	},
}

func init() {
	ingestCmd.Flags().IntVarP(&sampleSize, "sample", "n", 0, "number of documents to return (0 uses the configured sample size)")
	recommendCmd.Flags().IntVarP(&topN, "top", "t", 0, "number of recommendations (0 uses the configured default)")
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
