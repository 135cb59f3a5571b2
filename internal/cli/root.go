// Package cli provides the ingestctl command-line client for the ingestion API.
package cli

import (
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	serverURL string
	timeout   time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "ingestctl",
	Short: "Upload event files and inspect ingestion jobs",
	Long: `ingestctl talks to the event ingestion service over HTTP.

Upload pipe-delimited event files, poll their ingestion status and list
jobs that have been Processing for too long.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	def := os.Getenv("INGEST_SERVER")
	if def == "" {
		def = "http://localhost:8000"
	}
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", def, "base URL of the ingestion service (env INGEST_SERVER)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "per-request timeout")

	rootCmd.AddCommand(uploadCmd, statusCmd, staleCmd, deleteCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func newClient() *Client {
	return NewClient(serverURL, timeout)
}
