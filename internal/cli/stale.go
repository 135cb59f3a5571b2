package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var staleOlderThan time.Duration

var staleCmd = &cobra.Command{
	Use:   "stale",
	Short: "List jobs stuck in Processing",
	Long: `List jobs that are still Processing and have not been updated for a while.

Queued files live in memory only. After a restart of the service their jobs
stay Processing forever; this command is how they are found.

Examples:
  ingestctl stale
  ingestctl stale --older-than 6h`,
	Args: cobra.NoArgs,
	RunE: runStale,
}

func init() {
	staleCmd.Flags().DurationVar(&staleOlderThan, "older-than", 0, "threshold (default: the server's ingest.stale_after)")
}

func runStale(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	res, err := newClient().Stale(ctx, staleOlderThan)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(res.Jobs) == 0 {
		fmt.Fprintln(out, "No stale jobs.")
		return nil
	}
	for _, j := range res.Jobs {
		fmt.Fprintf(out, "%d\t%s\tupdated %s\n", j.ID, j.FileName, j.UpdatedAt.Format(time.RFC3339))
	}
	return nil
}
