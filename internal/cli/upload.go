package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
)

var (
	uploadWait     bool
	uploadInterval time.Duration
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload an event file for ingestion",
	Long: `Upload a pipe-delimited event file. Each line has the form

  EVENT_ID|EVENT_NAME|START_DATE_ISO|END_DATE_ISO|PARENT_ID|DESCRIPTION

The service answers with a job id before any line is parsed. Use --wait to
poll until the job has finished and print its report.

Examples:
  ingestctl upload events.txt
  ingestctl upload events.txt --wait`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().BoolVarP(&uploadWait, "wait", "w", false, "wait for the job to finish")
	uploadCmd.Flags().DurationVar(&uploadInterval, "interval", time.Second, "poll interval with --wait")
}

func runUpload(cmd *cobra.Command, args []string) error {
	path := args[0]
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	c := newClient()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	res, err := c.Upload(ctx, filepath.Base(path), content)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\njob_id: %d\n", res.Message, res.JobID)

	if !uploadWait {
		return nil
	}
	report, err := c.Wait(ctx, res.JobID, uploadInterval)
	if err != nil {
		return err
	}
	printReport(cmd, res.JobID, report)
	return nil
}
