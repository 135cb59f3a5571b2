package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"event-ingestion/internal/domain/model"
)

var statusCmd = &cobra.Command{
	Use:   "status <job_id>",
	Short: "Show the ingestion report of a job",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	id, err := parseJobArg(args[0])
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	report, err := newClient().Status(ctx, id)
	if err != nil {
		if errors.Is(err, ErrJobNotFound) {
			return fmt.Errorf("job %d not found", id)
		}
		return err
	}
	printReport(cmd, id, report)
	return nil
}

func parseJobArg(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("job id must be an integer: %q", s)
	}
	return id, nil
}

func printReport(cmd *cobra.Command, jobID int64, r *model.IngestionReport) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "job %d: %s\n", jobID, r.Status)
	fmt.Fprintf(out, "  processed lines: %d\n", r.ProcessedLines)
	fmt.Fprintf(out, "  error lines:     %d\n", r.ErrorLines)
	for _, e := range r.Errors {
		fmt.Fprintf(out, "  - %s\n", e)
	}
}
