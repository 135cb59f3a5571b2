package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:   "delete <job_id>",
	Short: "Delete a job and its progress entries",
	Long: `Delete a job. Its progress entries are removed with it (cascade delete).
Stored events are kept. Requires confirmation unless --force is used.

Examples:
  ingestctl delete 42
  ingestctl delete 42 --force`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "skip confirmation")
}

func runDelete(cmd *cobra.Command, args []string) error {
	id, err := parseJobArg(args[0])
	if err != nil {
		return err
	}

	if !deleteForce {
		fmt.Fprintf(cmd.OutOrStdout(), "About to delete job %d.\nContinue? [y/N]: ", id)
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		answer = strings.TrimSpace(strings.ToLower(answer))
		if answer != "y" && answer != "yes" {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
			return nil
		}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := newClient().Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted job %d.\n", id)
	return nil
}
