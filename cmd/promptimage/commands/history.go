package commands

import (
	"context"
	"fmt"

	"github.com/hello-bedrock/promptimage/pkg/db"
	"github.com/hello-bedrock/promptimage/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	historyLimit  int
	historyBucket string
	historyKey    string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List journaled record outcomes",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVar(&historyLimit, "limit", 50, "Maximum entries to show (0 for all)")
	historyCmd.Flags().StringVar(&historyBucket, "bucket", "", "Filter by bucket (requires --key)")
	historyCmd.Flags().StringVar(&historyKey, "key", "", "Filter by source key (requires --bucket)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.JournalPath == "" {
		return fmt.Errorf("journal-path is not configured")
	}
	if (historyBucket == "") != (historyKey == "") {
		return fmt.Errorf("--bucket and --key must be used together")
	}

	repo, err := openJournal(cfg)
	if err != nil {
		return err
	}
	defer repo.Close()

	var runs []*db.Run
	if historyKey != "" {
		runs, err = repo.ListBySource(ctx, historyBucket, historyKey)
	} else {
		runs, err = repo.List(ctx, historyLimit)
	}
	if err != nil {
		return errors.Wrap(err, "list failed")
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs found")
		return nil
	}

	fmt.Fprintf(out, "%-6s %-20s %-40s %-10s %-20s\n", "ID", "CREATED", "SOURCE", "OUTCOME", "DETAIL")
	fmt.Fprintln(out, "------------------------------------------------------------------------------------------------------")

	for _, run := range runs {
		detail := run.Reason
		if run.ErrorMessage != "" {
			detail = run.ErrorMessage
		}
		if detail == "" {
			detail = "-"
		}
		fmt.Fprintf(out, "%-6d %-20s %-40s %-10s %-20s\n",
			run.ID, run.CreatedAt, "s3://"+run.Bucket+"/"+run.SourceKey, run.Outcome, detail)
	}

	counts, err := repo.CountByOutcome(ctx)
	if err != nil {
		return errors.Wrap(err, "count failed")
	}
	fmt.Fprintf(out, "\nsucceeded=%d skipped=%d failed=%d\n", counts["succeeded"], counts["skipped"], counts["failed"])

	return nil
}
