package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/hilrig/hilrig/internal/report"
	"github.com/hilrig/hilrig/internal/runstore"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	History string
	Limit   int
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recent runs from the history database",
		Long: `Show recent runs recorded with run --history. With a run ID argument,
print that run's full result stream instead.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			runID := ""
			if len(args) == 1 {
				runID = args[0]
			}
			return showHistory(cmd, opts, runID)
		},
	}

	cmd.Flags().StringVar(&opts.History, "history", "", "path to the history database (required)")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "maximum runs to list")
	_ = cmd.MarkFlagRequired("history")

	return cmd
}

func showHistory(cmd *cobra.Command, opts *HistoryOptions, runID string) error {
	store, err := runstore.Open(opts.History)
	if err != nil {
		return WrapExitError(ExitCommandError, "opening history database", err)
	}
	defer store.Close()

	out := cmd.OutOrStdout()
	ctx := cmd.Context()

	if runID != "" {
		return showRun(ctx, store, out, runID)
	}

	runs, err := store.ListRuns(ctx, opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "listing runs", err)
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No recorded runs.")
		return nil
	}
	for _, run := range runs {
		fmt.Fprintf(out, "%s  %-7s  total=%-3d passed=%-3d failed=%-3d  %s\n",
			run.Started.Local().Format(time.DateTime),
			run.State,
			run.Total, run.Passed, run.Failed,
			run.ID)
	}
	return nil
}

func showRun(ctx context.Context, store *runstore.Store, out io.Writer, runID string) error {
	info, err := store.GetRun(ctx, runID)
	if err != nil {
		return WrapExitError(ExitCommandError, "looking up run", err)
	}
	entries, err := store.RunResults(ctx, runID)
	if err != nil {
		return WrapExitError(ExitCommandError, "reading run results", err)
	}

	fmt.Fprintf(out, "Run %s (%s): total=%d passed=%d failed=%d\n",
		info.ID, info.State, info.Total, info.Passed, info.Failed)
	for _, entry := range entries {
		fmt.Fprintln(out, entry.Line())
	}
	return nil
}

// discardRecorder builds a recorder with no sinks, for commands that
// construct devices without running anything.
func discardRecorder() *report.Recorder {
	return report.NewRecorder(slog.Default(), nil)
}
