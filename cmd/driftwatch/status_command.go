package main

import (
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"driftwatch/internal/state"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the latest run for every project",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			store, err := state.Open(cfg)
			if err != nil {
				return fmt.Errorf("open state store: %w", err)
			}
			defer store.Close()

			runs, err := store.LatestRuns(cmd.Context())
			if err != nil {
				return fmt.Errorf("load runs: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded yet. Start with `driftwatch run`.")
				return nil
			}

			fmt.Fprintln(out, renderRuns(runs))
			return nil
		},
	}
}

func renderRuns(runs []state.Run) string {
	rows := make([]table.Row, 0, len(runs))
	for _, run := range runs {
		status := string(run.Status)
		if isTerminal(os.Stdout) {
			status = colorizeStatus(run.Status)
		}
		rows = append(rows, table.Row{
			run.ProjectID,
			status,
			markFirstRun(run.FirstRun),
			run.DOK4Points,
			run.DOK3Points,
			run.ChangeTweets,
			formatFinished(run.FinishedAt),
			run.ErrorMessage,
		})
	}
	header := table.Row{"Project", "Status", "First run", "DOK4", "DOK3", "Tweets", "Finished", "Error"}
	return renderRunShaped(header, rows, 4, 5, 6)
}

func colorizeStatus(status state.RunStatus) string {
	switch status {
	case state.RunSuccess:
		return "\x1b[32m" + string(status) + "\x1b[0m"
	case state.RunError:
		return "\x1b[31m" + string(status) + "\x1b[0m"
	default:
		return string(status)
	}
}

func formatFinished(finished time.Time) string {
	if finished.IsZero() {
		return ""
	}
	return finished.Local().Format("2006-01-02 15:04:05")
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
