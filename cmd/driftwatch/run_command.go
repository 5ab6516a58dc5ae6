package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"driftwatch/internal/config"
	"driftwatch/internal/runner"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run [project-id...]",
		Short: "Process projects once and report what changed",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, store, _, err := ctx.buildRunner()
			if err != nil {
				return err
			}
			defer store.Close()

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			var outcomes []runner.Outcome
			if len(args) == 0 {
				outcomes = r.RunAll(cmd.Context())
			} else {
				projects, err := selectProjects(cfg, args)
				if err != nil {
					return err
				}
				for _, project := range projects {
					outcomes = append(outcomes, r.RunProject(cmd.Context(), project))
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderOutcomes(outcomes))

			for _, outcome := range outcomes {
				if outcome.Status != "success" {
					return fmt.Errorf("%d of %d projects failed", countFailures(outcomes), len(outcomes))
				}
			}
			return nil
		},
	}
}

func selectProjects(cfg *config.Config, ids []string) ([]config.Project, error) {
	byID := make(map[string]config.Project, len(cfg.Projects))
	for _, project := range cfg.Projects {
		byID[project.ID] = project
	}

	projects := make([]config.Project, 0, len(ids))
	for _, id := range ids {
		project, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("unknown project %q", id)
		}
		projects = append(projects, project)
	}
	return projects, nil
}

func countFailures(outcomes []runner.Outcome) int {
	failures := 0
	for _, outcome := range outcomes {
		if outcome.Status != "success" {
			failures++
		}
	}
	return failures
}

func renderOutcomes(outcomes []runner.Outcome) string {
	rows := make([]table.Row, 0, len(outcomes))
	for _, outcome := range outcomes {
		rows = append(rows, table.Row{
			outcome.ProjectID,
			outcome.Status,
			markFirstRun(outcome.FirstRun),
			outcome.DOK4Points,
			outcome.DOK3Points,
			outcome.TotalChangeTweets,
			outcome.Error,
		})
	}
	header := table.Row{"Project", "Status", "First run", "DOK4", "DOK3", "Tweets", "Error"}
	return renderRunShaped(header, rows, 4, 5, 6)
}
