package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"driftwatch/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand(ctx))

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Edit the file to set workflowy.session_cookie (or export WORKFLOWY_SESSION) and your projects before running driftwatch.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "state_dir: %s\n", cfg.Paths.StateDir)
			fmt.Fprintf(out, "log_dir: %s\n", cfg.Paths.LogDir)
			fmt.Fprintf(out, "workflowy.base_url: %s\n", cfg.Workflowy.BaseURL)
			fmt.Fprintf(out, "workflowy.session_cookie: %s\n", redact(cfg.Workflowy.SessionCookie))
			fmt.Fprintf(out, "resolver.model: %s\n", cfg.Resolver.Model)
			fmt.Fprintf(out, "resolver.api_key: %s\n", redact(cfg.Resolver.APIKey))
			fmt.Fprintf(out, "poster.enabled: %t\n", cfg.Poster.Enabled)
			fmt.Fprintf(out, "poster.bearer_token: %s\n", redact(cfg.Poster.BearerToken))
			fmt.Fprintf(out, "workflow.project_delay_seconds: %d\n", cfg.Workflow.ProjectDelaySeconds)
			fmt.Fprintf(out, "workflow.watch_interval_minutes: %d\n", cfg.Workflow.WatchIntervalMinutes)
			fmt.Fprintf(out, "workflow.char_budget: %d\n", cfg.Workflow.CharBudget)
			fmt.Fprintf(out, "logging: %s/%s\n", cfg.Logging.Format, cfg.Logging.Level)

			for _, project := range cfg.Projects {
				state := "enabled"
				if project.Disabled {
					state = "disabled"
				}
				fmt.Fprintf(out, "project %s (%s): sections=%s budget=%d %s\n",
					project.ID, project.Name, strings.Join(project.Sections, ","), cfg.CharBudgetFor(project), state)
			}
			return nil
		},
	}
}

func redact(secret string) string {
	if secret == "" {
		return "(unset)"
	}
	return "(set)"
}
