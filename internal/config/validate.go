package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateWorkflowy(); err != nil {
		return err
	}
	if err := c.validatePoster(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return c.validateProjects()
}

func (c *Config) validateWorkflowy() error {
	if c.Workflowy.SessionCookie == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/driftwatch/config.toml"
		}
		return fmt.Errorf("workflowy.session_cookie is required. Set WORKFLOWY_SESSION env var or edit %s (create with 'driftwatch config init')", defaultPath)
	}
	if c.Workflowy.RequestTimeout <= 0 {
		return errors.New("workflowy.request_timeout must be positive")
	}
	return nil
}

func (c *Config) validatePoster() error {
	if !c.Poster.Enabled {
		return nil
	}
	if c.Poster.BearerToken == "" {
		return errors.New("poster.bearer_token must be set when poster.enabled is true (or set TWITTER_BEARER_TOKEN)")
	}
	if c.Poster.RequestTimeout <= 0 {
		return errors.New("poster.request_timeout must be positive")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.ProjectDelaySeconds <= 0 {
		return errors.New("workflow.project_delay_seconds must be positive")
	}
	if c.Workflow.WatchIntervalMinutes <= 0 {
		return errors.New("workflow.watch_interval_minutes must be positive")
	}
	if c.Workflow.CharBudget <= 0 {
		return errors.New("workflow.char_budget must be positive")
	}
	return nil
}

func knownSection(section string) bool {
	for _, known := range DefaultSections {
		if section == known {
			return true
		}
	}
	return false
}

func (c *Config) validateProjects() error {
	if len(c.Projects) == 0 {
		return errors.New("at least one [[projects]] entry is required")
	}
	seen := make(map[string]struct{}, len(c.Projects))
	for i, project := range c.Projects {
		if project.ID == "" {
			return fmt.Errorf("projects[%d].id must be set", i)
		}
		if strings.ContainsAny(project.ID, " \t") {
			return fmt.Errorf("projects[%d].id must not contain whitespace", i)
		}
		if _, duplicate := seen[project.ID]; duplicate {
			return fmt.Errorf("duplicate project id %q", project.ID)
		}
		seen[project.ID] = struct{}{}
		for _, section := range project.Sections {
			if !knownSection(section) {
				return fmt.Errorf("projects[%d]: unknown section %q (supported: %s)", i, section, strings.Join(DefaultSections, ", "))
			}
		}
		if project.CharBudget < 0 {
			return fmt.Errorf("projects[%d].char_budget must not be negative", i)
		}
	}
	return nil
}
