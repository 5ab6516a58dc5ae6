package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeWorkflowy()
	c.normalizeResolver()
	c.normalizePoster()
	c.normalizeWorkflow()
	c.normalizeLogging()
	c.normalizeProjects()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeWorkflowy() {
	c.Workflowy.BaseURL = strings.TrimRight(strings.TrimSpace(c.Workflowy.BaseURL), "/")
	if c.Workflowy.BaseURL == "" {
		c.Workflowy.BaseURL = defaultWorkflowyBaseURL
	}
	c.Workflowy.SessionCookie = strings.TrimSpace(c.Workflowy.SessionCookie)
	if c.Workflowy.SessionCookie == "" {
		if value, ok := os.LookupEnv("WORKFLOWY_SESSION"); ok {
			c.Workflowy.SessionCookie = strings.TrimSpace(value)
		}
	}
	if c.Workflowy.RequestTimeout <= 0 {
		c.Workflowy.RequestTimeout = defaultWorkflowyTimeout
	}
}

func (c *Config) normalizeResolver() {
	c.Resolver.BaseURL = strings.TrimRight(strings.TrimSpace(c.Resolver.BaseURL), "/")
	if c.Resolver.BaseURL == "" {
		c.Resolver.BaseURL = defaultResolverBaseURL
	}
	c.Resolver.Model = strings.TrimSpace(c.Resolver.Model)
	if c.Resolver.Model == "" {
		c.Resolver.Model = defaultResolverModel
	}
	if c.Resolver.TimeoutSeconds <= 0 {
		c.Resolver.TimeoutSeconds = defaultResolverTimeout
	}
	c.Resolver.APIKey = strings.TrimSpace(c.Resolver.APIKey)
	if c.Resolver.APIKey == "" {
		if value, ok := os.LookupEnv("OPENROUTER_API_KEY"); ok {
			c.Resolver.APIKey = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv("DEEPSEEK_API_KEY"); ok {
			c.Resolver.APIKey = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizePoster() {
	c.Poster.BaseURL = strings.TrimRight(strings.TrimSpace(c.Poster.BaseURL), "/")
	if c.Poster.BaseURL == "" {
		c.Poster.BaseURL = defaultPosterBaseURL
	}
	c.Poster.BearerToken = strings.TrimSpace(c.Poster.BearerToken)
	if c.Poster.BearerToken == "" {
		if value, ok := os.LookupEnv("TWITTER_BEARER_TOKEN"); ok {
			c.Poster.BearerToken = strings.TrimSpace(value)
		}
	}
	if c.Poster.RequestTimeout <= 0 {
		c.Poster.RequestTimeout = defaultPosterTimeout
	}
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.ProjectDelaySeconds <= 0 {
		c.Workflow.ProjectDelaySeconds = defaultProjectDelaySeconds
	}
	if c.Workflow.WatchIntervalMinutes <= 0 {
		c.Workflow.WatchIntervalMinutes = defaultWatchIntervalMinutes
	}
	if c.Workflow.CharBudget <= 0 {
		c.Workflow.CharBudget = defaultCharBudget
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeProjects() {
	for i := range c.Projects {
		project := &c.Projects[i]
		project.ID = strings.TrimSpace(project.ID)
		project.Name = strings.TrimSpace(project.Name)
		if project.Name == "" {
			project.Name = project.ID
		}
		project.ShareID = strings.TrimSpace(project.ShareID)
		if len(project.Sections) == 0 {
			project.Sections = append([]string(nil), DefaultSections...)
			continue
		}
		sections := make([]string, 0, len(project.Sections))
		seen := make(map[string]struct{}, len(project.Sections))
		for _, section := range project.Sections {
			normalized := strings.ToUpper(strings.TrimSpace(section))
			if normalized == "" {
				continue
			}
			if _, exists := seen[normalized]; exists {
				continue
			}
			seen[normalized] = struct{}{}
			sections = append(sections, normalized)
		}
		if len(sections) == 0 {
			sections = append([]string(nil), DefaultSections...)
		}
		project.Sections = sections
	}
}
