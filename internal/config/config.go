package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	StateDir string `toml:"state_dir"`
	LogDir   string `toml:"log_dir"`
}

// Workflowy contains configuration for the outline document service.
type Workflowy struct {
	BaseURL        string `toml:"base_url"`
	SessionCookie  string `toml:"session_cookie"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Resolver contains configuration for LLM-based section resolution.
type Resolver struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Poster contains configuration for the tweet posting sink.
type Poster struct {
	Enabled        bool   `toml:"enabled"`
	BaseURL        string `toml:"base_url"`
	BearerToken    string `toml:"bearer_token"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Workflow contains timing and budget knobs for scheduled runs.
type Workflow struct {
	ProjectDelaySeconds  int `toml:"project_delay_seconds"`
	WatchIntervalMinutes int `toml:"watch_interval_minutes"`
	CharBudget           int `toml:"char_budget"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Project describes one tracked outline document.
type Project struct {
	ID         string   `toml:"id"`
	Name       string   `toml:"name"`
	ShareID    string   `toml:"share_id"`
	Sections   []string `toml:"sections"`
	CharBudget int      `toml:"char_budget"`
	Disabled   bool     `toml:"disabled"`
}

// Config encapsulates all configuration values for driftwatch.
//
// Configuration sections by subsystem:
//   - Paths: state database and log directories
//   - Workflowy: outline service base URL and session authentication
//   - Resolver: LLM connection for section label resolution
//   - Poster: tweet posting sink credentials
//   - Workflow: inter-project delay, watch interval, tweet char budget
//   - Logging: log format and level
//   - Projects: the tracked outline documents and their sections
type Config struct {
	Paths     Paths     `toml:"paths"`
	Workflowy Workflowy `toml:"workflowy"`
	Resolver  Resolver  `toml:"resolver"`
	Poster    Poster    `toml:"poster"`
	Workflow  Workflow  `toml:"workflow"`
	Logging   Logging   `toml:"logging"`
	Projects  []Project `toml:"projects"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/driftwatch/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("driftwatch.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the store and logger need.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// EnabledProjects returns the projects that should be processed, in file order.
func (c *Config) EnabledProjects() []Project {
	var enabled []Project
	for _, project := range c.Projects {
		if !project.Disabled {
			enabled = append(enabled, project)
		}
	}
	return enabled
}

// CharBudgetFor returns the tweet character budget for a project, falling
// back to the workflow-wide budget.
func (c *Config) CharBudgetFor(project Project) int {
	if project.CharBudget > 0 {
		return project.CharBudget
	}
	return c.Workflow.CharBudget
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
