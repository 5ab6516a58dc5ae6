package config

const (
	defaultStateDir             = "~/.local/share/driftwatch/state"
	defaultLogDir               = "~/.local/share/driftwatch/logs"
	defaultWorkflowyBaseURL     = "https://workflowy.com"
	defaultWorkflowyTimeout     = 30
	defaultResolverBaseURL      = "https://openrouter.ai/api/v1"
	defaultResolverModel        = "google/gemini-3-flash-preview"
	defaultResolverTimeout      = 30
	defaultPosterBaseURL        = "https://api.twitter.com"
	defaultPosterTimeout        = 15
	defaultProjectDelaySeconds  = 5
	defaultWatchIntervalMinutes = 60
	defaultCharBudget           = 240
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// DefaultSections are the outline subsections tracked when a project does
// not list its own.
var DefaultSections = []string{"DOK4", "DOK3"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Workflowy: Workflowy{
			BaseURL:        defaultWorkflowyBaseURL,
			RequestTimeout: defaultWorkflowyTimeout,
		},
		Resolver: Resolver{
			BaseURL:        defaultResolverBaseURL,
			Model:          defaultResolverModel,
			TimeoutSeconds: defaultResolverTimeout,
		},
		Poster: Poster{
			BaseURL:        defaultPosterBaseURL,
			RequestTimeout: defaultPosterTimeout,
		},
		Workflow: Workflow{
			ProjectDelaySeconds:  defaultProjectDelaySeconds,
			WatchIntervalMinutes: defaultWatchIntervalMinutes,
			CharBudget:           defaultCharBudget,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
