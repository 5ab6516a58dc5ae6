package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"driftwatch/internal/config"
	"driftwatch/internal/logging"
	"driftwatch/internal/outline"
	"driftwatch/internal/poster"
	"driftwatch/internal/resolver"
	"driftwatch/internal/runner"
	"driftwatch/internal/state"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// buildRunner wires the pipeline from configuration. The caller owns the
// returned store and must close it.
func (c *commandContext) buildRunner() (*runner.Runner, *state.Store, *slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, nil, err
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}

	store, err := state.Open(cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open state store: %w", err)
	}

	fetcher := outline.NewClient(
		cfg.Workflowy.SessionCookie,
		outline.WithBaseURL(cfg.Workflowy.BaseURL),
		outline.WithTimeout(time.Duration(cfg.Workflowy.RequestTimeout)*time.Second),
	)

	resolve := buildResolver(cfg, logger)
	post := poster.NewService(cfg)

	return runner.New(cfg, store, fetcher, resolve, post, logger), store, logger, nil
}

// buildResolver prefers LLM resolution with a pattern fallback; without an
// API key, pattern matching stands alone.
func buildResolver(cfg *config.Config, logger *slog.Logger) outline.ResolveFunc {
	pattern := resolver.NewPatternResolver()
	if cfg.Resolver.APIKey == "" {
		return pattern.Resolve
	}

	llm := resolver.NewLLMResolver(
		cfg.Resolver.APIKey,
		resolver.WithLLMBaseURL(cfg.Resolver.BaseURL),
		resolver.WithLLMModel(cfg.Resolver.Model),
		resolver.WithLLMHTTPClient(&http.Client{Timeout: time.Duration(cfg.Resolver.TimeoutSeconds) * time.Second}),
	)
	chain := resolver.NewChain(llm, pattern, logger)
	return chain.Resolve
}
