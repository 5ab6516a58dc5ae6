// Package resolver maps human section labels (like "DOK4") onto node ids in
// the fetched outline tree. The production setup chains an LLM resolver with
// a pattern-matching fallback behind one interface.
package resolver

import (
	"context"
	"log/slog"

	"driftwatch/internal/logging"
	"driftwatch/internal/outline"
)

// Resolver locates the node a section label refers to among the top-level
// candidates. ok=false means "not found" and is not an error; the section
// simply contributes no points this run.
type Resolver interface {
	Resolve(ctx context.Context, label string, candidates []outline.Node) (id string, ok bool, err error)
}

// Chain tries a primary resolver and falls back to a secondary when the
// primary errors or comes up empty.
type Chain struct {
	primary  Resolver
	fallback Resolver
	logger   *slog.Logger
}

// NewChain builds a try-primary-else-fallback resolver.
func NewChain(primary, fallback Resolver, logger *slog.Logger) *Chain {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Chain{primary: primary, fallback: fallback, logger: logger}
}

// Resolve implements Resolver.
func (c *Chain) Resolve(ctx context.Context, label string, candidates []outline.Node) (string, bool, error) {
	if c.primary != nil {
		id, ok, err := c.primary.Resolve(ctx, label, candidates)
		if err == nil && ok {
			return id, true, nil
		}
		if err != nil {
			c.logger.Warn("primary resolver failed, using fallback",
				logging.String("label", label),
				logging.Error(err))
		}
	}
	if c.fallback == nil {
		return "", false, nil
	}
	return c.fallback.Resolve(ctx, label, candidates)
}

// Func adapts a plain function into a Resolver.
type Func func(ctx context.Context, label string, candidates []outline.Node) (string, bool, error)

// Resolve implements Resolver.
func (f Func) Resolve(ctx context.Context, label string, candidates []outline.Node) (string, bool, error) {
	return f(ctx, label, candidates)
}
