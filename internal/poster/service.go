package poster

import (
	"context"
	"net/http"
	"time"

	"driftwatch/internal/config"
	"driftwatch/internal/tweets"
)

// Service defines the posting surface exposed to the runner.
type Service interface {
	// PostThread posts the parts of one thread in order and returns the
	// remote ids of the posted tweets.
	PostThread(ctx context.Context, thread []tweets.Payload) ([]string, error)
}

// NewService builds a posting service from configuration. When posting is
// disabled a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil || !cfg.Poster.Enabled {
		return noopService{}
	}

	timeout := time.Duration(cfg.Poster.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return NewTwitterService(
		cfg.Poster.BearerToken,
		WithBaseURL(cfg.Poster.BaseURL),
		WithHTTPClient(&http.Client{Timeout: timeout}),
	)
}

type noopService struct{}

func (noopService) PostThread(context.Context, []tweets.Payload) ([]string, error) {
	return nil, nil
}
