package poster

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"driftwatch/internal/tweets"
)

const (
	defaultBaseURL = "https://api.twitter.com"
	userAgent      = "driftwatch/0.1.0"
)

// TwitterService posts threads through the v2 tweet endpoint.
type TwitterService struct {
	token   string
	baseURL string
	client  *http.Client
}

// Option customizes a TwitterService.
type Option func(*TwitterService)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(s *TwitterService) {
		if client != nil {
			s.client = client
		}
	}
}

// WithBaseURL overrides the API base URL.
func WithBaseURL(baseURL string) Option {
	return func(s *TwitterService) {
		trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
		if trimmed != "" {
			s.baseURL = trimmed
		}
	}
}

// NewTwitterService creates a posting service with the supplied bearer token.
func NewTwitterService(token string, opts ...Option) *TwitterService {
	service := &TwitterService{
		token:   strings.TrimSpace(token),
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

type tweetRequest struct {
	Text  string      `json:"text"`
	Reply *tweetReply `json:"reply,omitempty"`
}

type tweetReply struct {
	InReplyToTweetID string `json:"in_reply_to_tweet_id"`
}

type tweetResponse struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

// PostThread posts the chunks of one thread in part order, each chunk
// replying to the previous one. Posting stops at the first failure; ids of
// chunks already posted are returned alongside the error.
func (s *TwitterService) PostThread(ctx context.Context, thread []tweets.Payload) ([]string, error) {
	if s.token == "" {
		return nil, errors.New("post thread: bearer token not configured")
	}
	if len(thread) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(thread))
	previousID := ""
	for _, chunk := range thread {
		id, err := s.postOne(ctx, chunk.ContentFormatted, previousID)
		if err != nil {
			return ids, fmt.Errorf("post thread %s part %d: %w", chunk.ThreadID, chunk.ThreadPart, err)
		}
		ids = append(ids, id)
		previousID = id
	}
	return ids, nil
}

func (s *TwitterService) postOne(ctx context.Context, text, inReplyTo string) (string, error) {
	payload := tweetRequest{Text: text}
	if inReplyTo != "" {
		payload.Reply = &tweetReply{InReplyToTweetID: inReplyTo}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/2/tweets", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var decoded tweetResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if decoded.Data.ID == "" {
		return "", errors.New("response missing tweet id")
	}
	return decoded.Data.ID, nil
}
