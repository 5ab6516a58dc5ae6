package outline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL     = "https://workflowy.com"
	defaultHTTPTimeout = 30 * time.Second
	clientVersion      = "21"
)

// Client fetches the raw outline tree from Workflowy. One client is
// constructed per process and shared across projects.
type Client struct {
	baseURL       string
	sessionCookie string
	httpClient    *http.Client
}

// Option customizes the outline client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the default API base (useful for tests/mocks).
func WithBaseURL(base string) Option {
	return func(c *Client) {
		base = strings.TrimSpace(base)
		if base != "" {
			c.baseURL = strings.TrimRight(base, "/")
		}
	}
}

// WithTimeout overrides the default request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewClient constructs an outline client authenticated by session cookie.
func NewClient(sessionCookie string, opts ...Option) *Client {
	client := &Client{
		baseURL:       defaultBaseURL,
		sessionCookie: strings.TrimSpace(sessionCookie),
		httpClient:    &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// FetchNodes downloads the document tree and flattens it into a node list.
// When shareID is non-empty the shared document is requested instead of the
// account's root document.
func (c *Client) FetchNodes(ctx context.Context, shareID string) ([]Node, error) {
	if c.sessionCookie == "" {
		return nil, errors.New("outline fetch: session cookie required")
	}

	endpoint := c.baseURL + "/get_initialization_data?client_version=" + clientVersion
	if shareID = strings.TrimSpace(shareID); shareID != "" {
		endpoint += "&share_id=" + shareID
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("outline fetch: request: %w", err)
	}
	req.Header.Set("Cookie", "sessionid="+c.sessionCookie)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("outline fetch: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("outline fetch: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("outline fetch: http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload initializationData
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("outline fetch: decode response: %w", err)
	}

	var nodes []Node
	for _, raw := range payload.ProjectTreeData.MainProjectTreeInfo.RootProjectChildren {
		nodes = flatten(raw, "", nodes)
	}
	return nodes, nil
}

type initializationData struct {
	ProjectTreeData struct {
		MainProjectTreeInfo struct {
			RootProjectChildren []rawNode `json:"rootProjectChildren"`
		} `json:"mainProjectTreeInfo"`
	} `json:"projectTreeData"`
}

type rawNode struct {
	ID       string    `json:"id"`
	Name     string    `json:"nm"`
	Note     string    `json:"no"`
	Priority int       `json:"pr"`
	Children []rawNode `json:"ch"`
}

func flatten(raw rawNode, parentID string, acc []Node) []Node {
	acc = append(acc, Node{
		ID:       raw.ID,
		Name:     raw.Name,
		Note:     raw.Note,
		ParentID: parentID,
		Order:    raw.Priority,
	})
	for _, child := range raw.Children {
		acc = flatten(child, raw.ID, acc)
	}
	return acc
}
