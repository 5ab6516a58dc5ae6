package resolver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"driftwatch/internal/outline"
)

const (
	defaultLLMBaseURL  = "https://openrouter.ai/api/v1"
	defaultLLMModel    = "google/gemini-3-flash-preview"
	jsonResponseType   = "json_object"
	defaultHTTPTimeout = 30 * time.Second
)

const resolvePrompt = `You match a requested section label to one node of an outline document.
You receive the label and a JSON array of candidate nodes, each with "id" and "name".
Pick the single node whose name corresponds to the label, tolerating extra
decoration like separators or subtitles in the name.
Respond with JSON: {"node_id": "<id>"} or {"node_id": null} when no candidate fits.`

// LLMResolver asks a chat-completions endpoint to pick the node matching a
// label. Responses are constrained to JSON and validated against the
// candidate list before being trusted.
type LLMResolver struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// LLMOption customizes the LLM resolver.
type LLMOption func(*LLMResolver)

// WithLLMHTTPClient overrides the default HTTP client.
func WithLLMHTTPClient(client *http.Client) LLMOption {
	return func(r *LLMResolver) {
		if client != nil {
			r.httpClient = client
		}
	}
}

// WithLLMBaseURL overrides the default API base (useful for tests/mocks).
func WithLLMBaseURL(base string) LLMOption {
	return func(r *LLMResolver) {
		base = strings.TrimSpace(base)
		if base != "" {
			r.baseURL = strings.TrimRight(base, "/")
		}
	}
}

// WithLLMModel overrides the default model.
func WithLLMModel(model string) LLMOption {
	return func(r *LLMResolver) {
		model = strings.TrimSpace(model)
		if model != "" {
			r.model = model
		}
	}
}

// NewLLMResolver constructs the primary resolver.
func NewLLMResolver(apiKey string, opts ...LLMOption) *LLMResolver {
	r := &LLMResolver{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    defaultLLMBaseURL,
		model:      defaultLLMModel,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve implements Resolver.
func (r *LLMResolver) Resolve(ctx context.Context, label string, candidates []outline.Node) (string, bool, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return "", false, nil
	}
	if len(candidates) == 0 {
		return "", false, nil
	}
	if r.apiKey == "" {
		return "", false, errors.New("resolve node: api key required")
	}

	type candidate struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	listed := make([]candidate, 0, len(candidates))
	for _, node := range candidates {
		listed = append(listed, candidate{ID: node.ID, Name: node.Name})
	}
	listedJSON, err := json.Marshal(listed)
	if err != nil {
		return "", false, fmt.Errorf("resolve node: encode candidates: %w", err)
	}

	request := chatCompletionRequest{
		Model: r.model,
		Messages: []chatMessage{
			{Role: "system", Content: resolvePrompt},
			{Role: "user", Content: fmt.Sprintf("Label: %s\nCandidates: %s", label, listedJSON)},
		},
		Temperature:    0,
		ResponseFormat: map[string]string{"type": jsonResponseType},
	}
	encoded, err := json.Marshal(request)
	if err != nil {
		return "", false, fmt.Errorf("resolve node: encode request: %w", err)
	}

	endpoint, err := url.JoinPath(r.baseURL, "/chat/completions")
	if err != nil {
		return "", false, fmt.Errorf("resolve node: build url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return "", false, fmt.Errorf("resolve node: request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", false, fmt.Errorf("resolve node: request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", false, fmt.Errorf("resolve node: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return "", false, fmt.Errorf("resolve node: http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return "", false, fmt.Errorf("resolve node: decode response: %w", err)
	}
	if completion.Error != nil {
		return "", false, fmt.Errorf("resolve node: api error: %s", strings.TrimSpace(completion.Error.Message))
	}
	if len(completion.Choices) == 0 {
		return "", false, errors.New("resolve node: empty choices")
	}
	content := strings.TrimSpace(completion.Choices[0].Message.Content)
	if content == "" {
		return "", false, errors.New("resolve node: empty content")
	}

	var parsed struct {
		NodeID *string `json:"node_id"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return "", false, fmt.Errorf("resolve node: parse payload: %w", err)
	}
	if parsed.NodeID == nil || strings.TrimSpace(*parsed.NodeID) == "" {
		return "", false, nil
	}

	// Never trust an id the model invented.
	for _, node := range candidates {
		if node.ID == *parsed.NodeID {
			return node.ID, true, nil
		}
	}
	return "", false, nil
}

type chatCompletionRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}
