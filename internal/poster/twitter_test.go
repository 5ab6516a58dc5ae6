package poster

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"driftwatch/internal/config"
	"driftwatch/internal/tweets"
)

func thread(parts ...string) []tweets.Payload {
	payloads := make([]tweets.Payload, 0, len(parts))
	for i, text := range parts {
		payloads = append(payloads, tweets.Payload{
			ID:               fmt.Sprintf("DOK4_added_001_thread_%d", i+1),
			ThreadID:         "DOK4_added_001_thread",
			ThreadPart:       i + 1,
			TotalThreadParts: len(parts),
			ContentFormatted: text,
		})
	}
	return payloads
}

func TestPostThreadChainsReplies(t *testing.T) {
	type request struct {
		Text  string `json:"text"`
		Reply *struct {
			InReplyToTweetID string `json:"in_reply_to_tweet_id"`
		} `json:"reply"`
	}

	var requests []request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/2/tweets" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer token" {
			t.Errorf("unexpected auth header %q", r.Header.Get("Authorization"))
		}
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		requests = append(requests, req)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"data":{"id":"id-%d"}}`, len(requests))
	}))
	defer server.Close()

	service := NewTwitterService("token", WithBaseURL(server.URL))
	ids, err := service.PostThread(context.Background(), thread("part one", "part two", "part three"))
	if err != nil {
		t.Fatalf("post thread: %v", err)
	}
	if len(ids) != 3 || ids[0] != "id-1" || ids[2] != "id-3" {
		t.Fatalf("ids = %v", ids)
	}

	if requests[0].Reply != nil {
		t.Fatal("first chunk must not be a reply")
	}
	if requests[1].Reply == nil || requests[1].Reply.InReplyToTweetID != "id-1" {
		t.Fatalf("second chunk reply = %+v", requests[1].Reply)
	}
	if requests[2].Reply == nil || requests[2].Reply.InReplyToTweetID != "id-2" {
		t.Fatalf("third chunk reply = %+v", requests[2].Reply)
	}
}

func TestPostThreadStopsOnFailure(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls > 1 {
			http.Error(w, `{"detail":"rate limited"}`, http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"data":{"id":"id-1"}}`)
	}))
	defer server.Close()

	service := NewTwitterService("token", WithBaseURL(server.URL))
	ids, err := service.PostThread(context.Background(), thread("part one", "part two"))
	if err == nil {
		t.Fatal("expected error from second chunk")
	}
	if len(ids) != 1 || ids[0] != "id-1" {
		t.Fatalf("posted ids = %v", ids)
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
}

func TestPostThreadRequiresToken(t *testing.T) {
	service := NewTwitterService("")
	if _, err := service.PostThread(context.Background(), thread("text")); err == nil {
		t.Fatal("expected error without token")
	}
}

func TestPostThreadEmptyThread(t *testing.T) {
	service := NewTwitterService("token")
	ids, err := service.PostThread(context.Background(), nil)
	if err != nil {
		t.Fatalf("empty thread: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("ids = %v", ids)
	}
}

func TestNewServiceDisabledReturnsNoop(t *testing.T) {
	cfg := config.Default()
	service := NewService(&cfg)
	ids, err := service.PostThread(context.Background(), thread("text"))
	if err != nil {
		t.Fatalf("noop must not error: %v", err)
	}
	if ids != nil {
		t.Fatalf("noop ids = %v", ids)
	}
}
