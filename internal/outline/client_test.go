package outline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const initializationFixture = `{
  "projectTreeData": {
    "mainProjectTreeInfo": {
      "rootProjectChildren": [
        {
          "id": "root-dok4",
          "nm": "DOK4 - Spiky POVs",
          "pr": 1,
          "ch": [
            {"id": "p1", "nm": "Own a cat", "pr": 0, "ch": [
              {"id": "p1s1", "nm": "meow", "pr": 0}
            ]},
            {"id": "p2", "nm": "Dogs bark loud", "no": "heard at night", "pr": 1}
          ]
        }
      ]
    }
  }
}`

func TestFetchNodesFlattensTree(t *testing.T) {
	var gotCookie, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCookie = r.Header.Get("Cookie")
		gotPath = r.URL.Path + "?" + r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(initializationFixture))
	}))
	defer server.Close()

	client := NewClient("secret-session", WithBaseURL(server.URL))
	nodes, err := client.FetchNodes(context.Background(), "")
	if err != nil {
		t.Fatalf("fetch nodes: %v", err)
	}

	if gotCookie != "sessionid=secret-session" {
		t.Fatalf("unexpected cookie header %q", gotCookie)
	}
	if gotPath != "/get_initialization_data?client_version=21" {
		t.Fatalf("unexpected request path %q", gotPath)
	}
	if len(nodes) != 4 {
		t.Fatalf("expected 4 flattened nodes, got %d", len(nodes))
	}

	byID := make(map[string]Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}
	if byID["root-dok4"].ParentID != "" {
		t.Fatalf("root node has parent %q", byID["root-dok4"].ParentID)
	}
	if byID["p1"].ParentID != "root-dok4" || byID["p1s1"].ParentID != "p1" {
		t.Fatalf("parent links wrong: %+v", byID)
	}
	if byID["p2"].Note != "heard at night" {
		t.Fatalf("note not carried: %+v", byID["p2"])
	}
	if byID["p2"].Order != 1 {
		t.Fatalf("order not carried: %+v", byID["p2"])
	}
}

func TestFetchNodesSendsShareID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("share_id") != "abc123" {
			t.Errorf("missing share_id in %q", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"projectTreeData":{"mainProjectTreeInfo":{"rootProjectChildren":[]}}}`))
	}))
	defer server.Close()

	client := NewClient("cookie", WithBaseURL(server.URL))
	if _, err := client.FetchNodes(context.Background(), "abc123"); err != nil {
		t.Fatalf("fetch nodes: %v", err)
	}
}

func TestFetchNodesHTTPErrorFailsRun(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "session expired", http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClient("cookie", WithBaseURL(server.URL))
	if _, err := client.FetchNodes(context.Background(), ""); err == nil {
		t.Fatal("expected error for http 403")
	}
}

func TestFetchNodesRequiresSession(t *testing.T) {
	client := NewClient("")
	if _, err := client.FetchNodes(context.Background(), ""); err == nil {
		t.Fatal("expected error without session cookie")
	}
}
