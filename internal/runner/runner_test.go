package runner

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"driftwatch/internal/config"
	"driftwatch/internal/outline"
	"driftwatch/internal/poster"
	"driftwatch/internal/state"
	"driftwatch/internal/tweets"
)

type fakeFetcher struct {
	nodes []outline.Node
	err   error
	calls int
}

func (f *fakeFetcher) FetchNodes(_ context.Context, _ string) ([]outline.Node, error) {
	f.calls++
	return f.nodes, f.err
}

type fakePoster struct {
	threads [][]tweets.Payload
	err     error
}

func (f *fakePoster) PostThread(_ context.Context, thread []tweets.Payload) ([]string, error) {
	f.threads = append(f.threads, thread)
	if f.err != nil {
		return nil, f.err
	}
	ids := make([]string, len(thread))
	for i := range thread {
		ids[i] = "remote-" + thread[i].ID
	}
	return ids, nil
}

func resolveByName(_ context.Context, label string, candidates []outline.Node) (string, bool, error) {
	for _, candidate := range candidates {
		if strings.HasPrefix(candidate.Name, label) {
			return candidate.ID, true, nil
		}
	}
	return "", false, nil
}

// outlineWith builds a tree with DOK4 and DOK3 sections, each main entry
// becoming one point and its sub-entries becoming sub-points.
func outlineWith(dok4 map[string][]string, dok3 map[string][]string, order []string) []outline.Node {
	nodes := []outline.Node{
		{ID: "sec4", Name: "DOK4 Insights", Order: 0},
		{ID: "sec3", Name: "DOK3 Insights", Order: 1},
	}
	appendSection := func(sectionID string, entries map[string][]string) {
		position := 0
		for _, main := range order {
			subs, ok := entries[main]
			if !ok {
				continue
			}
			mainID := sectionID + "-" + main
			nodes = append(nodes, outline.Node{ID: mainID, Name: main, ParentID: sectionID, Order: position})
			position++
			for j, sub := range subs {
				nodes = append(nodes, outline.Node{ID: mainID + "-sub" + sub, Name: sub, ParentID: mainID, Order: j})
			}
		}
	}
	appendSection("sec4", dok4)
	appendSection("sec3", dok3)
	return nodes
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StateDir = filepath.Join(dir, "state")
	cfg.Paths.LogDir = filepath.Join(dir, "logs")
	cfg.Workflow.ProjectDelaySeconds = 1
	cfg.Workflowy.SessionCookie = "cookie"
	cfg.Projects = []config.Project{{ID: "notes", Name: "notes", Sections: []string{"DOK4", "DOK3"}}}
	return &cfg
}

func testRunner(t *testing.T, cfg *config.Config, fetcher Fetcher, post poster.Service) (*Runner, *state.Store) {
	t.Helper()
	store, err := state.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return New(cfg, store, fetcher, resolveByName, post, nil), store
}

func TestRunProjectFirstRunBaselinesWithoutTweets(t *testing.T) {
	cfg := testConfig(t)
	fetcher := &fakeFetcher{nodes: outlineWith(
		map[string][]string{"Dogs bark": {"Loudly"}, "Cats meow": nil},
		map[string][]string{"Fish swim": nil},
		[]string{"Dogs bark", "Cats meow", "Fish swim"},
	)}
	post := &fakePoster{}
	runner, store := testRunner(t, cfg, fetcher, post)

	outcome := runner.RunProject(context.Background(), cfg.Projects[0])
	if outcome.Status != "success" {
		t.Fatalf("outcome = %+v", outcome)
	}
	if !outcome.FirstRun {
		t.Fatal("expected first run")
	}
	if outcome.TotalChangeTweets != 0 {
		t.Fatalf("first run must emit zero tweets, got %d", outcome.TotalChangeTweets)
	}
	if outcome.DOK4Points != 2 || outcome.DOK3Points != 1 {
		t.Fatalf("point counts = %d/%d", outcome.DOK4Points, outcome.DOK3Points)
	}
	if len(post.threads) != 0 {
		t.Fatalf("first run must not post, got %d threads", len(post.threads))
	}

	persisted, err := store.LoadState(context.Background(), "notes")
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	if persisted == nil || len(persisted.DOK4) != 2 || len(persisted.DOK3) != 1 {
		t.Fatalf("persisted baseline = %+v", persisted)
	}
	if persisted.DOK4[0].MainContent != "Dogs bark" || persisted.DOK4[0].SubPoints[0] != "Loudly" {
		t.Fatalf("baseline point = %+v", persisted.DOK4[0])
	}
}

func TestRunProjectIncrementalEmitsChangeTweets(t *testing.T) {
	cfg := testConfig(t)
	fetcher := &fakeFetcher{nodes: outlineWith(
		map[string][]string{"Dogs bark": {"Loudly"}},
		map[string][]string{},
		[]string{"Dogs bark"},
	)}
	post := &fakePoster{}
	runner, store := testRunner(t, cfg, fetcher, post)
	ctx := context.Background()

	if outcome := runner.RunProject(ctx, cfg.Projects[0]); outcome.Status != "success" {
		t.Fatalf("baseline run = %+v", outcome)
	}

	// Second run adds one point.
	fetcher.nodes = outlineWith(
		map[string][]string{"Dogs bark": {"Loudly"}, "Cats meow": nil},
		map[string][]string{},
		[]string{"Dogs bark", "Cats meow"},
	)
	outcome := runner.RunProject(ctx, cfg.Projects[0])
	if outcome.Status != "success" || outcome.FirstRun {
		t.Fatalf("incremental run = %+v", outcome)
	}
	if outcome.TotalChangeTweets != 1 {
		t.Fatalf("change tweets = %d, want 1", outcome.TotalChangeTweets)
	}
	if len(post.threads) != 1 || len(post.threads[0]) != 1 {
		t.Fatalf("posted threads = %+v", post.threads)
	}
	posted := post.threads[0][0]
	if posted.ContentFormatted != "🟢 ADDED: DOK4: Cats meow" {
		t.Fatalf("posted content = %q", posted.ContentFormatted)
	}

	runs, err := store.LatestRuns(ctx)
	if err != nil {
		t.Fatalf("latest runs: %v", err)
	}
	if len(runs) != 1 || runs[0].ChangeTweets != 1 || runs[0].FirstRun {
		t.Fatalf("latest run = %+v", runs[0])
	}

	stored, err := store.TweetsForRun(ctx, runs[0].ID)
	if err != nil {
		t.Fatalf("tweets for run: %v", err)
	}
	if len(stored) != 1 || stored[0].Status != tweets.StatusPosted {
		t.Fatalf("stored tweets = %+v", stored)
	}
}

func TestRunProjectUnchangedContentIsQuiet(t *testing.T) {
	cfg := testConfig(t)
	fetcher := &fakeFetcher{nodes: outlineWith(
		map[string][]string{"Dogs bark": {"Loudly"}},
		map[string][]string{"Fish swim": nil},
		[]string{"Dogs bark", "Fish swim"},
	)}
	post := &fakePoster{}
	runner, _ := testRunner(t, cfg, fetcher, post)
	ctx := context.Background()

	runner.RunProject(ctx, cfg.Projects[0])
	outcome := runner.RunProject(ctx, cfg.Projects[0])
	if outcome.TotalChangeTweets != 0 {
		t.Fatalf("unchanged content produced %d tweets", outcome.TotalChangeTweets)
	}
	if len(post.threads) != 0 {
		t.Fatalf("unchanged content posted %d threads", len(post.threads))
	}
}

func TestRunProjectFetchFailureLeavesStateUntouched(t *testing.T) {
	cfg := testConfig(t)
	fetcher := &fakeFetcher{nodes: outlineWith(
		map[string][]string{"Dogs bark": nil},
		map[string][]string{},
		[]string{"Dogs bark"},
	)}
	runner, store := testRunner(t, cfg, fetcher, &fakePoster{})
	ctx := context.Background()

	runner.RunProject(ctx, cfg.Projects[0])
	before, err := store.LoadState(ctx, "notes")
	if err != nil {
		t.Fatalf("load state: %v", err)
	}

	fetcher.err = errors.New("upstream 500")
	outcome := runner.RunProject(ctx, cfg.Projects[0])
	if outcome.Status != "error" {
		t.Fatalf("outcome = %+v", outcome)
	}
	if !strings.Contains(outcome.Error, "fetch outline") {
		t.Fatalf("error = %q", outcome.Error)
	}

	after, err := store.LoadState(ctx, "notes")
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	if len(after.DOK4) != len(before.DOK4) {
		t.Fatalf("state changed after failed run: %+v vs %+v", before, after)
	}

	runs, err := store.LatestRuns(ctx)
	if err != nil {
		t.Fatalf("latest runs: %v", err)
	}
	if runs[0].Status != state.RunError || runs[0].ErrorMessage == "" {
		t.Fatalf("failed run not recorded: %+v", runs[0])
	}
}

func TestRunProjectFailureBeforeBaselineReportsFirstRun(t *testing.T) {
	cfg := testConfig(t)
	fetcher := &fakeFetcher{err: errors.New("upstream 500")}
	runner, store := testRunner(t, cfg, fetcher, &fakePoster{})
	ctx := context.Background()

	outcome := runner.RunProject(ctx, cfg.Projects[0])
	if outcome.Status != "error" {
		t.Fatalf("outcome = %+v", outcome)
	}
	if !outcome.FirstRun {
		t.Fatal("a failure before any baseline exists is still a first run")
	}

	runs, err := store.LatestRuns(ctx)
	if err != nil {
		t.Fatalf("latest runs: %v", err)
	}
	if len(runs) != 1 || !runs[0].FirstRun {
		t.Fatalf("recorded run = %+v", runs)
	}
}

func TestRunProjectStoreFailureKeepsErrorPrefixSingle(t *testing.T) {
	cfg := testConfig(t)
	fetcher := &fakeFetcher{nodes: outlineWith(
		map[string][]string{"Dogs bark": nil},
		map[string][]string{},
		[]string{"Dogs bark"},
	)}
	runner, store := testRunner(t, cfg, fetcher, &fakePoster{})
	_ = store.Close()

	outcome := runner.RunProject(context.Background(), cfg.Projects[0])
	if outcome.Status != "error" {
		t.Fatalf("outcome = %+v", outcome)
	}
	if got := strings.Count(outcome.Error, "load state:"); got != 1 {
		t.Fatalf("error %q carries the load-state prefix %d times, want 1", outcome.Error, got)
	}
}

func TestRunProjectMissingSectionYieldsEmptyBaseline(t *testing.T) {
	cfg := testConfig(t)
	// Outline has no DOK3 section at all.
	fetcher := &fakeFetcher{nodes: []outline.Node{
		{ID: "sec4", Name: "DOK4 Insights", Order: 0},
		{ID: "p1", Name: "Dogs bark", ParentID: "sec4", Order: 0},
	}}
	runner, store := testRunner(t, cfg, fetcher, &fakePoster{})

	outcome := runner.RunProject(context.Background(), cfg.Projects[0])
	if outcome.Status != "success" {
		t.Fatalf("missing section must not fail the run: %+v", outcome)
	}
	if outcome.DOK4Points != 1 || outcome.DOK3Points != 0 {
		t.Fatalf("point counts = %d/%d", outcome.DOK4Points, outcome.DOK3Points)
	}

	persisted, err := store.LoadState(context.Background(), "notes")
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	if len(persisted.DOK3) != 0 {
		t.Fatalf("dok3 = %+v", persisted.DOK3)
	}
}

func TestRunProjectPostFailureKeepsRunSuccessful(t *testing.T) {
	cfg := testConfig(t)
	fetcher := &fakeFetcher{nodes: outlineWith(
		map[string][]string{"Dogs bark": nil},
		map[string][]string{},
		[]string{"Dogs bark"},
	)}
	post := &fakePoster{err: errors.New("rate limited")}
	runner, store := testRunner(t, cfg, fetcher, post)
	ctx := context.Background()

	runner.RunProject(ctx, cfg.Projects[0])
	fetcher.nodes = outlineWith(
		map[string][]string{"Dogs bark": nil, "Cats meow": nil},
		map[string][]string{},
		[]string{"Dogs bark", "Cats meow"},
	)
	outcome := runner.RunProject(ctx, cfg.Projects[0])
	if outcome.Status != "success" {
		t.Fatalf("posting failure must not fail the run: %+v", outcome)
	}

	runs, err := store.LatestRuns(ctx)
	if err != nil {
		t.Fatalf("latest runs: %v", err)
	}
	stored, err := store.TweetsForRun(ctx, runs[0].ID)
	if err != nil {
		t.Fatalf("tweets for run: %v", err)
	}
	if len(stored) != 1 || stored[0].Status != tweets.StatusFailed {
		t.Fatalf("stored tweets = %+v", stored)
	}
}

func TestRunAllContinuesPastFailingProject(t *testing.T) {
	cfg := testConfig(t)
	cfg.Projects = []config.Project{
		{ID: "broken", Sections: []string{"DOK4", "DOK3"}},
		{ID: "healthy", Sections: []string{"DOK4", "DOK3"}},
	}
	cfg.Workflow.ProjectDelaySeconds = 1

	// The fetcher fails only on the first call.
	fetcher := &flakyFetcher{nodes: outlineWith(
		map[string][]string{"Dogs bark": nil},
		map[string][]string{},
		[]string{"Dogs bark"},
	)}
	runner, _ := testRunner(t, cfg, fetcher, &fakePoster{})

	outcomes := runner.RunAll(context.Background())
	if len(outcomes) != 2 {
		t.Fatalf("outcomes = %+v", outcomes)
	}
	if outcomes[0].Status != "error" || outcomes[0].ProjectID != "broken" {
		t.Fatalf("first outcome = %+v", outcomes[0])
	}
	if outcomes[1].Status != "success" || outcomes[1].ProjectID != "healthy" {
		t.Fatalf("second outcome = %+v", outcomes[1])
	}
}

type flakyFetcher struct {
	nodes []outline.Node
	calls int
}

func (f *flakyFetcher) FetchNodes(_ context.Context, _ string) ([]outline.Node, error) {
	f.calls++
	if f.calls == 1 {
		return nil, errors.New("upstream 500")
	}
	return f.nodes, nil
}

func TestRunAllHonorsCancellation(t *testing.T) {
	cfg := testConfig(t)
	cfg.Projects = []config.Project{
		{ID: "a", Sections: []string{"DOK4"}},
		{ID: "b", Sections: []string{"DOK4"}},
	}
	cfg.Workflow.ProjectDelaySeconds = 3600

	fetcher := &fakeFetcher{nodes: outlineWith(
		map[string][]string{"Dogs bark": nil},
		map[string][]string{},
		[]string{"Dogs bark"},
	)}
	runner, _ := testRunner(t, cfg, fetcher, &fakePoster{})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		// Cancel while RunAll waits out the inter-project delay.
		cancel()
	}()

	outcomes := runner.RunAll(ctx)
	if len(outcomes) >= 2 {
		t.Fatalf("second project must not run after cancel: %+v", outcomes)
	}
}
