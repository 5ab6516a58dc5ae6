package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"driftwatch/internal/changes"
	"driftwatch/internal/config"
	"driftwatch/internal/logging"
	"driftwatch/internal/outline"
	"driftwatch/internal/points"
	"driftwatch/internal/poster"
	"driftwatch/internal/state"
	"driftwatch/internal/tweets"
)

// Fetcher retrieves the raw outline nodes for a project.
type Fetcher interface {
	FetchNodes(ctx context.Context, shareID string) ([]outline.Node, error)
}

// Outcome summarizes one project run.
type Outcome struct {
	ProjectID         string `json:"project_id"`
	Status            string `json:"status"`
	FirstRun          bool   `json:"first_run"`
	TotalChangeTweets int    `json:"total_change_tweets"`
	DOK4Points        int    `json:"dok4_points"`
	DOK3Points        int    `json:"dok3_points"`
	Error             string `json:"error,omitempty"`
}

// Runner executes the extraction/diff/synthesis pipeline for projects.
type Runner struct {
	cfg     *config.Config
	store   *state.Store
	fetcher Fetcher
	resolve outline.ResolveFunc
	post    poster.Service
	logger  *slog.Logger
}

// New assembles a Runner. A nil logger logs nowhere.
func New(cfg *config.Config, store *state.Store, fetcher Fetcher, resolve outline.ResolveFunc, post poster.Service, logger *slog.Logger) *Runner {
	if post == nil {
		post = poster.NewService(nil)
	}
	return &Runner{
		cfg:     cfg,
		store:   store,
		fetcher: fetcher,
		resolve: resolve,
		post:    post,
		logger:  logging.NewComponentLogger(logger, "runner"),
	}
}

// RunProject processes a single project once. The persisted baseline is
// only replaced after extraction, diffing, and synthesis all succeed; any
// failure leaves the previous baseline for the next run to diff against.
func (r *Runner) RunProject(ctx context.Context, project config.Project) Outcome {
	started := time.Now().UTC()
	runID := uuid.NewString()
	logger := r.logger.With(logging.String("project", project.ID))

	previous, err := r.store.LoadState(ctx, project.ID)
	if err != nil {
		return r.fail(ctx, runID, project, started, false, err)
	}
	firstRun := previous == nil

	nodes, err := r.fetcher.FetchNodes(ctx, project.ShareID)
	if err != nil {
		return r.fail(ctx, runID, project, started, firstRun, fmt.Errorf("fetch outline: %w", err))
	}

	newState := &state.ProjectState{}
	sectionCounts := make(map[points.Section]int, len(project.Sections))
	var payloads []tweets.Payload
	budget := r.cfg.CharBudgetFor(project)

	for _, label := range project.Sections {
		section := points.Section(label)

		text, err := outline.NormalizeSection(ctx, nodes, label, r.resolve)
		if err != nil {
			return r.fail(ctx, runID, project, started, firstRun, fmt.Errorf("normalize section %s: %w", label, err))
		}
		if text == "" {
			logger.Warn("section not found in outline", logging.String("section", label))
		}

		current := points.ParsePoints(text, section)
		newState.SetPoints(section, points.ToStates(current))
		sectionCounts[section] = len(current)

		if firstRun {
			// Baseline run: everything would classify as added, which
			// describes the section, not a change. Persist the snapshot
			// and emit nothing.
			logger.Info("section baselined",
				logging.String("section", label),
				logging.Int("points", len(current)),
			)
			continue
		}

		set := changes.Diff(previous.PointsFor(section), current, changes.PairThreshold)
		payloads = append(payloads, tweets.Synthesize(set, section, false, budget)...)

		logger.Info("section diffed",
			logging.String("section", label),
			logging.Int("points", len(current)),
			logging.Int("unchanged", set.Stats.Unchanged),
			logging.Int("added", set.Stats.Added),
			logging.Int("updated", set.Stats.Updated),
			logging.Int("deleted", set.Stats.Deleted),
		)
	}

	if err := r.store.SaveState(ctx, project.ID, newState); err != nil {
		return r.fail(ctx, runID, project, started, firstRun, fmt.Errorf("save state: %w", err))
	}
	if err := r.store.SaveTweets(ctx, runID, project.ID, payloads); err != nil {
		return r.fail(ctx, runID, project, started, firstRun, fmt.Errorf("save tweets: %w", err))
	}

	outcome := Outcome{
		ProjectID:         project.ID,
		Status:            string(state.RunSuccess),
		FirstRun:          firstRun,
		TotalChangeTweets: len(payloads),
		DOK4Points:        sectionCounts[points.SectionDOK4],
		DOK3Points:        sectionCounts[points.SectionDOK3],
	}

	run := &state.Run{
		ID:           runID,
		ProjectID:    project.ID,
		Status:       state.RunSuccess,
		FirstRun:     firstRun,
		DOK4Points:   outcome.DOK4Points,
		DOK3Points:   outcome.DOK3Points,
		ChangeTweets: outcome.TotalChangeTweets,
		StartedAt:    started,
		FinishedAt:   time.Now().UTC(),
	}
	if err := r.store.RecordRun(ctx, run); err != nil {
		logger.Warn("record run failed", logging.Error(err))
	}

	r.postPayloads(ctx, logger, payloads)

	logger.Info("project processed",
		logging.Bool("first_run", firstRun),
		logging.Int("change_tweets", len(payloads)),
		logging.Duration("elapsed", time.Since(started)),
	)
	return outcome
}

// postPayloads hands synthesized threads to the posting sink. Posting
// failures downgrade individual tweet statuses but never fail the run;
// the baseline is already persisted at this point.
func (r *Runner) postPayloads(ctx context.Context, logger *slog.Logger, payloads []tweets.Payload) {
	for _, thread := range tweets.Threads(payloads) {
		ids, err := r.post.PostThread(ctx, thread)
		for i, chunk := range thread {
			status := tweets.StatusPosted
			if i >= len(ids) {
				if err == nil {
					// Noop sink: payloads stay pending for a later pass.
					continue
				}
				status = tweets.StatusFailed
			}
			if updateErr := r.store.UpdateTweetStatus(ctx, chunk.ID, status); updateErr != nil {
				logger.Warn("update tweet status failed", logging.String("tweet", chunk.ID), logging.Error(updateErr))
			}
		}
		if err != nil {
			logger.Warn("post thread failed",
				logging.String("thread", thread[0].ThreadID),
				logging.Int("posted_parts", len(ids)),
				logging.Error(err),
			)
		}
	}
}

func (r *Runner) fail(ctx context.Context, runID string, project config.Project, started time.Time, firstRun bool, cause error) Outcome {
	r.logger.Error("project failed",
		logging.String("project", project.ID),
		logging.Error(cause),
	)

	run := &state.Run{
		ID:           runID,
		ProjectID:    project.ID,
		Status:       state.RunError,
		FirstRun:     firstRun,
		ErrorMessage: cause.Error(),
		StartedAt:    started,
		FinishedAt:   time.Now().UTC(),
	}
	if err := r.store.RecordRun(ctx, run); err != nil {
		r.logger.Warn("record run failed", logging.String("project", project.ID), logging.Error(err))
	}

	return Outcome{
		ProjectID: project.ID,
		Status:    string(state.RunError),
		FirstRun:  firstRun,
		Error:     cause.Error(),
	}
}

// RunAll processes every enabled project in file order, pausing between
// projects. A failing project never blocks the ones after it.
func (r *Runner) RunAll(ctx context.Context) []Outcome {
	projects := r.cfg.EnabledProjects()
	delay := time.Duration(r.cfg.Workflow.ProjectDelaySeconds) * time.Second

	outcomes := make([]Outcome, 0, len(projects))
	for i, project := range projects {
		if i > 0 && delay > 0 {
			select {
			case <-ctx.Done():
				return outcomes
			case <-time.After(delay):
			}
		}
		if ctx.Err() != nil {
			return outcomes
		}
		outcomes = append(outcomes, r.RunProject(ctx, project))
	}
	return outcomes
}

// Watch runs all projects immediately and then on every interval tick
// until the context is cancelled.
func (r *Runner) Watch(ctx context.Context) error {
	interval := time.Duration(r.cfg.Workflow.WatchIntervalMinutes) * time.Minute
	r.logger.Info("watch started", logging.Duration("interval", interval))

	r.RunAll(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("watch stopped")
			return ctx.Err()
		case <-ticker.C:
			r.RunAll(ctx)
		}
	}
}
