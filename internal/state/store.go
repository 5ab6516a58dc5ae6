package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"driftwatch/internal/config"
	"driftwatch/internal/tweets"
)

// Store manages driftwatch persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the state database and applies migrations.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.StateDir, "driftwatch.db")
	return OpenPath(dbPath)
}

// OpenPath opens the database at an explicit location.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// LoadState returns the persisted baseline for a project, or nil when the
// project has never completed a run.
func (s *Store) LoadState(ctx context.Context, projectID string) (*ProjectState, error) {
	row := s.db.QueryRowContext(ctx, `SELECT state_json FROM project_state WHERE project_id = ?`, projectID)
	var raw string
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("load state: %w", err)
	}

	var ps ProjectState
	if err := json.Unmarshal([]byte(raw), &ps); err != nil {
		return nil, fmt.Errorf("decode state for %s: %w", projectID, err)
	}
	return &ps, nil
}

// SaveState overwrites the baseline for a project wholesale.
func (s *Store) SaveState(ctx context.Context, projectID string, ps *ProjectState) error {
	if ps == nil {
		return errors.New("state is nil")
	}
	raw, err := json.Marshal(ps)
	if err != nil {
		return fmt.Errorf("encode state for %s: %w", projectID, err)
	}

	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO project_state (project_id, state_json, updated_at) VALUES (?, ?, ?)
         ON CONFLICT(project_id) DO UPDATE SET state_json = excluded.state_json, updated_at = excluded.updated_at`,
		projectID,
		string(raw),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

// RecordRun inserts a completed run outcome.
func (s *Store) RecordRun(ctx context.Context, run *Run) error {
	if run == nil {
		return errors.New("run is nil")
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO runs (
            id, project_id, status, first_run, dok4_points, dok3_points,
            change_tweets, error_message, started_at, finished_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.ProjectID,
		string(run.Status),
		boolToInt(run.FirstRun),
		run.DOK4Points,
		run.DOK3Points,
		run.ChangeTweets,
		nullableString(run.ErrorMessage),
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.FinishedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// LatestRuns returns the most recent run for every project, ordered by
// project id.
func (s *Store) LatestRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+runColumns+` FROM runs r
         WHERE r.started_at = (SELECT MAX(started_at) FROM runs WHERE project_id = r.project_id)
         ORDER BY r.project_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("query latest runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// RunsForProject returns runs for one project, most recent first.
func (s *Store) RunsForProject(ctx context.Context, projectID string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+runColumns+` FROM runs r WHERE project_id = ? ORDER BY started_at DESC LIMIT ?`,
		projectID,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query project runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// SaveTweets stores synthesized payloads for a run in one transaction.
func (s *Store) SaveTweets(ctx context.Context, runID, projectID string, payloads []tweets.Payload) error {
	if len(payloads) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tweets tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(
		ctx,
		`INSERT INTO tweets (
            id, run_id, project_id, section, change_type, thread_id,
            thread_part, total_thread_parts, content, status, similarity, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("prepare tweet insert: %w", err)
	}
	defer stmt.Close()

	for _, payload := range payloads {
		var similarity any
		if payload.SimilarityScore != nil {
			similarity = *payload.SimilarityScore
		}
		if _, err := stmt.ExecContext(
			ctx,
			payload.ID,
			runID,
			projectID,
			payload.Section,
			string(payload.ChangeType),
			payload.ThreadID,
			payload.ThreadPart,
			payload.TotalThreadParts,
			payload.ContentFormatted,
			string(payload.Status),
			similarity,
			payload.CreatedAt.UTC().Format(time.RFC3339Nano),
		); err != nil {
			return fmt.Errorf("insert tweet %s: %w", payload.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tweets: %w", err)
	}
	return nil
}

// TweetsForRun returns the payloads stored for one run in insertion order.
func (s *Store) TweetsForRun(ctx context.Context, runID string) ([]tweets.Payload, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, section, change_type, content, thread_id, thread_part,
                total_thread_parts, status, similarity, created_at
         FROM tweets WHERE run_id = ? ORDER BY created_at, thread_id, thread_part`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query run tweets: %w", err)
	}
	defer rows.Close()

	var payloads []tweets.Payload
	for rows.Next() {
		var (
			payload    tweets.Payload
			changeType string
			status     string
			similarity sql.NullFloat64
			createdRaw string
		)
		if err := rows.Scan(
			&payload.ID,
			&payload.Section,
			&changeType,
			&payload.ContentFormatted,
			&payload.ThreadID,
			&payload.ThreadPart,
			&payload.TotalThreadParts,
			&status,
			&similarity,
			&createdRaw,
		); err != nil {
			return nil, fmt.Errorf("scan tweet: %w", err)
		}
		payload.ChangeType = tweets.ChangeType(changeType)
		payload.Status = tweets.Status(status)
		if similarity.Valid {
			value := similarity.Float64
			payload.SimilarityScore = &value
		}
		if created, err := time.Parse(time.RFC3339Nano, createdRaw); err == nil {
			payload.CreatedAt = created
		}
		payloads = append(payloads, payload)
	}
	return payloads, rows.Err()
}

// UpdateTweetStatus transitions one stored payload after a posting attempt.
func (s *Store) UpdateTweetStatus(ctx context.Context, tweetID string, status tweets.Status) error {
	res, err := s.db.ExecContext(ctx, `UPDATE tweets SET status = ? WHERE id = ?`, string(status), tweetID)
	if err != nil {
		return fmt.Errorf("update tweet status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update tweet status: unknown tweet %s", tweetID)
	}
	return nil
}

const runColumns = "r.id, r.project_id, r.status, r.first_run, r.dok4_points, r.dok3_points, r.change_tweets, r.error_message, r.started_at, r.finished_at"

func scanRun(scanner interface{ Scan(dest ...any) error }) (Run, error) {
	var (
		run          Run
		status       string
		firstRun     int
		errorMessage sql.NullString
		startedRaw   string
		finishedRaw  string
	)
	if err := scanner.Scan(
		&run.ID,
		&run.ProjectID,
		&status,
		&firstRun,
		&run.DOK4Points,
		&run.DOK3Points,
		&run.ChangeTweets,
		&errorMessage,
		&startedRaw,
		&finishedRaw,
	); err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.Status = RunStatus(status)
	run.FirstRun = firstRun != 0
	run.ErrorMessage = errorMessage.String
	if started, err := time.Parse(time.RFC3339Nano, startedRaw); err == nil {
		run.StartedAt = started
	}
	if finished, err := time.Parse(time.RFC3339Nano, finishedRaw); err == nil {
		run.FinishedAt = finished
	}
	return run, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
