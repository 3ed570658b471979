// Package history persists finished screening runs so rankings survive
// process restarts and can be compared across runs.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/joseph-ayodele/cv-screener/constants"
	"github.com/joseph-ayodele/cv-screener/internal/common"
	"github.com/joseph-ayodele/cv-screener/internal/pipeline"
)

// RunSummary is the list view of one stored run.
type RunSummary struct {
	ID         uuid.UUID
	StartedAt  time.Time
	FinishedAt time.Time
	Ranked     int
	Excluded   int
}

// Store writes and reads runs through database/sql. Both the sqlite
// and pgx drivers are registered; Driver selects between them.
type Store struct {
	db     *sql.DB
	driver string
	logger *slog.Logger
}

// Open connects to the configured database. driver is "sqlite" or
// "pgx".
func Open(driver, dsn string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, common.WrapError(err, "opening history database")
	}
	return &Store{db: db, driver: driver, logger: logger}, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	started_at TIMESTAMP NOT NULL,
	finished_at TIMESTAMP NOT NULL,
	job_profile TEXT NOT NULL,
	ranked_count INTEGER NOT NULL,
	excluded_count INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS run_results (
	run_id TEXT NOT NULL REFERENCES runs(id),
	rank INTEGER NOT NULL,
	document TEXT NOT NULL,
	first_name TEXT NOT NULL DEFAULT '',
	last_name TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL DEFAULT '',
	phone TEXT NOT NULL DEFAULT '',
	score REAL NOT NULL,
	matching_points TEXT NOT NULL DEFAULT '',
	degraded INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (run_id, rank)
);
CREATE TABLE IF NOT EXISTS run_exclusions (
	run_id TEXT NOT NULL REFERENCES runs(id),
	document TEXT NOT NULL,
	stage TEXT NOT NULL,
	reason TEXT NOT NULL DEFAULT ''
);
`

// InitSchema creates the tables if they are missing.
func (s *Store) InitSchema(ctx context.Context) error {
	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return common.WrapError(err, "creating history schema")
		}
	}
	return nil
}

// SaveRun stores a finished run, its ranked rows, and its exclusions
// in one transaction.
func (s *Store) SaveRun(ctx context.Context, run *pipeline.RunResult) error {
	start := time.Now()

	jobJSON, err := json.Marshal(run.Job)
	if err != nil {
		return common.WrapError(err, "encoding job profile")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return common.WrapError(err, "starting history transaction")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, s.rebind(
		`INSERT INTO runs (id, started_at, finished_at, job_profile, ranked_count, excluded_count) VALUES (?, ?, ?, ?, ?, ?)`),
		run.ID.String(), run.StartedAt.UTC(), run.FinishedAt.UTC(), string(jobJSON), len(run.Results), len(run.Excluded))
	if err != nil {
		return common.WrapError(err, "inserting run")
	}

	for i := range run.Results {
		r := &run.Results[i]
		_, err = tx.ExecContext(ctx, s.rebind(
			`INSERT INTO run_results (run_id, rank, document, first_name, last_name, email, phone, score, matching_points, degraded) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
			run.ID.String(), i+1, r.Document,
			r.Candidate.FirstName, r.Candidate.LastName, r.Candidate.Email, r.Candidate.Phone,
			r.Score, strings.Join(r.Points, "; "), boolToInt(r.Degraded))
		if err != nil {
			return common.WrapError(err, "inserting run result")
		}
	}

	for _, ex := range run.Excluded {
		_, err = tx.ExecContext(ctx, s.rebind(
			`INSERT INTO run_exclusions (run_id, document, stage, reason) VALUES (?, ?, ?, ?)`),
			run.ID.String(), ex.Document, string(ex.Stage), ex.Reason)
		if err != nil {
			return common.WrapError(err, "inserting run exclusion")
		}
	}

	if err := tx.Commit(); err != nil {
		return common.WrapError(err, "committing run")
	}

	s.logger.Info("history.save.ok",
		"run_id", run.ID.String(),
		"ranked", len(run.Results),
		"excluded", len(run.Excluded),
		"elapsed_ms", time.Since(start).Milliseconds())
	return nil
}

// ListRuns returns stored runs, most recent first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT id, started_at, finished_at, ranked_count, excluded_count FROM runs ORDER BY started_at DESC LIMIT ?`), limit)
	if err != nil {
		return nil, common.WrapError(err, "listing runs")
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var (
			id string
			rs RunSummary
		)
		if err := rows.Scan(&id, &rs.StartedAt, &rs.FinishedAt, &rs.Ranked, &rs.Excluded); err != nil {
			return nil, common.WrapError(err, "scanning run row")
		}
		rs.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, common.WrapError(err, "parsing stored run id")
		}
		out = append(out, rs)
	}
	return out, rows.Err()
}

// GetRun reloads one stored run, including its ranking and exclusions.
func (s *Store) GetRun(ctx context.Context, id uuid.UUID) (*pipeline.RunResult, error) {
	run := &pipeline.RunResult{ID: id}

	var jobJSON string
	err := s.db.QueryRowContext(ctx, s.rebind(
		`SELECT started_at, finished_at, job_profile FROM runs WHERE id = ?`), id.String()).
		Scan(&run.StartedAt, &run.FinishedAt, &jobJSON)
	if err == sql.ErrNoRows {
		return nil, common.NewAppError("NOT_FOUND", fmt.Sprintf("run %s", id), common.ErrNotFound)
	}
	if err != nil {
		return nil, common.WrapError(err, "loading run")
	}
	if err := json.Unmarshal([]byte(jobJSON), &run.Job); err != nil {
		return nil, common.WrapError(err, "decoding stored job profile")
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT document, first_name, last_name, email, phone, score, matching_points, degraded FROM run_results WHERE run_id = ? ORDER BY rank`), id.String())
	if err != nil {
		return nil, common.WrapError(err, "loading run results")
	}
	defer rows.Close()
	for rows.Next() {
		var (
			r        pipeline.CandidateResult
			points   string
			degraded int
		)
		if err := rows.Scan(&r.Document, &r.Candidate.FirstName, &r.Candidate.LastName,
			&r.Candidate.Email, &r.Candidate.Phone, &r.Score, &points, &degraded); err != nil {
			return nil, common.WrapError(err, "scanning result row")
		}
		if points != "" {
			r.Points = strings.Split(points, "; ")
		} else {
			r.Points = []string{}
		}
		r.Degraded = degraded != 0
		run.Results = append(run.Results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	exRows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT document, stage, reason FROM run_exclusions WHERE run_id = ? ORDER BY document`), id.String())
	if err != nil {
		return nil, common.WrapError(err, "loading run exclusions")
	}
	defer exRows.Close()
	for exRows.Next() {
		var ex pipeline.Exclusion
		var stage string
		if err := exRows.Scan(&ex.Document, &stage, &ex.Reason); err != nil {
			return nil, common.WrapError(err, "scanning exclusion row")
		}
		ex.Stage = constants.DocStage(stage)
		run.Excluded = append(run.Excluded, ex)
	}
	return run, exRows.Err()
}

// rebind rewrites ? placeholders to $N for the pgx driver. The sqlite
// driver takes ? as-is.
func (s *Store) rebind(query string) string {
	if s.driver != "pgx" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
