package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/cv-screener/constants"
	"github.com/joseph-ayodele/cv-screener/internal/common"
	"github.com/joseph-ayodele/cv-screener/internal/judge"
	"github.com/joseph-ayodele/cv-screener/internal/pipeline"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open("sqlite", filepath.Join(t.TempDir(), "history.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.InitSchema(context.Background()))
	return store
}

func storedRun() *pipeline.RunResult {
	years := 7.0
	return &pipeline.RunResult{
		ID:         uuid.New(),
		StartedAt:  time.Now().Add(-time.Minute).UTC().Truncate(time.Second),
		FinishedAt: time.Now().UTC().Truncate(time.Second),
		Job: judge.JobProfile{
			SkillsRequired: []string{"go", "postgres"},
			YearsRequired:  &years,
		},
		Results: []pipeline.CandidateResult{
			{
				Document:  "cvs/ada.pdf",
				Candidate: judge.CandidateProfile{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"},
				Score:     92.5,
				Points:    []string{"go", "10y experience"},
			},
			{
				Document: "cvs/grace.pdf",
				Candidate: judge.CandidateProfile{
					FirstName: "Grace", LastName: "Hopper", Phone: "+1 555 0100",
				},
				Score:    70,
				Points:   []string{},
				Degraded: true,
			},
		},
		Excluded: []pipeline.Exclusion{
			{Document: "cvs/blank.pdf", Stage: constants.StageExtracted, Reason: "no extractable text"},
		},
	}
}

func TestSaveAndGetRunRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	run := storedRun()
	require.NoError(t, store.SaveRun(ctx, run))

	got, err := store.GetRun(ctx, run.ID)
	require.NoError(t, err)

	assert.Equal(t, run.Job.SkillsRequired, got.Job.SkillsRequired)
	require.NotNil(t, got.Job.YearsRequired)
	assert.Equal(t, 7.0, *got.Job.YearsRequired)

	require.Len(t, got.Results, 2)
	assert.Equal(t, "cvs/ada.pdf", got.Results[0].Document)
	assert.Equal(t, 92.5, got.Results[0].Score)
	assert.Equal(t, []string{"go", "10y experience"}, got.Results[0].Points)
	assert.False(t, got.Results[0].Degraded)
	assert.Equal(t, []string{}, got.Results[1].Points)
	assert.True(t, got.Results[1].Degraded)
	assert.Equal(t, "+1 555 0100", got.Results[1].Candidate.Phone)

	require.Len(t, got.Excluded, 1)
	assert.Equal(t, constants.StageExtracted, got.Excluded[0].Stage)
	assert.Equal(t, "no extractable text", got.Excluded[0].Reason)
}

func TestGetRunNotFound(t *testing.T) {
	store := openTestStore(t)

	_, err := store.GetRun(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestListRunsNewestFirst(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	older := storedRun()
	older.StartedAt = time.Now().Add(-2 * time.Hour).UTC().Truncate(time.Second)
	newer := storedRun()
	newer.StartedAt = time.Now().Add(-time.Hour).UTC().Truncate(time.Second)
	require.NoError(t, store.SaveRun(ctx, older))
	require.NoError(t, store.SaveRun(ctx, newer))

	runs, err := store.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, newer.ID, runs[0].ID)
	assert.Equal(t, older.ID, runs[1].ID)
	assert.Equal(t, 2, runs[0].Ranked)
	assert.Equal(t, 1, runs[0].Excluded)
}

func TestInitSchemaIdempotent(t *testing.T) {
	store := openTestStore(t)
	assert.NoError(t, store.InitSchema(context.Background()))
}

func TestRebindForPostgres(t *testing.T) {
	s := &Store{driver: "pgx"}
	assert.Equal(t, "INSERT INTO t (a, b) VALUES ($1, $2)", s.rebind("INSERT INTO t (a, b) VALUES (?, ?)"))

	s.driver = "sqlite"
	assert.Equal(t, "SELECT * FROM t WHERE a = ?", s.rebind("SELECT * FROM t WHERE a = ?"))
}
