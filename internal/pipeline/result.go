package pipeline

import (
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/cv-screener/constants"
	"github.com/joseph-ayodele/cv-screener/internal/judge"
)

// Document is one discovered CV file. The index records discovery
// order, which breaks ranking ties.
type Document struct {
	Path  string
	Index int
}

// CandidateResult is one ranked entry: the structured candidate record
// plus its relevance verdict. Degraded verdicts (zero score after a
// judge failure) are still results; only extraction failures exclude.
type CandidateResult struct {
	Document  string
	Candidate judge.CandidateProfile
	Score     float64
	Points    []string
	Degraded  bool // scoring or fact extraction fell back to defaults

	index int
}

// Exclusion records a document left out of the ranking, with the stage
// it failed at. Excluded sources are still deleted from the inbox.
type Exclusion struct {
	Document string
	Stage    constants.DocStage
	Reason   string
}

// RunResult is the handle for one completed run. Exporters and the
// history store consume it directly; there is no process-wide
// "latest results" state.
type RunResult struct {
	ID         uuid.UUID
	StartedAt  time.Time
	FinishedAt time.Time
	Job        judge.JobProfile
	Results    []CandidateResult // sorted by score descending, ties in discovery order
	Excluded   []Exclusion
}
