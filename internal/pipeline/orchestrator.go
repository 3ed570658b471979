package pipeline

import (
	"context"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/cv-screener/constants"
	"github.com/joseph-ayodele/cv-screener/internal/common"
	"github.com/joseph-ayodele/cv-screener/internal/contacts"
	"github.com/joseph-ayodele/cv-screener/internal/judge"
)

// Extractor pulls plain text out of a document on disk.
type Extractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// Cache is the extraction cache consulted before running an extractor.
// A miss is not an error.
type Cache interface {
	Get(path string) (string, bool, error)
	Put(path, text string) error
}

// Orchestrator runs one screening pass: extract every document, judge
// it against the job profile, and rank the outcomes. Failures are
// isolated per document; one bad CV never aborts the run.
type Orchestrator struct {
	Logger     *slog.Logger
	Cache      Cache
	Extractor  Extractor
	Judge      judge.Judge
	Workers    int
	DocTimeout time.Duration
}

type outcome struct {
	result    *CandidateResult
	exclusion *Exclusion
}

// Run screens docs against jobText and returns the ranked result set.
// Source files are deleted after processing, including documents that
// end up excluded. The returned error covers run-level setup only;
// per-document failures land in Excluded.
func (o *Orchestrator) Run(ctx context.Context, docs []Document, jobText string) (*RunResult, error) {
	logger := o.Logger
	if logger == nil {
		logger = slog.Default()
	}
	workers := o.Workers
	if workers <= 0 {
		workers = common.DefaultWorkers()
	}

	run := &RunResult{ID: uuid.New(), StartedAt: time.Now()}

	job, err := o.Judge.ParseJob(ctx, jobText)
	if err != nil {
		logger.Warn("job description parsing degraded", "error", err)
	}
	run.Job = job

	jobs := make(chan Document)
	outcomes := make(chan outcome)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for doc := range jobs {
				outcomes <- o.process(ctx, logger, doc, job)
			}
		}()
	}
	go func() {
		wg.Wait()
		close(outcomes)
	}()

	go func() {
		defer close(jobs)
		for _, doc := range docs {
			select {
			case jobs <- doc:
			case <-ctx.Done():
				return
			}
		}
	}()

	for out := range outcomes {
		if out.result != nil {
			run.Results = append(run.Results, *out.result)
		}
		if out.exclusion != nil {
			run.Excluded = append(run.Excluded, *out.exclusion)
		}
	}

	// Restore discovery order first so that the stable sort below
	// breaks score ties deterministically.
	sort.Slice(run.Results, func(i, j int) bool { return run.Results[i].index < run.Results[j].index })
	sort.SliceStable(run.Results, func(i, j int) bool { return run.Results[i].Score > run.Results[j].Score })
	sort.Slice(run.Excluded, func(i, j int) bool { return run.Excluded[i].Document < run.Excluded[j].Document })

	run.FinishedAt = time.Now()
	logger.Info("screening run finished",
		"run_id", run.ID.String(),
		"ranked", len(run.Results),
		"excluded", len(run.Excluded),
		"elapsed_ms", run.FinishedAt.Sub(run.StartedAt).Milliseconds())
	return run, nil
}

func (o *Orchestrator) process(ctx context.Context, logger *slog.Logger, doc Document, job judge.JobProfile) outcome {
	if o.DocTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.DocTimeout)
		defer cancel()
	}

	text, err := o.extractText(ctx, logger, doc.Path)
	o.removeSource(logger, doc.Path)
	if err != nil {
		logger.Error("extraction failed", "path", doc.Path, "error", err)
		return outcome{exclusion: &Exclusion{Document: doc.Path, Stage: constants.StageExtracting, Reason: err.Error()}}
	}
	if strings.TrimSpace(text) == "" {
		logger.Warn("document yielded no text", "path", doc.Path)
		return outcome{exclusion: &Exclusion{Document: doc.Path, Stage: constants.StageExtracted, Reason: "no extractable text"}}
	}

	hints := contacts.Parse(text)

	degraded := false
	cand, err := o.Judge.ParseCandidate(ctx, text, hints)
	if err != nil {
		logger.Warn("candidate parsing degraded", "path", doc.Path, "error", err)
		degraded = true
	}

	score, err := o.Judge.Score(ctx, cand, job)
	if err != nil {
		logger.Warn("scoring degraded", "path", doc.Path, "error", err)
		degraded = true
	}

	return outcome{result: &CandidateResult{
		Document:  doc.Path,
		Candidate: cand,
		Score:     score.Score,
		Points:    score.MatchingPoints,
		Degraded:  degraded,
		index:     doc.Index,
	}}
}

func (o *Orchestrator) extractText(ctx context.Context, logger *slog.Logger, path string) (string, error) {
	if o.Cache != nil {
		if text, ok, err := o.Cache.Get(path); err != nil {
			logger.Warn("cache lookup failed", "path", path, "error", err)
		} else if ok {
			logger.Debug("extraction cache hit", "path", path)
			return text, nil
		}
	}

	text, err := o.Extractor.Extract(ctx, path)
	if err != nil {
		return "", err
	}
	if o.Cache != nil {
		if err := o.Cache.Put(path, text); err != nil {
			logger.Warn("cache write failed", "path", path, "error", err)
		}
	}
	return text, nil
}

func (o *Orchestrator) removeSource(logger *slog.Logger, path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Warn("could not delete processed document", "path", path, "error", err)
	}
}
