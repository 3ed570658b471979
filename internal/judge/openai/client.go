package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/cv-screener/internal/contacts"
	"github.com/joseph-ayodele/cv-screener/internal/judge"
)

// ParseCandidate implements judge.Judge via text-only chat/completions.
// On any service failure (network, non-2xx, no parsable JSON object,
// schema violation) it returns the hint-only degraded profile together
// with the error; the caller keeps the value.
func (c *Client) ParseCandidate(ctx context.Context, cvText string, hints contacts.Hints) (judge.CandidateProfile, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.logger.Info("judge.candidate.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"text_len", len(cvText),
		"hint_emails", len(hints.Emails),
		"hint_phones", len(hints.Phones),
	)

	schema := judge.BuildCandidateJSONSchema()
	raw, err := c.complete(ctx, candidateSystemPrompt, buildCandidatePrompt(cvText, hints))
	if err != nil {
		c.logger.Error("judge.candidate.failed", "req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return judge.HintProfile(hints), err
	}

	content, err := decodeAndValidate(raw, schema)
	if err != nil {
		c.logger.Error("judge.candidate.bad_response", "req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return judge.HintProfile(hints), err
	}

	var out judge.CandidateProfile
	if err := json.Unmarshal(content, &out); err != nil {
		c.logger.Error("judge.candidate.unmarshal_failed", "req_id", rid, "error", err)
		return judge.HintProfile(hints), fmt.Errorf("unmarshal candidate: %w", err)
	}
	judge.ApplyHints(&out, hints)

	c.logger.Info("judge.candidate.ok",
		"req_id", rid,
		"first_name", out.FirstName,
		"last_name", out.LastName,
		"skills", len(out.Skills),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

// ParseJob extracts the structured job record, defaulting to empty
// requirements on failure.
func (c *Client) ParseJob(ctx context.Context, jobText string) (judge.JobProfile, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.logger.Info("judge.job.start", "req_id", rid, "model", c.cfg.Model, "text_len", len(jobText))

	schema := judge.BuildJobJSONSchema()
	raw, err := c.complete(ctx, jobSystemPrompt, buildJobPrompt(jobText))
	if err != nil {
		c.logger.Error("judge.job.failed", "req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return judge.EmptyJobProfile(), err
	}

	content, err := decodeAndValidate(raw, schema)
	if err != nil {
		c.logger.Error("judge.job.bad_response", "req_id", rid, "error", err)
		return judge.EmptyJobProfile(), err
	}

	var out judge.JobProfile
	if err := json.Unmarshal(content, &out); err != nil {
		c.logger.Error("judge.job.unmarshal_failed", "req_id", rid, "error", err)
		return judge.EmptyJobProfile(), fmt.Errorf("unmarshal job: %w", err)
	}

	c.logger.Info("judge.job.ok", "req_id", rid,
		"skills_required", len(out.SkillsRequired),
		"elapsed_ms", time.Since(start).Milliseconds())
	return out, nil
}

// Score computes the relevance verdict. Failure degrades to score 0
// with no matching points, still a valid, rankable result.
func (c *Client) Score(ctx context.Context, candidate judge.CandidateProfile, job judge.JobProfile) (judge.MatchScore, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.logger.Info("judge.score.start", "req_id", rid, "model", c.cfg.Model)

	userPrompt, err := buildScorePrompt(candidate, job)
	if err != nil {
		return judge.ZeroScore(), err
	}

	schema := judge.BuildScoreJSONSchema()
	raw, err := c.complete(ctx, scoreSystemPrompt, userPrompt)
	if err != nil {
		c.logger.Error("judge.score.failed", "req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return judge.ZeroScore(), err
	}

	content, err := decodeAndValidate(raw, schema)
	if err != nil {
		c.logger.Error("judge.score.bad_response", "req_id", rid, "error", err)
		return judge.ZeroScore(), err
	}

	var out judge.MatchScore
	if err := json.Unmarshal(content, &out); err != nil {
		c.logger.Error("judge.score.unmarshal_failed", "req_id", rid, "error", err)
		return judge.ZeroScore(), fmt.Errorf("unmarshal score: %w", err)
	}
	if out.Score < 0 {
		out.Score = 0
	}
	if out.Score > 100 {
		out.Score = 100
	}
	if out.MatchingPoints == nil {
		out.MatchingPoints = []string{}
	}

	c.logger.Info("judge.score.ok", "req_id", rid,
		"score", out.Score,
		"matching_points", len(out.MatchingPoints),
		"elapsed_ms", time.Since(start).Milliseconds())
	return out, nil
}

// complete runs one chat-completions round trip and returns the
// assistant message content.
func (c *Client) complete(ctx context.Context, system, user string) (string, error) {
	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": system},
			{"role": "user", "content": user},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, err := c.post(ctx, endpoint, body)
	if err != nil {
		return "", err
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if len(cc.Choices) == 0 {
		return "", fmt.Errorf("no choices in chat response")
	}
	return strings.TrimSpace(cc.Choices[0].Message.Content), nil
}

func (c *Client) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("judge http error: %w", err)
	}
	defer func(body io.ReadCloser) {
		if cerr := body.Close(); cerr != nil {
			c.logger.Warn("judge response body close error", "error", cerr)
		}
	}(resp.Body)

	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("judge status %d: %s", resp.StatusCode, buf.String())
	}
	return buf.Bytes(), nil
}

// decodeAndValidate pulls the JSON object span out of the message
// content and checks it against the schema. Prose around the object is
// tolerated; an unparsable or invalid span is a service failure.
func decodeAndValidate(content string, schema map[string]any) ([]byte, error) {
	span, err := judge.ExtractJSONObject(content)
	if err != nil {
		return nil, err
	}
	if err := judge.ValidateJSONAgainstSchema(schema, span); err != nil {
		return nil, err
	}
	return span, nil
}
