package openai

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/joseph-ayodele/cv-screener/internal/contacts"
	"github.com/joseph-ayodele/cv-screener/internal/judge"
)

const (
	candidateSystemPrompt = "You are an expert HR parser. Extract structured JSON from CV text exactly as written. Do NOT assume, infer, or exaggerate."
	jobSystemPrompt       = "You are an expert HR parser. Extract structured JSON from job descriptions exactly as written. Do NOT add requirements that are not explicitly mentioned."
	scoreSystemPrompt     = "You are an expert HR scorer. Base your judgment only on the data explicitly provided."
)

const (
	maxCVChars  = 8000
	maxJobChars = 4000
)

func buildCandidatePrompt(cvText string, hints contacts.Hints) string {
	parts := []string{
		"Extract structured JSON from this CV text. Only extract what is explicitly present.",
		fmt.Sprintf("Use the emails %v and phones %v as hints, but do NOT add new ones.", hints.Emails, hints.Phones),
		fmt.Sprintf("If a job, education, certification, or project has \"present\" as the end date, use today's date (%s) to calculate durations.", today()),
		`Return JSON with the fields: {"first_name": string, "last_name": string, "email": string or null, "phone": string or null, "skills": [string, ...], "years_experience": number or null, "companies": [string, ...], "languages": [string, ...], "certifications": [string, ...], "education": [{"institution": string, "degree": string, "start_date": string, "end_date": string or null}]}.`,
		"If a field is not present in the CV, leave it null or an empty array. Do NOT guess.",
		"Return ONLY JSON, no explanation.",
		"CV TEXT:\n\"\"\"" + clip(cvText, maxCVChars) + "\"\"\"",
	}
	return strings.Join(parts, " ")
}

func buildJobPrompt(jobText string) string {
	parts := []string{
		"Extract structured JSON from this job description exactly as written.",
		fmt.Sprintf("Use today's date (%s) wherever \"present\" or ongoing durations appear.", today()),
		`Return JSON with the fields: {"skills_required": [string, ...], "years_required": number or null, "languages_required": [string, ...], "certifications_required": [string, ...]}.`,
		"If a field is not present in the job description, leave it null or an empty array. Do NOT guess.",
		"Return ONLY JSON, no explanation.",
		"Job Description:\n\"\"\"" + clip(jobText, maxJobChars) + "\"\"\"",
	}
	return strings.Join(parts, " ")
}

func buildScorePrompt(candidate judge.CandidateProfile, job judge.JobProfile) (string, error) {
	cb, err := json.Marshal(candidate)
	if err != nil {
		return "", fmt.Errorf("marshal candidate: %w", err)
	}
	jb, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("marshal job: %w", err)
	}
	parts := []string{
		"Given a candidate and a job description, compute a relevance score from 0 to 100.",
		"Base your score only on the data explicitly present in the Candidate JSON and Job JSON. Consider partial matches and synonyms, not exact string matches.",
		fmt.Sprintf("Use today's date (%s) wherever \"present\" or ongoing durations appear.", today()),
		"Candidate JSON: " + string(cb),
		"Job JSON: " + string(jb),
		`Return JSON with the fields: {"score": number, "matching_points": [string, ...]}.`,
		"Guidelines:",
		"1. Skills matching is the most important factor; partial matches count.",
		"2. Education influences the score after skills.",
		"3. Years of experience influence the score proportionally, only if explicitly stated.",
		"4. Consider languages, certifications, and companies only if present.",
		"5. Put the strongest reasons this candidate fits in 'matching_points'; do NOT add achievements that are not in the data.",
		"6. Return ONLY JSON, no explanation.",
	}
	return strings.Join(parts, " "), nil
}

func today() string {
	return time.Now().Format("2006-01-02")
}

// clip truncates s to at most max bytes without splitting a rune.
func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
