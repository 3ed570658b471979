// Package judge defines the boundary to the external semantic service
// that extracts structured facts from CV and job-description text and
// scores their match. Every operation degrades to a usable default on
// service failure; the pipeline never aborts a document because the
// judge misbehaved.
package judge

import (
	"context"

	"github.com/joseph-ayodele/cv-screener/internal/contacts"
)

// Education is one education entry in a candidate profile.
type Education struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date,omitempty"`
}

// CandidateProfile is the normalized structured record for one CV.
// YearsExperience is nil when the CV does not state it; the zero
// sentinel is never fabricated.
type CandidateProfile struct {
	FirstName       string      `json:"first_name"`
	LastName        string      `json:"last_name"`
	Email           string      `json:"email,omitempty"`
	Phone           string      `json:"phone,omitempty"`
	Skills          []string    `json:"skills"`
	YearsExperience *float64    `json:"years_experience,omitempty"`
	Companies       []string    `json:"companies"`
	Languages       []string    `json:"languages"`
	Certifications  []string    `json:"certifications"`
	Education       []Education `json:"education"`
}

// JobProfile is the structured record parsed once per run from the
// reference job description and shared read-only by all scoring tasks.
type JobProfile struct {
	SkillsRequired         []string `json:"skills_required"`
	YearsRequired          *float64 `json:"years_required,omitempty"`
	LanguagesRequired      []string `json:"languages_required"`
	CertificationsRequired []string `json:"certifications_required"`
}

// MatchScore is the relevance verdict for one candidate against a job.
type MatchScore struct {
	Score          float64  `json:"score"`
	MatchingPoints []string `json:"matching_points"`
}

// Judge is the interface the pipeline depends on. Implementations
// return their degraded default together with a non-nil error on
// service failure, so callers can log the reason and keep the value.
type Judge interface {
	ParseCandidate(ctx context.Context, cvText string, hints contacts.Hints) (CandidateProfile, error)
	ParseJob(ctx context.Context, jobText string) (JobProfile, error)
	Score(ctx context.Context, candidate CandidateProfile, job JobProfile) (MatchScore, error)
}

// HintProfile builds the degraded, hint-only candidate record used when
// fact extraction fails entirely.
func HintProfile(hints contacts.Hints) CandidateProfile {
	p := CandidateProfile{
		FirstName:      hints.FirstName,
		LastName:       hints.LastName,
		Skills:         []string{},
		Companies:      []string{},
		Languages:      []string{},
		Certifications: []string{},
		Education:      []Education{},
	}
	if len(hints.Emails) > 0 {
		p.Email = hints.Emails[0]
	}
	if len(hints.Phones) > 0 {
		p.Phone = hints.Phones[0]
	}
	return p
}

// EmptyJobProfile is the degraded job record: empty requirements, nil
// years.
func EmptyJobProfile() JobProfile {
	return JobProfile{
		SkillsRequired:         []string{},
		LanguagesRequired:      []string{},
		CertificationsRequired: []string{},
	}
}

// ZeroScore is the degraded scoring verdict. It is a valid result and
// does not exclude the candidate from the ranking.
func ZeroScore() MatchScore {
	return MatchScore{Score: 0, MatchingPoints: []string{}}
}

// ApplyHints back-fills fields the judge omitted from the structural
// hints. Explicit judge output always wins; hints never override it,
// and nothing absent from both is fabricated.
func ApplyHints(p *CandidateProfile, hints contacts.Hints) {
	if p.FirstName == "" {
		p.FirstName = hints.FirstName
	}
	if p.LastName == "" {
		p.LastName = hints.LastName
	}
	if p.Email == "" && len(hints.Emails) > 0 {
		p.Email = hints.Emails[0]
	}
	if p.Phone == "" && len(hints.Phones) > 0 {
		p.Phone = hints.Phones[0]
	}
}
