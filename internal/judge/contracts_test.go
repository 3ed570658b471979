package judge

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joseph-ayodele/cv-screener/internal/contacts"
)

func TestApplyHintsFillsOmittedFields(t *testing.T) {
	hints := contacts.Hints{
		Emails:    []string{"hint@example.com", "second@example.com"},
		Phones:    []string{"+1 555 123 4567"},
		FirstName: "Jane",
		LastName:  "Doe",
	}
	p := CandidateProfile{}
	ApplyHints(&p, hints)

	assert.Equal(t, "Jane", p.FirstName)
	assert.Equal(t, "Doe", p.LastName)
	assert.Equal(t, "hint@example.com", p.Email, "first hint by appearance order")
	assert.Equal(t, "+1 555 123 4567", p.Phone)
}

func TestApplyHintsNeverOverridesJudgeOutput(t *testing.T) {
	hints := contacts.Hints{
		Emails:    []string{"hint@example.com"},
		FirstName: "Wrong",
	}
	p := CandidateProfile{FirstName: "Jane", Email: "explicit@example.com"}
	ApplyHints(&p, hints)

	assert.Equal(t, "Jane", p.FirstName)
	assert.Equal(t, "explicit@example.com", p.Email)
}

func TestApplyHintsDoesNotFabricate(t *testing.T) {
	p := CandidateProfile{}
	ApplyHints(&p, contacts.Hints{})

	assert.Empty(t, p.Email)
	assert.Empty(t, p.Phone)
	assert.Empty(t, p.FirstName)
}

func TestHintProfileSentinels(t *testing.T) {
	p := HintProfile(contacts.Hints{Emails: []string{"a@b.co"}})
	assert.Equal(t, "a@b.co", p.Email)
	assert.Nil(t, p.YearsExperience, "unknown experience stays absent, never zero")
	assert.NotNil(t, p.Skills)
	assert.Empty(t, p.Skills)
}

func TestZeroScoreIsValidResult(t *testing.T) {
	s := ZeroScore()
	assert.Zero(t, s.Score)
	assert.NotNil(t, s.MatchingPoints)
}
