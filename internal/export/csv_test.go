package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/cv-screener/internal/judge"
	"github.com/joseph-ayodele/cv-screener/internal/pipeline"
)

func sampleRun() *pipeline.RunResult {
	return &pipeline.RunResult{
		Results: []pipeline.CandidateResult{
			{
				Candidate: judge.CandidateProfile{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Phone: "+44 20 7946 0958"},
				Score:     92.5,
				Points:    []string{"10y experience", "Go", "distributed systems"},
			},
			{
				Candidate: judge.CandidateProfile{FirstName: "Grace", LastName: "Hopper"},
				Score:     80,
				Points:    []string{},
			},
		},
	}
}

func TestWriteRunLayout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRun(&buf, sampleRun()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"first_name", "last_name", "email", "phone", "score", "matching_points"}, rows[0])
	assert.Equal(t, []string{"Ada", "Lovelace", "ada@example.com", "+44 20 7946 0958", "92.5", "10y experience; Go; distributed systems"}, rows[1])
	assert.Equal(t, []string{"Grace", "Hopper", "", "", "80", ""}, rows[2])
}

func TestWriteRunEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRun(&buf, &pipeline.RunResult{}))

	out := strings.TrimSpace(buf.String())
	assert.Equal(t, "first_name,last_name,email,phone,score,matching_points", out)
}

func TestFormatScoreTrimsTrailingZeros(t *testing.T) {
	assert.Equal(t, "87", formatScore(87))
	assert.Equal(t, "87.5", formatScore(87.5))
	assert.Equal(t, "0", formatScore(0))
}

func TestRankingXLSX(t *testing.T) {
	data, err := RankingXLSX(sampleRun(), nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Ranking")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Rank", rows[0][0])
	assert.Equal(t, "1", rows[1][0])
	assert.Equal(t, "Ada", rows[1][1])
	assert.Equal(t, "2", rows[2][0])
	assert.Equal(t, "Grace", rows[2][1])
}
