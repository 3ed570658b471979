// Package export renders a finished screening run as CSV or XLSX.
package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/cv-screener/internal/pipeline"
)

// columns defines the CSV header row. The order matches the ranking
// report consumed downstream; changing it is a breaking change.
var columns = []string{
	"first_name",
	"last_name",
	"email",
	"phone",
	"score",
	"matching_points",
}

// Writer wraps csv.Writer for exporting ranked results as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteResults writes one row per ranked candidate, in ranking order.
func (w *Writer) WriteResults(results []pipeline.CandidateResult) error {
	for i := range results {
		if err := w.csv.Write(resultToRow(&results[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// WriteRun writes the full report: header plus every ranked row.
func WriteRun(w io.Writer, run *pipeline.RunResult) error {
	cw := NewWriter(w)
	if err := cw.WriteHeader(); err != nil {
		return err
	}
	if err := cw.WriteResults(run.Results); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

func resultToRow(r *pipeline.CandidateResult) []string {
	row := make([]string, len(columns))
	row[0] = r.Candidate.FirstName
	row[1] = r.Candidate.LastName
	row[2] = r.Candidate.Email
	row[3] = r.Candidate.Phone
	row[4] = formatScore(r.Score)
	row[5] = strings.Join(r.Points, "; ")
	return row
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
