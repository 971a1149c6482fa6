package core

import (
	"fmt"
	"io"
	"strings"
)

// DefaultPreviewLimit is how many records the on-screen preview shows.
const DefaultPreviewLimit = 100

// ReportFileName is the download name of the delimited export.
const ReportFileName = "differences.csv"

// reportHeader is the first line of every delimited export.
var reportHeader = []string{"file_name", "tab_name", "cell_reference", "value"}

// Report wraps the ordered result of one comparison run.
type Report struct {
	records []Difference
}

// Summary is the headline state of a report.
type Summary struct {
	Count     int    `json:"count"`
	Identical bool   `json:"identical"`
	Message   string `json:"message"`
}

// Preview is a bounded, order-preserving slice of a report for display.
type Preview struct {
	Records   []Difference `json:"records"`
	Shown     int          `json:"shown"`
	Total     int          `json:"total"`
	Truncated bool         `json:"truncated"`
}

// NewReport wraps diffs. The slice is owned by the report afterwards.
func NewReport(diffs []Difference) *Report {
	return &Report{records: diffs}
}

// Len returns the number of difference records.
func (r *Report) Len() int {
	if r == nil {
		return 0
	}
	return len(r.records)
}

// Records returns a copy of all records in order.
func (r *Report) Records() []Difference {
	if r == nil {
		return nil
	}
	out := make([]Difference, len(r.records))
	copy(out, r.records)
	return out
}

// Summary reports the count and a human-readable state line.
func (r *Report) Summary() Summary {
	n := r.Len()
	if n == 0 {
		return Summary{Identical: true, Message: "No differences found!"}
	}
	return Summary{Count: n, Message: fmt.Sprintf("%d difference(s) found", n)}
}

// Preview returns at most limit records. A limit <= 0 means
// DefaultPreviewLimit.
func (r *Report) Preview(limit int) Preview {
	if limit <= 0 {
		limit = DefaultPreviewLimit
	}
	total := r.Len()
	shown := min(limit, total)

	return Preview{
		Records:   r.Records()[:shown],
		Shown:     shown,
		Total:     total,
		Truncated: total > shown,
	}
}

// DelimitedText serializes every record (not just the preview) as
// comma-separated text with a header line and '\n' line endings.
func (r *Report) DelimitedText() string {
	var b strings.Builder
	// strings.Builder writes cannot fail.
	_ = r.WriteDelimited(&b)
	return b.String()
}

// WriteDelimited streams the DelimitedText form of the report to w.
func (r *Report) WriteDelimited(w io.Writer) error {
	if err := writeDelimitedLine(w, reportHeader); err != nil {
		return err
	}
	if r == nil {
		return nil
	}
	for _, d := range r.records {
		line := []string{d.FileName, d.TabName, d.CellReference, d.Value}
		if err := writeDelimitedLine(w, line); err != nil {
			return err
		}
	}
	return nil
}

func writeDelimitedLine(w io.Writer, fields []string) error {
	escaped := make([]string, len(fields))
	for i, f := range fields {
		escaped[i] = escapeField(f)
	}
	_, err := io.WriteString(w, strings.Join(escaped, ",")+"\n")
	return err
}

// escapeField quotes f only when it contains a comma, a double quote or a
// newline. Embedded quotes are doubled.
func escapeField(f string) string {
	if !strings.ContainsAny(f, ",\"\n") {
		return f
	}
	return `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
}
