// Package report holds audit results and renders them.
package report

import (
	"time"

	"github.com/GriffinCanCode/seolint/internal/rule"
	"github.com/oklog/ulid/v2"
)

// Finding is one defect reported by one rule.
type Finding struct {
	Rule   string `json:"rule"`
	Defect string `json:"defect"`
}

// Report is the audit result for one document.
type Report struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	CheckedAt time.Time `json:"checked_at"`
	Findings  []Finding `json:"findings"`
	Error     string    `json:"error,omitempty"`
}

// New starts an empty report for source.
func New(source string) *Report {
	return &Report{
		ID:        ulid.Make().String(),
		Source:    source,
		CheckedAt: time.Now().UTC(),
		Findings:  []Finding{},
	}
}

// Failed creates a report for a document that could not be checked.
func Failed(source string, err error) *Report {
	r := New(source)
	r.Error = err.Error()
	return r
}

// Add records res under ruleName when it carries a defect.
func (r *Report) Add(ruleName string, res rule.Result) {
	if res.Passed() {
		return
	}
	r.Findings = append(r.Findings, Finding{Rule: ruleName, Defect: res.Defect})
}

// Clean reports whether the document was checked and had no defects.
func (r *Report) Clean() bool {
	return r.Error == "" && len(r.Findings) == 0
}

// Status is "clean", "defects" or "error".
func (r *Report) Status() string {
	switch {
	case r.Error != "":
		return "error"
	case len(r.Findings) > 0:
		return "defects"
	default:
		return "clean"
	}
}

// Summary totals a batch of reports.
type Summary struct {
	Documents int `json:"documents"`
	Clean     int `json:"clean"`
	Errors    int `json:"errors"`
	Defects   int `json:"defects"`
}

// Summarize totals reports.
func Summarize(reports []*Report) Summary {
	var s Summary
	for _, r := range reports {
		s.Documents++
		s.Defects += len(r.Findings)
		switch r.Status() {
		case "error":
			s.Errors++
		case "clean":
			s.Clean++
		}
	}
	return s
}
