package entity

import (
	"github.com/joseph-ayodele/invoice-auditor/constants"
)

// MismatchEntry is one field the judge found different.
type MismatchEntry struct {
	Field    string `json:"field"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
}

// Verdict is the normalized result of comparing one extracted record to its ground truth.
// Kind is empty for a clean Pass or itemized Mismatch.
type Verdict struct {
	Invoice    string                  `json:"invoice"`
	Status     constants.VerdictStatus `json:"overall_status,omitempty"`
	Mismatches []MismatchEntry         `json:"mismatches,omitempty"`
	Kind       constants.FailureKind   `json:"kind,omitempty"`
	Detail     string                  `json:"detail,omitempty"`
}

// Passed reports a clean Pass.
func (v Verdict) Passed() bool {
	return v.Kind == constants.KindNone && v.Status == constants.StatusPass
}

// ReportRow is one line of the evaluation report.
type ReportRow struct {
	Invoice       string `json:"invoice"`
	OverallStatus string `json:"overall_status"`
	Field         string `json:"field"`
	Expected      string `json:"expected"`
	Actual        string `json:"actual"`
}

// Cells returns the row in column order.
func (r ReportRow) Cells() []string {
	return []string{r.Invoice, r.OverallStatus, r.Field, r.Expected, r.Actual}
}
