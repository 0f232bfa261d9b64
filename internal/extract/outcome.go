// Package extract turns routed invoice files into structured JSON records.
package extract

import (
	"github.com/joseph-ayodele/invoice-auditor/constants"
	"github.com/joseph-ayodele/invoice-auditor/internal/entity"
)

// Outcome is the terminal disposition of one file: Extracted (record written to OutputPath),
// Skipped (output already present) or Failed (source moved to ErrorPath).
type Outcome struct {
	File       string
	Base       string
	Status     constants.Outcome
	Record     entity.Record
	OutputPath string
	ErrorPath  string
	Kind       constants.FailureKind
	Err        error
}

func (o Outcome) Failed() bool { return o.Status == constants.OutcomeFailed }

// Summary aggregates an extraction batch.
type Summary struct {
	Extracted int
	Skipped   int
	Failed    int
	Outcomes  []Outcome
}

func (s *Summary) add(o Outcome) {
	switch o.Status {
	case constants.OutcomeExtracted:
		s.Extracted++
	case constants.OutcomeSkipped:
		s.Skipped++
	default:
		s.Failed++
	}
	s.Outcomes = append(s.Outcomes, o)
}
