package report

import (
	"log/slog"

	"github.com/joseph-ayodele/invoice-auditor/constants"
	"github.com/joseph-ayodele/invoice-auditor/internal/entity"
)

// Header is the report's column order.
var Header = []string{"Invoice", "Overall Status", "Field", "Expected", "Actual"}

const (
	unknownField   = "Unknown"
	degradedDetail = "model reported a mismatch but did not provide details"
)

// Counts tallies invoices (not rows) by report status.
type Counts struct {
	Pass     int
	Mismatch int
	Missing  int
	Error    int
}

// Total is the number of invoices seen.
func (c Counts) Total() int { return c.Pass + c.Mismatch + c.Missing + c.Error }

// Aggregator accumulates report rows in the order verdicts arrive.
// It is not safe for concurrent use.
type Aggregator struct {
	rows   []entity.ReportRow
	counts Counts
	logger *slog.Logger
}

func NewAggregator(logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{logger: logger}
}

// Add appends the rows for one verdict.
func (a *Aggregator) Add(v entity.Verdict) {
	rows := RowsFor(v)
	a.rows = append(a.rows, rows...)
	switch rows[0].OverallStatus {
	case constants.ReportPass:
		a.counts.Pass++
	case constants.ReportMismatch:
		a.counts.Mismatch++
	case constants.ReportMissingOutput:
		a.counts.Missing++
	default:
		a.counts.Error++
	}
}

// Rows returns a copy of the accumulated rows.
func (a *Aggregator) Rows() []entity.ReportRow {
	return append([]entity.ReportRow(nil), a.rows...)
}

// Table returns the header followed by every row as cells.
func (a *Aggregator) Table() [][]string {
	out := make([][]string, 0, len(a.rows)+1)
	out = append(out, append([]string(nil), Header...))
	for _, r := range a.rows {
		out = append(out, r.Cells())
	}
	return out
}

func (a *Aggregator) Counts() Counts { return a.counts }

// LogSummary writes the end-of-run tally.
func (a *Aggregator) LogSummary() {
	a.logger.Info("evaluate.run.summary",
		"invoices", a.counts.Total(),
		"pass", a.counts.Pass,
		"mismatch", a.counts.Mismatch,
		"missing", a.counts.Missing,
		"error", a.counts.Error,
		"rows", len(a.rows),
	)
}

// RowsFor renders one verdict: one row per mismatch entry, otherwise a single summary row.
func RowsFor(v entity.Verdict) []entity.ReportRow {
	row := func(status, field, expected, actual string) entity.ReportRow {
		return entity.ReportRow{Invoice: v.Invoice, OverallStatus: status, Field: field, Expected: expected, Actual: actual}
	}
	const p = constants.Placeholder

	switch v.Kind {
	case constants.KindNone:
	case constants.KindMissingOutput:
		return []entity.ReportRow{row(constants.ReportMissingOutput, p, p, p)}
	case constants.KindDegradedMismatch:
		return []entity.ReportRow{row(constants.ReportMismatch, unknownField, degradedDetail, p)}
	case constants.KindNoJSONSpan, constants.KindJSONSyntax:
		return []entity.ReportRow{row(constants.ReportError, "Invalid JSON Verdict", v.Detail, p)}
	case constants.KindInvalidStatus:
		return []entity.ReportRow{row(constants.ReportError, "Invalid Status", "model returned status: "+v.Detail, p)}
	case constants.KindInvalidOutput:
		return []entity.ReportRow{row(constants.ReportError, "Invalid Output", v.Detail, p)}
	default:
		return []entity.ReportRow{row(constants.ReportError, "API or other Error", v.Detail, p)}
	}

	if v.Status == constants.StatusMismatch && len(v.Mismatches) > 0 {
		rows := make([]entity.ReportRow, 0, len(v.Mismatches))
		for _, m := range v.Mismatches {
			rows = append(rows, row(constants.ReportMismatch, m.Field, m.Expected, m.Actual))
		}
		return rows
	}
	if v.Status == constants.StatusMismatch {
		return []entity.ReportRow{row(constants.ReportMismatch, unknownField, degradedDetail, p)}
	}
	return []entity.ReportRow{row(constants.ReportPass, p, p, p)}
}
