package report

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/joseph-ayodele/invoice-auditor/internal/entity"
)

// BuildCSV renders the rows as CSV with a header line.
func BuildCSV(rows []entity.ReportRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(Header); err != nil {
		return nil, fmt.Errorf("csv header: %w", err)
	}
	for _, r := range rows {
		if err := w.Write(r.Cells()); err != nil {
			return nil, fmt.Errorf("csv row %s: %w", r.Invoice, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("csv flush: %w", err)
	}
	return buf.Bytes(), nil
}
