package report

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/invoice-auditor/internal/entity"
)

// Write renders the rows once to path; the format follows the extension
// (.csv writes CSV, anything else XLSX). An existing report is replaced.
func Write(path string, rows []entity.ReportRow, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	var (
		data []byte
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		data, err = BuildCSV(rows)
	} else {
		data, err = BuildXLSX(rows, logger)
	}
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report dir: %w", err)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write report: %w", err)
	}
	logger.Info("report.write.ok", "path", path, "rows", len(rows), "bytes", len(data))
	return nil
}
