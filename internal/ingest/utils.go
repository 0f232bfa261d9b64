package ingest

import (
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/invoice-auditor/constants"
)

// AllowedExt checks if a file extension (with or without dot) is an invoice format we process.
func AllowedExt(ext string) bool {
	_, ok := constants.AllowedExtensions[constants.NormalizeExt(ext)]
	return ok
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
