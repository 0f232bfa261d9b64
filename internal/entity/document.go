package entity

import (
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/invoice-auditor/constants"
)

// Document is an invoice file read into memory for a single model call.
// Spreadsheets arrive here already converted to CSV text.
type Document struct {
	Path        string           `json:"path"`
	Name        string           `json:"name"`
	Data        []byte           `json:"-"`
	MIMEType    string           `json:"mime_type"`
	Format      constants.Format `json:"format"`
	ContentHash string           `json:"content_hash"`
}

// BaseName is the file name without directory or extension; outputs and ground truth are keyed by it.
func BaseName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
