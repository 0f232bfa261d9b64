package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSettings(t *testing.T) {
	// Given a settings document with duplicates and blanks
	path := writeSettings(t, `deal_breakers:
  - total
  - invoice_number
  - " total "
  - ""
directories:
  output: out
`)

	// When loading
	s, err := LoadSettings(path)

	// Then fields are de-duplicated and defaults fill the rest
	require.NoError(t, err)
	assert.Equal(t, []string{"invoice_number", "total"}, s.FieldSet().Sorted())
	assert.Equal(t, "out", s.Directories.Output)
	assert.Equal(t, "input_invoices", s.Directories.Input)
	assert.Equal(t, "ground_truth", s.Directories.GroundTruth)
	assert.Equal(t, "evaluation_report.xlsx", s.Report.Path)
	assert.False(t, s.StrictSchema())
}

func TestLoadSettings_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no deal breakers", "directories:\n  input: in\n"},
		{"only blank deal breakers", "deal_breakers:\n  - \" \"\n"},
		{"bad schema mode", "deal_breakers: [total]\nextraction:\n  schema_mode: fuzzy\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSettings(writeSettings(t, tt.content))
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadSettings(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}

func TestSettings_StrictSchema(t *testing.T) {
	s, err := LoadSettings(writeSettings(t, "deal_breakers: [total]\nextraction:\n  schema_mode: STRICT\n"))
	require.NoError(t, err)
	assert.True(t, s.StrictSchema())
}
