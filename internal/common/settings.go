package common

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/joseph-ayodele/invoice-auditor/internal/entity"
)

// Settings is the run settings document (config.yaml).
type Settings struct {
	DealBreakers []string           `mapstructure:"deal_breakers"`
	Directories  Directories        `mapstructure:"directories"`
	Report       ReportSettings     `mapstructure:"report"`
	Extraction   ExtractionSettings `mapstructure:"extraction"`
}

// Directories is the filesystem layout shared by the three stages.
type Directories struct {
	Input       string `mapstructure:"input"`
	Sorted      string `mapstructure:"sorted"`
	Output      string `mapstructure:"output"`
	Error       string `mapstructure:"error"`
	GroundTruth string `mapstructure:"ground_truth"`
}

type ReportSettings struct {
	Path string `mapstructure:"path"`
}

type ExtractionSettings struct {
	SchemaMode string `mapstructure:"schema_mode"` // lenient | strict
}

// LoadSettings reads the settings document. A missing file or an empty deal-breaker list is fatal.
func LoadSettings(path string) (*Settings, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetDefault("directories.input", "input_invoices")
	v.SetDefault("directories.sorted", "sorted_invoices")
	v.SetDefault("directories.output", "extracted_output")
	v.SetDefault("directories.error", "error_invoices")
	v.SetDefault("directories.ground_truth", "ground_truth")
	v.SetDefault("report.path", "evaluation_report.xlsx")
	v.SetDefault("extraction.schema_mode", "lenient")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the settings document.
func (s *Settings) Validate() error {
	if len(s.FieldSet().Sorted()) == 0 {
		return NewAppError("CONFIG_ERROR", "deal_breakers must list at least one field", ErrInvalidInput)
	}
	switch strings.ToLower(s.Extraction.SchemaMode) {
	case "", "lenient", "strict":
	default:
		return NewAppError("CONFIG_ERROR", "extraction.schema_mode must be lenient or strict", ErrInvalidInput)
	}
	return nil
}

// FieldSet returns the deal-breaker fields.
func (s *Settings) FieldSet() entity.FieldSet {
	return entity.NewFieldSet(s.DealBreakers...)
}

// StrictSchema reports whether schema violations fail an extraction.
func (s *Settings) StrictSchema() bool {
	return strings.EqualFold(s.Extraction.SchemaMode, "strict")
}
