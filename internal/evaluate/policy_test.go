package evaluate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joseph-ayodele/invoice-auditor/constants"
	"github.com/joseph-ayodele/invoice-auditor/internal/entity"
)

func TestEqual(t *testing.T) {
	tests := []struct {
		name     string
		expected string
		actual   string
		want     bool
	}{
		{"currency symbol differs", "$100.00", "100.00", false},
		{"case and outer whitespace", " Acme Corp ", "acme corp", true},
		{"suffix differs", "Acme", "Acme Co", false},
		{"thousands separator differs", "1,000.00", "1000.00", false},
		{"inner whitespace ignored", "INV - 001", "inv-001", true},
		{"tabs and newlines ignored", "Acme\tCorp\n", "acmecorp", true},
		{"both empty", "", "  ", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Equal(tt.expected, tt.actual))
		})
	}
}

func TestPolicyJudge(t *testing.T) {
	ctx := context.Background()

	t.Run("currency mismatch", func(t *testing.T) {
		// Given the end-to-end total example
		gt := entity.Record{"invoice": map[string]any{"total": "$100.00"}}
		out := entity.Record{"invoice": map[string]any{"total": "100.00"}}

		// When judged locally
		v := PolicyJudge{}.Judge(ctx, "inv-1", gt, out, entity.NewFieldSet("total"))

		// Then one itemized mismatch is reported
		assert.Equal(t, constants.StatusMismatch, v.Status)
		assert.Equal(t, []entity.MismatchEntry{{Field: "total", Expected: "$100.00", Actual: "100.00"}}, v.Mismatches)
		assert.Equal(t, constants.KindNone, v.Kind)
	})

	t.Run("pass ignores fields out of scope", func(t *testing.T) {
		gt := entity.Record{"invoice": map[string]any{"seller_name": " Acme Corp ", "due_date": "2024-01-01"}}
		out := entity.Record{"invoice": map[string]any{"seller_name": "acme corp", "due_date": "2025-12-31"}}

		v := PolicyJudge{}.Judge(ctx, "inv-2", gt, out, entity.NewFieldSet("seller_name"))

		assert.True(t, v.Passed())
		assert.Empty(t, v.Mismatches)
	})

	t.Run("repeated keys are indexed", func(t *testing.T) {
		// Given two line items where the second total differs and a third is missing
		gt := entity.Record{"items": []any{
			map[string]any{"total_price": "$10"},
			map[string]any{"total_price": "$20"},
			map[string]any{"total_price": "$30"},
		}}
		out := entity.Record{"items": []any{
			map[string]any{"total_price": "$10"},
			map[string]any{"total_price": "$25"},
		}}

		// When judged
		v := PolicyJudge{}.Judge(ctx, "inv-3", gt, out, entity.NewFieldSet("total_price"))

		// Then occurrences are paired by position
		assert.Equal(t, []entity.MismatchEntry{
			{Field: "total_price[1]", Expected: "$20", Actual: "$25"},
			{Field: "total_price[2]", Expected: "$30", Actual: ""},
		}, v.Mismatches)
	})

	t.Run("field absent from extraction", func(t *testing.T) {
		gt := entity.Record{"invoice": map[string]any{"invoice_number": "INV-9"}}
		out := entity.Record{"invoice": map[string]any{}}

		v := PolicyJudge{}.Judge(ctx, "inv-4", gt, out, entity.NewFieldSet("invoice_number"))

		assert.Equal(t, []entity.MismatchEntry{{Field: "invoice_number", Expected: "INV-9", Actual: ""}}, v.Mismatches)
	})
}
