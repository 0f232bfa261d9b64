package llm

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-auditor/constants"
	"github.com/joseph-ayodele/invoice-auditor/internal/common"
)

func TestHintFor(t *testing.T) {
	tests := []struct {
		ext  string
		want string
	}{
		{ext: ".pdf", want: "The following file is an invoice in PDF format."},
		{ext: ".PNG", want: "The following file is a scanned image of an invoice."},
		{ext: "jpg", want: "The following file is a scanned image of an invoice."},
		{ext: ".jpeg", want: "The following file is a scanned image of an invoice."},
		{ext: ".xlsx", want: "The following file is an invoice spreadsheet (.xlsx format)."},
		{ext: ".csv", want: "The following file is an invoice in CSV format."},
		{ext: ".docx", want: "The following file is an invoice document."},
		{ext: "", want: "The following file is an invoice document."},
	}
	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			assert.Equal(t, tt.want, HintFor(constants.MapExtToFormat(tt.ext)))
		})
	}
}

func TestBuildExtractionPrompt(t *testing.T) {
	pdf := BuildExtractionPrompt(constants.PDF)
	csv := BuildExtractionPrompt(constants.CSV)

	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, pdf, BuildExtractionPrompt(constants.PDF))
	})

	t.Run("only the hint varies", func(t *testing.T) {
		require.True(t, strings.HasPrefix(pdf, HintFor(constants.PDF)+"\n\n"))
		require.True(t, strings.HasPrefix(csv, HintFor(constants.CSV)+"\n\n"))
		assert.Equal(t,
			strings.TrimPrefix(pdf, HintFor(constants.PDF)),
			strings.TrimPrefix(csv, HintFor(constants.CSV)))
	})

	t.Run("embeds the template", func(t *testing.T) {
		assert.Contains(t, pdf, "Output only the JSON.")
		obj, err := RecoverJSON(pdf)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"invoice", "items", "subtotal", "payment_instructions"}, keys(obj))

		inv := obj["invoice"].(map[string]any)
		assert.Equal(t, "", inv["seller_name"])
		items := obj["items"].([]any)
		require.Len(t, items, 1)
		assert.Equal(t, map[string]any{"description": "", "quantity": "", "total_price": ""}, items[0])
	})

	t.Run("key order is fixed", func(t *testing.T) {
		tmpl := RenderInvoiceTemplate()
		i := strings.Index(tmpl, `"invoice"`)
		j := strings.Index(tmpl, `"items"`)
		k := strings.Index(tmpl, `"subtotal"`)
		l := strings.Index(tmpl, `"payment_instructions"`)
		assert.True(t, i < j && j < k && k < l)
	})
}

func TestBuildClassificationPrompt(t *testing.T) {
	assert.Equal(t, "Extract only the **seller_name** from this invoice.", BuildClassificationPrompt())
}

func TestValidateInvoice(t *testing.T) {
	t.Run("template is valid", func(t *testing.T) {
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(RenderInvoiceTemplate()), &rec))
		assert.NoError(t, ValidateInvoice(rec))
	})

	t.Run("missing section", func(t *testing.T) {
		err := ValidateInvoice(map[string]any{"invoice": map[string]any{}})
		require.Error(t, err)
		assert.Equal(t, constants.KindSchemaViolation, common.KindOf(err))
	})

	t.Run("numeric leaf", func(t *testing.T) {
		rec, err := RecoverJSON(`{"invoice":{},"items":[{"quantity":2}],"subtotal":{},"payment_instructions":{}}`)
		require.NoError(t, err)
		assert.Error(t, ValidateInvoice(rec))
	})
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
