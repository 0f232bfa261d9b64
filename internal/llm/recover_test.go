package llm

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-auditor/constants"
	"github.com/joseph-ayodele/invoice-auditor/internal/common"
)

func TestRecoverJSON(t *testing.T) {
	const body = `{"invoice":{"total":"$100.00","invoice_number":"INV-7"},"items":[{"quantity":2}]}`

	var want map[string]any
	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()
	require.NoError(t, dec.Decode(&want))

	tests := []struct {
		name string
		text string
	}{
		{name: "bare object", text: body},
		{name: "json fence", text: "```json\n" + body + "\n```"},
		{name: "plain fence", text: "```\n" + body + "\n```"},
		{name: "surrounding prose", text: "Here is the result:\n" + body + "\nLet me know if you need anything else."},
		{name: "fence with padding", text: "   \n```json " + body + " ```  \n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RecoverJSON(tt.text)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestRecoverJSON_Failures(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		kind     constants.FailureKind
		sentinel error
	}{
		{name: "no braces", text: "I could not read this invoice.", kind: constants.KindNoJSONSpan, sentinel: common.ErrNoJSONSpan},
		{name: "empty", text: "", kind: constants.KindNoJSONSpan, sentinel: common.ErrNoJSONSpan},
		{name: "only closing brace", text: "done }", kind: constants.KindNoJSONSpan, sentinel: common.ErrNoJSONSpan},
		{name: "unterminated", text: "{invalid json", kind: constants.KindJSONSyntax, sentinel: common.ErrJSONSyntax},
		{name: "bad syntax inside span", text: `{"a": "b",}`, kind: constants.KindJSONSyntax, sentinel: common.ErrJSONSyntax},
		{name: "two objects", text: `{"a":1} and {"b":2}`, kind: constants.KindJSONSyntax, sentinel: common.ErrJSONSyntax},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RecoverJSON(tt.text)
			require.Error(t, err)
			assert.Nil(t, got)

			var re *RecoverError
			require.True(t, errors.As(err, &re))
			assert.Equal(t, tt.kind, re.Kind)
			assert.Equal(t, tt.text, re.Raw)
			assert.ErrorIs(t, err, tt.sentinel)
			assert.Equal(t, tt.kind, common.KindOf(err))
		})
	}
}

func TestRecoverJSON_PreservesNumbers(t *testing.T) {
	got, err := RecoverJSON(`{"total": 1234.50}`)
	require.NoError(t, err)
	assert.Equal(t, json.Number("1234.50"), got["total"])
}
