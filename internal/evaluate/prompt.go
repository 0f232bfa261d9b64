package evaluate

import (
	"strings"

	"github.com/joseph-ayodele/invoice-auditor/internal/entity"
)

const comparisonRules = `Comparison Rules:
1.  You must perform a strict, character-by-character comparison.
2.  The ONLY exceptions for a Match are: case-insensitivity and leading/trailing whitespace.
3.  Ignore all whitespaces when comparing the EXTRACTED OUTPUT and GROUND TRUTH.
4.  Any other difference is a Mismatch. This includes currency symbols, commas, or other formatting.

JSON Output Structure (Your Verdict):
- The JSON object must have a key "overall_status" which is either "Pass" or "Mismatch".
- If the status is "Mismatch", it must also include a key "mismatches", which is a list of objects.
- Each object in the "mismatches" list must have three keys: "field", "expected", and "actual".
- If the status is "Pass", the "mismatches" list must be empty.

Example of a Mismatch Verdict:
{
  "overall_status": "Mismatch",
  "mismatches": [
    {
      "field": "total",
      "expected": "$100.00",
      "actual": "100.00"
    }
  ]
}

Example of a Pass Verdict:
{
  "overall_status": "Pass",
  "mismatches": []
}

Now, provide your verdict as a JSON response for the given invoice data.
`

// BuildComparisonPrompt instructs the model to referee one invoice: strict comparison of the
// deal-breaker fields, tolerant only of case and whitespace, answered as a verdict object.
func BuildComparisonPrompt(invoice string, groundTruth, extracted entity.Record, fields entity.FieldSet) string {
	var b strings.Builder
	b.WriteString("You are a precise JSON-producing invoice evaluator. Your task is to perform a STRICT comparison between the GROUND TRUTH and the EXTRACTED OUTPUT for the invoice named `")
	b.WriteString(invoice)
	b.WriteString("`.\n\n")
	b.WriteString("Your response MUST be a single, valid JSON object and nothing else. Do not include any text before or after the JSON.\n\n")
	b.WriteString("Compare ONLY the following fields:\n")
	for i, f := range fields.Sorted() {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("- ")
		b.WriteString(f)
	}
	b.WriteString("\n\nGROUND TRUTH:\n")
	b.WriteString(indent(groundTruth))
	b.WriteString("\n\nEXTRACTED OUTPUT:\n")
	b.WriteString(indent(extracted))
	b.WriteString("\n\n")
	b.WriteString(comparisonRules)
	return b.String()
}

func indent(r entity.Record) string {
	b, err := r.MarshalIndented()
	if err != nil {
		return "{}"
	}
	return string(b)
}
