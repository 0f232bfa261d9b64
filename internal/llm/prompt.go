package llm

import (
	"github.com/joseph-ayodele/invoice-auditor/constants"
)

var formatHints = map[constants.Format]string{
	constants.PDF:         "The following file is an invoice in PDF format.",
	constants.IMAGE:       "The following file is a scanned image of an invoice.",
	constants.SPREADSHEET: "The following file is an invoice spreadsheet (.xlsx format).",
	constants.CSV:         "The following file is an invoice in CSV format.",
}

const genericHint = "The following file is an invoice document."

const classificationPrompt = "Extract only the **seller_name** from this invoice."

var extractionBase = `The JSON structure shown below is the desired output format.
Extract the information and return it in this exact JSON format.
The extracted data should include client details, seller information, invoice metadata, itemized product details, and payment instructions.

Output only the JSON. Do not include explanations or formatting.

` + RenderInvoiceTemplate() + "\n"

// HintFor returns the hint sentence for a document format.
func HintFor(format constants.Format) string {
	if h, ok := formatHints[format]; ok {
		return h
	}
	return genericHint
}

// BuildExtractionPrompt composes the hint and the shared schema prompt.
// Spreadsheets reach this point as CSV, so callers pass constants.CSV for them.
func BuildExtractionPrompt(format constants.Format) string {
	return HintFor(format) + "\n\n" + extractionBase
}

// BuildClassificationPrompt asks for the seller name only.
func BuildClassificationPrompt() string {
	return classificationPrompt
}
