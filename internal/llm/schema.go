package llm

import "encoding/json"

// InvoiceTemplate is the fixed extraction shape. Field order here is the order the model sees.
type InvoiceTemplate struct {
	Invoice             InvoiceHeader       `json:"invoice"`
	Items               []InvoiceItem       `json:"items"`
	Subtotal            InvoiceSubtotal     `json:"subtotal"`
	PaymentInstructions PaymentInstructions `json:"payment_instructions"`
}

type InvoiceHeader struct {
	ClientName    string `json:"client_name"`
	ClientAddress string `json:"client_address"`
	SellerName    string `json:"seller_name"`
	SellerAddress string `json:"seller_address"`
	InvoiceNumber string `json:"invoice_number"`
	InvoiceDate   string `json:"invoice_date"`
	DueDate       string `json:"due_date"`
}

type InvoiceItem struct {
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	TotalPrice  string `json:"total_price"`
}

type InvoiceSubtotal struct {
	Tax      string `json:"tax"`
	Discount string `json:"discount"`
	Total    string `json:"total"`
}

type PaymentInstructions struct {
	DueDate       string `json:"due_date"`
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
	PaymentMethod string `json:"payment_method"`
}

// RenderInvoiceTemplate returns the empty template as indented JSON, one placeholder line item included.
func RenderInvoiceTemplate() string {
	b, err := json.MarshalIndent(InvoiceTemplate{Items: []InvoiceItem{{}}}, "", "  ")
	if err != nil {
		// static struct of strings, cannot fail
		panic(err)
	}
	return string(b)
}

// BuildInvoiceJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a generic map.
// Leaves are strings; unknown keys are tolerated since the model may add context.
func BuildInvoiceJSONSchema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []string{"invoice", "items", "subtotal", "payment_instructions"},
		"properties": map[string]any{
			"invoice": stringObject("client_name", "client_address", "seller_name", "seller_address",
				"invoice_number", "invoice_date", "due_date"),
			"items": map[string]any{
				"type":  "array",
				"items": stringObject("description", "quantity", "total_price"),
			},
			"subtotal":             stringObject("tax", "discount", "total"),
			"payment_instructions": stringObject("due_date", "bank_name", "account_number", "payment_method"),
		},
	}
}

func stringObject(keys ...string) map[string]any {
	props := make(map[string]any, len(keys))
	for _, k := range keys {
		props[k] = map[string]any{"type": "string"}
	}
	return map[string]any{
		"type":       "object",
		"properties": props,
	}
}
