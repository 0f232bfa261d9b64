package llm

import (
	"context"

	"github.com/joseph-ayodele/invoice-auditor/internal/entity"
)

// Attachment is a document sent alongside a prompt.
type Attachment struct {
	MIMEType string
	Data     []byte
	Filename string
}

// Request is one prompt, optionally with a single attachment.
type Request struct {
	Prompt     string
	Attachment *Attachment
}

// Generator is the single model capability the pipeline depends on:
// a prompt plus optional attachment in, free-form text out.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// GeneratorFunc adapts a plain function to Generator.
type GeneratorFunc func(ctx context.Context, req Request) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// AttachmentFor wraps a loaded document for a model call.
func AttachmentFor(doc entity.Document) *Attachment {
	return &Attachment{MIMEType: doc.MIMEType, Data: doc.Data, Filename: doc.Name}
}
