// Package route buckets incoming invoices into vendor folders by asking the model for the seller.
package route

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/invoice-auditor/internal/entity"
	"github.com/joseph-ayodele/invoice-auditor/internal/llm"
	"github.com/joseph-ayodele/invoice-auditor/internal/storage"
)

// Classifier names the seller of a document.
type Classifier struct {
	gen    llm.Generator
	logger *slog.Logger
}

func NewClassifier(gen llm.Generator, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{gen: gen, logger: logger}
}

// Classify returns the vendor folder name for doc. An empty answer yields the Unknown vendor;
// a failed model call is returned as an error.
func (c *Classifier) Classify(ctx context.Context, doc entity.Document) (string, error) {
	text, err := c.gen.Generate(ctx, llm.Request{
		Prompt:     llm.BuildClassificationPrompt(),
		Attachment: llm.AttachmentFor(doc),
	})
	if err != nil {
		return "", llm.AsTransport(err)
	}
	vendor := storage.SanitizeVendor(text)
	c.logger.Debug("route.classify.ok", "file", doc.Name, "raw", text, "vendor", vendor)
	return vendor, nil
}
