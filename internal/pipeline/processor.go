// Package pipeline chains the routing and extraction stages for a single document.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/joseph-ayodele/invoice-auditor/internal/extract"
	"github.com/joseph-ayodele/invoice-auditor/internal/route"
)

// FileRouter is the routing stage.
type FileRouter interface {
	RouteFile(ctx context.Context, path string) route.Outcome
}

// FileExtractor is the extraction stage.
type FileExtractor interface {
	ExtractFile(ctx context.Context, path string) extract.Outcome
}

// Processor routes a newly arrived document into its vendor folder, then extracts it.
type Processor struct {
	logger  *slog.Logger
	router  FileRouter
	extract FileExtractor
}

func NewProcessor(logger *slog.Logger, router FileRouter, extractor FileExtractor) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{logger: logger, router: router, extract: extractor}
}

// Process returns an error only when a stage failed; in that case the file already sits in
// the error collection.
func (p *Processor) Process(ctx context.Context, path string) error {
	name := filepath.Base(path)

	// 1) route → vendor folder
	ro := p.router.RouteFile(ctx, path)
	if ro.Failed() {
		return fmt.Errorf("route %s (%s): %w", name, ro.Kind, ro.Err)
	}
	p.logger.Debug("processor.route.ok", "file", name, "vendor", ro.Vendor)

	// 2) extract the routed copy
	eo := p.extract.ExtractFile(ctx, ro.Destination)
	if eo.Failed() {
		return fmt.Errorf("extract %s (%s): %w", name, eo.Kind, eo.Err)
	}
	p.logger.Info("processor.file.ok", "file", name, "vendor", ro.Vendor, "status", string(eo.Status), "output", eo.OutputPath)
	return nil
}
