package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/joseph-ayodele/invoice-auditor/internal/common"
	"github.com/joseph-ayodele/invoice-auditor/internal/evaluate"
	"github.com/joseph-ayodele/invoice-auditor/internal/extract"
	"github.com/joseph-ayodele/invoice-auditor/internal/ingest"
	"github.com/joseph-ayodele/invoice-auditor/internal/ledger"
	"github.com/joseph-ayodele/invoice-auditor/internal/llm"
	"github.com/joseph-ayodele/invoice-auditor/internal/report"
	"github.com/joseph-ayodele/invoice-auditor/internal/route"
	"github.com/joseph-ayodele/invoice-auditor/internal/storage"
)

type evaluateOptions struct {
	judge      string
	reportPath string
}

func (a *App) routeStage(ctx context.Context, gen llm.Generator, layout storage.Layout, rec ledger.Recorder, out io.Writer) (route.Summary, error) {
	paths, stats, err := ingest.ScanDirectory(ingest.ScanConfig{Root: layout.Input, SkipHidden: true}, a.logger)
	if err != nil {
		return route.Summary{}, fmt.Errorf("scan input: %w", err)
	}
	a.logger.Info("route.scan.done", "dir", layout.Input, "scanned", stats.Scanned, "matched", stats.Matched, "skipped", stats.Skipped)

	sum, err := a.router(gen, layout, rec).Route(ctx, paths)
	if err != nil {
		return sum, err
	}
	fmt.Fprintf(out, "Routing complete: %d routed, %d failed\n", sum.Routed, sum.Failed)
	return sum, nil
}

func (a *App) extractStage(ctx context.Context, gen llm.Generator, layout storage.Layout, rec ledger.Recorder, force bool, out io.Writer) (extract.Summary, error) {
	paths, stats, err := ingest.ScanDirectory(ingest.ScanConfig{Root: layout.Sorted, Recursive: true, SkipHidden: true}, a.logger)
	if err != nil {
		return extract.Summary{}, fmt.Errorf("scan sorted: %w", err)
	}
	a.logger.Info("extract.scan.done", "dir", layout.Sorted, "scanned", stats.Scanned, "matched", stats.Matched, "skipped", stats.Skipped)

	sum, err := a.orchestrator(gen, layout, rec, force).Run(ctx, paths)
	if err != nil {
		return sum, err
	}
	fmt.Fprintf(out, "Extraction complete: %d extracted, %d skipped, %d failed\n", sum.Extracted, sum.Skipped, sum.Failed)
	return sum, nil
}

func (a *App) evaluateStage(ctx context.Context, opts evaluateOptions, out io.Writer) (report.Counts, error) {
	judge, err := a.judge(opts.judge)
	if err != nil {
		return report.Counts{}, err
	}
	dirs := a.settings.Directories
	agg := report.NewAggregator(a.logger)
	comparator := evaluate.NewComparator(judge, a.settings.FieldSet(), a.logger)

	if _, err := evaluate.NewRunner(comparator, dirs.GroundTruth, dirs.Output, agg, a.logger).Run(ctx); err != nil {
		return agg.Counts(), err
	}
	agg.LogSummary()

	path := opts.reportPath
	if path == "" {
		path = a.settings.Report.Path
	}
	if err := report.Write(path, agg.Rows(), a.logger); err != nil {
		return agg.Counts(), err
	}
	if a.cfg.Report.S3URI != "" {
		pub, err := report.NewS3Publisher(ctx, a.cfg.Report.S3URI, a.logger)
		if err != nil {
			return agg.Counts(), err
		}
		if _, err := pub.Publish(ctx, path); err != nil {
			return agg.Counts(), err
		}
	}

	c := agg.Counts()
	fmt.Fprintf(out, "Evaluation complete: %d pass, %d mismatch, %d missing, %d error\n", c.Pass, c.Mismatch, c.Missing, c.Error)
	fmt.Fprintf(out, "Report: %s\n", path)
	return c, nil
}

func validJudge(kind string) error {
	switch kind {
	case judgeModel, judgePolicy:
		return nil
	}
	return common.NewAppError("CONFIG_ERROR", "--judge must be model or policy", common.ErrInvalidInput)
}
