package evaluate

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joseph-ayodele/invoice-auditor/constants"
	"github.com/joseph-ayodele/invoice-auditor/internal/entity"
)

// Sink receives verdicts in evaluation order.
type Sink interface {
	Add(v entity.Verdict)
}

// Runner walks the ground-truth collection and compares each record with its extracted counterpart.
type Runner struct {
	comparator     *Comparator
	groundTruthDir string
	outputDir      string
	sink           Sink
	logger         *slog.Logger
}

func NewRunner(comparator *Comparator, groundTruthDir, outputDir string, sink Sink, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		comparator:     comparator,
		groundTruthDir: groundTruthDir,
		outputDir:      outputDir,
		sink:           sink,
		logger:         logger,
	}
}

// Run evaluates every *.json ground-truth file in name order. Per-invoice problems become
// verdicts; an unreadable ground-truth collection or record is returned as an error.
func (r *Runner) Run(ctx context.Context) (int, error) {
	names, err := groundTruthFiles(r.groundTruthDir)
	if err != nil {
		return 0, err
	}
	r.logger.Info("evaluate.run.start", "ground_truth", r.groundTruthDir, "files", len(names))

	n := 0
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		v, err := r.evaluate(ctx, name)
		if err != nil {
			return n, err
		}
		r.sink.Add(v)
		n++
	}
	return n, nil
}

func (r *Runner) evaluate(ctx context.Context, name string) (entity.Verdict, error) {
	invoice := strings.TrimSuffix(name, filepath.Ext(name))

	gt, err := entity.LoadRecord(filepath.Join(r.groundTruthDir, name))
	if err != nil {
		return entity.Verdict{}, fmt.Errorf("read ground truth %s: %w", name, err)
	}

	outPath := filepath.Join(r.outputDir, name)
	if _, err := os.Stat(outPath); errors.Is(err, fs.ErrNotExist) {
		v := entity.Verdict{Invoice: invoice, Kind: constants.KindMissingOutput}
		r.logger.Warn("evaluate.verdict.error", "file", invoice, "kind", string(v.Kind), "error", Err(v))
		return v, nil
	}
	out, err := entity.LoadRecord(outPath)
	if err != nil {
		r.logger.Warn("evaluate.verdict.error", "file", invoice, "kind", string(constants.KindInvalidOutput), "err", err)
		return entity.Verdict{Invoice: invoice, Kind: constants.KindInvalidOutput, Detail: err.Error()}, nil
	}

	return r.comparator.Compare(ctx, Pair{Invoice: invoice, GroundTruth: gt, Extracted: out}), nil
}

func groundTruthFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read ground truth dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}
