package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/joseph-ayodele/invoice-auditor/constants"
	"github.com/joseph-ayodele/invoice-auditor/internal/common"
	"github.com/joseph-ayodele/invoice-auditor/internal/entity"
	"github.com/joseph-ayodele/invoice-auditor/internal/ledger"
	"github.com/joseph-ayodele/invoice-auditor/internal/llm"
	"github.com/joseph-ayodele/invoice-auditor/internal/storage"
)

// DocumentLoader reads a file for a model call.
type DocumentLoader interface {
	Load(path string) (entity.Document, error)
}

// Options tune an Orchestrator.
type Options struct {
	Force        bool // re-extract even when the output already exists
	StrictSchema bool // a schema violation fails the file instead of being logged
}

// Orchestrator drives prompt construction, the model call and JSON recovery for each file.
type Orchestrator struct {
	gen    llm.Generator
	loader DocumentLoader
	layout storage.Layout
	ledger ledger.Recorder
	opts   Options
	logger *slog.Logger

	mu      sync.Mutex
	claimed map[string]string // output base name -> source path
}

func NewOrchestrator(gen llm.Generator, loader DocumentLoader, layout storage.Layout, rec ledger.Recorder, opts Options, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if rec == nil {
		rec = ledger.Nop{}
	}
	return &Orchestrator{
		gen:     gen,
		loader:  loader,
		layout:  layout,
		ledger:  rec,
		opts:    opts,
		logger:  logger,
		claimed: map[string]string{},
	}
}

// Run extracts paths sequentially. A failing file never aborts the batch;
// only context cancellation ends it early.
func (o *Orchestrator) Run(ctx context.Context, paths []string) (Summary, error) {
	start := time.Now()
	var sum Summary
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		sum.add(o.ExtractFile(ctx, p))
	}
	o.logger.Info("extract.batch.done",
		"extracted", sum.Extracted,
		"skipped", sum.Skipped,
		"failed", sum.Failed,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return sum, nil
}

// ExtractFile gives one file its terminal disposition.
func (o *Orchestrator) ExtractFile(ctx context.Context, path string) Outcome {
	name := filepath.Base(path)
	base := entity.BaseName(path)
	out := Outcome{File: path, Base: base, OutputPath: o.layout.OutputPath(path)}

	if prev, ok := o.claim(base, path); !ok {
		return o.fail(ctx, out, "", common.NewAppError(string(constants.KindDuplicateOutput),
			fmt.Sprintf("output %s.json already claimed by %s", base, filepath.Base(prev)), nil))
	}

	if storage.Exists(out.OutputPath) {
		if owner, ok := o.ownsOutput(ctx, path, out.OutputPath); !ok {
			return o.fail(ctx, out, "", common.NewAppError(string(constants.KindDuplicateOutput),
				fmt.Sprintf("output %s.json already written for %s", base, owner), nil))
		}
		if !o.opts.Force {
			out.Status = constants.OutcomeSkipped
			o.logger.Info("extract.file.skipped", "file", name, "output", out.OutputPath)
			o.record(ctx, out, "")
			return out
		}
	}

	doc, err := o.loader.Load(path)
	if err != nil {
		return o.fail(ctx, out, "", err)
	}

	text, err := o.gen.Generate(ctx, llm.Request{
		Prompt:     llm.BuildExtractionPrompt(doc.Format),
		Attachment: llm.AttachmentFor(doc),
	})
	if err != nil {
		return o.fail(ctx, out, doc.ContentHash, llm.AsTransport(err))
	}

	rec, err := llm.RecoverJSON(text)
	if err != nil {
		o.logger.Debug("extract.file.raw_response", "file", name, "raw", text)
		return o.fail(ctx, out, doc.ContentHash, err)
	}

	if err := llm.ValidateInvoice(rec); err != nil {
		if o.opts.StrictSchema {
			return o.fail(ctx, out, doc.ContentHash, err)
		}
		o.logger.Warn("extract.file.schema_violation", "file", name, "error", err)
	}

	if err := storage.WriteJSON(out.OutputPath, rec); err != nil {
		return o.fail(ctx, out, doc.ContentHash, common.NewAppError(string(constants.KindWrite), "write output", err))
	}

	out.Status = constants.OutcomeExtracted
	out.Record = entity.Record(rec)
	o.logger.Info("extract.file.ok", "file", name, "output", out.OutputPath)
	o.record(ctx, out, doc.ContentHash)
	return out
}

func (o *Orchestrator) claim(base, path string) (string, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if prev, ok := o.claimed[base]; ok && prev != path {
		return prev, false
	}
	o.claimed[base] = path
	return "", true
}

// ownsOutput reports whether an existing output was written for path.
// Outputs with no recorded owner, or a ledger that cannot be queried, count as owned.
func (o *Orchestrator) ownsOutput(ctx context.Context, path, output string) (string, bool) {
	lk, ok := o.ledger.(ledger.Lookup)
	if !ok {
		return "", true
	}
	key := o.fileKey(path)
	if d, err := lk.Get(ctx, constants.StageExtract, key); err == nil && d.OutputPath == output &&
		(d.Outcome == constants.OutcomeExtracted || d.Outcome == constants.OutcomeSkipped) {
		return key, true
	}
	owner, err := lk.OwnerOf(ctx, constants.StageExtract, output)
	if errors.Is(err, common.ErrNotFound) {
		return "", true
	}
	if err != nil {
		o.logger.Warn("extract.ledger.lookup_failed", "file", filepath.Base(path), "error", err)
		return "", true
	}
	return owner.FileKey, owner.FileKey == key
}

func (o *Orchestrator) fail(ctx context.Context, out Outcome, hash string, cause error) Outcome {
	name := filepath.Base(out.File)
	out.Status = constants.OutcomeFailed
	out.Kind = common.KindOf(cause)
	out.Err = cause
	out.OutputPath = ""
	o.logger.Error("extract.file.failed", "file", name, "kind", out.Kind, "error", cause)

	dst, err := storage.MoveFile(out.File, o.layout.Error)
	if err != nil {
		o.logger.Error("extract.file.quarantine_failed", "file", name, "error", err)
	} else {
		out.ErrorPath = dst
	}
	o.record(ctx, out, hash)
	return out
}

// fileKey identifies a source in the ledger by its path under the sorted collection.
func (o *Orchestrator) fileKey(path string) string {
	rel, err := filepath.Rel(o.layout.Sorted, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.Base(path)
	}
	return filepath.ToSlash(rel)
}

func (o *Orchestrator) record(ctx context.Context, out Outcome, hash string) {
	d := ledger.Disposition{
		Stage:       constants.StageExtract,
		FileKey:     o.fileKey(out.File),
		FileName:    filepath.Base(out.File),
		Outcome:     out.Status,
		Kind:        out.Kind,
		ContentHash: hash,
		OutputPath:  out.OutputPath,
	}
	if out.Err != nil {
		d.Reason = out.Err.Error()
		d.OutputPath = out.ErrorPath
	}
	if err := o.ledger.Record(ctx, d); err != nil {
		o.logger.Warn("extract.ledger.record_failed", "file", d.FileName, "error", err)
	}
}
