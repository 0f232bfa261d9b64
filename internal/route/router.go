package route

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/joseph-ayodele/invoice-auditor/constants"
	"github.com/joseph-ayodele/invoice-auditor/internal/common"
	"github.com/joseph-ayodele/invoice-auditor/internal/entity"
	"github.com/joseph-ayodele/invoice-auditor/internal/ledger"
	"github.com/joseph-ayodele/invoice-auditor/internal/storage"
)

// DocumentLoader reads a file for a model call.
type DocumentLoader interface {
	Load(path string) (entity.Document, error)
}

// Outcome is the terminal disposition of one routed file.
type Outcome struct {
	File        string
	Vendor      string
	Destination string
	Kind        constants.FailureKind
	Err         error
}

func (o Outcome) Failed() bool { return o.Err != nil }

// Summary aggregates a routing batch.
type Summary struct {
	Routed   int
	Failed   int
	Outcomes []Outcome
}

// Router moves each input file into its vendor folder, or into the error collection
// when it cannot be classified.
type Router struct {
	classifier *Classifier
	loader     DocumentLoader
	layout     storage.Layout
	ledger     ledger.Recorder
	logger     *slog.Logger
}

func NewRouter(classifier *Classifier, loader DocumentLoader, layout storage.Layout, rec ledger.Recorder, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	if rec == nil {
		rec = ledger.Nop{}
	}
	return &Router{classifier: classifier, loader: loader, layout: layout, ledger: rec, logger: logger}
}

// Route processes paths one at a time. Per-file failures are isolated;
// only context cancellation stops the batch early.
func (r *Router) Route(ctx context.Context, paths []string) (Summary, error) {
	var sum Summary
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		o := r.RouteFile(ctx, p)
		sum.Outcomes = append(sum.Outcomes, o)
		if o.Failed() {
			sum.Failed++
		} else {
			sum.Routed++
		}
	}
	r.logger.Info("route.batch.done", "routed", sum.Routed, "failed", sum.Failed)
	return sum, nil
}

// RouteFile routes a single file.
func (r *Router) RouteFile(ctx context.Context, path string) Outcome {
	name := filepath.Base(path)

	doc, err := r.loader.Load(path)
	if err != nil {
		return r.fail(ctx, path, "", err)
	}
	vendor, err := r.classifier.Classify(ctx, doc)
	if err != nil {
		return r.fail(ctx, path, doc.ContentHash, err)
	}

	dst, err := storage.MoveFile(path, r.layout.VendorDir(vendor))
	if err != nil {
		return r.fail(ctx, path, doc.ContentHash, common.NewAppError(string(constants.KindWrite), "move to vendor folder", err))
	}
	r.logger.Info("route.file.ok", "file", name, "vendor", vendor, "destination", dst)
	r.record(ctx, ledger.Disposition{
		Stage:       constants.StageRoute,
		FileKey:     name,
		FileName:    name,
		Outcome:     constants.OutcomeRouted,
		ContentHash: doc.ContentHash,
		OutputPath:  dst,
	})
	return Outcome{File: path, Vendor: vendor, Destination: dst}
}

func (r *Router) fail(ctx context.Context, path, hash string, cause error) Outcome {
	name := filepath.Base(path)
	kind := common.KindOf(cause)
	r.logger.Error("route.file.failed", "file", name, "kind", kind, "error", cause)

	o := Outcome{File: path, Kind: kind, Err: cause}
	dst, err := storage.MoveFile(path, r.layout.Error)
	if err != nil {
		r.logger.Error("route.file.quarantine_failed", "file", name, "error", err)
	} else {
		o.Destination = dst
	}
	r.record(ctx, ledger.Disposition{
		Stage:       constants.StageRoute,
		FileKey:     name,
		FileName:    name,
		Outcome:     constants.OutcomeFailed,
		Kind:        kind,
		Reason:      cause.Error(),
		ContentHash: hash,
		OutputPath:  o.Destination,
	})
	return o
}

func (r *Router) record(ctx context.Context, d ledger.Disposition) {
	if err := r.ledger.Record(ctx, d); err != nil {
		r.logger.Warn("route.ledger.record_failed", "file", d.FileName, "error", err)
	}
}
