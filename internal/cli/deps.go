package cli

import (
	"context"
	"time"

	"github.com/joseph-ayodele/invoice-auditor/internal/evaluate"
	"github.com/joseph-ayodele/invoice-auditor/internal/extract"
	"github.com/joseph-ayodele/invoice-auditor/internal/ingest"
	"github.com/joseph-ayodele/invoice-auditor/internal/ledger"
	"github.com/joseph-ayodele/invoice-auditor/internal/llm"
	"github.com/joseph-ayodele/invoice-auditor/internal/llm/provider"
	"github.com/joseph-ayodele/invoice-auditor/internal/route"
	"github.com/joseph-ayodele/invoice-auditor/internal/storage"
)

const (
	judgeModel  = "model"
	judgePolicy = "policy"
)

func (a *App) layout() (storage.Layout, error) {
	l := storage.NewLayout(a.settings.Directories)
	return l, l.EnsureDirs()
}

func (a *App) generator() (llm.Generator, error) {
	if err := a.cfg.ValidateLLM(); err != nil {
		return nil, err
	}
	return provider.New(a.cfg.LLM, a.logger)
}

// openLedger returns the disposition store, or a no-op recorder when the ledger is disabled.
func (a *App) openLedger(ctx context.Context) (ledger.Recorder, *ledger.Store, func(), error) {
	if err := a.cfg.ValidateLedger(); err != nil {
		return nil, nil, nil, err
	}
	if a.cfg.Ledger.Driver == "none" {
		return ledger.Nop{}, nil, func() {}, nil
	}
	db, err := ledger.Open(ctx, a.cfg.Ledger, a.logger)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := db.HealthCheck(ctx, 5*time.Second); err != nil {
		db.Close()
		return nil, nil, nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, nil, err
	}
	store := ledger.NewStore(db, a.logger)
	return store, store, db.Close, nil
}

func (a *App) loader() *ingest.Loader {
	return ingest.NewLoader(a.cfg.Image, a.logger)
}

func (a *App) router(gen llm.Generator, layout storage.Layout, rec ledger.Recorder) *route.Router {
	return route.NewRouter(route.NewClassifier(gen, a.logger), a.loader(), layout, rec, a.logger)
}

func (a *App) orchestrator(gen llm.Generator, layout storage.Layout, rec ledger.Recorder, force bool) *extract.Orchestrator {
	return extract.NewOrchestrator(gen, a.loader(), layout, rec, extract.Options{
		Force:        force,
		StrictSchema: a.settings.StrictSchema(),
	}, a.logger)
}

// judge builds the comparison judge; the policy judge needs no model credentials.
func (a *App) judge(kind string) (evaluate.Judge, error) {
	if kind == judgePolicy {
		return evaluate.PolicyJudge{}, nil
	}
	gen, err := a.generator()
	if err != nil {
		return nil, err
	}
	return evaluate.NewModelJudge(gen, a.logger), nil
}
