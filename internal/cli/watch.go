package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/invoice-auditor/internal/async"
	"github.com/joseph-ayodele/invoice-auditor/internal/common"
	"github.com/joseph-ayodele/invoice-auditor/internal/ingest"
	"github.com/joseph-ayodele/invoice-auditor/internal/pipeline"
	"github.com/joseph-ayodele/invoice-auditor/internal/server"
)

type watchOptions struct {
	force       bool
	initialScan bool
	workers     int
	queueSize   int
	debounce    time.Duration
	fileTimeout time.Duration
}

func newWatchCmd(a *App) *cobra.Command {
	var opts watchOptions
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Route and extract invoices as they arrive in the input folder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.watch(cmd.Context(), opts)
		},
	}
	cmd.Flags().BoolVar(&opts.force, "force", false, "Re-extract files whose output already exists")
	cmd.Flags().BoolVar(&opts.initialScan, "initial-scan", true, "Process files already present at startup")
	cmd.Flags().IntVar(&opts.workers, "workers", 1, "Documents processed concurrently")
	cmd.Flags().IntVar(&opts.queueSize, "queue-size", 256, "Pending documents buffered before backpressure")
	cmd.Flags().DurationVar(&opts.debounce, "debounce", 500*time.Millisecond, "Quiet period before a new file is picked up")
	cmd.Flags().DurationVar(&opts.fileTimeout, "file-timeout", 10*time.Minute, "Upper bound for processing one document")
	return cmd
}

func (a *App) watch(ctx context.Context, opts watchOptions) error {
	gen, err := a.generator()
	if err != nil {
		return err
	}
	layout, err := a.layout()
	if err != nil {
		return err
	}
	rec, _, closeLedger, err := a.openLedger(ctx)
	if err != nil {
		return err
	}
	defer closeLedger()

	proc := pipeline.NewProcessor(a.logger, a.router(gen, layout, rec), a.orchestrator(gen, layout, rec, opts.force))
	runID := common.RunIDFromContext(ctx)
	queue := async.NewQueue(proc, a.logger,
		async.WithWorkers(opts.workers),
		async.WithQueueSize(opts.queueSize),
		async.WithProcessTimeout(opts.fileTimeout),
		async.WithContext(func(ctx context.Context, j async.Job) context.Context {
			return common.WithRunID(ctx, j.RunID)
		}),
	)

	files, watchErrs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:       []string{layout.Input},
		InitialScan: opts.initialScan,
		Debounce:    opts.debounce,
	}, a.logger)
	if err != nil {
		queue.Shutdown(context.Background())
		return err
	}

	health := server.NewHealthServer(a.logger)
	srvCtx, stopServer := context.WithCancel(ctx)
	defer stopServer()
	serveErr := make(chan error, 1)
	go func() { serveErr <- health.ListenAndServe(srvCtx, a.cfg.Server.GRPCAddr) }()
	health.SetServing(true)
	a.logger.Info("watch.started", "dir", layout.Input, "grpc_addr", a.cfg.Server.GRPCAddr, "workers", opts.workers)

	var runErr error
loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case err := <-serveErr:
			runErr = err
			break loop
		case err, ok := <-watchErrs:
			if !ok {
				watchErrs = nil
				continue
			}
			a.logger.Warn("watch.error", "error", err)
		case path, ok := <-files:
			if !ok {
				break loop
			}
			if err := queue.Enqueue(ctx, async.Job{Path: path, RunID: runID}); err != nil {
				a.logger.Warn("watch.enqueue_failed", "file", path, "error", err)
			}
		}
	}

	a.logger.Info("watch.stopping")
	health.SetServing(false)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), opts.fileTimeout)
	defer cancel()
	queue.Shutdown(shutdownCtx)
	stopServer()
	if runErr == nil {
		runErr = <-serveErr
	}
	return runErr
}
