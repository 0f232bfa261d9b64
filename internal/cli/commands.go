package cli

import (
	"github.com/spf13/cobra"
)

func newRouteCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "route",
		Short: "Sort input invoices into vendor folders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
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

			_, err = a.routeStage(ctx, gen, layout, rec, cmd.OutOrStdout())
			return err
		},
	}
}

func newExtractCmd(a *App) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract structured JSON from routed invoices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
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

			_, err = a.extractStage(ctx, gen, layout, rec, force, cmd.OutOrStdout())
			return err
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Re-extract files whose output already exists")
	return cmd
}

func newEvaluateCmd(a *App) *cobra.Command {
	var opts evaluateOptions
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Compare extracted records with ground truth and write the report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validJudge(opts.judge); err != nil {
				return err
			}
			_, err := a.evaluateStage(cmd.Context(), opts, cmd.OutOrStdout())
			return err
		},
	}
	addEvaluateFlags(cmd, &opts)
	return cmd
}

func newRunCmd(a *App) *cobra.Command {
	var (
		force bool
		opts  evaluateOptions
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Route, extract and evaluate in one pass",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validJudge(opts.judge); err != nil {
				return err
			}
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
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

			if _, err := a.routeStage(ctx, gen, layout, rec, out); err != nil {
				return err
			}
			if _, err := a.extractStage(ctx, gen, layout, rec, force, out); err != nil {
				return err
			}
			_, err = a.evaluateStage(ctx, opts, out)
			return err
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Re-extract files whose output already exists")
	addEvaluateFlags(cmd, &opts)
	return cmd
}

func addEvaluateFlags(cmd *cobra.Command, opts *evaluateOptions) {
	cmd.Flags().StringVar(&opts.judge, "judge", judgeModel, "Comparison judge: model or policy")
	cmd.Flags().StringVar(&opts.reportPath, "report", "", "Report path; .csv writes CSV (default from settings)")
}
