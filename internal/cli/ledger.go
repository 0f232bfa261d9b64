package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/invoice-auditor/constants"
	"github.com/joseph-ayodele/invoice-auditor/internal/common"
)

func newLedgerCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect the run ledger",
	}
	cmd.AddCommand(newLedgerListCmd(a))
	return cmd
}

func newLedgerListCmd(a *App) *cobra.Command {
	var stage string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List file dispositions for a stage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st := constants.Stage(strings.ToUpper(stage))
			if st != constants.StageRoute && st != constants.StageExtract {
				return common.NewAppError("CONFIG_ERROR", "--stage must be route or extract", common.ErrInvalidInput)
			}
			ctx := cmd.Context()
			_, store, closeLedger, err := a.openLedger(ctx)
			if err != nil {
				return err
			}
			defer closeLedger()
			if store == nil {
				return common.NewAppError("CONFIG_ERROR", "ledger is disabled (LEDGER_DRIVER=none)", common.ErrInvalidInput)
			}

			rows, err := store.List(ctx, st)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "FILE\tOUTCOME\tKIND\tOUTPUT\tUPDATED")
			for _, d := range rows {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", d.FileKey, d.Outcome, dash(string(d.Kind)), dash(d.OutputPath), d.UpdatedAt.Format(time.RFC3339))
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&stage, "stage", string(constants.StageExtract), "Stage to list: route or extract")
	return cmd
}

func dash(s string) string {
	if s == "" {
		return constants.Placeholder
	}
	return s
}
