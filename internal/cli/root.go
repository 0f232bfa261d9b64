// Package cli wires the pipeline stages into the invoice-auditor command line.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/invoice-auditor/internal/common"
)

type rootOptions struct {
	configPath string
	envFile    string
	logFormat  string
	logLevel   string
}

// App holds what every subcommand shares once the root has set up.
type App struct {
	opts     rootOptions
	logger   *slog.Logger
	cfg      *common.Config
	settings *common.Settings
	logOut   io.Writer
}

// NewRootCmd builds the command tree. Logs go to logOut (stderr when nil).
func NewRootCmd(logOut io.Writer) *cobra.Command {
	if logOut == nil {
		logOut = os.Stderr
	}
	a := &App{logOut: logOut}

	cmd := &cobra.Command{
		Use:           "invoice-auditor",
		Short:         "Route, extract and evaluate invoices with a generative model",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	f := cmd.PersistentFlags()
	f.StringVar(&a.opts.configPath, "config", "config.yaml", "Path to the settings document")
	f.StringVar(&a.opts.envFile, "env-file", ".env", "Dotenv file seeding the environment")
	f.StringVar(&a.opts.logFormat, "log-format", "text", "Log format: text or json")
	f.StringVar(&a.opts.logLevel, "log-level", "info", "Log level: debug, info, warn or error")

	cmd.AddCommand(
		newRouteCmd(a),
		newExtractCmd(a),
		newEvaluateCmd(a),
		newRunCmd(a),
		newWatchCmd(a),
		newLedgerCmd(a),
	)
	return cmd
}

func (a *App) setup(cmd *cobra.Command) error {
	logger, err := newLogger(a.logOut, a.opts.logFormat, a.opts.logLevel)
	if err != nil {
		return err
	}
	a.logger = logger
	slog.SetDefault(logger)

	if err := common.LoadEnvFile(a.opts.envFile, logger); err != nil {
		return err
	}
	a.cfg = common.LoadConfig()

	settings, err := common.LoadSettings(a.opts.configPath)
	if err != nil {
		return err
	}
	a.settings = settings

	runID := uuid.NewString()
	a.logger = a.logger.With("run_id", runID)
	cmd.SetContext(common.WithRunID(cmd.Context(), runID))
	a.logger.Info("run.start", "command", cmd.Name(), "config", a.opts.configPath, "fields", settings.FieldSet().Sorted())
	return nil
}

func newLogger(w io.Writer, format, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q: %w", level, err)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("invalid --log-format %q", format)
}
