package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/syntrixbase/wordlog/internal/config"
	"github.com/syntrixbase/wordlog/internal/logging"
	"github.com/syntrixbase/wordlog/internal/record"
	"github.com/syntrixbase/wordlog/internal/services"
)

// app carries state shared by the subcommands of one invocation.
type app struct {
	configDir string
	verbose   bool
	cfg       *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "wordlog",
		Short:         "Daily word log with paged history per area",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd.Name() == "serve")
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return logging.Shutdown()
		},
	}

	root.PersistentFlags().StringVarP(&a.configDir, "config", "c", config.DefaultConfigDir, "configuration directory")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log at the configured level instead of warnings only")

	root.AddCommand(
		newServeCmd(a),
		newAddCmd(a),
		newClearCmd(a),
		newWordsCmd(a),
		newPageCmd(a),
		newCountCmd(a),
		newWatchCmd(a),
		newTokenCmd(a),
	)
	return root
}

// load reads the configuration and installs the logger. One-shot commands
// print results on stdout, so their console logging is quieted.
func (a *app) load(serving bool) error {
	cfg, err := config.LoadConfig(a.configDir)
	if err != nil {
		return err
	}
	if !serving && !a.verbose {
		cfg.Logging.Console.Level = "warn"
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

// withBook opens storage for the duration of fn.
func (a *app) withBook(ctx context.Context, fn func(*record.Book) error) error {
	mgr := services.NewManager(a.cfg, services.Options{})
	defer shutdown(mgr, a)

	if err := mgr.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	slog.Debug("Storage ready", "type", a.cfg.Storage.Type)
	return fn(mgr.Book())
}
