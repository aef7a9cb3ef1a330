package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"weekly/internal/config"
	sharedinfra "weekly/internal/shared/infrastructure"
)

// app état partagé par les sous-commandes, initialisé avant chaque exécution
type app struct {
	configFile string
	dataDir    string
	logLevel   string
	workers    int

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "weekly",
		Short:         "Reconcile weekly seller spreadsheets into derived weekly facts",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default ./weekly.yaml)")
	flags.StringVar(&a.dataDir, "data-dir", "", "base data directory (overrides WEEKLY_DATA_DIR)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.IntVar(&a.workers, "workers", 0, "parallel brand units per stage")

	root.AddCommand(
		newRunCmd(a),
		newPublishCmd(a),
		newExportCmd(a),
		newStageCmd(a),
		newWatchCmd(a),
		newWeekCmd(a),
		newSummaryCmd(a),
	)
	return root
}

// init charge la configuration et applique les surcharges de la ligne de commande
func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configFile)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("data-dir") {
		cfg.DataDir = a.dataDir
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = a.workers
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := sharedinfra.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}
