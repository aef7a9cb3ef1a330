package main

import (
	"context"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"weekly/internal/config"
	"weekly/internal/reconcile/application"
	reconcileinfra "weekly/internal/reconcile/infrastructure"
	sharedinfra "weekly/internal/shared/infrastructure"
)

func newWatchCmd(a *app) *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-run the pipeline whenever raw inputs change",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache := sharedinfra.NewInMemoryCache(time.Minute)
			defer cache.Close()
			runner := application.NewRunner(a.cfg, cache, a.logger)

			trigger := func(ctx context.Context) error {
				report, err := runner.Run(ctx, application.RunOptions{})
				renderReport(cmd.OutOrStdout(), report)
				return err
			}
			roots := []string{a.cfg.RawSalesDir(), a.cfg.RawInventoryDir(), a.cfg.AMSDir(), filepath.Dir(a.cfg.MasterFile())}
			w, err := reconcileinfra.NewRawWatcher(roots, debounce, trigger, a.logger)
			if err != nil {
				return err
			}
			for name := range config.ReservedAMSDirs {
				w.Ignore(name)
			}
			a.logger.Info("watching raw inputs", zap.Strings("roots", roots), zap.Duration("debounce", debounce))
			return w.Run(cmd.Context())
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", reconcileinfra.DefaultDebounce, "quiet period before a re-run")
	return cmd
}
