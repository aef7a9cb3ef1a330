package main

import (
	"github.com/spf13/cobra"

	"weekly/internal/reconcile/application"
	sharedinfra "weekly/internal/shared/infrastructure"
)

func newRunCmd(a *app) *cobra.Command {
	var stages []string
	var force bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the sales, inventory and AMS stages",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache := sharedinfra.NewInMemoryCache(0)
			defer cache.Close()

			runner := application.NewRunner(a.cfg, cache, a.logger)
			report, err := runner.Run(cmd.Context(), application.RunOptions{Stages: stages, Force: force})
			renderReport(cmd.OutOrStdout(), report)
			return err
		},
	}
	cmd.Flags().StringSliceVar(&stages, "stage", nil, "stages to run: sales, inventory, ams (default all)")
	cmd.Flags().BoolVar(&force, "force", false, "reprocess and replace partitions already written")
	return cmd
}
