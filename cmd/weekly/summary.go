package main

import (
	"github.com/spf13/cobra"

	analyticsapp "weekly/internal/analytics/application"
	"weekly/internal/reconcile/application"
)

func newSummaryCmd(a *app) *cobra.Command {
	var week int

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Summarize one week of the weekly fact by brand, category, model and channel",
		RunE: func(cmd *cobra.Command, args []string) error {
			stores := application.NewStores(a.cfg, a.logger)
			svc := analyticsapp.NewSummaryService(stores.WeeklyFact, stores.Sales, nil)
			summary, err := svc.Summarize(cmd.Context(), week)
			if err != nil {
				return err
			}
			renderSummary(cmd.OutOrStdout(), summary)
			return nil
		},
	}
	cmd.Flags().IntVar(&week, "week", 0, "week number (default latest week)")
	return cmd
}
