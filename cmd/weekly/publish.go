package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	exportapp "weekly/internal/export/application"
	exportinfra "weekly/internal/export/infrastructure"
	"weekly/internal/reconcile/application"
)

func newPublishCmd(a *app) *cobra.Command {
	var driver, dsn string
	var weeks []int

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Mirror the weekly fact snapshot into the SQL warehouse",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("driver") {
				driver = a.cfg.WarehouseDriver
			}
			if dsn == "" {
				dsn = a.cfg.WarehouseDSN
			}
			if dsn == "" {
				return fmt.Errorf("warehouse dsn is required (--dsn or WEEKLY_WAREHOUSE_DSN)")
			}

			db, dialect, err := exportinfra.OpenWarehouse(driver, dsn)
			if err != nil {
				return err
			}
			defer db.Close()

			stores := application.NewStores(a.cfg, a.logger)
			svc := exportapp.NewPublishService(stores.WeeklyFact, exportinfra.NewWeeklyFactRepository(db, dialect), a.logger)
			res, err := svc.Publish(cmd.Context(), weeks)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d rows for weeks %v\n", color.GreenString("published"), res.Rows, res.Weeks)
			return nil
		},
	}
	cmd.Flags().StringVar(&driver, "driver", "postgres", "warehouse driver: postgres or sqlite")
	cmd.Flags().StringVar(&dsn, "dsn", "", "warehouse connection string")
	cmd.Flags().IntSliceVar(&weeks, "week", nil, "weeks to publish (default all)")
	return cmd
}
