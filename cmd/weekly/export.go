package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	exportapp "weekly/internal/export/application"
	exportdomain "weekly/internal/export/domain"
	"weekly/internal/reconcile/application"
)

func newExportCmd(a *app) *cobra.Command {
	var format, exportType, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the sales snapshot or the weekly fact as CSV or Parquet",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := exportdomain.ParseExportFormat(format)
			if err != nil {
				return err
			}
			t, err := exportdomain.ParseExportType(exportType)
			if err != nil {
				return err
			}
			if out == "" {
				out = defaultExportTarget(a, f, t)
			}
			job, err := exportdomain.NewExportJob(f, t, out)
			if err != nil {
				return err
			}

			stores := application.NewStores(a.cfg, a.logger)
			n, err := exportapp.NewExportService(stores.Sales, stores.WeeklyFact, a.logger).Export(cmd.Context(), job)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d rows to %s\n", n, job.Target())
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "csv", "export format: csv or parquet")
	cmd.Flags().StringVar(&exportType, "type", string(exportdomain.ExportTypeWeeklyFact), "dataset: sales or weekly_fact")
	cmd.Flags().StringVar(&out, "out", "", "target file (default under data/processed)")
	return cmd
}

func defaultExportTarget(a *app, f exportdomain.ExportFormat, t exportdomain.ExportType) string {
	if f == exportdomain.ExportFormatParquet {
		return a.cfg.WeeklyFactParquet()
	}
	return filepath.Join(a.cfg.ProcessedDir(), "export_"+string(t)+".csv")
}
