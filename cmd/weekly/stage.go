package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	ingestinfra "weekly/internal/ingest/infrastructure"
	shareddomain "weekly/internal/shared/domain"
)

func newStageCmd(a *app) *cobra.Command {
	var kind, brand string
	var week int

	cmd := &cobra.Command{
		Use:   "stage [files...]",
		Short: "Copy uploaded spreadsheets into the raw input layout",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if week == 0 {
				week = shareddomain.WeekRangeOf(time.Now()).Number()
			}
			written, err := ingestinfra.StageFiles(a.cfg, kind, brand, week, args)
			for _, path := range written {
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			return err
		},
	}
	cmd.Flags().StringVar(&kind, "type", "", "upload type: sales, inventory, ams or master")
	cmd.Flags().StringVar(&brand, "brand", "", "brand folder")
	cmd.Flags().IntVar(&week, "week", 0, "week number (default current week)")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}
