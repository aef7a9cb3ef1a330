package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	shareddomain "weekly/internal/shared/domain"
)

func newWeekCmd(a *app) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "week",
		Short: "Print the current Saturday-start week",
		RunE: func(cmd *cobra.Command, args []string) error {
			day := time.Now()
			if date != "" {
				parsed, err := time.Parse("2006-01-02", date)
				if err != nil {
					return fmt.Errorf("invalid date %q: %w", date, err)
				}
				day = parsed
			}
			wr := shareddomain.WeekRangeOf(day)
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", shareddomain.WeekLabel(wr.Number()), wr.Label())
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "reference date YYYY-MM-DD (default today)")
	return cmd
}
