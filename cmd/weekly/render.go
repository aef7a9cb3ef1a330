package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	analyticsdomain "weekly/internal/analytics/domain"
	"weekly/internal/reconcile/application"
	shareddomain "weekly/internal/shared/domain"
)

// renderReport affiche le bilan d'un run: statut, snapshots écrits, incidents
func renderReport(w io.Writer, r *application.Report) {
	if r == nil {
		return
	}
	fmt.Fprintf(w, "run %s: %s in %s\n", r.RunID, statusColor(r.Status), r.Duration().Round(time.Millisecond))

	if len(r.Outputs) > 0 {
		table := newTable(w, []string{"Stage", "Output", "Rows", "Added", "Skipped", "Replaced", "Dropped"})
		for _, o := range r.Outputs {
			table.Append([]string{
				o.Stage,
				o.Path,
				strconv.Itoa(o.Rows),
				strconv.Itoa(o.Added),
				strconv.Itoa(o.Skipped),
				strconv.Itoa(o.Replaced),
				strconv.Itoa(o.Dropped),
			})
		}
		table.Render()
	}

	for _, b := range r.BrandsSkipped {
		fmt.Fprintf(w, "%s %s\n", color.YellowString("skipped"), b)
	}
	for _, issue := range r.Issues {
		fmt.Fprintln(w, severityColor(issue.Severity)("%s", issue.String()))
	}
}

// renderSummary affiche la synthèse d'une semaine
func renderSummary(w io.Writer, s *analyticsdomain.WeeklySummary) {
	t := s.Totals()
	m := s.Metrics()
	fmt.Fprintf(w, "%s: GMV %s, units %s, spend %s, ACOS %s, TACOS %s\n",
		shareddomain.WeekLabel(s.Week()),
		shareddomain.FormatAmount(t.GMV),
		shareddomain.FormatAmount(t.Units),
		shareddomain.FormatAmount(t.Spend),
		ratioCell(m.ACOS),
		ratioCell(m.TACOS),
	)

	sections := []struct {
		title string
		stats []*analyticsdomain.GroupStats
	}{
		{"Brand", s.BrandStats()},
		{"Category", s.CategoryStats()},
		{"Model", s.TopModels()},
		{"Channel", s.ChannelStats()},
	}
	for _, section := range sections {
		if len(section.stats) == 0 {
			continue
		}
		table := newTable(w, []string{section.title, "GMV", "Units", "Spend", "ACOS", "Contribution"})
		for _, g := range section.stats {
			gt := g.Totals()
			gm := gt.Metrics(t.GMV)
			table.Append([]string{
				g.Name(),
				shareddomain.FormatAmount(gt.GMV),
				shareddomain.FormatAmount(gt.Units),
				shareddomain.FormatAmount(gt.Spend),
				ratioCell(gm.ACOS),
				ratioCell(gm.ContributionPct),
			})
		}
		table.Render()
	}
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	return table
}

func ratioCell(r shareddomain.Ratio) string {
	if !r.Valid() {
		return "-"
	}
	return r.String()
}

func statusColor(s application.Status) string {
	switch s {
	case application.StatusSuccess:
		return color.GreenString(string(s))
	case application.StatusPartial:
		return color.YellowString(string(s))
	default:
		return color.RedString(string(s))
	}
}

func severityColor(s shareddomain.Severity) func(format string, a ...interface{}) string {
	switch s {
	case shareddomain.SeverityFatalRun, shareddomain.SeverityFatalFile:
		return color.RedString
	case shareddomain.SeverityFatalRow, shareddomain.SeverityDefaulted:
		return color.YellowString
	default:
		return color.WhiteString
	}
}
