package domain

import (
	analyticsdomain "weekly/internal/analytics/domain"
)

// metricsHeader colonnes des ratios dérivés, dans l'ordre d'écriture
var metricsHeader = []string{
	"acos", "tacos", "roas", "cac", "conversion_pct", "cpc",
	"contribution_to_sales_pct", "attributed_sales_pct", "organic_sales_pct", "sell_through_pct",
}

func encodeMetrics(m analyticsdomain.DerivedMetricSet) []string {
	return []string{
		m.ACOS.String(), m.TACOS.String(), m.ROAS.String(), m.CAC.String(),
		m.ConversionPct.String(), m.CPC.String(), m.ContributionPct.String(),
		m.AttributedSalesPct.String(), m.OrganicSalesPct.String(), m.SellThroughPct.String(),
	}
}

func (r *record) metrics() analyticsdomain.DerivedMetricSet {
	return analyticsdomain.DerivedMetricSet{
		ACOS:               r.ratio("acos"),
		TACOS:              r.ratio("tacos"),
		ROAS:               r.ratio("roas"),
		CAC:                r.ratio("cac"),
		ConversionPct:      r.ratio("conversion_pct"),
		CPC:                r.ratio("cpc"),
		ContributionPct:    r.ratio("contribution_to_sales_pct"),
		AttributedSalesPct: r.ratio("attributed_sales_pct"),
		OrganicSalesPct:    r.ratio("organic_sales_pct"),
		SellThroughPct:     r.ratio("sell_through_pct"),
	}
}
