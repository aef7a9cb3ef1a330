package domain

import (
	"weekly/internal/shared/domain"
)

// MetricInputs mesures additives d'une ligne de fait hebdomadaire
type MetricInputs struct {
	Spend           float64
	AttributedSales float64
	GMV             float64
	Units           float64
	Sessions        float64
	AMSOrders       float64
	Clicks          float64
	InventoryUnits  float64
	HasInventory    bool
}

// DerivedMetricSet ratios dérivés; chaque ratio est nul si son dénominateur est nul ou absent
type DerivedMetricSet struct {
	ACOS               domain.Ratio
	TACOS              domain.Ratio
	ROAS               domain.Ratio
	CAC                domain.Ratio
	ConversionPct      domain.Ratio
	CPC                domain.Ratio
	ContributionPct    domain.Ratio
	AttributedSalesPct domain.Ratio
	OrganicSalesPct    domain.Ratio
	SellThroughPct     domain.Ratio
}

// ComputeMetrics calcule tous les ratios d'une ligne
// weekGMV est le GMV total de la semaine de la ligne (contribution)
func ComputeMetrics(in MetricInputs, weekGMV float64) DerivedMetricSet {
	attributed := domain.SafeDiv(in.AttributedSales, in.GMV)
	// sans ventes attribuées le ROAS reste indéfini, comme l'ACOS
	roas := domain.NullRatio
	if in.AttributedSales != 0 {
		roas = domain.SafeDiv(in.AttributedSales, in.Spend)
	}
	sellThrough := domain.NullRatio
	if in.HasInventory {
		sellThrough = domain.SafeDiv(in.Units, in.InventoryUnits)
	}
	return DerivedMetricSet{
		ACOS:               domain.SafeDiv(in.Spend, in.AttributedSales),
		TACOS:              domain.SafeDiv(in.Spend, in.GMV),
		ROAS:               roas,
		CAC:                domain.SafeDiv(in.Spend, in.AMSOrders),
		ConversionPct:      domain.SafeDiv(in.Units, in.Sessions),
		CPC:                domain.SafeDiv(in.Spend, in.Clicks),
		ContributionPct:    domain.SafeDiv(in.GMV, weekGMV),
		AttributedSalesPct: attributed,
		OrganicSalesPct:    attributed.Complement(),
		SellThroughPct:     sellThrough,
	}
}

// MetricRow ligne de fait sur laquelle les ratios peuvent être recalculés
type MetricRow interface {
	MetricWeek() int
	MetricInputs() MetricInputs
	SetMetrics(DerivedMetricSet)
}

// WeeklyGMV totalise le GMV par semaine
func WeeklyGMV[R MetricRow](rows []R) map[int]float64 {
	totals := make(map[int]float64)
	for _, r := range rows {
		totals[r.MetricWeek()] += r.MetricInputs().GMV
	}
	return totals
}

// ApplyWeeklyContribution recalcule les ratios de toutes les lignes avec le total GMV de leur semaine
// Appelé une seule fois, sur la table complète après fusion
func ApplyWeeklyContribution[R MetricRow](rows []R) {
	totals := WeeklyGMV(rows)
	for _, r := range rows {
		r.SetMetrics(ComputeMetrics(r.MetricInputs(), totals[r.MetricWeek()]))
	}
}
