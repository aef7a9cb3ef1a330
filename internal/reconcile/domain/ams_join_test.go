package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogdomain "weekly/internal/catalog/domain"
	ingestdomain "weekly/internal/ingest/domain"
	shareddomain "weekly/internal/shared/domain"
)

func amsMaster() *catalogdomain.Master {
	return catalogdomain.NewMaster([]catalogdomain.MasterEntry{
		{Model: "X1", SKU: "S1", ASIN: "B1", Brand: "Acme", NLC: 10, Category: catalogdomain.NewCategory("Audio", "Speakers", "Mini")},
		{Model: "Y1", SKU: "S2", ASIN: "C1", Brand: "Acme", NLC: 5},
	})
}

func findFact(t *testing.T, facts []*WeeklyFact, model, channel string) *WeeklyFact {
	t.Helper()
	for _, f := range facts {
		if f.Model == model && f.Channel == channel {
			return f
		}
	}
	t.Fatalf("no weekly fact for model=%s channel=%s", model, channel)
	return nil
}

// ========================================
// Pré-agrégation
// ========================================

func TestAggregateBusiness_MeansBuyBox(t *testing.T) {
	rows := []ingestdomain.BusinessRow{
		{ASIN: "B1", Sessions: 10, BuyBox: 80, Units: 1, GMV: 100},
		{ASIN: "B1", Sessions: 30, BuyBox: 100, Units: 3, GMV: 300, ParentASIN: "P1"},
		{ASIN: "A0", Sessions: 5, BuyBox: 50},
	}

	got := AggregateBusiness(rows)

	want := []BusinessAggregate{
		{ASIN: "A0", BusinessMetrics: BusinessMetrics{Sessions: 5, BuyBox: 50}},
		{ASIN: "B1", ParentASIN: "P1", BusinessMetrics: BusinessMetrics{Sessions: 40, BuyBox: 90, Units: 4, GMV: 400}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("business aggregate mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateAds_MergesSPAndSD(t *testing.T) {
	report := ingestdomain.AdsReport{
		Products: []ingestdomain.AdRow{
			{Type: ingestdomain.AdTypeSP, ASIN: "B1", AdMetrics: ingestdomain.AdMetrics{Spend: 10, Clicks: 4}},
			{Type: ingestdomain.AdTypeSD, ASIN: "B1", AdMetrics: ingestdomain.AdMetrics{Spend: 5, Clicks: 1}},
			{Type: ingestdomain.AdTypeSP, ASIN: "Z9", AdMetrics: ingestdomain.AdMetrics{Spend: 1}},
		},
		Brands: []ingestdomain.SponsoredBrandRow{
			{Campaign: "Launch", AdMetrics: ingestdomain.AdMetrics{Spend: 7}},
			{Campaign: "Launch", AdMetrics: ingestdomain.AdMetrics{Spend: 3}},
		},
	}

	rows := AggregateAds(4, "Acme", report, amsMaster())

	require.Len(t, rows, 3)
	assert.Equal(t, "B1", rows[0].ASIN)
	assert.Equal(t, "X1", rows[0].Model)
	assert.Equal(t, ingestdomain.AdTypeSPSD, rows[0].AdType)
	assert.Equal(t, 15.0, rows[0].Spend)
	assert.Equal(t, "", rows[1].Model, "unknown asin keeps a blank model")
	assert.Equal(t, ingestdomain.SBEntity, rows[2].ASIN)
	assert.Equal(t, 10.0, rows[2].Spend)
}

// ========================================
// Fait ASIN et pont ASIN → Model
// ========================================

func TestBuildAsinFacts_BusinessIsBase(t *testing.T) {
	business := []BusinessAggregate{{ASIN: "B1", BusinessMetrics: BusinessMetrics{GMV: 100}}}
	ads := []AdsAggregateRow{
		{AdType: ingestdomain.AdTypeSPSD, ASIN: "B1", AdMetrics: ingestdomain.AdMetrics{Spend: 9}},
		{AdType: ingestdomain.AdTypeSPSD, ASIN: "NOBIZ", AdMetrics: ingestdomain.AdMetrics{Spend: 1}},
		{AdType: ingestdomain.AdTypeSB, ASIN: ingestdomain.SBEntity, Campaign: "Brand", AdMetrics: ingestdomain.AdMetrics{Spend: 2}},
	}

	facts := BuildAsinFacts(4, "Acme", business, ads)

	// tri par canal publicitaire: "SB" < "SP_SD"
	require.Len(t, facts, 2)
	assert.Equal(t, ingestdomain.AdTypeSB, facts[0].AdChannel)
	assert.Equal(t, "Brand", facts[0].Campaign)
	assert.Equal(t, "B1", facts[1].ASIN)
	assert.Equal(t, 9.0, facts[1].Spend)
}

func TestModelBridge_Resolve(t *testing.T) {
	facts := []*AmsAsinFact{
		{ASIN: "C2", ParentASIN: "P1", ReportModel: "z1", AdChannel: ingestdomain.AdTypeSPSD},
		{ASIN: "C1", ParentASIN: "P1", AdChannel: ingestdomain.AdTypeSPSD},
		{ASIN: "D1", ParentASIN: "P2", ReportModel: "w1", AdChannel: ingestdomain.AdTypeSPSD},
	}
	bridge := NewModelBridge(amsMaster(), facts)

	tests := []struct {
		asin string
		want string
	}{
		{"B1", "X1"},
		{"C2", "Z1"},
		{"P1", "Y1"},
		{"P2", "W1"},
		{"NOPE", UnknownModel},
	}
	for _, tt := range tests {
		t.Run(tt.asin, func(t *testing.T) {
			assert.Equal(t, tt.want, bridge.Resolve(tt.asin))
		})
	}
}

// ========================================
// Fait hebdomadaire
// ========================================

func TestBuildWeeklyFacts_ParentSpendCountedOnce(t *testing.T) {
	master := catalogdomain.NewMaster([]catalogdomain.MasterEntry{
		{Model: "K1", SKU: "K1-S", ASIN: "CH1", Brand: "Acme", NLC: 1},
	})
	facts := []*AmsAsinFact{
		{Week: 2, Brand: "Acme", ASIN: "CH1", ParentASIN: "PAR", AdChannel: ingestdomain.AdTypeSPSD,
			BusinessMetrics: BusinessMetrics{Units: 2, GMV: 200}},
		{Week: 2, Brand: "Acme", ASIN: "CH2", ParentASIN: "PAR", AdChannel: ingestdomain.AdTypeSPSD,
			BusinessMetrics: BusinessMetrics{Units: 1, GMV: 100}},
	}
	ads := []AdsAggregateRow{
		{Week: 2, Brand: "Acme", AdType: ingestdomain.AdTypeSPSD, ASIN: "PAR", AdMetrics: ingestdomain.AdMetrics{Spend: 50, AttributedSales: 100}},
	}

	weekly := BuildWeeklyFacts(facts, ads, master, nil)

	var spend float64
	for _, f := range weekly {
		spend += f.Spend
	}
	assert.Equal(t, 50.0, spend)
	k1 := findFact(t, weekly, "K1", "SP_SD")
	assert.Equal(t, 50.0, k1.Spend)
	assert.Equal(t, 200.0, k1.GMV)
}

func TestBuildWeeklyFacts_NullRatiosOnZeroDenominator(t *testing.T) {
	ads := []AdsAggregateRow{
		{Week: 1, Brand: "Acme", AdType: ingestdomain.AdTypeSPSD, ASIN: "B1", AdMetrics: ingestdomain.AdMetrics{Spend: 50}},
	}

	weekly := BuildWeeklyFacts(nil, ads, amsMaster(), nil)

	f := findFact(t, weekly, "X1", "SP_SD")
	assert.False(t, f.Metrics.ACOS.Valid())
	assert.False(t, f.Metrics.ROAS.Valid())
	assert.False(t, f.Metrics.TACOS.Valid())
}

func TestBuildWeeklyFacts_UnknownBrandFallback(t *testing.T) {
	facts := []*AmsAsinFact{
		{Week: 3, Brand: "Acme", ASIN: "ORPHAN", AdChannel: ingestdomain.AdTypeSPSD, BusinessMetrics: BusinessMetrics{GMV: 10}},
		{Week: 3, Brand: "", ASIN: ingestdomain.SBEntity, AdChannel: ingestdomain.AdTypeSB, Campaign: "x"},
	}
	ads := []AdsAggregateRow{
		{Week: 3, Brand: "", AdType: ingestdomain.AdTypeSB, ASIN: ingestdomain.SBEntity, Campaign: "x", AdMetrics: ingestdomain.AdMetrics{Spend: 1}},
	}

	weekly := BuildWeeklyFacts(facts, ads, amsMaster(), nil)

	require.NotEmpty(t, weekly)
	for _, f := range weekly {
		assert.NotEmpty(t, f.Brand, "model %s", f.Model)
	}
	orphan := findFact(t, weekly, UnknownModel, "SP_SD")
	assert.Equal(t, "UNKNOWN", orphan.Brand)
	assert.Equal(t, catalogdomain.UnknownCategory, orphan.Category)
	sb := findFact(t, weekly, SBModel, SBModel)
	assert.Equal(t, "UNKNOWN", sb.Brand)
}

func TestBuildWeeklyFacts_ContributionSharesWeekTotal(t *testing.T) {
	facts := []*AmsAsinFact{
		{Week: 5, Brand: "Acme", ASIN: "B1", AdChannel: ingestdomain.AdTypeSPSD, BusinessMetrics: BusinessMetrics{GMV: 300}},
		{Week: 5, Brand: "Acme", ASIN: "C1", AdChannel: ingestdomain.AdTypeSPSD, BusinessMetrics: BusinessMetrics{GMV: 100}},
	}

	weekly := BuildWeeklyFacts(facts, nil, amsMaster(), nil)

	x1 := findFact(t, weekly, "X1", "SP_SD")
	y1 := findFact(t, weekly, "Y1", "SP_SD")
	assert.Equal(t, "0.75", x1.Metrics.ContributionPct.String())
	assert.Equal(t, "0.25", y1.Metrics.ContributionPct.String())
}

func TestBuildWeeklyFacts_InventoryAsOf(t *testing.T) {
	inventory := NewInventoryIndex([]InventoryModelRow{
		{Week: 3, Brand: "Acme", Model: "X1", InventoryUnits: 40},
		{Week: 6, Brand: "Acme", Model: "X1", InventoryUnits: 99},
	})
	facts := []*AmsAsinFact{
		{Week: 5, Brand: "Acme", ASIN: "B1", AdChannel: ingestdomain.AdTypeSPSD, BusinessMetrics: BusinessMetrics{Units: 10}},
		{Week: 5, Brand: "Acme", ASIN: "C1", AdChannel: ingestdomain.AdTypeSPSD, BusinessMetrics: BusinessMetrics{Units: 1}},
	}

	weekly := BuildWeeklyFacts(facts, nil, amsMaster(), inventory)

	x1 := findFact(t, weekly, "X1", "SP_SD")
	assert.True(t, x1.HasInventory)
	assert.Equal(t, 40.0, x1.InventoryUnits)
	assert.Equal(t, "0.25", x1.Metrics.SellThroughPct.String())
	y1 := findFact(t, weekly, "Y1", "SP_SD")
	assert.False(t, y1.HasInventory)
	assert.False(t, y1.Metrics.SellThroughPct.Valid())
}

func TestGroupWeeklyFacts_Idempotent(t *testing.T) {
	facts := []*AmsAsinFact{
		{Week: 5, Brand: "Acme", ASIN: "B1", AdChannel: ingestdomain.AdTypeSPSD, BusinessMetrics: BusinessMetrics{GMV: 300, BuyBox: 90}},
		{Week: 5, Brand: "Acme", ASIN: "B1X", ReportModel: "X1", AdChannel: ingestdomain.AdTypeSPSD, BusinessMetrics: BusinessMetrics{GMV: 100, BuyBox: 70}},
	}
	once := BuildWeeklyFacts(facts, nil, amsMaster(), nil)
	twice := GroupWeeklyFacts(once)

	require.Len(t, once, 1)
	assert.Equal(t, 80.0, once[0].BuyBox)
	if diff := cmp.Diff(once, twice, cmpopts.IgnoreUnexported(WeeklyFact{}), cmp.AllowUnexported(shareddomain.Ratio{})); diff != "" {
		t.Errorf("regrouping changed facts (-once +twice):\n%s", diff)
	}
}

// ========================================
// Fait enrichi des catégories
// ========================================

func TestBuildCategoryFacts(t *testing.T) {
	facts := []*AmsAsinFact{
		{Week: 1, Brand: "acme", ASIN: "B1", AdChannel: ingestdomain.AdTypeSPSD},
		{Week: 1, Brand: "acme", ASIN: ingestdomain.SBEntity, AdChannel: ingestdomain.AdTypeSB, Campaign: "Summer"},
	}

	got := BuildCategoryFacts(facts, amsMaster())

	require.Len(t, got, 2)
	byModel := map[string]*AmsCategoryFact{}
	for _, f := range got {
		byModel[f.Model] = f
	}
	assert.Equal(t, "Acme", byModel["X1"].Brand)
	assert.Equal(t, "Audio", byModel["X1"].Category.L0)
	sb := byModel[SBModel]
	require.NotNil(t, sb)
	assert.Equal(t, catalogdomain.Category{L0: "Sponsored Brands", L1: "SB Campaigns", L2: "Summer"}, sb.Category)
	assert.Equal(t, "Acme", sb.Brand)
}
