package infrastructure

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weekly/internal/config"
	"weekly/internal/ingest/domain"
	shareddomain "weekly/internal/shared/domain"
	"weekly/internal/testhelpers"
)

func newTestParser() *Parser {
	return NewParser(config.DefaultAliases(), nil)
}

// ========================================
// Tests: Amazon / Other channels
// ========================================

func TestParser_AmazonSales(t *testing.T) {
	path := testhelpers.WriteWorkbook(t, filepath.Join(t.TempDir(), "amazon_sales.xlsx"),
		testhelpers.NewSheet("Sheet1", []string{"(Parent) ASIN", "Units Ordered", "Ordered Product Sales (₹)"},
			testhelpers.Row(" x1 ", 5, "₹1,200.50"),
			testhelpers.Row("", 3, 10),
			testhelpers.Row("X2", "#######", 40),
		))
	issues := shareddomain.NewIssues()

	rows, err := newTestParser().AmazonSales(domain.Source{Stage: "sales", Week: 5, Path: path}, issues)

	require.NoError(t, err)
	want := []domain.AmazonModelRow{
		{Model: "X1", Units: 5, Sales: 1200.5},
		{Model: "X2", Units: 0, Sales: 40},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1, issues.Count(shareddomain.SeverityFatalRow))
	assert.Equal(t, 1, issues.Count(shareddomain.SeverityDefaulted))
}

func TestParser_AmazonSales_NoIdentity(t *testing.T) {
	path := testhelpers.WriteWorkbook(t, filepath.Join(t.TempDir(), "amazon_sales.xlsx"),
		testhelpers.NewSheet("Sheet1", []string{"Title", "Units Ordered"}, testhelpers.Row("thing", 1)))

	_, err := newTestParser().AmazonSales(domain.Source{Path: path}, nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, shareddomain.ErrNoIdentityColumn))
}

func TestParser_OtherChannels(t *testing.T) {
	path := testhelpers.WriteWorkbook(t, filepath.Join(t.TempDir(), "other_channels.xlsx"),
		testhelpers.NewSheet("Vendor", []string{"SKU", "Qty", "Sale Amount"},
			testhelpers.Row("a1", 5, 100),
			testhelpers.Row("A1", 3, 60),
		),
		testhelpers.NewSheet("Notes", []string{"Comment"}, testhelpers.Row("no sku here")),
		testhelpers.NewSheet("D2C", []string{"Seller SKU", "Quantity"}, testhelpers.Row("B7", 2)),
	)
	issues := shareddomain.NewIssues()

	rows, err := newTestParser().OtherChannels(domain.Source{Stage: "sales", Week: 5, Path: path}, issues)

	require.NoError(t, err)
	want := []domain.ChannelSKURow{
		{Channel: "Vendor", SKU: "A1", Units: 5, Sales: 100},
		{Channel: "Vendor", SKU: "A1", Units: 3, Sales: 60},
		{Channel: "D2C", SKU: "B7", Units: 2, Sales: 0},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1, issues.Count(shareddomain.SeverityFatalFile))
	assert.Equal(t, 1, issues.Count(shareddomain.SeverityDefaulted))
}

// ========================================
// Tests: Business / Ads
// ========================================

func TestParser_BusinessReport(t *testing.T) {
	path := testhelpers.WriteWorkbook(t, filepath.Join(t.TempDir(), "business_report_week5.xlsx"),
		testhelpers.NewSheet("Sheet1",
			[]string{"(Parent) ASIN", "(Child) ASIN", "Model", "Sessions - Total", "Featured Offer (Buy Box) Percentage", "Units Ordered", "Ordered Product Sales"},
			testhelpers.Row("P1", "C1", "x1", 100, "95.5%", 4, "₹400"),
			testhelpers.Row("P1", "C2", "", 50, "80%", 1, 100),
		))

	rows, err := newTestParser().BusinessReport(domain.Source{Path: path}, nil)

	require.NoError(t, err)
	want := []domain.BusinessRow{
		{ASIN: "C1", ParentASIN: "P1", Model: "X1", Sessions: 100, BuyBox: 95.5, Units: 4, GMV: 400},
		{ASIN: "C2", ParentASIN: "P1", Sessions: 50, BuyBox: 80, Units: 1, GMV: 100},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestParser_BusinessReport_ParentFallback(t *testing.T) {
	path := testhelpers.WriteWorkbook(t, filepath.Join(t.TempDir(), "business_report_week5.xlsx"),
		testhelpers.NewSheet("Sheet1", []string{"Parent ASIN", "Units Ordered"}, testhelpers.Row("P1", 2)))

	rows, err := newTestParser().BusinessReport(domain.Source{Path: path}, nil)

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "P1", rows[0].ASIN)
	assert.Equal(t, "", rows[0].ParentASIN)
}

func TestParser_AdsReport(t *testing.T) {
	header := []string{"Advertised ASIN", "Spend", "Clicks", "Impressions", "14 Day Total Sales (₹)", "14 Day Total Units (#)"}
	path := testhelpers.WriteWorkbook(t, filepath.Join(t.TempDir(), "ads_report_week5.xlsx"),
		testhelpers.NewSheet("SP", header, testhelpers.Row("B1", 50, 10, 1000, 0, 0)),
		testhelpers.NewSheet("SD", header, testhelpers.Row("B1", 5, 1, 100, 20, 1)),
		testhelpers.NewSheet("SB", []string{"Campaign Name", "Spend", "Clicks", "Impressions", "14 Day Total Sales (₹)", "14 Day Total Units (#)"},
			testhelpers.Row("Brand Push", 30, 3, 300, 90, 2),
			testhelpers.Row("", 1, 0, 0, 0, 0),
		),
	)

	report, err := newTestParser().AdsReport(domain.Source{Path: path}, nil)

	require.NoError(t, err)
	want := domain.AdsReport{
		Products: []domain.AdRow{
			{Type: domain.AdTypeSP, ASIN: "B1", AdMetrics: domain.AdMetrics{Spend: 50, Clicks: 10, Impressions: 1000}},
			{Type: domain.AdTypeSD, ASIN: "B1", AdMetrics: domain.AdMetrics{Spend: 5, Clicks: 1, Impressions: 100, AttributedSales: 20, Orders: 1}},
		},
		Brands: []domain.SponsoredBrandRow{
			{Campaign: "Brand Push", AdMetrics: domain.AdMetrics{Spend: 30, Clicks: 3, Impressions: 300, AttributedSales: 90, Orders: 2}},
			{Campaign: "SB", AdMetrics: domain.AdMetrics{Spend: 1}},
		},
	}
	if diff := cmp.Diff(want, report); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}
}

func TestParser_AdsReport_MissingSheetsAndIdentity(t *testing.T) {
	path := testhelpers.WriteWorkbook(t, filepath.Join(t.TempDir(), "ads_report_week5.xlsx"),
		testhelpers.NewSheet("SP", []string{"Campaign", "Spend"}, testhelpers.Row("c", 1)))
	issues := shareddomain.NewIssues()

	report, err := newTestParser().AdsReport(domain.Source{Path: path}, issues)

	require.NoError(t, err)
	assert.Empty(t, report.Products)
	assert.Equal(t, 1, issues.Count(shareddomain.SeverityFatalFile))
	assert.Equal(t, 2, issues.Count(shareddomain.SeverityDiagnostic))
}

// ========================================
// Tests: Inventory
// ========================================

func TestParser_Inventory_WeekColumn(t *testing.T) {
	path := testhelpers.WriteWorkbook(t, filepath.Join(t.TempDir(), "stock.xlsx"),
		testhelpers.NewSheet("Sheet1", []string{"Model", "Qty", "Week"},
			testhelpers.Row("x1", 10, "Week 3"),
			testhelpers.Row("X1", 5, "W4"),
			testhelpers.Row("X2", 1, "none yet"),
		))
	issues := shareddomain.NewIssues()

	rows, err := newTestParser().Inventory(domain.Source{Path: path, Week: 9}, issues)

	require.NoError(t, err)
	assert.Equal(t, []domain.InventoryRow{{Week: 3, Model: "X1", Qty: 10}, {Week: 4, Model: "X1", Qty: 5}}, rows)
	assert.Equal(t, 1, issues.Count(shareddomain.SeverityFatalRow))
}

func TestParser_Inventory_FolderWeek(t *testing.T) {
	path := testhelpers.WriteWorkbook(t, filepath.Join(t.TempDir(), "stock.xlsx"),
		testhelpers.NewSheet("Sheet1", []string{"Model", "Quantity"}, testhelpers.Row("X1", 7)))

	rows, err := newTestParser().Inventory(domain.Source{Path: path, Week: 9}, nil)
	require.NoError(t, err)
	assert.Equal(t, []domain.InventoryRow{{Week: 9, Model: "X1", Qty: 7}}, rows)

	_, err = newTestParser().Inventory(domain.Source{Path: path}, nil)
	assert.ErrorIs(t, err, shareddomain.ErrInvalidWeekFormat)
}

func TestParser_InventoryPositions(t *testing.T) {
	path := testhelpers.WriteWorkbook(t, filepath.Join(t.TempDir(), "Inventory Snapshot.xlsx"),
		testhelpers.NewSheet("Sheet1", []string{"Model", "Channel", "Type", "Qty", "Week"},
			testhelpers.Row("x1", "ampm", "on hand", 10, "Week 3"),
			testhelpers.Row("X1", "Amazon", "In-Transit", 4, "3"),
		))

	rows, err := newTestParser().InventoryPositions(domain.Source{Path: path}, nil)

	require.NoError(t, err)
	assert.Equal(t, []domain.InventoryPositionRow{
		{Week: 3, Model: "X1", Channel: "AMPM", Type: "ON HAND", Qty: 10},
		{Week: 3, Model: "X1", Channel: "AMAZON", Type: "IN-TRANSIT", Qty: 4},
	}, rows)
}
