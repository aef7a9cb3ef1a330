package application

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"weekly/internal/config"
	ingestinfra "weekly/internal/ingest/infrastructure"
	shareddomain "weekly/internal/shared/domain"
	"weekly/internal/testhelpers"
)

func TestMain(m *testing.M) {
	// décodeur zstd démarré à l'initialisation de parquet-go
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("github.com/klauspost/compress/zstd.(*blockDec).startDecoder"))
}

// ========================================
// Fixtures
// ========================================

// newDataDir écrit un jeu complet: master, ventes, inventaire et AMS pour Rivolta semaine 5
func newDataDir(t testing.TB) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.DataDir = filepath.Join(t.TempDir(), "data")
	cfg.Workers = 2

	testhelpers.WriteWorkbook(t, cfg.MasterFile(), testhelpers.NewSheet("Master",
		[]string{"Model", "SKU", "ASIN", "Brand", "NLC", "Category L0", "Category L1", "Category L2"},
		testhelpers.Row("M1", "S1", "B1", "Rivolta", 10, "Home", "Kitchen", "Mixer"),
		testhelpers.Row("M2", "S2", "B2", "Rivolta", 20, "Home", "Kitchen", "Kettle"),
	))

	writeAmazonSales(t, cfg, 4, 400)
	testhelpers.WriteWorkbook(t, filepath.Join(cfg.RawSalesDir(), "Week 5", "Rivolta", "other_channels.xlsx"),
		testhelpers.NewSheet("Flipkart", []string{"SKU", "Qty", "Sale Amount"},
			testhelpers.Row("S2", 2, 180),
		))

	testhelpers.WriteWorkbook(t, filepath.Join(cfg.RawInventoryDir(), "Week 5", "Rivolta", "stock.xlsx"),
		testhelpers.NewSheet("Stock", []string{"Model", "Qty"},
			testhelpers.Row("M1", 10),
			testhelpers.Row("m1", 6),
		))
	testhelpers.WriteWorkbook(t, filepath.Join(cfg.RawInventoryDir(), "Week 5", "Rivolta", ingestinfra.PositionSnapshotName),
		testhelpers.NewSheet("Positions", []string{"Model", "Channel", "Type", "Qty"},
			testhelpers.Row("M1", "Amazon", "FBA", 12),
			testhelpers.Row("M1", "Website", "Warehouse", 4),
		))

	brandDir := filepath.Join(cfg.AMSDir(), "Rivolta")
	testhelpers.WriteWorkbook(t, filepath.Join(brandDir, "business_report_week5.xlsx"),
		testhelpers.NewSheet("Business", []string{"(Parent) ASIN", "(Child) ASIN", "Sessions - Total", "Units Ordered", "Ordered Product Sales"},
			testhelpers.Row("P1", "B1", 100, 4, 400),
		))
	testhelpers.WriteWorkbook(t, filepath.Join(brandDir, "ads_report_week5.xlsx"),
		testhelpers.NewSheet("SP", []string{"Advertised ASIN", "Spend", "Clicks", "Impressions", "7 Day Total Sales", "7 Day Total Orders"},
			testhelpers.Row("B1", 50, 25, 1000, 200, 2),
		),
		testhelpers.NewSheet("SB", []string{"Campaign Name", "Spend", "Clicks", "Impressions", "14 Day Total Sales", "14 Day Total Orders"},
			testhelpers.Row("Brand Hero", 30, 10, 500, 60, 1),
		),
	)
	return cfg
}

func writeAmazonSales(t testing.TB, cfg *config.Config, units, sales float64) {
	t.Helper()
	testhelpers.WriteWorkbook(t, filepath.Join(cfg.RawSalesDir(), "Week 5", "Rivolta", "amazon_sales.xlsx"),
		testhelpers.NewSheet("Sheet1", []string{"Model", "Units Ordered", "Ordered Product Sales"},
			testhelpers.Row("M1", units, sales),
		))
}

func outputs(cfg *config.Config) []string {
	return []string{
		cfg.SalesSnapshot(),
		cfg.InventoryModelSnapshot(),
		cfg.InventoryAMSSnapshot(),
		cfg.AdsAggregated(),
		cfg.AMSFact(),
		cfg.AMSFactWithCategory(),
		cfg.WeeklyFact(),
	}
}

func findRecord(t *testing.T, records []map[string]string, match map[string]string) map[string]string {
	t.Helper()
	for _, r := range records {
		ok := true
		for k, v := range match {
			if r[k] != v {
				ok = false
				break
			}
		}
		if ok {
			return r
		}
	}
	t.Fatalf("no record matching %v in %v", match, records)
	return nil
}

// ========================================
// Tests: Runner
// ========================================

func TestRunner_FullRun(t *testing.T) {
	cfg := newDataDir(t)
	runner := NewRunner(cfg, nil, zaptest.NewLogger(t))

	report, err := runner.Run(context.Background(), RunOptions{})

	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, report.Status)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, AllStages, report.Stages)
	assert.Empty(t, report.BrandsSkipped)
	for _, path := range outputs(cfg) {
		assert.FileExists(t, path)
	}
	assert.Len(t, report.Outputs, len(outputs(cfg)))

	sales := testhelpers.Records(t, cfg.SalesSnapshot())
	require.Len(t, sales, 2)
	amazon := findRecord(t, sales, map[string]string{"channel": "Amazon"})
	assert.Equal(t, "Week 5", amazon["week"])
	assert.Equal(t, "S1", amazon["sku"])
	assert.Equal(t, "Rivolta", amazon["brand"])
	assert.Equal(t, "40", amazon["sales_nlc"])
	flipkart := findRecord(t, sales, map[string]string{"channel": "Flipkart"})
	assert.Equal(t, "M2", flipkart["model"])
	assert.Equal(t, "MAPPED", flipkart["sku_status"])

	inventory := testhelpers.Records(t, cfg.InventoryModelSnapshot())
	require.Len(t, inventory, 1)
	assert.Equal(t, "16", inventory[0]["inventory_units"])
	assert.Equal(t, "160", inventory[0]["inventory_value"])

	weekly := testhelpers.Records(t, cfg.WeeklyFact())
	require.Len(t, weekly, 2)
	m1 := findRecord(t, weekly, map[string]string{"model": "M1"})
	assert.Equal(t, "Rivolta", m1["brand"])
	assert.Equal(t, "400", m1["gmv"])
	assert.Equal(t, "50", m1["spend"])
	assert.Equal(t, "0.25", m1["acos"])
	assert.Equal(t, "16", m1["inventory_units"])
	assert.Equal(t, "0.25", m1["sell_through_pct"])
	assert.Equal(t, "1", m1["contribution_to_sales_pct"])

	sb := findRecord(t, weekly, map[string]string{"model": "SB"})
	assert.Equal(t, "SB", sb["channel"])
	assert.Equal(t, "0.5", sb["acos"])
	assert.Equal(t, "", sb["tacos"])
	assert.Equal(t, "", sb["inventory_units"])

	categorized := testhelpers.Records(t, cfg.AMSFactWithCategory())
	sbCategory := findRecord(t, categorized, map[string]string{"resolved_model": "SB"})
	assert.Equal(t, "Brand Hero", sbCategory["category_l2"])
}

func TestRunner_RerunIsByteIdentical(t *testing.T) {
	cfg := newDataDir(t)
	runner := NewRunner(cfg, nil, zaptest.NewLogger(t))

	_, err := runner.Run(context.Background(), RunOptions{})
	require.NoError(t, err)
	first := make(map[string]string)
	for _, path := range outputs(cfg) {
		first[path] = testhelpers.ReadFile(t, path)
	}

	report, err := runner.Run(context.Background(), RunOptions{})
	require.NoError(t, err)

	for _, path := range outputs(cfg) {
		assert.Equal(t, first[path], testhelpers.ReadFile(t, path), path)
	}
	assert.Equal(t, StatusSuccess, report.Status)
}

// TestRunner_RerunKeepsAveragedBuyBox vérifie qu'une moyenne de buy-box non décimale
// donne le même fait hebdomadaire qu'il soit calculé en mémoire ou depuis le snapshot ASIN
func TestRunner_RerunKeepsAveragedBuyBox(t *testing.T) {
	cfg := config.Default()
	cfg.DataDir = filepath.Join(t.TempDir(), "data")
	testhelpers.WriteWorkbook(t, cfg.MasterFile(), testhelpers.NewSheet("Master",
		[]string{"Model", "SKU", "ASIN", "Brand", "NLC"},
		testhelpers.Row("M1", "S1", "B1", "Rivolta", 10),
		testhelpers.Row("M1", "S1B", "B2", "Rivolta", 10),
	))
	testhelpers.WriteWorkbook(t, filepath.Join(cfg.AMSDir(), "Rivolta", "business_report_week5.xlsx"),
		testhelpers.NewSheet("Business", []string{"(Child) ASIN", "Sessions - Total", "Featured Offer Percentage", "Units Ordered", "Ordered Product Sales"},
			testhelpers.Row("B1", 10, 85.17, 1, 100),
			testhelpers.Row("B1", 10, 90.01, 1, 100),
			testhelpers.Row("B1", 10, 77.5, 1, 100),
			testhelpers.Row("B2", 10, 91.1, 1, 100),
		))
	runner := NewRunner(cfg, nil, zaptest.NewLogger(t))
	opts := RunOptions{Stages: []string{StageAMS}}

	_, err := runner.Run(context.Background(), opts)
	require.NoError(t, err)
	first := testhelpers.ReadFile(t, cfg.WeeklyFact())
	firstCategory := testhelpers.ReadFile(t, cfg.AMSFactWithCategory())

	_, err = runner.Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, first, testhelpers.ReadFile(t, cfg.WeeklyFact()))
	assert.Equal(t, firstCategory, testhelpers.ReadFile(t, cfg.AMSFactWithCategory()))
	m1 := findRecord(t, testhelpers.Records(t, cfg.WeeklyFact()), map[string]string{"model": "M1"})
	assert.NotEmpty(t, m1["buy_box_pct"])
}

func TestRunner_ShortWeekFolder(t *testing.T) {
	cfg := newDataDir(t)
	require.NoError(t, os.Rename(filepath.Join(cfg.RawSalesDir(), "Week 5"), filepath.Join(cfg.RawSalesDir(), "W52")))
	runner := NewRunner(cfg, nil, zaptest.NewLogger(t))

	report, err := runner.Run(context.Background(), RunOptions{Stages: []string{StageSales}})

	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, report.Status)
	amazon := findRecord(t, testhelpers.Records(t, cfg.SalesSnapshot()), map[string]string{"channel": "Amazon"})
	assert.Equal(t, "Week 52", amazon["week"])
	assert.Equal(t, "4", amazon["units_sold"])
}

func TestRunner_ForceReplacesPartitions(t *testing.T) {
	cfg := newDataDir(t)
	runner := NewRunner(cfg, nil, zaptest.NewLogger(t))
	_, err := runner.Run(context.Background(), RunOptions{Stages: []string{StageSales}})
	require.NoError(t, err)

	writeAmazonSales(t, cfg, 10, 1000)

	_, err = runner.Run(context.Background(), RunOptions{Stages: []string{StageSales}})
	require.NoError(t, err)
	amazon := findRecord(t, testhelpers.Records(t, cfg.SalesSnapshot()), map[string]string{"channel": "Amazon"})
	assert.Equal(t, "4", amazon["units_sold"])

	_, err = runner.Run(context.Background(), RunOptions{Stages: []string{StageSales}, Force: true})
	require.NoError(t, err)
	records := testhelpers.Records(t, cfg.SalesSnapshot())
	assert.Len(t, records, 2)
	amazon = findRecord(t, records, map[string]string{"channel": "Amazon"})
	assert.Equal(t, "10", amazon["units_sold"])
}

func TestRunner_PartialOnBrokenBusinessReport(t *testing.T) {
	cfg := newDataDir(t)
	testhelpers.WriteWorkbook(t, filepath.Join(cfg.AMSDir(), "Broken", "business_report_week5.xlsx"),
		testhelpers.NewSheet("Business", []string{"Title"}, testhelpers.Row("no asin")))
	runner := NewRunner(cfg, nil, zaptest.NewLogger(t))

	report, err := runner.Run(context.Background(), RunOptions{Stages: []string{StageAMS}})

	require.NoError(t, err)
	assert.Equal(t, StatusPartial, report.Status)
	assert.Equal(t, []string{"ams:Week 5:Broken"}, report.BrandsSkipped)
	assert.Positive(t, countSeverity(report.Issues, shareddomain.SeverityFatalFile))

	weekly := testhelpers.Records(t, cfg.WeeklyFact())
	for _, r := range weekly {
		assert.NotEqual(t, "Broken", r["brand"])
	}
}

func TestRunner_StageFilter(t *testing.T) {
	cfg := newDataDir(t)
	runner := NewRunner(cfg, nil, zaptest.NewLogger(t))

	report, err := runner.Run(context.Background(), RunOptions{Stages: []string{"sales"}})

	require.NoError(t, err)
	assert.Equal(t, []string{StageSales}, report.Stages)
	assert.FileExists(t, cfg.SalesSnapshot())
	assert.NoFileExists(t, cfg.WeeklyFact())
	assert.Equal(t, map[string]int{cfg.SalesSnapshot(): 2}, report.RowsWritten())
}

func TestRunner_MissingMasterIsFatal(t *testing.T) {
	cfg := newDataDir(t)
	require.NoError(t, os.Remove(cfg.MasterFile()))
	runner := NewRunner(cfg, nil, zaptest.NewLogger(t))

	report, err := runner.Run(context.Background(), RunOptions{})

	require.Error(t, err)
	assert.True(t, errors.Is(err, shareddomain.ErrMissingInput))
	assert.Equal(t, StatusError, report.Status)
	assert.Equal(t, 1, countSeverity(report.Issues, shareddomain.SeverityFatalRun))
	assert.NoFileExists(t, cfg.SalesSnapshot())
}

func TestRunner_MissingInputsAreSkipped(t *testing.T) {
	cfg := newDataDir(t)
	require.NoError(t, os.Remove(filepath.Join(cfg.RawSalesDir(), "Week 5", "Rivolta", "amazon_sales.xlsx")))
	require.NoError(t, os.Remove(filepath.Join(cfg.RawSalesDir(), "Week 5", "Rivolta", "other_channels.xlsx")))
	runner := NewRunner(cfg, nil, zaptest.NewLogger(t))

	report, err := runner.Run(context.Background(), RunOptions{Stages: []string{StageSales}})

	require.NoError(t, err)
	assert.Equal(t, StatusPartial, report.Status)
	assert.Equal(t, []string{"sales:Week 5:Rivolta"}, report.BrandsSkipped)
	assert.Equal(t, 2, countSeverity(report.Issues, shareddomain.SeverityDiagnostic))
}

func TestRunner_CancelledContext(t *testing.T) {
	cfg := newDataDir(t)
	runner := NewRunner(cfg, nil, zaptest.NewLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := runner.Run(ctx, RunOptions{})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StatusError, report.Status)
}

// ========================================
// Tests: helpers
// ========================================

func TestParseStages(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		want    []string
		wantErr bool
	}{
		{"empty means all", nil, AllStages, false},
		{"canonical order", []string{"ams", "Sales"}, []string{StageSales, StageAMS}, false},
		{"duplicates", []string{"inventory", "inventory"}, []string{StageInventory}, false},
		{"unknown", []string{"orders"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStages(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectBrand(t *testing.T) {
	candidates := config.DefaultBrandCandidates()
	tests := []struct {
		name string
		file ingestinfra.InventoryFile
		want string
	}{
		{"file name pattern", ingestinfra.InventoryFile{Path: "/raw/Week 5/misc/white_stock.xlsx"}, "White Mulberry"},
		{"parent dir pattern", ingestinfra.InventoryFile{Path: "/raw/Week 5/Nexlev/stock.xlsx", BrandFolder: "Nexlev"}, "Nexlev"},
		{"brand folder fallback", ingestinfra.InventoryFile{Path: "/raw/Week 5/rivolta/stock.xlsx", BrandFolder: "rivolta"}, "Rivolta"},
		{"unknown", ingestinfra.InventoryFile{Path: "/raw/Week 5/stock.xlsx"}, UnknownInventoryBrand},
		{"short pattern as word", ingestinfra.InventoryFile{Path: "/raw/Week 5/misc/am_pm stock.xlsx"}, "AMPM"},
		{"long pattern as prefix", ingestinfra.InventoryFile{Path: "/raw/Week 5/misc/AMPMstock.xlsx"}, "AMPM"},
		{"short pattern inside word", ingestinfra.InventoryFile{Path: "/raw/Week 5/Samsung/stock.xlsx", BrandFolder: "Samsung"}, "Samsung"},
		{"short pattern at word start", ingestinfra.InventoryFile{Path: "/raw/Week 5/misc/amazon_stock.xlsx"}, UnknownInventoryBrand},
		{"gramophone", ingestinfra.InventoryFile{Path: "/raw/Week 5/misc/gramophone.xlsx"}, UnknownInventoryBrand},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectBrand(candidates, tt.file))
		})
	}
}

func BenchmarkRunner_Rerun(b *testing.B) {
	cfg := newDataDir(b)
	runner := NewRunner(cfg, nil, nil)
	if _, err := runner.Run(context.Background(), RunOptions{}); err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := runner.Run(context.Background(), RunOptions{}); err != nil {
			b.Fatal(err)
		}
	}
}
