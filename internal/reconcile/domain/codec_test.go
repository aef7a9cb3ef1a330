package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	analyticsdomain "weekly/internal/analytics/domain"
	catalogdomain "weekly/internal/catalog/domain"
	exportdomain "weekly/internal/export/domain"
	ingestdomain "weekly/internal/ingest/domain"
	shareddomain "weekly/internal/shared/domain"
)

// reencode relit une ligne encodée comme le ferait le store CSV
func reencode[T any](t *testing.T, codec exportdomain.Codec[T], row T) T {
	t.Helper()
	header, values := codec.Header(), codec.Encode(row)
	require.Len(t, values, len(header))
	record := make(map[string]string, len(header))
	for i, col := range header {
		record[col] = values[i]
	}
	got, err := codec.Decode(record)
	require.NoError(t, err)
	assert.Equal(t, values, codec.Encode(got), "encode(decode(x)) must be stable")
	return got
}

func TestWeeklyFactCodec_NullsSurvive(t *testing.T) {
	f := &WeeklyFact{
		Week: 7, Brand: "Acme", Model: "X1", Channel: "SP_SD",
		BusinessMetrics: BusinessMetrics{Units: 3, GMV: 90, Sessions: 30, BuyBox: 95.5},
		AdMetrics:       ingestdomain.AdMetrics{Spend: 12.25},
	}
	f.SetMetrics(analyticsdomain.ComputeMetrics(f.MetricInputs(), 90))

	got := reencode[*WeeklyFact](t, WeeklyFactCodec{}, f)

	assert.False(t, got.HasInventory)
	assert.False(t, got.Metrics.ACOS.Valid())
	assert.Equal(t, "0.1", got.Metrics.ConversionPct.String())
	assert.Equal(t, "1", got.Metrics.ContributionPct.String())
}

func TestAmsCategoryCodec_KeepsBothModels(t *testing.T) {
	f := &AmsCategoryFact{
		AmsAsinFact: AmsAsinFact{Week: 1, Brand: "Acme", ASIN: "B1", ReportModel: "RAW", AdChannel: ingestdomain.AdTypeSPSD},
		Model:       "X1",
	}

	got := reencode[*AmsCategoryFact](t, AmsCategoryCodec{}, f)

	assert.Equal(t, "RAW", got.ReportModel)
	assert.Equal(t, "X1", got.Model)
}

func TestMerge_AmsFactPartitions(t *testing.T) {
	codec := AmsFactCodec{}
	existing := []*AmsAsinFact{{Week: 1, Brand: "Acme", ASIN: "B1", AdChannel: ingestdomain.AdTypeSPSD, BusinessMetrics: BusinessMetrics{GMV: 1}}}
	incoming := []*AmsAsinFact{
		{Week: 1, Brand: "Acme", ASIN: "B1", AdChannel: ingestdomain.AdTypeSPSD, BusinessMetrics: BusinessMetrics{GMV: 2}},
		{Week: 2, Brand: "Acme", ASIN: "B1", AdChannel: ingestdomain.AdTypeSPSD},
	}

	appended := exportdomain.Merge[*AmsAsinFact](codec, existing, incoming, exportdomain.MergeAppend)
	require.Len(t, appended.Rows, 2)
	assert.Equal(t, 1.0, appended.Rows[0].GMV)
	assert.Len(t, appended.Skipped, 1)

	replaced := exportdomain.Merge[*AmsAsinFact](codec, existing, incoming, exportdomain.MergeReplace)
	require.Len(t, replaced.Rows, 2)
	assert.Equal(t, 2.0, replaced.Rows[0].GMV)
	assert.Len(t, replaced.Replaced, 1)
}

func TestInventoryModelCodec_WeekLabel(t *testing.T) {
	got := reencode[InventoryModelRow](t, InventoryModelCodec{}, InventoryModelRow{Week: 52, Brand: "Acme", Model: "X1", InventoryUnits: 3})
	assert.Equal(t, 52, got.Week)
	assert.Equal(t, shareddomain.WeekLabel(52), InventoryModelCodec{}.Encode(got)[0])
}

// TestNormalize_WeeklyFactsStableAcrossSnapshot vérifie que des faits ASIN normalisés
// donnent le même fait hebdomadaire que leur relecture depuis le snapshot
func TestNormalize_WeeklyFactsStableAcrossSnapshot(t *testing.T) {
	master := catalogdomain.NewMaster([]catalogdomain.MasterEntry{
		{Model: "M1", SKU: "S1", ASIN: "B1", Brand: "Rivolta", NLC: 10},
		{Model: "M1", SKU: "S1B", ASIN: "B2", Brand: "Rivolta", NLC: 10},
	})
	facts := []*AmsAsinFact{
		{Week: 5, Brand: "Rivolta", ASIN: "B1", AdChannel: ingestdomain.AdTypeSPSD,
			BusinessMetrics: BusinessMetrics{GMV: 300, Units: 3, BuyBox: (85.17 + 90.01 + 77.5) / 3}},
		{Week: 5, Brand: "Rivolta", ASIN: "B2", AdChannel: ingestdomain.AdTypeSPSD,
			BusinessMetrics: BusinessMetrics{GMV: 100, Units: 1, BuyBox: 91.1}},
	}
	codec := AmsFactCodec{}

	normalized, err := exportdomain.Normalize[*AmsAsinFact](codec, facts)
	require.NoError(t, err)
	reloaded, err := exportdomain.Normalize[*AmsAsinFact](codec, normalized)
	require.NoError(t, err)

	weeklyCodec := WeeklyFactCodec{}
	encode := func(rows []*WeeklyFact) [][]string {
		out := make([][]string, 0, len(rows))
		for _, r := range rows {
			out = append(out, weeklyCodec.Encode(r))
		}
		return out
	}
	assert.Equal(t,
		encode(BuildWeeklyFacts(normalized, nil, master, nil)),
		encode(BuildWeeklyFacts(reloaded, nil, master, nil)),
	)
}
