package domain

import (
	analyticsdomain "weekly/internal/analytics/domain"
	catalogdomain "weekly/internal/catalog/domain"
	exportdomain "weekly/internal/export/domain"
	ingestdomain "weekly/internal/ingest/domain"
)

// UnknownModel modèle sentinelle d'un ASIN sans correspondance
const UnknownModel = "UNKNOWN"

// SBModel modèle des lignes Sponsored Brands dans le fait hebdomadaire
const SBModel = "SB"

// amsClass classe de partition des sorties AMS
const amsClass = "AMS"

// AdsAggregateRow ligne de ads_weekly_aggregated.csv
// SP_SD: une ligne par ASIN; SB: une ligne par campagne
type AdsAggregateRow struct {
	Week     int
	Brand    string
	AdType   ingestdomain.AdType
	ASIN     string
	Model    string
	Campaign string
	ingestdomain.AdMetrics
}

// AdsAggregateCodec forme CSV de l'agrégat publicitaire
type AdsAggregateCodec struct{}

var _ exportdomain.Codec[AdsAggregateRow] = AdsAggregateCodec{}

func (AdsAggregateCodec) Header() []string {
	return []string{
		"week", "brand", "ad_type", "asin", "model", "campaign_name",
		"spend", "clicks", "impressions", "attributed_sales", "ams_orders",
	}
}

func (AdsAggregateCodec) Encode(r AdsAggregateRow) []string {
	return append([]string{itoa(r.Week), r.Brand, string(r.AdType), r.ASIN, r.Model, r.Campaign},
		encodeAdMetrics(r.AdMetrics)...)
}

func (AdsAggregateCodec) Decode(values map[string]string) (AdsAggregateRow, error) {
	rec := newRecord(values)
	row := AdsAggregateRow{
		Week:      rec.week("week"),
		Brand:     rec.str("brand"),
		AdType:    ingestdomain.AdType(rec.str("ad_type")),
		ASIN:      rec.str("asin"),
		Model:     rec.str("model"),
		Campaign:  rec.str("campaign_name"),
		AdMetrics: rec.adMetrics(),
	}
	return row, rec.err
}

func (AdsAggregateCodec) Partition(r AdsAggregateRow) exportdomain.PartitionKey {
	return exportdomain.PartitionKey{Week: r.Week, Brand: r.Brand, Class: amsClass}
}

func (AdsAggregateCodec) Less(a, b AdsAggregateRow) bool {
	return lessBy(a.Week, b.Week,
		[2]string{a.Brand, b.Brand},
		[2]string{string(a.AdType), string(b.AdType)},
		[2]string{a.ASIN, b.ASIN},
		[2]string{a.Campaign, b.Campaign},
	)
}

func encodeAdMetrics(m ingestdomain.AdMetrics) []string {
	return []string{amt(m.Spend), amt(m.Clicks), amt(m.Impressions), amt(m.AttributedSales), amt(m.Orders)}
}

func (r *record) adMetrics() ingestdomain.AdMetrics {
	return ingestdomain.AdMetrics{
		Spend:           r.amount("spend"),
		Clicks:          r.amount("clicks"),
		Impressions:     r.amount("impressions"),
		AttributedSales: r.amount("attributed_sales"),
		Orders:          r.amount("ams_orders"),
	}
}

// BusinessMetrics mesures du business report pour un ASIN
type BusinessMetrics struct {
	Sessions float64
	BuyBox   float64
	Units    float64
	GMV      float64
}

// AmsAsinFact ligne de ams_weekly_fact.csv: business report (base) joint aux annonces par ASIN
// Les lignes SB portent l'ASIN __SB__ et la campagne
type AmsAsinFact struct {
	Week        int
	Brand       string
	ASIN        string
	ParentASIN  string
	ReportModel string
	AdChannel   ingestdomain.AdType
	Campaign    string
	BusinessMetrics
	ingestdomain.AdMetrics
	Metrics analyticsdomain.DerivedMetricSet
}

func (f *AmsAsinFact) MetricWeek() int { return f.Week }

func (f *AmsAsinFact) MetricInputs() analyticsdomain.MetricInputs {
	return analyticsdomain.MetricInputs{
		Spend:           f.Spend,
		AttributedSales: f.AttributedSales,
		GMV:             f.GMV,
		Units:           f.Units,
		Sessions:        f.Sessions,
		AMSOrders:       f.Orders,
		Clicks:          f.Clicks,
	}
}

func (f *AmsAsinFact) SetMetrics(m analyticsdomain.DerivedMetricSet) { f.Metrics = m }

var amsFactHeader = []string{
	"week", "brand", "asin", "parent_asin", "model", "ad_channel", "campaign_name",
	"sessions", "buy_box_pct", "units", "gmv",
	"spend", "clicks", "impressions", "attributed_sales", "ams_orders",
}

func encodeAmsFact(f *AmsAsinFact) []string {
	out := []string{itoa(f.Week), f.Brand, f.ASIN, f.ParentASIN, f.ReportModel, string(f.AdChannel), f.Campaign,
		amt(f.Sessions), amt(f.BuyBox), amt(f.Units), amt(f.GMV)}
	return append(out, encodeAdMetrics(f.AdMetrics)...)
}

func decodeAmsFact(rec *record) *AmsAsinFact {
	return &AmsAsinFact{
		Week:        rec.week("week"),
		Brand:       rec.str("brand"),
		ASIN:        rec.str("asin"),
		ParentASIN:  rec.str("parent_asin"),
		ReportModel: rec.str("model"),
		AdChannel:   ingestdomain.AdType(rec.str("ad_channel")),
		Campaign:    rec.str("campaign_name"),
		BusinessMetrics: BusinessMetrics{
			Sessions: rec.amount("sessions"),
			BuyBox:   rec.amount("buy_box_pct"),
			Units:    rec.amount("units"),
			GMV:      rec.amount("gmv"),
		},
		AdMetrics: rec.adMetrics(),
		Metrics:   rec.metrics(),
	}
}

func lessAmsFact(a, b *AmsAsinFact) bool {
	return lessBy(a.Week, b.Week,
		[2]string{a.Brand, b.Brand},
		[2]string{string(a.AdChannel), string(b.AdChannel)},
		[2]string{a.ASIN, b.ASIN},
		[2]string{a.Campaign, b.Campaign},
	)
}

// AmsFactCodec forme CSV du fait AMS par ASIN
type AmsFactCodec struct{}

var _ exportdomain.Codec[*AmsAsinFact] = AmsFactCodec{}

func (AmsFactCodec) Header() []string {
	return append(append([]string{}, amsFactHeader...), metricsHeader...)
}

func (AmsFactCodec) Encode(f *AmsAsinFact) []string {
	return append(encodeAmsFact(f), encodeMetrics(f.Metrics)...)
}

func (AmsFactCodec) Decode(values map[string]string) (*AmsAsinFact, error) {
	rec := newRecord(values)
	f := decodeAmsFact(rec)
	return f, rec.err
}

func (AmsFactCodec) Partition(f *AmsAsinFact) exportdomain.PartitionKey {
	return exportdomain.PartitionKey{Week: f.Week, Brand: f.Brand, Class: amsClass}
}

func (AmsFactCodec) Less(a, b *AmsAsinFact) bool { return lessAmsFact(a, b) }

// AmsCategoryFact ligne de ams_weekly_fact_with_category.csv
// Brand et Model sont ceux résolus par le pont ASIN → Model
type AmsCategoryFact struct {
	AmsAsinFact
	Model    string
	Category catalogdomain.Category
}

// AmsCategoryCodec forme CSV du fait AMS enrichi des catégories
type AmsCategoryCodec struct{}

var _ exportdomain.Codec[*AmsCategoryFact] = AmsCategoryCodec{}

func (AmsCategoryCodec) Header() []string {
	h := append([]string{}, amsFactHeader...)
	h[4] = "report_model"
	h = append(h, "resolved_model", "category_l0", "category_l1", "category_l2")
	return append(h, metricsHeader...)
}

func (AmsCategoryCodec) Encode(f *AmsCategoryFact) []string {
	out := append(encodeAmsFact(&f.AmsAsinFact), f.Model, f.Category.L0, f.Category.L1, f.Category.L2)
	return append(out, encodeMetrics(f.Metrics)...)
}

func (AmsCategoryCodec) Decode(values map[string]string) (*AmsCategoryFact, error) {
	shifted := make(map[string]string, len(values))
	for k, v := range values {
		shifted[k] = v
	}
	shifted["model"] = values["report_model"]
	rec := newRecord(shifted)
	f := &AmsCategoryFact{
		AmsAsinFact: *decodeAmsFact(rec),
		Model:       rec.str("resolved_model"),
		Category:    rec.category(),
	}
	return f, rec.err
}

func (AmsCategoryCodec) Partition(f *AmsCategoryFact) exportdomain.PartitionKey {
	return exportdomain.PartitionKey{Week: f.Week, Brand: f.Brand, Class: amsClass}
}

func (AmsCategoryCodec) Less(a, b *AmsCategoryFact) bool {
	if a.Week != b.Week || a.Brand != b.Brand {
		return lessAmsFact(&a.AmsAsinFact, &b.AmsAsinFact)
	}
	if a.Model != b.Model {
		return a.Model < b.Model
	}
	return lessAmsFact(&a.AmsAsinFact, &b.AmsAsinFact)
}

// WeeklyFact ligne canonique de business_ads_joined.csv, unique par (semaine, marque, model, canal)
type WeeklyFact struct {
	Week    int
	Brand   string
	Model   string
	Channel string
	BusinessMetrics
	ingestdomain.AdMetrics
	InventoryUnits float64
	HasInventory   bool
	Category       catalogdomain.Category
	Metrics        analyticsdomain.DerivedMetricSet

	business bool
}

// hasBusiness vrai si la ligne porte des mesures du business report
func (f *WeeklyFact) hasBusiness() bool {
	return f.business || f.Sessions != 0 || f.Units != 0 || f.GMV != 0 || f.BuyBox != 0
}

// Key retourne la clé d'unicité de la ligne
func (f *WeeklyFact) Key() [4]string {
	return [4]string{itoa(f.Week), f.Brand, f.Model, f.Channel}
}

func (f *WeeklyFact) MetricWeek() int { return f.Week }

func (f *WeeklyFact) MetricInputs() analyticsdomain.MetricInputs {
	return analyticsdomain.MetricInputs{
		Spend:           f.Spend,
		AttributedSales: f.AttributedSales,
		GMV:             f.GMV,
		Units:           f.Units,
		Sessions:        f.Sessions,
		AMSOrders:       f.Orders,
		Clicks:          f.Clicks,
		InventoryUnits:  f.InventoryUnits,
		HasInventory:    f.HasInventory,
	}
}

func (f *WeeklyFact) SetMetrics(m analyticsdomain.DerivedMetricSet) { f.Metrics = m }

// WeeklyFactCodec forme CSV du fait hebdomadaire
type WeeklyFactCodec struct{}

var _ exportdomain.Codec[*WeeklyFact] = WeeklyFactCodec{}

func (WeeklyFactCodec) Header() []string {
	h := []string{
		"week", "brand", "model", "channel",
		"units", "gmv", "sessions", "buy_box_pct",
		"spend", "clicks", "impressions", "attributed_sales", "ams_orders",
		"inventory_units", "category_l0", "category_l1", "category_l2",
	}
	return append(h, metricsHeader...)
}

func (WeeklyFactCodec) Encode(f *WeeklyFact) []string {
	inventory := ""
	if f.HasInventory {
		inventory = amt(f.InventoryUnits)
	}
	out := []string{itoa(f.Week), f.Brand, f.Model, f.Channel,
		amt(f.Units), amt(f.GMV), amt(f.Sessions), amt(f.BuyBox)}
	out = append(out, encodeAdMetrics(f.AdMetrics)...)
	out = append(out, inventory, f.Category.L0, f.Category.L1, f.Category.L2)
	return append(out, encodeMetrics(f.Metrics)...)
}

func (WeeklyFactCodec) Decode(values map[string]string) (*WeeklyFact, error) {
	rec := newRecord(values)
	f := &WeeklyFact{
		Week:    rec.week("week"),
		Brand:   rec.str("brand"),
		Model:   rec.str("model"),
		Channel: rec.str("channel"),
		BusinessMetrics: BusinessMetrics{
			Units:    rec.amount("units"),
			GMV:      rec.amount("gmv"),
			Sessions: rec.amount("sessions"),
			BuyBox:   rec.amount("buy_box_pct"),
		},
		AdMetrics: rec.adMetrics(),
		Category:  rec.category(),
		Metrics:   rec.metrics(),
	}
	if raw := rec.str("inventory_units"); raw != "" {
		f.HasInventory = true
		f.InventoryUnits = rec.amount("inventory_units")
	}
	return f, rec.err
}

func (WeeklyFactCodec) Partition(f *WeeklyFact) exportdomain.PartitionKey {
	return exportdomain.PartitionKey{Week: f.Week, Brand: f.Brand, Class: amsClass}
}

func (WeeklyFactCodec) Less(a, b *WeeklyFact) bool {
	return lessBy(a.Week, b.Week,
		[2]string{a.Brand, b.Brand},
		[2]string{a.Model, b.Model},
		[2]string{a.Channel, b.Channel},
	)
}
