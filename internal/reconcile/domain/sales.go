package domain

import (
	catalogdomain "weekly/internal/catalog/domain"
	exportdomain "weekly/internal/export/domain"
	shareddomain "weekly/internal/shared/domain"
)

// Statut de correspondance d'un SKU avec le master
const (
	SKUMapped   = "MAPPED"
	SKUUnmapped = "UNMAPPED"
)

// AmazonChannel canal des lignes du rapport Amazon
const AmazonChannel = "Amazon"

// SalesRow ligne de weekly_sales_snapshot.csv, grain (semaine, canal, sku, model, marque)
type SalesRow struct {
	Week       int
	Channel    string
	SKU        string
	Model      string
	SKUStatus  string
	Brand      string
	Units      float64
	GrossSales float64
	NLC        float64
	SalesNLC   float64
	Category   catalogdomain.Category
}

// ChannelClass classe de canal utilisée par la garde de ré-exécution
func (r SalesRow) ChannelClass() string {
	if r.Channel == AmazonChannel {
		return AmazonChannel
	}
	return "Other"
}

// SalesCodec forme CSV du snapshot de ventes
type SalesCodec struct{}

var _ exportdomain.Codec[SalesRow] = SalesCodec{}

func (SalesCodec) Header() []string {
	return []string{
		"week", "channel", "sku", "model", "sku_status", "brand",
		"units_sold", "gross_sales", "gmv", "nlc", "sales_nlc",
		"category_l0", "category_l1", "category_l2",
	}
}

func (SalesCodec) Encode(r SalesRow) []string {
	return []string{
		shareddomain.WeekLabel(r.Week), r.Channel, r.SKU, r.Model, r.SKUStatus, r.Brand,
		amt(r.Units), amt(r.GrossSales), amt(r.GrossSales), amt(r.NLC), amt(r.SalesNLC),
		r.Category.L0, r.Category.L1, r.Category.L2,
	}
}

func (SalesCodec) Decode(values map[string]string) (SalesRow, error) {
	rec := newRecord(values)
	row := SalesRow{
		Week:       rec.week("week"),
		Channel:    rec.str("channel"),
		SKU:        rec.str("sku"),
		Model:      rec.str("model"),
		SKUStatus:  rec.str("sku_status"),
		Brand:      rec.str("brand"),
		Units:      rec.amount("units_sold"),
		GrossSales: rec.amount("gross_sales"),
		NLC:        rec.amount("nlc"),
		SalesNLC:   rec.amount("sales_nlc"),
		Category:   rec.category(),
	}
	return row, rec.err
}

func (SalesCodec) Partition(r SalesRow) exportdomain.PartitionKey {
	return exportdomain.PartitionKey{Week: r.Week, Brand: r.Brand, Class: r.ChannelClass()}
}

func (SalesCodec) Less(a, b SalesRow) bool {
	return lessBy(a.Week, b.Week,
		[2]string{a.Brand, b.Brand},
		[2]string{a.Channel, b.Channel},
		[2]string{a.Model, b.Model},
		[2]string{a.SKU, b.SKU},
	)
}
