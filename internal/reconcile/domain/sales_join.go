package domain

import (
	"sort"

	catalogdomain "weekly/internal/catalog/domain"
	ingestdomain "weekly/internal/ingest/domain"
	shareddomain "weekly/internal/shared/domain"
)

type salesKey struct {
	week    int
	channel string
	sku     string
	model   string
	brand   string
}

// BuildSalesRows réconcilie les ventes d'une unité (semaine, dossier marque) avec le master
// Amazon est joint par Model (un SKU représentatif), les autres canaux par SKU
func BuildSalesRows(
	week int,
	folder shareddomain.Brand,
	amazon []ingestdomain.AmazonModelRow,
	channels []ingestdomain.ChannelSKURow,
	master *catalogdomain.Master,
) []SalesRow {
	out := make([]SalesRow, 0, len(amazon)+len(channels))

	for _, agg := range aggregateAmazon(amazon) {
		product, mapped := master.ByModel(agg.Model)
		sku := ""
		if mapped {
			sku = product.FirstSKU()
		}
		out = append(out, salesRow(week, AmazonChannel, sku, agg.Model, folder, product, mapped, agg.Units, agg.Sales))
	}

	for _, agg := range aggregateChannels(channels) {
		product, mapped := master.ProductBySKU(agg.SKU)
		out = append(out, salesRow(week, agg.Channel, agg.SKU, product.Model(), folder, product, mapped, agg.Units, agg.Sales))
	}

	return GroupSalesRows(out)
}

func salesRow(
	week int,
	channel, sku, model string,
	folder shareddomain.Brand,
	product catalogdomain.Product,
	mapped bool,
	units, sales float64,
) SalesRow {
	row := SalesRow{
		Week:       week,
		Channel:    channel,
		SKU:        sku,
		Model:      model,
		SKUStatus:  SKUUnmapped,
		Brand:      salesBrand(folder, product, mapped),
		Units:      units,
		GrossSales: sales,
	}
	if mapped {
		row.SKUStatus = SKUMapped
		row.NLC = product.NLC()
		row.Category = product.Category()
	}
	row.SalesNLC = row.Units * row.NLC
	return row
}

// salesBrand: dossier marque, sinon marque du master, sinon vide
func salesBrand(folder shareddomain.Brand, product catalogdomain.Product, mapped bool) string {
	if !folder.IsZero() {
		return folder.Label()
	}
	if mapped && !product.Brand().IsZero() {
		return product.Brand().Label()
	}
	return ""
}

// GroupSalesRows somme les lignes au grain (semaine, canal, sku, model, marque)
// Regrouper des lignes déjà groupées ne change rien
func GroupSalesRows(rows []SalesRow) []SalesRow {
	index := make(map[salesKey]int, len(rows))
	out := make([]SalesRow, 0, len(rows))
	for _, r := range rows {
		k := salesKey{r.Week, r.Channel, r.SKU, r.Model, r.Brand}
		i, ok := index[k]
		if !ok {
			index[k] = len(out)
			out = append(out, r)
			continue
		}
		out[i].Units += r.Units
		out[i].GrossSales += r.GrossSales
		out[i].SalesNLC = out[i].Units * out[i].NLC
	}
	codec := SalesCodec{}
	sort.SliceStable(out, func(i, j int) bool { return codec.Less(out[i], out[j]) })
	return out
}

func aggregateAmazon(rows []ingestdomain.AmazonModelRow) []ingestdomain.AmazonModelRow {
	index := make(map[string]int, len(rows))
	out := make([]ingestdomain.AmazonModelRow, 0, len(rows))
	for _, r := range rows {
		if i, ok := index[r.Model]; ok {
			out[i].Units += r.Units
			out[i].Sales += r.Sales
			continue
		}
		index[r.Model] = len(out)
		out = append(out, r)
	}
	return out
}

func aggregateChannels(rows []ingestdomain.ChannelSKURow) []ingestdomain.ChannelSKURow {
	index := make(map[[2]string]int, len(rows))
	out := make([]ingestdomain.ChannelSKURow, 0, len(rows))
	for _, r := range rows {
		k := [2]string{r.Channel, r.SKU}
		if i, ok := index[k]; ok {
			out[i].Units += r.Units
			out[i].Sales += r.Sales
			continue
		}
		index[k] = len(out)
		out = append(out, r)
	}
	return out
}
