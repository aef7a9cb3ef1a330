package domain

import (
	"sort"

	catalogdomain "weekly/internal/catalog/domain"
	ingestdomain "weekly/internal/ingest/domain"
	shareddomain "weekly/internal/shared/domain"
)

// BuildInventoryModelRows somme les quantités au grain (semaine, marque, model); valeur = unités × NLC
func BuildInventoryModelRows(brand string, rows []ingestdomain.InventoryRow, master *catalogdomain.Master) []InventoryModelRow {
	type key struct {
		week  int
		model string
	}
	index := make(map[key]int, len(rows))
	out := make([]InventoryModelRow, 0, len(rows))
	for _, r := range rows {
		k := key{r.Week, r.Model}
		if i, ok := index[k]; ok {
			out[i].InventoryUnits += r.Qty
			continue
		}
		index[k] = len(out)
		out = append(out, InventoryModelRow{Week: r.Week, Brand: brand, Model: r.Model, InventoryUnits: r.Qty})
	}
	for i := range out {
		if p, ok := master.ByModel(out[i].Model); ok {
			out[i].InventoryValue = out[i].InventoryUnits * p.NLC()
		}
	}
	return GroupInventoryModelRows(out)
}

// GroupInventoryModelRows regroupe des lignes de plusieurs fichiers d'une même marque
func GroupInventoryModelRows(rows []InventoryModelRow) []InventoryModelRow {
	type key struct {
		week  int
		brand string
		model string
	}
	index := make(map[key]int, len(rows))
	out := make([]InventoryModelRow, 0, len(rows))
	for _, r := range rows {
		k := key{r.Week, r.Brand, r.Model}
		if i, ok := index[k]; ok {
			out[i].InventoryUnits += r.InventoryUnits
			out[i].InventoryValue += r.InventoryValue
			continue
		}
		index[k] = len(out)
		out = append(out, r)
	}
	codec := InventoryModelCodec{}
	sort.SliceStable(out, func(i, j int) bool { return codec.Less(out[i], out[j]) })
	return out
}

// BuildInventoryAmsRows pivote les positions au grain (semaine, model) par seau de canal
func BuildInventoryAmsRows(positions []ingestdomain.InventoryPositionRow) []InventoryAmsRow {
	type key struct {
		week  int
		model string
	}
	index := make(map[key]int, len(positions))
	out := make([]InventoryAmsRow, 0, len(positions))
	for _, p := range positions {
		k := key{p.Week, p.Model}
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, InventoryAmsRow{Week: p.Week, Model: p.Model})
		}
		out[i].AddPosition(PositionBucket(p.Channel, p.Type), p.Qty)
	}
	codec := InventoryAmsCodec{}
	sort.SliceStable(out, func(i, j int) bool { return codec.Less(out[i], out[j]) })
	return out
}

type weekUnits struct {
	week  int
	units float64
}

// InventoryIndex index as-of des unités par model: dernière semaine ≤ semaine demandée
type InventoryIndex struct {
	byModel map[string][]weekUnits
}

// NewInventoryIndex indexe le snapshot d'inventaire; les marques d'un même model sont sommées
func NewInventoryIndex(rows []InventoryModelRow) *InventoryIndex {
	sums := make(map[string]map[int]float64)
	for _, r := range rows {
		model, ok := shareddomain.NormalizeModel(r.Model)
		if !ok {
			continue
		}
		if sums[model] == nil {
			sums[model] = make(map[int]float64)
		}
		sums[model][r.Week] += r.InventoryUnits
	}
	ix := &InventoryIndex{byModel: make(map[string][]weekUnits, len(sums))}
	for model, weeks := range sums {
		series := make([]weekUnits, 0, len(weeks))
		for w, u := range weeks {
			series = append(series, weekUnits{week: w, units: u})
		}
		sort.Slice(series, func(i, j int) bool { return series[i].week < series[j].week })
		ix.byModel[model] = series
	}
	return ix
}

// AsOf retourne les unités de la dernière semaine connue ≤ week
func (ix *InventoryIndex) AsOf(model string, week int) (float64, bool) {
	if ix == nil {
		return 0, false
	}
	key, ok := shareddomain.NormalizeModel(model)
	if !ok {
		return 0, false
	}
	series := ix.byModel[key]
	i := sort.Search(len(series), func(i int) bool { return series[i].week > week })
	if i == 0 {
		return 0, false
	}
	return series[i-1].units, true
}
