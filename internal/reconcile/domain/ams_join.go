package domain

import (
	"sort"

	analyticsdomain "weekly/internal/analytics/domain"
	catalogdomain "weekly/internal/catalog/domain"
	ingestdomain "weekly/internal/ingest/domain"
	shareddomain "weekly/internal/shared/domain"
)

// SponsoredBrandsCategory catégorie affectée aux campagnes SB
var SponsoredBrandsCategory = catalogdomain.Category{L0: "Sponsored Brands", L1: "SB Campaigns"}

// BusinessAggregate business report réduit à une ligne par ASIN
type BusinessAggregate struct {
	ASIN       string
	ParentASIN string
	Model      string
	BusinessMetrics
}

// AggregateBusiness somme sessions, unités et GMV par ASIN; le buy-box est moyenné
func AggregateBusiness(rows []ingestdomain.BusinessRow) []BusinessAggregate {
	index := make(map[string]int, len(rows))
	counts := make([]int, 0, len(rows))
	out := make([]BusinessAggregate, 0, len(rows))
	for _, r := range rows {
		i, ok := index[r.ASIN]
		if !ok {
			index[r.ASIN] = len(out)
			counts = append(counts, 1)
			out = append(out, BusinessAggregate{
				ASIN:       r.ASIN,
				ParentASIN: r.ParentASIN,
				Model:      r.Model,
				BusinessMetrics: BusinessMetrics{
					Sessions: r.Sessions, BuyBox: r.BuyBox, Units: r.Units, GMV: r.GMV,
				},
			})
			continue
		}
		agg := &out[i]
		if agg.ParentASIN == "" {
			agg.ParentASIN = r.ParentASIN
		}
		if agg.Model == "" {
			agg.Model = r.Model
		}
		agg.Sessions += r.Sessions
		agg.Units += r.Units
		agg.GMV += r.GMV
		agg.BuyBox += r.BuyBox
		counts[i]++
	}
	for i := range out {
		out[i].BuyBox /= float64(counts[i])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ASIN < out[j].ASIN })
	return out
}

// AggregateAds réduit un rapport publicitaire: SP et SD fusionnés par ASIN, SB par campagne
// Le Model est renseigné par le master quand l'ASIN y figure
func AggregateAds(week int, brand string, report ingestdomain.AdsReport, master *catalogdomain.Master) []AdsAggregateRow {
	byASIN := make(map[string]ingestdomain.AdMetrics)
	for _, r := range report.Products {
		byASIN[r.ASIN] = byASIN[r.ASIN].Add(r.AdMetrics)
	}
	byCampaign := make(map[string]ingestdomain.AdMetrics)
	for _, r := range report.Brands {
		byCampaign[r.Campaign] = byCampaign[r.Campaign].Add(r.AdMetrics)
	}

	out := make([]AdsAggregateRow, 0, len(byASIN)+len(byCampaign))
	for _, asin := range sortedStrings(byASIN) {
		model, _ := master.ByASIN(asin)
		out = append(out, AdsAggregateRow{
			Week: week, Brand: brand, AdType: ingestdomain.AdTypeSPSD,
			ASIN: asin, Model: model, AdMetrics: byASIN[asin],
		})
	}
	for _, campaign := range sortedStrings(byCampaign) {
		out = append(out, AdsAggregateRow{
			Week: week, Brand: brand, AdType: ingestdomain.AdTypeSB,
			ASIN: ingestdomain.SBEntity, Model: SBModel, Campaign: campaign, AdMetrics: byCampaign[campaign],
		})
	}
	return out
}

// BuildAsinFacts joint le business report (base) aux annonces SP_SD par ASIN, puis ajoute les campagnes SB
// Un ASIN annoncé absent du business report n'apparaît pas ici; il rejoint le fait hebdomadaire
func BuildAsinFacts(week int, brand string, business []BusinessAggregate, ads []AdsAggregateRow) []*AmsAsinFact {
	byASIN := make(map[string]ingestdomain.AdMetrics)
	var sb []AdsAggregateRow
	for _, a := range ads {
		if a.AdType == ingestdomain.AdTypeSB {
			sb = append(sb, a)
			continue
		}
		byASIN[a.ASIN] = byASIN[a.ASIN].Add(a.AdMetrics)
	}

	out := make([]*AmsAsinFact, 0, len(business)+len(sb))
	for _, b := range business {
		out = append(out, &AmsAsinFact{
			Week:            week,
			Brand:           brand,
			ASIN:            b.ASIN,
			ParentASIN:      b.ParentASIN,
			ReportModel:     b.Model,
			AdChannel:       ingestdomain.AdTypeSPSD,
			BusinessMetrics: b.BusinessMetrics,
			AdMetrics:       byASIN[b.ASIN],
		})
	}
	for _, a := range sb {
		out = append(out, &AmsAsinFact{
			Week:      week,
			Brand:     brand,
			ASIN:      ingestdomain.SBEntity,
			AdChannel: ingestdomain.AdTypeSB,
			Campaign:  a.Campaign,
			AdMetrics: a.AdMetrics,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return lessAmsFact(out[i], out[j]) })
	return out
}

// ModelBridge résout ASIN → Model pour une unité (semaine, marque)
// Ordre: master, Model du business report, parent → premier enfant → Model, sinon UNKNOWN
type ModelBridge struct {
	master      *catalogdomain.Master
	reportModel map[string]string
	firstChild  map[string]string
}

// NewModelBridge construit le pont à partir des lignes business de la semaine
func NewModelBridge(master *catalogdomain.Master, facts []*AmsAsinFact) *ModelBridge {
	b := &ModelBridge{
		master:      master,
		reportModel: make(map[string]string),
		firstChild:  make(map[string]string),
	}
	for _, f := range facts {
		if f.AdChannel == ingestdomain.AdTypeSB {
			continue
		}
		if model, ok := shareddomain.NormalizeModel(f.ReportModel); ok {
			if _, seen := b.reportModel[f.ASIN]; !seen {
				b.reportModel[f.ASIN] = model
			}
		}
		if f.ParentASIN == "" || f.ParentASIN == f.ASIN {
			continue
		}
		// un seul enfant par parent: le plus petit ASIN, indépendant de l'ordre du fichier
		if child, seen := b.firstChild[f.ParentASIN]; !seen || f.ASIN < child {
			b.firstChild[f.ParentASIN] = f.ASIN
		}
	}
	return b
}

// Resolve retourne le Model d'un ASIN, UnknownModel si aucun chemin n'aboutit
func (b *ModelBridge) Resolve(asin string) string {
	if model, ok := b.direct(asin); ok {
		return model
	}
	if child, ok := b.firstChild[asin]; ok {
		if model, ok := b.direct(child); ok {
			return model
		}
	}
	return UnknownModel
}

func (b *ModelBridge) direct(asin string) (string, bool) {
	if model, ok := b.master.ByASIN(asin); ok {
		return model, true
	}
	model, ok := b.reportModel[asin]
	return model, ok
}

type unitKey struct {
	week  int
	brand string
}

// InventoryLookup source d'inventaire pour la jointure as-of
type InventoryLookup interface {
	AsOf(model string, week int) (float64, bool)
}

// BuildWeeklyFacts produit le fait canonique à partir de l'historique ASIN et de l'agrégat publicitaire
// Jointure externe business/annonces sur l'ASIN, pont vers le Model, regroupement puis inventaire as-of
func BuildWeeklyFacts(
	facts []*AmsAsinFact,
	ads []AdsAggregateRow,
	master *catalogdomain.Master,
	inventory InventoryLookup,
) []*WeeklyFact {
	factsByUnit := make(map[unitKey][]*AmsAsinFact)
	adsByUnit := make(map[unitKey][]AdsAggregateRow)
	units := make(map[unitKey]struct{})
	for _, f := range facts {
		k := unitKey{f.Week, f.Brand}
		factsByUnit[k] = append(factsByUnit[k], f)
		units[k] = struct{}{}
	}
	for _, a := range ads {
		k := unitKey{a.Week, a.Brand}
		adsByUnit[k] = append(adsByUnit[k], a)
		units[k] = struct{}{}
	}

	var partial []*WeeklyFact
	for _, k := range sortedUnits(units) {
		partial = append(partial, unitWeeklyFacts(k, factsByUnit[k], adsByUnit[k], master)...)
	}

	grouped := GroupWeeklyFacts(partial)
	for _, f := range grouped {
		if inventory == nil || f.Channel == SBModel {
			continue
		}
		if units, ok := inventory.AsOf(f.Model, f.Week); ok {
			f.InventoryUnits = units
			f.HasInventory = true
		}
	}
	analyticsdomain.ApplyWeeklyContribution(grouped)
	return grouped
}

func unitWeeklyFacts(k unitKey, facts []*AmsAsinFact, ads []AdsAggregateRow, master *catalogdomain.Master) []*WeeklyFact {
	bridge := NewModelBridge(master, facts)

	business := make(map[string]*AmsAsinFact)
	asins := make(map[string]struct{})
	for _, f := range facts {
		if f.AdChannel == ingestdomain.AdTypeSB {
			continue
		}
		business[f.ASIN] = f
		asins[f.ASIN] = struct{}{}
	}
	adsByASIN := make(map[string]ingestdomain.AdMetrics)
	var out []*WeeklyFact
	for _, a := range ads {
		if a.AdType == ingestdomain.AdTypeSB {
			out = append(out, &WeeklyFact{
				Week:      k.week,
				Brand:     shareddomain.BrandOrUnknown(shareddomain.NewBrand(k.brand)).Label(),
				Model:     SBModel,
				Channel:   SBModel,
				AdMetrics: a.AdMetrics,
				Category:  SponsoredBrandsCategory,
			})
			continue
		}
		adsByASIN[a.ASIN] = adsByASIN[a.ASIN].Add(a.AdMetrics)
		asins[a.ASIN] = struct{}{}
	}

	for _, asin := range sortedStrings(asins) {
		model := bridge.Resolve(asin)
		brand, category := modelAttributes(master, model)
		fact := &WeeklyFact{
			Week:      k.week,
			Brand:     brand,
			Model:     model,
			Channel:   string(ingestdomain.AdTypeSPSD),
			AdMetrics: adsByASIN[asin],
			Category:  category,
		}
		if b, ok := business[asin]; ok {
			fact.BusinessMetrics = b.BusinessMetrics
			fact.business = true
		}
		out = append(out, fact)
	}
	return out
}

// modelAttributes marque et catégorie d'un Model, UNKNOWN hors master
func modelAttributes(master *catalogdomain.Master, model string) (string, catalogdomain.Category) {
	product, ok := master.ByModel(model)
	if !ok {
		return shareddomain.UnknownBrand.Label(), catalogdomain.UnknownCategory
	}
	return shareddomain.BrandOrUnknown(product.Brand()).Label(), product.Category()
}

// GroupWeeklyFacts somme au grain (semaine, marque, model, canal); le buy-box est la moyenne des lignes business
// Regrouper un résultat déjà groupé ne change rien
func GroupWeeklyFacts(rows []*WeeklyFact) []*WeeklyFact {
	index := make(map[[4]string]int, len(rows))
	counts := make([]int, 0, len(rows))
	out := make([]*WeeklyFact, 0, len(rows))
	for _, r := range rows {
		k := r.Key()
		weight := 0
		if r.hasBusiness() {
			weight = 1
		}
		i, ok := index[k]
		if !ok {
			index[k] = len(out)
			counts = append(counts, weight)
			cp := *r
			cp.BuyBox = r.BuyBox * float64(weight)
			out = append(out, &cp)
			continue
		}
		agg := out[i]
		agg.Sessions += r.Sessions
		agg.Units += r.Units
		agg.GMV += r.GMV
		agg.BuyBox += r.BuyBox * float64(weight)
		agg.AdMetrics = agg.AdMetrics.Add(r.AdMetrics)
		agg.business = agg.business || r.hasBusiness()
		if r.HasInventory && !agg.HasInventory {
			agg.InventoryUnits, agg.HasInventory = r.InventoryUnits, true
		}
		counts[i] += weight
	}
	for i, f := range out {
		if counts[i] > 0 {
			f.BuyBox /= float64(counts[i])
		}
	}
	codec := WeeklyFactCodec{}
	sort.SliceStable(out, func(i, j int) bool { return codec.Less(out[i], out[j]) })
	return out
}

// BuildCategoryFacts enrichit le fait ASIN avec le Model résolu, sa marque et sa catégorie
func BuildCategoryFacts(facts []*AmsAsinFact, master *catalogdomain.Master) []*AmsCategoryFact {
	byUnit := make(map[unitKey][]*AmsAsinFact)
	for _, f := range facts {
		k := unitKey{f.Week, f.Brand}
		byUnit[k] = append(byUnit[k], f)
	}

	out := make([]*AmsCategoryFact, 0, len(facts))
	for k, unit := range byUnit {
		bridge := NewModelBridge(master, unit)
		for _, f := range unit {
			cf := &AmsCategoryFact{AmsAsinFact: *f}
			if f.AdChannel == ingestdomain.AdTypeSB {
				cf.Model = SBModel
				cf.Brand = shareddomain.BrandOrUnknown(shareddomain.NewBrand(k.brand)).Label()
				cf.Category = SponsoredBrandsCategory
				cf.Category.L2 = f.Campaign
			} else {
				cf.Model = bridge.Resolve(f.ASIN)
				cf.Brand, cf.Category = modelAttributes(master, cf.Model)
			}
			out = append(out, cf)
		}
	}
	codec := AmsCategoryCodec{}
	sort.SliceStable(out, func(i, j int) bool { return codec.Less(out[i], out[j]) })
	return out
}

func sortedStrings[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedUnits(set map[unitKey]struct{}) []unitKey {
	keys := make([]unitKey, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].week != keys[j].week {
			return keys[i].week < keys[j].week
		}
		return keys[i].brand < keys[j].brand
	})
	return keys
}
