package application

import (
	"context"

	"go.uber.org/zap"

	analyticsdomain "weekly/internal/analytics/domain"
	catalogdomain "weekly/internal/catalog/domain"
	exportdomain "weekly/internal/export/domain"
	ingestdomain "weekly/internal/ingest/domain"
	ingestinfra "weekly/internal/ingest/infrastructure"
	"weekly/internal/reconcile/domain"
	shareddomain "weekly/internal/shared/domain"
	sharedinfra "weekly/internal/shared/infrastructure"
)

// AMSPipeline construit l'agrégat publicitaire, le fait ASIN, le fait hebdomadaire et le fait catégorisé
type AMSPipeline struct {
	root    string
	window  int
	workers int
	parser  *ingestinfra.Parser
	stores  *Stores
	logger  *zap.Logger
}

// NewAMSPipeline crée l'étape AMS; window = nombre de semaines gardées par marque (0 = toutes)
func NewAMSPipeline(root string, window, workers int, parser *ingestinfra.Parser, stores *Stores, logger *zap.Logger) *AMSPipeline {
	return &AMSPipeline{root: root, window: window, workers: workers, parser: parser, stores: stores, logger: logger}
}

type amsUnitResult struct {
	ads     []domain.AdsAggregateRow
	facts   []*domain.AmsAsinFact
	skipped bool
	issues  *shareddomain.Issues
}

// Run traite les unités (semaine, marque) puis recalcule les faits dérivés sur tout l'historique
func (p *AMSPipeline) Run(ctx context.Context, master *catalogdomain.Master, mode exportdomain.MergeMode, issues *shareddomain.Issues) (stageResult, error) {
	var res stageResult
	units, err := ingestinfra.DiscoverAMSUnits(p.root, p.window, issues)
	if err != nil {
		return res, err
	}

	existing, factsDropped, err := p.stores.AsinFact.Load()
	if err != nil {
		return res, err
	}
	codec := p.stores.AsinFact.Codec()
	done := exportdomain.Partitions(codec, existing)

	results := make([]amsUnitResult, len(units))
	tasks := make([]sharedinfra.Task, 0, len(units))
	for i, u := range units {
		key := codec.Partition(&domain.AmsAsinFact{Week: u.Week, Brand: u.Brand().Label()})
		if _, ok := done[key]; ok && mode == exportdomain.MergeAppend {
			p.logger.Info("ams unit already processed", zap.Int("week", u.Week), zap.String("brand", u.BrandFolder))
			continue
		}
		tasks = append(tasks, func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = p.unit(u, master)
			return nil
		})
	}
	if errs := sharedinfra.RunAll(ctx, p.workers, tasks); len(errs) > 0 {
		return res, errs[0]
	}

	var ads []domain.AdsAggregateRow
	var facts []*domain.AmsAsinFact
	for i, r := range results {
		issues.Merge(r.issues)
		if r.skipped {
			res.skip(StageAMS, units[i].Week, units[i].BrandFolder)
		}
		ads = append(ads, r.ads...)
		facts = append(facts, r.facts...)
	}

	// les faits dérivés sont calculés sur les valeurs telles qu'écrites, d'un run à l'autre
	if ads, err = exportdomain.Normalize(p.stores.AdsAggregate.Codec(), ads); err != nil {
		return res, err
	}
	mergedAds, adsDropped, err := p.stores.AdsAggregate.MergeAndSave(ads, mode)
	if err != nil {
		return res, err
	}
	res.outputs = append(res.outputs, newOutputStats(StageAMS, p.stores.AdsAggregate.Path(), mergedAds, adsDropped))

	// la contribution dépend du total de la semaine: recalculée sur l'historique fusionné
	if facts, err = exportdomain.Normalize(codec, facts); err != nil {
		return res, err
	}
	mergedFacts := exportdomain.Merge(codec, existing, facts, mode)
	analyticsdomain.ApplyWeeklyContribution(mergedFacts.Rows)
	if mergedFacts.Rows, err = exportdomain.Normalize(codec, mergedFacts.Rows); err != nil {
		return res, err
	}
	if err := p.stores.AsinFact.Save(mergedFacts.Rows); err != nil {
		return res, err
	}
	res.outputs = append(res.outputs, newOutputStats(StageAMS, p.stores.AsinFact.Path(), mergedFacts, factsDropped))

	inventory, _, err := p.stores.InventoryModel.Load()
	if err != nil {
		return res, err
	}
	weekly := domain.BuildWeeklyFacts(mergedFacts.Rows, mergedAds.Rows, master, domain.NewInventoryIndex(inventory))
	if err := p.stores.WeeklyFact.Save(weekly); err != nil {
		return res, err
	}
	res.outputs = append(res.outputs, derivedStats(p.stores.WeeklyFact.Path(), len(weekly)))

	categorized := domain.BuildCategoryFacts(mergedFacts.Rows, master)
	if err := p.stores.CategoryFact.Save(categorized); err != nil {
		return res, err
	}
	res.outputs = append(res.outputs, derivedStats(p.stores.CategoryFact.Path(), len(categorized)))

	p.logger.Info("ams facts written",
		zap.Int("units", len(tasks)),
		zap.Int("asin_rows", len(mergedFacts.Rows)),
		zap.Int("weekly_rows", len(weekly)),
		zap.Int("partitions_added", len(mergedFacts.Added)),
		zap.Int("partitions_replaced", len(mergedFacts.Replaced)),
	)
	return res, nil
}

// unit lit le business report (obligatoire) et le rapport publicitaire (optionnel) d'une unité
func (p *AMSPipeline) unit(u ingestinfra.AMSUnit, master *catalogdomain.Master) amsUnitResult {
	out := amsUnitResult{issues: shareddomain.NewIssues()}
	brand := u.Brand().Label()

	src := ingestdomain.Source{Stage: StageAMS, Week: u.Week, Brand: u.BrandFolder, Path: u.BusinessFile}
	business, err := p.parser.BusinessReport(src, out.issues)
	if err != nil {
		out.issues.Add(fileFailure(StageAMS, u.BusinessFile, u.Week, u.BrandFolder, err))
		out.skipped = true
		p.logger.Warn("ams unit skipped", zap.Int("week", u.Week), zap.String("brand", u.BrandFolder), zap.Error(err))
		return out
	}

	var report ingestdomain.AdsReport
	if u.AdsFile != "" {
		src.Path = u.AdsFile
		report, err = p.parser.AdsReport(src, out.issues)
		if err != nil {
			out.issues.Add(fileFailure(StageAMS, u.AdsFile, u.Week, u.BrandFolder, err))
			report = ingestdomain.AdsReport{}
		}
	}

	out.ads = domain.AggregateAds(u.Week, brand, report, master)
	out.facts = domain.BuildAsinFacts(u.Week, brand, domain.AggregateBusiness(business), out.ads)
	return out
}

// derivedStats bilan d'une table recalculée en entier à chaque run
func derivedStats(path string, rows int) OutputStats {
	return OutputStats{Stage: StageAMS, Path: path, Rows: rows}
}
