package application

import (
	"context"
	"os"

	"go.uber.org/zap"

	catalogdomain "weekly/internal/catalog/domain"
	exportdomain "weekly/internal/export/domain"
	exportinfra "weekly/internal/export/infrastructure"
	ingestdomain "weekly/internal/ingest/domain"
	ingestinfra "weekly/internal/ingest/infrastructure"
	"weekly/internal/reconcile/domain"
	shareddomain "weekly/internal/shared/domain"
	sharedinfra "weekly/internal/shared/infrastructure"
)

// SalesPipeline construit weekly_sales_snapshot.csv depuis data/raw/sales
type SalesPipeline struct {
	root    string
	workers int
	parser  *ingestinfra.Parser
	store   *exportinfra.SnapshotStore[domain.SalesRow]
	logger  *zap.Logger
}

// NewSalesPipeline crée l'étape ventes
func NewSalesPipeline(root string, workers int, parser *ingestinfra.Parser, store *exportinfra.SnapshotStore[domain.SalesRow], logger *zap.Logger) *SalesPipeline {
	return &SalesPipeline{root: root, workers: workers, parser: parser, store: store, logger: logger}
}

type salesUnitResult struct {
	rows    []domain.SalesRow
	skipped bool
	issues  *shareddomain.Issues
}

// Run traite toutes les unités (semaine, marque) puis fusionne dans l'historique
func (p *SalesPipeline) Run(ctx context.Context, master *catalogdomain.Master, mode exportdomain.MergeMode, issues *shareddomain.Issues) (stageResult, error) {
	var res stageResult
	units, err := ingestinfra.DiscoverSalesUnits(p.root, issues)
	if err != nil {
		return res, err
	}

	existing, _, err := p.store.Load()
	if err != nil {
		return res, err
	}
	done := exportdomain.Partitions[domain.SalesRow](p.store.Codec(), existing)

	results := make([]salesUnitResult, len(units))
	tasks := make([]sharedinfra.Task, 0, len(units))
	for i, u := range units {
		if mode == exportdomain.MergeAppend && amazonDone(done, u) {
			p.logger.Info("sales unit already processed",
				zap.Int("week", u.Week), zap.String("brand", u.BrandFolder))
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

	var rows []domain.SalesRow
	for i, r := range results {
		issues.Merge(r.issues)
		if r.skipped {
			res.skip(StageSales, units[i].Week, units[i].BrandFolder)
		}
		rows = append(rows, r.rows...)
	}

	merged, dropped, err := p.store.MergeAndSave(domain.GroupSalesRows(rows), mode)
	if err != nil {
		return res, err
	}
	p.logger.Info("sales snapshot written",
		zap.String("path", p.store.Path()),
		zap.Int("rows", len(merged.Rows)),
		zap.Int("partitions_added", len(merged.Added)),
		zap.Int("partitions_skipped", len(merged.Skipped)),
		zap.Int("partitions_replaced", len(merged.Replaced)),
	)
	res.outputs = append(res.outputs, newOutputStats(StageSales, p.store.Path(), merged, dropped))
	return res, nil
}

// unit lit les deux rapports d'une unité; un rapport absent ou illisible est ignoré
func (p *SalesPipeline) unit(u ingestinfra.SalesUnit, master *catalogdomain.Master) salesUnitResult {
	out := salesUnitResult{issues: shareddomain.NewIssues()}
	brand := u.Brand()

	var amazon []ingestdomain.AmazonModelRow
	var channels []ingestdomain.ChannelSKURow
	read := 0

	src := ingestdomain.Source{Stage: StageSales, Week: u.Week, Brand: u.BrandFolder, Path: u.AmazonFile()}
	if isFile(src.Path) {
		rows, err := p.parser.AmazonSales(src, out.issues)
		if err != nil {
			out.issues.Add(fileFailure(StageSales, src.Path, u.Week, u.BrandFolder, err))
		} else {
			amazon = rows
			read++
		}
	} else {
		out.issues.Add(missingInput(StageSales, src.Path, u.Week, u.BrandFolder))
	}

	src.Path = u.OtherChannelsFile()
	if isFile(src.Path) {
		rows, err := p.parser.OtherChannels(src, out.issues)
		if err != nil {
			out.issues.Add(fileFailure(StageSales, src.Path, u.Week, u.BrandFolder, err))
		} else {
			channels = rows
			read++
		}
	} else {
		out.issues.Add(missingInput(StageSales, src.Path, u.Week, u.BrandFolder))
	}

	if read == 0 {
		out.skipped = true
		p.logger.Warn("sales unit skipped",
			zap.Int("week", u.Week), zap.String("brand", u.BrandFolder))
		return out
	}
	out.rows = domain.BuildSalesRows(u.Week, brand, amazon, channels, master)
	return out
}

// amazonDone vrai si la partition Amazon de l'unité existe déjà
// Sans dossier marque, toute partition Amazon de la semaine compte
func amazonDone(done map[exportdomain.PartitionKey]struct{}, u ingestinfra.SalesUnit) bool {
	if u.BrandFolder != "" {
		_, ok := done[exportdomain.PartitionKey{Week: u.Week, Brand: u.Brand().Label(), Class: domain.AmazonChannel}]
		return ok
	}
	for k := range done {
		if k.Week == u.Week && k.Class == domain.AmazonChannel {
			return true
		}
	}
	return false
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
