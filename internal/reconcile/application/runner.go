package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	catalogdomain "weekly/internal/catalog/domain"
	cataloginfra "weekly/internal/catalog/infrastructure"
	"weekly/internal/config"
	exportdomain "weekly/internal/export/domain"
	ingestinfra "weekly/internal/ingest/infrastructure"
	shareddomain "weekly/internal/shared/domain"
	sharedinfra "weekly/internal/shared/infrastructure"
)

// RunOptions paramètres d'un run
type RunOptions struct {
	// Stages vide = toutes les étapes
	Stages []string
	// Force remplace les partitions déjà écrites au lieu de les ignorer
	Force bool
}

// stage signature commune des étapes
type stage interface {
	Run(ctx context.Context, master *catalogdomain.Master, mode exportdomain.MergeMode, issues *shareddomain.Issues) (stageResult, error)
}

// Runner enchaîne ventes, inventaire puis AMS avec un seul chargement du master
type Runner struct {
	masterPath string
	loader     *cataloginfra.MasterLoader
	stages     map[string]stage
	stores     *Stores
	logger     *zap.Logger
	now        func() time.Time
}

// NewRunner câble les étapes sur la configuration; cache partagé pour le master (peut être nil)
func NewRunner(cfg *config.Config, cache sharedinfra.Cache, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	parser := ingestinfra.NewParser(cfg.Aliases, logger)
	stores := NewStores(cfg, logger)
	sales := NewSalesPipeline(cfg.RawSalesDir(), cfg.Workers, parser, stores.Sales, logger)
	inventory := NewInventoryPipeline(cfg.RawInventoryDir(), cfg.Workers, cfg.BrandCandidates, parser,
		stores.InventoryModel, stores.InventoryAMS, logger)
	ams := NewAMSPipeline(cfg.AMSDir(), cfg.AMSWeekWindow, cfg.Workers, parser, stores, logger)
	return &Runner{
		masterPath: cfg.MasterFile(),
		loader:     cataloginfra.NewMasterLoader(cfg.Aliases, cache, logger),
		stages: map[string]stage{
			StageSales:     sales,
			StageInventory: inventory,
			StageAMS:       ams,
		},
		stores: stores,
		logger: logger,
		now:    time.Now,
	}
}

// Stores retourne les snapshots du runner
func (r *Runner) Stores() *Stores {
	return r.stores
}

// Run exécute les étapes demandées
// L'erreur retournée est fatale au run; le rapport est toujours renseigné
func (r *Runner) Run(ctx context.Context, opts RunOptions) (*Report, error) {
	report := &Report{RunID: uuid.NewString(), StartedAt: r.now()}
	issues := shareddomain.NewIssues()
	logger := r.logger.With(zap.String("run_id", report.RunID))

	err := r.run(ctx, opts, report, issues, logger)
	if err != nil {
		issues.Add(shareddomain.Issue{Severity: shareddomain.SeverityFatalRun, Message: err.Error()})
	}
	report.Issues = issues.All()
	report.FinishedAt = r.now()
	report.finalize(err)

	logger.Info("run finished",
		zap.String("status", string(report.Status)),
		zap.Duration("duration", report.Duration()),
		zap.Int("issues", len(report.Issues)),
		zap.Int("skipped", len(report.BrandsSkipped)),
	)
	return report, err
}

func (r *Runner) run(ctx context.Context, opts RunOptions, report *Report, issues *shareddomain.Issues, logger *zap.Logger) error {
	stages, err := ParseStages(opts.Stages)
	if err != nil {
		return err
	}
	report.Stages = stages

	mode := exportdomain.MergeAppend
	if opts.Force {
		mode = exportdomain.MergeReplace
	}

	master, err := r.loader.Load(r.masterPath)
	if err != nil {
		return fmt.Errorf("load master: %w", err)
	}

	for _, name := range stages {
		if err := ctx.Err(); err != nil {
			return err
		}
		logger.Info("stage started", zap.String("stage", name), zap.Bool("force", opts.Force))
		res, err := r.stages[name].Run(ctx, master, mode, issues)
		if err != nil {
			return fmt.Errorf("stage %s: %w", name, err)
		}
		report.Outputs = append(report.Outputs, res.outputs...)
		report.BrandsSkipped = append(report.BrandsSkipped, res.skipped...)
	}
	return nil
}
