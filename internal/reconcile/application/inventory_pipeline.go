package application

import (
	"context"
	"path/filepath"
	"strings"
	"unicode"

	"go.uber.org/zap"

	catalogdomain "weekly/internal/catalog/domain"
	"weekly/internal/config"
	exportdomain "weekly/internal/export/domain"
	exportinfra "weekly/internal/export/infrastructure"
	ingestdomain "weekly/internal/ingest/domain"
	ingestinfra "weekly/internal/ingest/infrastructure"
	"weekly/internal/reconcile/domain"
	shareddomain "weekly/internal/shared/domain"
	sharedinfra "weekly/internal/shared/infrastructure"
)

// UnknownInventoryBrand marque d'un fichier d'inventaire sans motif reconnu ni dossier marque
const UnknownInventoryBrand = "Unknown"

// InventoryPipeline construit les snapshots d'inventaire par model et par position
type InventoryPipeline struct {
	root       string
	workers    int
	candidates []config.BrandPattern
	parser     *ingestinfra.Parser
	models     *exportinfra.SnapshotStore[domain.InventoryModelRow]
	positions  *exportinfra.SnapshotStore[domain.InventoryAmsRow]
	logger     *zap.Logger
}

// NewInventoryPipeline crée l'étape inventaire
func NewInventoryPipeline(
	root string,
	workers int,
	candidates []config.BrandPattern,
	parser *ingestinfra.Parser,
	models *exportinfra.SnapshotStore[domain.InventoryModelRow],
	positions *exportinfra.SnapshotStore[domain.InventoryAmsRow],
	logger *zap.Logger,
) *InventoryPipeline {
	return &InventoryPipeline{
		root:       root,
		workers:    workers,
		candidates: candidates,
		parser:     parser,
		models:     models,
		positions:  positions,
		logger:     logger,
	}
}

// minPrefixPattern longueur en dessous de laquelle un motif doit égaler un mot entier
const minPrefixPattern = 3

// DetectBrand cherche un motif de marque parmi les mots de "<dossier parent> <nom du fichier>",
// puis se rabat sur le dossier marque, sinon Unknown
// Un motif correspond au début d'un mot ("white" dans "white_stock"); un motif court doit égaler le mot ("am" dans "am_pm", pas dans "samsung")
func DetectBrand(candidates []config.BrandPattern, f ingestinfra.InventoryFile) string {
	stem := strings.TrimSuffix(filepath.Base(f.Path), filepath.Ext(f.Path))
	words := brandWords(filepath.Base(filepath.Dir(f.Path)) + " " + stem)
	for _, c := range candidates {
		for _, pattern := range c.Patterns {
			if matchesBrandPattern(words, pattern) {
				return c.Brand
			}
		}
	}
	if b := shareddomain.NewBrand(f.BrandFolder); !b.IsZero() {
		return b.Label()
	}
	return UnknownInventoryBrand
}

func brandWords(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func matchesBrandPattern(words []string, pattern string) bool {
	parts := brandWords(pattern)
	switch {
	case len(parts) == 0:
		return false
	case len(parts) > 1:
		// motif de plusieurs mots: suite de mots consécutifs
		return strings.Contains(" "+strings.Join(words, " ")+" ", " "+strings.Join(parts, " ")+" ")
	}
	p := parts[0]
	for _, w := range words {
		if w == p || (len(p) >= minPrefixPattern && strings.HasPrefix(w, p)) {
			return true
		}
	}
	return false
}

type inventoryFileResult struct {
	rows   []domain.InventoryModelRow
	failed bool
	issues *shareddomain.Issues
}

// Run écrit inventory_model_snapshot.csv puis inventory_ams_snapshot.csv
func (p *InventoryPipeline) Run(ctx context.Context, master *catalogdomain.Master, mode exportdomain.MergeMode, issues *shareddomain.Issues) (stageResult, error) {
	var res stageResult

	files, err := ingestinfra.DiscoverInventoryFiles(p.root, issues)
	if err != nil {
		return res, err
	}
	// les fichiers de positions ont leur propre snapshot
	modelFiles := files[:0:0]
	for _, f := range files {
		if !strings.EqualFold(filepath.Base(f.Path), ingestinfra.PositionSnapshotName) {
			modelFiles = append(modelFiles, f)
		}
	}

	results := make([]inventoryFileResult, len(modelFiles))
	tasks := make([]sharedinfra.Task, len(modelFiles))
	for i, f := range modelFiles {
		tasks[i] = func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = p.modelFile(f, master)
			return nil
		}
	}
	if errs := sharedinfra.RunAll(ctx, p.workers, tasks); len(errs) > 0 {
		return res, errs[0]
	}

	var rows []domain.InventoryModelRow
	for i, r := range results {
		issues.Merge(r.issues)
		if r.failed {
			res.skip(StageInventory, modelFiles[i].Week, DetectBrand(p.candidates, modelFiles[i]))
		}
		rows = append(rows, r.rows...)
	}
	merged, dropped, err := p.models.MergeAndSave(domain.GroupInventoryModelRows(rows), mode)
	if err != nil {
		return res, err
	}
	p.logger.Info("inventory model snapshot written",
		zap.String("path", p.models.Path()),
		zap.Int("files", len(modelFiles)),
		zap.Int("rows", len(merged.Rows)),
	)
	res.outputs = append(res.outputs, newOutputStats(StageInventory, p.models.Path(), merged, dropped))

	stats, err := p.runPositions(mode, issues, &res)
	if err != nil {
		return res, err
	}
	res.outputs = append(res.outputs, stats)
	return res, nil
}

func (p *InventoryPipeline) modelFile(f ingestinfra.InventoryFile, master *catalogdomain.Master) inventoryFileResult {
	out := inventoryFileResult{issues: shareddomain.NewIssues()}
	brand := DetectBrand(p.candidates, f)
	src := ingestdomain.Source{Stage: StageInventory, Week: f.Week, Brand: brand, Path: f.Path}
	rows, err := p.parser.Inventory(src, out.issues)
	if err != nil {
		out.issues.Add(fileFailure(StageInventory, f.Path, f.Week, brand, err))
		out.failed = true
		return out
	}
	out.rows = domain.BuildInventoryModelRows(brand, rows, master)
	return out
}

// runPositions pivote les fichiers de positions de la dernière semaine
func (p *InventoryPipeline) runPositions(mode exportdomain.MergeMode, issues *shareddomain.Issues, res *stageResult) (OutputStats, error) {
	files, err := ingestinfra.DiscoverLatestPositionFiles(p.root, issues)
	if err != nil {
		return OutputStats{}, err
	}
	var positions []ingestdomain.InventoryPositionRow
	for _, f := range files {
		src := ingestdomain.Source{Stage: StageInventory, Week: f.Week, Brand: f.BrandFolder, Path: f.Path}
		rows, err := p.parser.InventoryPositions(src, issues)
		if err != nil {
			issues.Add(fileFailure(StageInventory, f.Path, f.Week, f.BrandFolder, err))
			res.skip(StageInventory, f.Week, f.BrandFolder)
			continue
		}
		positions = append(positions, rows...)
	}

	merged, dropped, err := p.positions.MergeAndSave(domain.BuildInventoryAmsRows(positions), mode)
	if err != nil {
		return OutputStats{}, err
	}
	p.logger.Info("inventory position snapshot written",
		zap.String("path", p.positions.Path()),
		zap.Int("files", len(files)),
		zap.Int("rows", len(merged.Rows)),
	)
	return newOutputStats(StageInventory, p.positions.Path(), merged, dropped), nil
}
