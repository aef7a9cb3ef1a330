package infrastructure

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"go.uber.org/zap"

	"weekly/internal/catalog/domain"
	"weekly/internal/config"
	shareddomain "weekly/internal/shared/domain"
	"weekly/internal/shared/infrastructure"
)

// MasterTTL durée de vie d'un master en cache
const MasterTTL = 10 * time.Minute

// MasterLoader lit le fichier master et le garde en cache par (chemin, mtime, taille)
type MasterLoader struct {
	aliases infrastructure.AliasTable
	cache   infrastructure.Cache
	logger  *zap.Logger
}

// NewMasterLoader crée un loader; cache peut être nil
func NewMasterLoader(aliases infrastructure.AliasTable, cache infrastructure.Cache, logger *zap.Logger) *MasterLoader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MasterLoader{aliases: aliases, cache: cache, logger: logger}
}

// Load retourne le master du fichier path
// Fichier absent ou colonnes obligatoires manquantes: erreur fatale au run
func (l *MasterLoader) Load(path string) (*domain.Master, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: master %s", shareddomain.ErrMissingInput, path)
		}
		return nil, fmt.Errorf("stat master: %w", err)
	}

	key := infrastructure.NewCacheKeyBuilder().
		Add("master").
		Add(path).
		AddInt(info.ModTime().UnixNano()).
		AddInt(info.Size()).
		Build()
	if l.cache != nil {
		if cached, ok := l.cache.Get(key); ok {
			if m, ok := cached.(*domain.Master); ok {
				l.logger.Debug("master cache hit", zap.String("path", path))
				return m, nil
			}
		}
	}

	table, err := infrastructure.ReadFirstSheet(path)
	if err != nil {
		return nil, fmt.Errorf("read master: %w", err)
	}
	entries, err := l.parse(table)
	if err != nil {
		return nil, err
	}
	m := domain.NewMaster(entries)

	d := m.Diagnostics()
	l.logger.Info("master loaded",
		zap.String("path", path),
		zap.Int("rows", d.Rows),
		zap.Int("models", m.Len()),
		zap.Int("blank_model_rows", d.BlankModelRows),
		zap.Int("duplicate_skus", d.DuplicateSKUs),
		zap.Int("duplicate_asins", d.DuplicateASINs),
	)

	if l.cache != nil {
		l.cache.Set(key, m, MasterTTL)
	}
	return m, nil
}

func (l *MasterLoader) parse(table *infrastructure.Table) ([]domain.MasterEntry, error) {
	required := []string{config.FieldMasterModel, config.FieldMasterSKU, config.FieldMasterBrand, config.FieldMasterNLC}
	idx := make(map[string]int, len(required))
	var missing []string
	for _, field := range required {
		i, _, ok := table.Resolve(l.aliases.Candidates(field))
		if !ok {
			missing = append(missing, field)
			continue
		}
		idx[field] = i
	}
	if len(missing) > 0 {
		return nil, shareddomain.NewMissingRequiredColumnError(table.Source, missing)
	}

	optional := func(field string) int {
		i, _, ok := table.Resolve(l.aliases.Candidates(field))
		if !ok {
			return -1
		}
		return i
	}
	asinIdx := optional(config.FieldMasterASIN)
	l0, l1, l2 := optional(config.FieldCategoryL0), optional(config.FieldCategoryL1), optional(config.FieldCategoryL2)

	entries := make([]domain.MasterEntry, 0, len(table.Rows))
	for _, row := range table.Rows {
		nlc, _ := shareddomain.ParseMoney(table.Cell(row, idx[config.FieldMasterNLC]))
		entries = append(entries, domain.MasterEntry{
			Model:    table.Cell(row, idx[config.FieldMasterModel]),
			SKU:      table.Cell(row, idx[config.FieldMasterSKU]),
			ASIN:     table.Cell(row, asinIdx),
			Brand:    table.Cell(row, idx[config.FieldMasterBrand]),
			NLC:      nlc,
			Category: domain.NewCategory(table.Cell(row, l0), table.Cell(row, l1), table.Cell(row, l2)),
		})
	}
	return entries, nil
}
