package application

import (
	"go.uber.org/zap"

	"weekly/internal/config"
	exportinfra "weekly/internal/export/infrastructure"
	"weekly/internal/reconcile/domain"
)

// Stores regroupe les snapshots lus et écrits par un run
type Stores struct {
	Sales          *exportinfra.SnapshotStore[domain.SalesRow]
	InventoryModel *exportinfra.SnapshotStore[domain.InventoryModelRow]
	InventoryAMS   *exportinfra.SnapshotStore[domain.InventoryAmsRow]
	AdsAggregate   *exportinfra.SnapshotStore[domain.AdsAggregateRow]
	AsinFact       *exportinfra.SnapshotStore[*domain.AmsAsinFact]
	CategoryFact   *exportinfra.SnapshotStore[*domain.AmsCategoryFact]
	WeeklyFact     *exportinfra.SnapshotStore[*domain.WeeklyFact]
}

// NewStores place chaque snapshot au chemin dérivé de la configuration
func NewStores(cfg *config.Config, logger *zap.Logger) *Stores {
	return &Stores{
		Sales:          exportinfra.NewSnapshotStore[domain.SalesRow](cfg.SalesSnapshot(), domain.SalesCodec{}, logger),
		InventoryModel: exportinfra.NewSnapshotStore[domain.InventoryModelRow](cfg.InventoryModelSnapshot(), domain.InventoryModelCodec{}, logger),
		InventoryAMS:   exportinfra.NewSnapshotStore[domain.InventoryAmsRow](cfg.InventoryAMSSnapshot(), domain.InventoryAmsCodec{}, logger),
		AdsAggregate:   exportinfra.NewSnapshotStore[domain.AdsAggregateRow](cfg.AdsAggregated(), domain.AdsAggregateCodec{}, logger),
		AsinFact:       exportinfra.NewSnapshotStore[*domain.AmsAsinFact](cfg.AMSFact(), domain.AmsFactCodec{}, logger),
		CategoryFact:   exportinfra.NewSnapshotStore[*domain.AmsCategoryFact](cfg.AMSFactWithCategory(), domain.AmsCategoryCodec{}, logger),
		WeeklyFact:     exportinfra.NewSnapshotStore[*domain.WeeklyFact](cfg.WeeklyFact(), domain.WeeklyFactCodec{}, logger),
	}
}
