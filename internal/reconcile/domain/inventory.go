package domain

import (
	exportdomain "weekly/internal/export/domain"
	shareddomain "weekly/internal/shared/domain"
)

// Classes de partition des snapshots d'inventaire
const (
	inventoryClass    = "INVENTORY"
	inventoryAMSClass = "INVENTORY_AMS"
)

// InventoryModelRow ligne de inventory_model_snapshot.csv, unique par (semaine, marque, model)
type InventoryModelRow struct {
	Week           int
	Brand          string
	Model          string
	InventoryUnits float64
	InventoryValue float64
}

// InventoryModelCodec forme CSV du snapshot d'inventaire par model
type InventoryModelCodec struct{}

var _ exportdomain.Codec[InventoryModelRow] = InventoryModelCodec{}

func (InventoryModelCodec) Header() []string {
	return []string{"week", "brand", "model", "inventory_units", "inventory_value"}
}

func (InventoryModelCodec) Encode(r InventoryModelRow) []string {
	return []string{shareddomain.WeekLabel(r.Week), r.Brand, r.Model, amt(r.InventoryUnits), amt(r.InventoryValue)}
}

func (InventoryModelCodec) Decode(values map[string]string) (InventoryModelRow, error) {
	rec := newRecord(values)
	row := InventoryModelRow{
		Week:           rec.week("week"),
		Brand:          rec.str("brand"),
		Model:          rec.str("model"),
		InventoryUnits: rec.amount("inventory_units"),
		InventoryValue: rec.amount("inventory_value"),
	}
	return row, rec.err
}

func (InventoryModelCodec) Partition(r InventoryModelRow) exportdomain.PartitionKey {
	return exportdomain.PartitionKey{Week: r.Week, Brand: r.Brand, Class: inventoryClass}
}

func (InventoryModelCodec) Less(a, b InventoryModelRow) bool {
	return lessBy(a.Week, b.Week, [2]string{a.Brand, b.Brand}, [2]string{a.Model, b.Model})
}

// Canaux de position d'inventaire
const (
	PositionAMPM     = "AMPM"
	Position1P       = "1P"
	PositionAmazon   = "AMAZON"
	PositionOther    = "OTHER"
	PositionPipeline = "PIPELINE"
)

// PositionBucket classe une ligne de position: les types en transit ou commandés vont en PIPELINE,
// les canaux AMPM, AMAZON et 1P sont conservés, le reste va en OTHER
func PositionBucket(channel, kind string) string {
	k, _ := shareddomain.NormalizeSKU(kind)
	switch k {
	case "IN-TRANSIT", "IN TRANSIT", "OPEN ORDER", "PIPELINE":
		return PositionPipeline
	}
	c, _ := shareddomain.NormalizeSKU(channel)
	switch c {
	case PositionAMPM, Position1P, PositionAmazon:
		return c
	}
	return PositionOther
}

// InventoryAmsRow ligne de inventory_ams_snapshot.csv, unique par (semaine, model)
type InventoryAmsRow struct {
	Week           int
	Model          string
	AMPM           float64
	FirstParty     float64
	Amazon         float64
	Other          float64
	PipelineOrders float64
}

// AddPosition ajoute une quantité dans le seau correspondant
func (r *InventoryAmsRow) AddPosition(bucket string, qty float64) {
	switch bucket {
	case PositionAMPM:
		r.AMPM += qty
	case Position1P:
		r.FirstParty += qty
	case PositionAmazon:
		r.Amazon += qty
	case PositionPipeline:
		r.PipelineOrders += qty
	default:
		r.Other += qty
	}
}

// TotalAmazon stock disponible côté Amazon (AMPM + 1P + AMAZON)
func (r InventoryAmsRow) TotalAmazon() float64 {
	return r.AMPM + r.FirstParty + r.Amazon
}

// InventoryAmsCodec forme CSV du snapshot de positions
type InventoryAmsCodec struct{}

var _ exportdomain.Codec[InventoryAmsRow] = InventoryAmsCodec{}

func (InventoryAmsCodec) Header() []string {
	return []string{
		"week", "model", "inventory_ampm", "inventory_1p", "inventory_amazon", "inventory_other",
		"inventory_total_amazon", "pipeline_orders", "inv_units_model",
	}
}

func (InventoryAmsCodec) Encode(r InventoryAmsRow) []string {
	total := amt(r.TotalAmazon())
	return []string{
		itoa(r.Week), r.Model, amt(r.AMPM), amt(r.FirstParty), amt(r.Amazon), amt(r.Other),
		total, amt(r.PipelineOrders), total,
	}
}

func (InventoryAmsCodec) Decode(values map[string]string) (InventoryAmsRow, error) {
	rec := newRecord(values)
	row := InventoryAmsRow{
		Week:           rec.week("week"),
		Model:          rec.str("model"),
		AMPM:           rec.amount("inventory_ampm"),
		FirstParty:     rec.amount("inventory_1p"),
		Amazon:         rec.amount("inventory_amazon"),
		Other:          rec.amount("inventory_other"),
		PipelineOrders: rec.amount("pipeline_orders"),
	}
	return row, rec.err
}

func (InventoryAmsCodec) Partition(r InventoryAmsRow) exportdomain.PartitionKey {
	return exportdomain.PartitionKey{Week: r.Week, Class: inventoryAMSClass}
}

func (InventoryAmsCodec) Less(a, b InventoryAmsRow) bool {
	return lessBy(a.Week, b.Week, [2]string{a.Model, b.Model})
}
