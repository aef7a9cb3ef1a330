package domain

import (
	"weekly/internal/shared/domain"
)

// MasterEntry est une ligne brute du fichier master, avant indexation
type MasterEntry struct {
	Model    string
	SKU      string
	ASIN     string
	Brand    string
	NLC      float64
	Category Category
}

// Diagnostics compte les collisions écartées au chargement (first-seen wins)
type Diagnostics struct {
	Rows            int
	BlankModelRows  int
	DuplicateModels int
	DuplicateSKUs   int
	DuplicateASINs  int
}

// Master est la table de référence Model → attributs, avec les ponts SKU → Model et ASIN → Model
// Immuable après construction
type Master struct {
	byModel     map[string]Product
	bySKU       map[string]string
	byASIN      map[string]string
	models      []string
	diagnostics Diagnostics
}

// NewMaster indexe les lignes dans l'ordre; la première occurrence d'une clé l'emporte
func NewMaster(entries []MasterEntry) *Master {
	m := &Master{
		byModel: make(map[string]Product, len(entries)),
		bySKU:   make(map[string]string, len(entries)),
		byASIN:  make(map[string]string, len(entries)),
	}
	m.diagnostics.Rows = len(entries)

	for _, e := range entries {
		model, ok := domain.NormalizeModel(e.Model)
		if !ok {
			m.diagnostics.BlankModelRows++
			continue
		}
		sku, hasSKU := domain.NormalizeSKU(e.SKU)

		if _, seen := m.byModel[model]; seen {
			m.diagnostics.DuplicateModels++
		} else {
			m.byModel[model] = NewProduct(model, domain.NewBrand(e.Brand), e.NLC, e.Category, sku)
			m.models = append(m.models, model)
		}

		if hasSKU {
			if _, seen := m.bySKU[sku]; seen {
				m.diagnostics.DuplicateSKUs++
			} else {
				m.bySKU[sku] = model
			}
		}
		if asin, ok := domain.NormalizeASIN(e.ASIN); ok {
			if _, seen := m.byASIN[asin]; seen {
				m.diagnostics.DuplicateASINs++
			} else {
				m.byASIN[asin] = model
			}
		}
	}
	return m
}

// ByModel retourne le produit d'un Model; false si inconnu
func (m *Master) ByModel(model string) (Product, bool) {
	key, ok := domain.NormalizeModel(model)
	if !ok {
		return Product{}, false
	}
	p, found := m.byModel[key]
	return p, found
}

// BySKU retourne le Model d'un SKU
func (m *Master) BySKU(sku string) (string, bool) {
	key, ok := domain.NormalizeSKU(sku)
	if !ok {
		return "", false
	}
	model, found := m.bySKU[key]
	return model, found
}

// ByASIN retourne le Model d'un ASIN
func (m *Master) ByASIN(asin string) (string, bool) {
	key, ok := domain.NormalizeASIN(asin)
	if !ok {
		return "", false
	}
	model, found := m.byASIN[key]
	return model, found
}

// ProductBySKU enchaîne BySKU puis ByModel
func (m *Master) ProductBySKU(sku string) (Product, bool) {
	model, ok := m.BySKU(sku)
	if !ok {
		return Product{}, false
	}
	return m.ByModel(model)
}

// RepresentativeSKU retourne le premier SKU vu pour un Model
func (m *Master) RepresentativeSKU(model string) string {
	p, ok := m.ByModel(model)
	if !ok {
		return ""
	}
	return p.FirstSKU()
}

// Len retourne le nombre de Models distincts
func (m *Master) Len() int {
	return len(m.byModel)
}

// Models retourne les Models dans l'ordre de première apparition
func (m *Master) Models() []string {
	return append([]string{}, m.models...)
}

// Diagnostics retourne les compteurs de collisions
func (m *Master) Diagnostics() Diagnostics {
	return m.diagnostics
}
