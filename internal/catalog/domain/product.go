package domain

import (
	"strings"

	"weekly/internal/shared/domain"
)

// Category représente le chemin de catégorie à trois niveaux d'un produit
type Category struct {
	L0 string
	L1 string
	L2 string
}

// NewCategory nettoie les trois niveaux (trim, espaces multiples, placeholders)
func NewCategory(l0, l1, l2 string) Category {
	return Category{L0: cleanCategory(l0), L1: cleanCategory(l1), L2: cleanCategory(l2)}
}

func cleanCategory(raw string) string {
	if domain.IsBlank(raw) {
		return ""
	}
	return strings.Join(strings.Fields(raw), " ")
}

// UnknownCategory catégorie des lignes sans correspondance master
var UnknownCategory = Category{L0: "UNKNOWN", L1: "UNKNOWN", L2: "UNKNOWN"}

// Product représente une ligne de référence du master, indexée par Model
type Product struct {
	model    string
	brand    domain.Brand
	nlc      float64
	category Category
	firstSKU string
}

// NewProduct crée un produit; model doit être déjà normalisé
func NewProduct(model string, brand domain.Brand, nlc float64, category Category, firstSKU string) Product {
	return Product{
		model:    model,
		brand:    brand,
		nlc:      nlc,
		category: category,
		firstSKU: firstSKU,
	}
}

// Model retourne le code Model canonique
func (p Product) Model() string {
	return p.model
}

// Brand retourne la marque du master
func (p Product) Brand() domain.Brand {
	return p.brand
}

// NLC retourne le coût de revient net unitaire
func (p Product) NLC() float64 {
	return p.nlc
}

// Category retourne le chemin de catégorie
func (p Product) Category() Category {
	return p.category
}

// FirstSKU retourne le premier SKU vu pour ce Model, vide si aucun
func (p Product) FirstSKU() string {
	return p.firstSKU
}
