package domain

import (
	"strings"
	"unicode"
)

// placeholders regroupe les valeurs de cellule qui signifient "vide"
// une fois exportées par un tableur ou par pandas
var placeholders = map[string]struct{}{
	"":     {},
	"nan":  {},
	"none": {},
	"null": {},
	"#n/a": {},
	"n/a":  {},
}

// IsBlank vérifie si une cellule brute doit être traitée comme absente
func IsBlank(raw string) bool {
	_, ok := placeholders[strings.ToLower(strings.TrimSpace(raw))]
	return ok
}

// NormalizeModel canonicalise un code Model (trim + majuscules)
// Retourne false si la valeur est vide: elle ne doit jamais participer à une jointure
func NormalizeModel(raw string) (string, bool) {
	if IsBlank(raw) {
		return "", false
	}
	return strings.ToUpper(strings.TrimSpace(raw)), true
}

// NormalizeSKU canonicalise un SKU vendeur (trim + majuscules)
func NormalizeSKU(raw string) (string, bool) {
	if IsBlank(raw) {
		return "", false
	}
	return strings.ToUpper(strings.TrimSpace(raw)), true
}

// NormalizeASIN canonicalise un ASIN (trim uniquement)
func NormalizeASIN(raw string) (string, bool) {
	if IsBlank(raw) {
		return "", false
	}
	return strings.TrimSpace(raw), true
}

// Brand représente une marque sous sa forme clé (stockage, regroupement)
// Le libellé d'affichage est dérivé, jamais stocké séparément
type Brand struct {
	key string
}

// UnknownBrand est la marque sentinelle des lignes sans correspondance master
var UnknownBrand = Brand{key: "unknown"}

// NewBrand crée une Brand à partir d'un nom de dossier ou d'une cellule
// "white_mulberry", "White Mulberry" et "WHITE  MULBERRY" donnent la même clé
func NewBrand(raw string) Brand {
	if IsBlank(raw) {
		return Brand{}
	}
	s := strings.ReplaceAll(strings.TrimSpace(raw), "_", " ")
	return Brand{key: strings.Join(strings.Fields(strings.ToLower(s)), " ")}
}

// BrandOrUnknown retourne la marque, ou UnknownBrand si elle est vide
func BrandOrUnknown(b Brand) Brand {
	if b.IsZero() {
		return UnknownBrand
	}
	return b
}

// Key retourne la forme clé
func (b Brand) Key() string {
	return b.key
}

// Label retourne la forme d'affichage (title case)
func (b Brand) Label() string {
	if b == UnknownBrand {
		return "UNKNOWN"
	}
	words := strings.Fields(b.key)
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// IsZero vérifie si la marque est vide
func (b Brand) IsZero() bool {
	return b.key == ""
}

// Equal compare deux marques sur leur clé
func (b Brand) Equal(other Brand) bool {
	return b.key == other.key
}
