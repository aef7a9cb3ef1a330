package infrastructure

import (
	"strings"
	"unicode"
)

// NormalizeHeader ramène un en-tête de tableur à sa forme canonique
// "14 Day Total Sales (₹)" → "14_day_total_sales", "(Child) ASIN" → "child_asin"
func NormalizeHeader(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	pendingSep := false
	for _, r := range strings.ToLower(strings.TrimSpace(raw)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
		default:
			pendingSep = true
		}
	}
	return b.String()
}

// ResolveColumn retourne la première colonne candidate présente, dans l'ordre de priorité
// columns et candidates sont comparés après normalisation
func ResolveColumn(columns []string, candidates []string) (string, bool) {
	present := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		present[NormalizeHeader(c)] = struct{}{}
	}
	for _, cand := range candidates {
		n := NormalizeHeader(cand)
		if _, ok := present[n]; ok {
			return n, true
		}
	}
	return "", false
}

// AliasTable associe un champ logique à sa liste ordonnée d'en-têtes candidats
type AliasTable map[string][]string

// Candidates retourne les candidats d'un champ; le nom du champ lui-même en dernier recours
func (t AliasTable) Candidates(field string) []string {
	list, ok := t[field]
	if !ok || len(list) == 0 {
		return []string{field}
	}
	return list
}

// Clone copie la table
func (t AliasTable) Clone() AliasTable {
	out := make(AliasTable, len(t))
	for k, v := range t {
		out[k] = append([]string{}, v...)
	}
	return out
}

// Override remplace les candidats des champs présents dans other
func (t AliasTable) Override(other AliasTable) AliasTable {
	out := t.Clone()
	for k, v := range other {
		if len(v) > 0 {
			out[strings.ToLower(strings.TrimSpace(k))] = append([]string{}, v...)
		}
	}
	return out
}
