package domain

import (
	"math"
	"strconv"
	"strings"
)

// moneyNoise liste les fragments retirés avant conversion d'un montant
var moneyNoise = strings.NewReplacer(
	"₹", "",
	"$", "",
	"€", "",
	"£", "",
	",", "",
	"%", "",
	"#", "",
	"\u00a0", "",
	" ", "",
)

// ParseMoney convertit une cellule monétaire en float64
// Politique parse-or-zero: le booléen indique que la valeur a été remplacée par 0
func ParseMoney(raw string) (float64, bool) {
	if IsBlank(raw) {
		return 0, true
	}
	s := moneyNoise.Replace(strings.TrimSpace(raw))
	if s == "" || strings.EqualFold(s, "nan") {
		return 0, true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, true
	}
	return v, false
}

// ParseNumber convertit une cellule de comptage (unités, sessions, clics)
// Même contrat que ParseMoney
func ParseNumber(raw string) (float64, bool) {
	return ParseMoney(raw)
}

// Round arrondit à n décimales
func Round(v float64, n int) float64 {
	p := math.Pow(10, float64(n))
	return math.Round(v*p) / p
}

// FormatAmount sérialise un montant ou un compteur pour les snapshots CSV
// Arrondi à 6 décimales pour absorber le bruit des sommes flottantes
func FormatAmount(v float64) string {
	r := Round(v, 6)
	if r == 0 {
		return "0"
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}

// ParseAmount relit une valeur écrite par FormatAmount
func ParseAmount(raw string) (float64, error) {
	if strings.TrimSpace(raw) == "" {
		return 0, nil
	}
	return strconv.ParseFloat(strings.TrimSpace(raw), 64)
}
