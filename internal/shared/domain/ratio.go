package domain

import (
	"math"
	"strconv"
	"strings"
)

// Ratio est une métrique dérivée pouvant être indéfinie
// Un ratio nul n'est jamais confondu avec zéro
type Ratio struct {
	value float64
	valid bool
}

// NullRatio est le ratio indéfini
var NullRatio = Ratio{}

// NewRatio crée un ratio défini
func NewRatio(v float64) Ratio {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NullRatio
	}
	return Ratio{value: v, valid: true}
}

// SafeDiv divise n par d, nul si le dénominateur est zéro ou non fini
func SafeDiv(n, d float64) Ratio {
	if d == 0 || math.IsNaN(d) || math.IsInf(d, 0) || math.IsNaN(n) {
		return NullRatio
	}
	return NewRatio(n / d)
}

// Value retourne la valeur et sa validité
func (r Ratio) Value() (float64, bool) {
	return r.value, r.valid
}

// Valid vérifie si le ratio est défini
func (r Ratio) Valid() bool {
	return r.valid
}

// Complement retourne 1 - r, nul si r est nul
func (r Ratio) Complement() Ratio {
	if !r.valid {
		return NullRatio
	}
	return NewRatio(1 - r.value)
}

// Ptr retourne un pointeur vers la valeur, nil si indéfini
func (r Ratio) Ptr() *float64 {
	if !r.valid {
		return nil
	}
	v := r.value
	return &v
}

// String sérialise le ratio; cellule vide si indéfini
func (r Ratio) String() string {
	if !r.valid {
		return ""
	}
	return strconv.FormatFloat(Round(r.value, 6), 'f', -1, 64)
}

// ParseRatio relit un ratio sérialisé par String
func ParseRatio(raw string) (Ratio, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return NullRatio, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return NullRatio, err
	}
	return NewRatio(v), nil
}
