package domain

import (
	"fmt"
	"strconv"
	"strings"

	catalogdomain "weekly/internal/catalog/domain"
	shareddomain "weekly/internal/shared/domain"
)

// record lit les champs d'une ligne CSV en accumulant la première erreur
type record struct {
	values map[string]string
	err    error
}

func newRecord(values map[string]string) *record {
	return &record{values: values}
}

func (r *record) str(col string) string {
	return strings.TrimSpace(r.values[col])
}

func (r *record) week(col string) int {
	if r.err != nil {
		return 0
	}
	w, err := shareddomain.ExtractWeek(r.values[col])
	if err != nil {
		r.err = fmt.Errorf("column %s: %w", col, err)
	}
	return w
}

func (r *record) amount(col string) float64 {
	if r.err != nil {
		return 0
	}
	v, err := shareddomain.ParseAmount(r.values[col])
	if err != nil {
		r.err = fmt.Errorf("column %s: %w", col, err)
	}
	return v
}

func (r *record) ratio(col string) shareddomain.Ratio {
	if r.err != nil {
		return shareddomain.NullRatio
	}
	v, err := shareddomain.ParseRatio(r.values[col])
	if err != nil {
		r.err = fmt.Errorf("column %s: %w", col, err)
	}
	return v
}

func (r *record) category() catalogdomain.Category {
	return catalogdomain.Category{L0: r.str("category_l0"), L1: r.str("category_l1"), L2: r.str("category_l2")}
}

func amt(v float64) string {
	return shareddomain.FormatAmount(v)
}

func itoa(v int) string {
	return strconv.Itoa(v)
}

// compareStrings compare des clés successives; retourne -1, 0 ou 1
func compareStrings(pairs ...[2]string) int {
	for _, p := range pairs {
		if c := strings.Compare(p[0], p[1]); c != 0 {
			return c
		}
	}
	return 0
}

// lessBy ordonne d'abord par semaine puis par chaînes successives
func lessBy(weekA, weekB int, pairs ...[2]string) bool {
	if weekA != weekB {
		return weekA < weekB
	}
	return compareStrings(pairs...) < 0
}
