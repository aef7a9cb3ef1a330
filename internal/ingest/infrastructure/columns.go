package infrastructure

import (
	"fmt"
	"sort"

	"weekly/internal/ingest/domain"
	shareddomain "weekly/internal/shared/domain"
	"weekly/internal/shared/infrastructure"
)

// sheetReader résout les colonnes d'une feuille et compte les cellules remplacées par 0
type sheetReader struct {
	table     *infrastructure.Table
	aliases   infrastructure.AliasTable
	issues    *shareddomain.Issues
	src       domain.Source
	defaulted map[string]int
	names     map[int]string
}

func newSheetReader(table *infrastructure.Table, aliases infrastructure.AliasTable, issues *shareddomain.Issues, src domain.Source) *sheetReader {
	if issues == nil {
		issues = shareddomain.NewIssues()
	}
	return &sheetReader{
		table:     table,
		aliases:   aliases,
		issues:    issues,
		src:       src,
		defaulted: make(map[string]int),
		names:     make(map[int]string),
	}
}

// identity résout une colonne d'identité; absente = NoIdentityColumnError
func (r *sheetReader) identity(fields ...string) (int, error) {
	var tried []string
	for _, field := range fields {
		candidates := r.aliases.Candidates(field)
		if idx, name, ok := r.table.Resolve(candidates); ok {
			r.names[idx] = name
			return idx, nil
		}
		tried = append(tried, candidates...)
	}
	return -1, shareddomain.NewNoIdentityColumnError(r.table.Source, r.table.Sheet, tried)
}

// lookup résout une colonne facultative sans incident; -1 si absente
func (r *sheetReader) lookup(field string) int {
	idx, name, ok := r.table.Resolve(r.aliases.Candidates(field))
	if !ok {
		return -1
	}
	r.names[idx] = name
	return idx
}

// metric résout une colonne de mesure; absente = 0 et un incident "defaulted"
func (r *sheetReader) metric(field string) int {
	idx := r.lookup(field)
	if idx < 0 {
		r.issues.Add(r.issue(shareddomain.SeverityDefaulted, field, 0,
			fmt.Sprintf("optional column %s not found, defaulting to 0", field)))
	}
	return idx
}

// number lit une cellule numérique en parse-or-zero
func (r *sheetReader) number(row []string, idx int) float64 {
	if idx < 0 {
		return 0
	}
	v, defaulted := shareddomain.ParseNumber(r.table.Cell(row, idx))
	if defaulted {
		r.defaulted[r.names[idx]]++
	}
	return v
}

// text lit une cellule texte brute
func (r *sheetReader) text(row []string, idx int) string {
	return r.table.Cell(row, idx)
}

// dropRow enregistre une ligne écartée
func (r *sheetReader) dropRow(column, reason string) {
	r.issues.Add(r.issue(shareddomain.SeverityFatalRow, column, 1, reason))
}

// flush publie les compteurs de cellules remplacées par 0, par colonne
func (r *sheetReader) flush() {
	cols := make([]string, 0, len(r.defaulted))
	for col := range r.defaulted {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	for _, col := range cols {
		r.issues.Add(r.issue(shareddomain.SeverityDefaulted, col, r.defaulted[col], "unparseable or blank numeric cells defaulted to 0"))
	}
	r.defaulted = make(map[string]int)
}

func (r *sheetReader) issue(sev shareddomain.Severity, column string, count int, msg string) shareddomain.Issue {
	return shareddomain.Issue{
		Severity: sev,
		Stage:    r.src.Stage,
		Path:     r.table.Source,
		Sheet:    r.table.Sheet,
		Week:     r.src.Week,
		Brand:    r.src.Brand,
		Column:   column,
		Count:    count,
		Message:  msg,
	}
}

// fileIssue incident hors feuille (fichier illisible, feuille ignorée)
func fileIssue(src domain.Source, sheet string, sev shareddomain.Severity, err error) shareddomain.Issue {
	return shareddomain.Issue{
		Severity: sev,
		Stage:    src.Stage,
		Path:     src.Path,
		Sheet:    sheet,
		Week:     src.Week,
		Brand:    src.Brand,
		Message:  err.Error(),
	}
}
