package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidWeekFormat aucune suite de chiffres dans la valeur de semaine
	ErrInvalidWeekFormat = errors.New("invalid week format")
	// ErrNoIdentityColumn aucune colonne Model/ASIN/SKU trouvée dans un fichier
	ErrNoIdentityColumn = errors.New("no identity column")
	// ErrMissingRequiredColumn colonne obligatoire absente après résolution des alias
	ErrMissingRequiredColumn = errors.New("missing required column")
	// ErrMissingInput fichier d'entrée attendu absent pour un couple (semaine, marque)
	ErrMissingInput = errors.New("missing input file")
)

// ColumnError porte le contexte d'une colonne introuvable
type ColumnError struct {
	Kind       error
	Path       string
	Sheet      string
	Fields     []string
	Candidates []string
}

// Error implémente l'interface error
func (e *ColumnError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	b.WriteString(" ")
	b.WriteString(strings.Join(e.Fields, ", "))
	if e.Path != "" {
		b.WriteString(" in ")
		b.WriteString(e.Path)
	}
	if e.Sheet != "" {
		fmt.Fprintf(&b, " [sheet %s]", e.Sheet)
	}
	if len(e.Candidates) > 0 {
		fmt.Fprintf(&b, " (tried %s)", strings.Join(e.Candidates, ", "))
	}
	return b.String()
}

// Unwrap permet errors.Is sur la sentinelle
func (e *ColumnError) Unwrap() error {
	return e.Kind
}

// NewNoIdentityColumnError crée l'erreur fatale à un fichier
func NewNoIdentityColumnError(path, sheet string, candidates []string) *ColumnError {
	return &ColumnError{
		Kind:       ErrNoIdentityColumn,
		Path:       path,
		Sheet:      sheet,
		Fields:     []string{"identity"},
		Candidates: candidates,
	}
}

// NewMissingRequiredColumnError crée l'erreur de colonnes obligatoires absentes
func NewMissingRequiredColumnError(path string, fields []string) *ColumnError {
	return &ColumnError{
		Kind:   ErrMissingRequiredColumn,
		Path:   path,
		Fields: fields,
	}
}
