package infrastructure

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Table représente une feuille tabulaire: en-têtes normalisés + lignes de cellules
type Table struct {
	Source    string
	Sheet     string
	RawHeader []string
	Header    []string
	Rows      [][]string
	index     map[string]int
}

// NewTable construit une Table à partir des lignes brutes d'une feuille
// La première ligne non vide sert d'en-tête
func NewTable(source, sheet string, raw [][]string) *Table {
	t := &Table{Source: source, Sheet: sheet, index: make(map[string]int)}
	start := -1
	for i, row := range raw {
		if !isEmptyRow(row) {
			start = i
			break
		}
	}
	if start < 0 {
		return t
	}
	t.RawHeader = append([]string{}, raw[start]...)
	t.Header = make([]string, len(t.RawHeader))
	for i, h := range t.RawHeader {
		n := NormalizeHeader(h)
		t.Header[i] = n
		if _, dup := t.index[n]; !dup && n != "" {
			t.index[n] = i
		}
	}
	for _, row := range raw[start+1:] {
		if isEmptyRow(row) {
			continue
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func isEmptyRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Empty vérifie si la table n'a aucune ligne de données
func (t *Table) Empty() bool {
	return len(t.Rows) == 0
}

// Resolve cherche la première colonne candidate et retourne son indice
func (t *Table) Resolve(candidates []string) (int, string, bool) {
	name, ok := ResolveColumn(t.Header, candidates)
	if !ok {
		return -1, "", false
	}
	return t.index[name], name, true
}

// Cell retourne la cellule idx d'une ligne, vide si hors limites
func (t *Table) Cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// Label retourne "fichier[feuille]" pour les logs
func (t *Table) Label() string {
	if t.Sheet == "" {
		return t.Source
	}
	return fmt.Sprintf("%s[%s]", t.Source, t.Sheet)
}

// Workbook donne accès aux feuilles d'un classeur xlsx ou d'un CSV
type Workbook interface {
	Path() string
	SheetNames() []string
	Sheet(name string) (*Table, error)
	Close() error
}

// ErrSheetNotFound feuille absente du classeur
var ErrSheetNotFound = errors.New("sheet not found")

// OpenWorkbook ouvre un .xlsx via excelize ou un .csv via encoding/csv
func OpenWorkbook(path string) (Workbook, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("open workbook %s: %w", path, err)
		}
		return &excelWorkbook{path: path, file: f}, nil
	case ".csv":
		return openCSVWorkbook(path)
	default:
		return nil, fmt.Errorf("unsupported spreadsheet type: %s", path)
	}
}

// ReadFirstSheet lit la première feuille d'un fichier
func ReadFirstSheet(path string) (*Table, error) {
	wb, err := OpenWorkbook(path)
	if err != nil {
		return nil, err
	}
	defer wb.Close()
	names := wb.SheetNames()
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: %s has no sheets", ErrSheetNotFound, path)
	}
	return wb.Sheet(names[0])
}

type excelWorkbook struct {
	path string
	file *excelize.File
}

func (w *excelWorkbook) Path() string {
	return w.path
}

func (w *excelWorkbook) SheetNames() []string {
	return w.file.GetSheetList()
}

func (w *excelWorkbook) Sheet(name string) (*Table, error) {
	for _, s := range w.file.GetSheetList() {
		if strings.EqualFold(strings.TrimSpace(s), strings.TrimSpace(name)) {
			rows, err := w.file.GetRows(s)
			if err != nil {
				return nil, fmt.Errorf("read sheet %s of %s: %w", s, w.path, err)
			}
			return NewTable(w.path, strings.TrimSpace(s), rows), nil
		}
	}
	return nil, fmt.Errorf("%w: %s in %s", ErrSheetNotFound, name, w.path)
}

func (w *excelWorkbook) Close() error {
	return w.file.Close()
}

type csvWorkbook struct {
	path  string
	table *Table
}

func openCSVWorkbook(path string) (*csvWorkbook, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv %s: %w", path, err)
	}
	defer f.Close()
	rows, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("read csv %s: %w", path, err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return &csvWorkbook{path: path, table: NewTable(path, name, rows)}, nil
}

func (w *csvWorkbook) Path() string {
	return w.path
}

func (w *csvWorkbook) SheetNames() []string {
	return []string{w.table.Sheet}
}

func (w *csvWorkbook) Sheet(name string) (*Table, error) {
	if !strings.EqualFold(name, w.table.Sheet) {
		return nil, fmt.Errorf("%w: %s in %s", ErrSheetNotFound, name, w.path)
	}
	return w.table, nil
}

func (w *csvWorkbook) Close() error {
	return nil
}

// ReadCSV lit toutes les lignes d'un CSV en tolérant un nombre de champs variable
func ReadCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	return reader.ReadAll()
}
