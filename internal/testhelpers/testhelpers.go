package testhelpers

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

// Sheet décrit une feuille de classeur de test: première ligne = en-têtes
type Sheet struct {
	Name string
	Rows [][]interface{}
}

// NewSheet construit une feuille à partir d'en-têtes et de lignes
func NewSheet(name string, header []string, rows ...[]interface{}) Sheet {
	h := make([]interface{}, len(header))
	for i, c := range header {
		h[i] = c
	}
	return Sheet{Name: name, Rows: append([][]interface{}{h}, rows...)}
}

// Row raccourci pour écrire une ligne de cellules
func Row(cells ...interface{}) []interface{} {
	return cells
}

// WriteWorkbook écrit un classeur .xlsx avec les feuilles données, dans l'ordre
func WriteWorkbook(tb testing.TB, path string, sheets ...Sheet) string {
	tb.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		tb.Fatalf("Failed to create dir: %v", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.Name); err != nil {
				tb.Fatalf("Failed to rename sheet: %v", err)
			}
		} else if _, err := f.NewSheet(s.Name); err != nil {
			tb.Fatalf("Failed to create sheet %s: %v", s.Name, err)
		}
		for r, row := range s.Rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				tb.Fatalf("Failed to compute cell name: %v", err)
			}
			values := row
			if err := f.SetSheetRow(s.Name, cell, &values); err != nil {
				tb.Fatalf("Failed to write row %d of %s: %v", r, s.Name, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		tb.Fatalf("Failed to save workbook %s: %v", path, err)
	}
	return path
}

// WriteCSV écrit un fichier CSV de test
func WriteCSV(tb testing.TB, path string, rows [][]string) string {
	tb.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		tb.Fatalf("Failed to create dir: %v", err)
	}
	f, err := os.Create(path)
	if err != nil {
		tb.Fatalf("Failed to create csv: %v", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		tb.Fatalf("Failed to write csv: %v", err)
	}
	return path
}

// ReadFile lit un fichier de sortie
func ReadFile(tb testing.TB, path string) string {
	tb.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		tb.Fatalf("Failed to read %s: %v", path, err)
	}
	return string(data)
}

// ReadCSV relit un CSV de sortie en lignes de cellules
func ReadCSV(tb testing.TB, path string) [][]string {
	tb.Helper()

	f, err := os.Open(path)
	if err != nil {
		tb.Fatalf("Failed to open %s: %v", path, err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		tb.Fatalf("Failed to parse %s: %v", path, err)
	}
	return rows
}

// Records relit un CSV sous forme de maps en-tête → valeur
func Records(tb testing.TB, path string) []map[string]string {
	tb.Helper()

	rows := ReadCSV(tb, path)
	if len(rows) == 0 {
		return nil
	}
	out := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(map[string]string, len(row))
		for i, h := range rows[0] {
			if i < len(row) {
				rec[h] = row[i]
			}
		}
		out = append(out, rec)
	}
	return out
}
