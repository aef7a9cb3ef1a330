package infrastructure

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weekly/internal/testhelpers"
)

// ========================================
// Tests: Table
// ========================================

func TestNewTable_SkipsLeadingBlankRows(t *testing.T) {
	table := NewTable("f.xlsx", "Sheet1", [][]string{
		{"", ""},
		{"Model", "Units Ordered"},
		{"X1", "5"},
		{" ", ""},
		{"X2"},
	})

	assert.Equal(t, []string{"model", "units_ordered"}, table.Header)
	assert.Len(t, table.Rows, 2)
	assert.False(t, table.Empty())

	idx, name, ok := table.Resolve([]string{"units", "units_ordered"})
	require.True(t, ok)
	assert.Equal(t, 1, idx)
	assert.Equal(t, "units_ordered", name)
	assert.Equal(t, "", table.Cell(table.Rows[1], idx))
	assert.Equal(t, "f.xlsx[Sheet1]", table.Label())
}

func TestNewTable_Empty(t *testing.T) {
	table := NewTable("f.csv", "", nil)

	assert.True(t, table.Empty())
	assert.Equal(t, "f.csv", table.Label())
	_, _, ok := table.Resolve([]string{"model"})
	assert.False(t, ok)
}

// ========================================
// Tests: Workbook
// ========================================

func TestOpenWorkbook_Excel(t *testing.T) {
	path := testhelpers.WriteWorkbook(t, filepath.Join(t.TempDir(), "ads.xlsx"),
		testhelpers.NewSheet("SP", []string{"ASIN", "Spend"}, testhelpers.Row("B1", 10)),
		testhelpers.NewSheet("SB", []string{"Campaign", "Spend"}, testhelpers.Row("Hero", 5)),
	)

	wb, err := OpenWorkbook(path)
	require.NoError(t, err)
	defer wb.Close()

	assert.Equal(t, []string{"SP", "SB"}, wb.SheetNames())
	sb, err := wb.Sheet("sb")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Hero", "5"}}, sb.Rows)

	_, err = wb.Sheet("SD")
	assert.True(t, errors.Is(err, ErrSheetNotFound))
}

func TestReadFirstSheet_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "master.csv")
	require.NoError(t, os.WriteFile(path, []byte("Model,SKU\nX1,S1\nX2\n"), 0o644))

	table, err := ReadFirstSheet(path)

	require.NoError(t, err)
	assert.Equal(t, "master", table.Sheet)
	assert.Equal(t, []string{"model", "sku"}, table.Header)
	assert.Len(t, table.Rows, 2)
}

func TestOpenWorkbook_Unsupported(t *testing.T) {
	_, err := OpenWorkbook("report.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported")
}

func TestReadCSV_LazyQuotes(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader("a,b\n1,2\"3\n"))

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"1", "2\"3"}, rows[1])
}
