package domain

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ========================================
// Tests: Issues
// ========================================

func TestIssues_AddAndCount(t *testing.T) {
	issues := NewIssues()
	issues.Add(Issue{Severity: SeverityDefaulted, Stage: "sales", Column: "units", Count: 3})
	issues.Add(Issue{Severity: SeverityDefaulted, Stage: "ams"})
	issues.Add(Issue{Severity: SeverityFatalFile, Stage: "ams"})

	assert.Equal(t, 4, issues.Count(SeverityDefaulted))
	assert.Equal(t, 1, issues.Count(SeverityFatalFile))
	assert.Zero(t, issues.Count(SeverityFatalRun))

	grouped := issues.BySeverity()
	require.Len(t, grouped[SeverityDefaulted], 2)
	assert.Equal(t, "ams", grouped[SeverityDefaulted][0].Stage)
}

func TestIssues_Merge(t *testing.T) {
	a := NewIssues()
	b := NewIssues()
	b.Add(Issue{Severity: SeverityDiagnostic, Message: "x"})

	a.Merge(b)
	a.Merge(nil)
	a.Merge(a)

	assert.Len(t, a.All(), 1)
}

func TestIssues_Concurrent(t *testing.T) {
	issues := NewIssues()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			issues.Add(Issue{Severity: SeverityFatalRow})
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, issues.Count(SeverityFatalRow))
}

func TestIssue_String(t *testing.T) {
	i := Issue{Severity: SeverityDefaulted, Message: "unparseable cell", Path: "a.xlsx", Sheet: "SP", Week: 5, Brand: "Nexlev", Column: "spend", Count: 2}

	assert.Equal(t, "[defaulted] unparseable cell path=a.xlsx sheet=SP week=5 brand=Nexlev column=spend count=2", i.String())
}

// ========================================
// Tests: ColumnError
// ========================================

func TestColumnError(t *testing.T) {
	err := NewNoIdentityColumnError("sales.xlsx", "Vendor", []string{"sku", "seller_sku"})

	assert.True(t, errors.Is(err, ErrNoIdentityColumn))
	assert.Equal(t, "no identity column identity in sales.xlsx [sheet Vendor] (tried sku, seller_sku)", err.Error())

	var colErr *ColumnError
	wrapped := error(NewMissingRequiredColumnError("master.xlsx", []string{"model", "nlc"}))
	require.True(t, errors.As(wrapped, &colErr))
	assert.Equal(t, []string{"model", "nlc"}, colErr.Fields)
	assert.True(t, errors.Is(wrapped, ErrMissingRequiredColumn))
}
