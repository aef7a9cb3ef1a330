package infrastructure

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sharedinfra "weekly/internal/shared/infrastructure"
)

// ========================================
// Tests: Postgres (sqlmock)
// ========================================

func TestWeeklyFactRepository_ReplaceWeeks_Postgres(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM weekly_fact WHERE week = $1")).
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 7))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO weekly_fact (week, brand")).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	repo := NewWeeklyFactRepository(db, sharedinfra.DialectPostgres)
	n, err := repo.ReplaceWeeks(context.Background(), sampleFacts())

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWeeklyFactRepository_RollbackOnInsertError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM weekly_fact").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO weekly_fact").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	repo := NewWeeklyFactRepository(db, sharedinfra.DialectPostgres)
	_, err = repo.ReplaceWeeks(context.Background(), sampleFacts())

	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBuildInsert_Placeholders(t *testing.T) {
	facts := sampleFacts()

	pg, args := buildInsert(sharedinfra.DialectPostgres, facts)
	lite, _ := buildInsert(sharedinfra.DialectSQLite, facts)

	assert.Len(t, args, 2*len(weeklyFactColumns))
	assert.Contains(t, pg, "($28, $29")
	assert.NotContains(t, lite, "$")
}

// ========================================
// Tests: SQLite (modernc, en mémoire)
// ========================================

func TestWeeklyFactRepository_SQLiteRepublish(t *testing.T) {
	db, dialect, err := OpenWarehouse("sqlite", ":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	repo := NewWeeklyFactRepository(db, dialect)
	require.NoError(t, repo.EnsureSchema(ctx))

	for i := 0; i < 2; i++ {
		_, err := repo.ReplaceWeeks(ctx, sampleFacts())
		require.NoError(t, err)
	}

	n, err := repo.CountByWeek(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var acos *float64
	require.NoError(t, db.QueryRow("SELECT acos FROM weekly_fact WHERE model = 'SB'").Scan(&acos))
	assert.Nil(t, acos)
}

func TestOpenWarehouse_UnknownDriver(t *testing.T) {
	_, _, err := OpenWarehouse("oracle", "x")
	assert.Error(t, err)
}
