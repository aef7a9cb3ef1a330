package infrastructure

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	reconciledomain "weekly/internal/reconcile/domain"
	sharedinfra "weekly/internal/shared/infrastructure"
)

// insertBatchSize lignes par INSERT multi-valeurs
const insertBatchSize = 200

// weeklyFactColumns colonnes de la table weekly_fact, dans l'ordre d'insertion
var weeklyFactColumns = []string{
	"week", "brand", "model", "channel",
	"units", "gmv", "sessions", "buy_box_pct",
	"spend", "clicks", "impressions", "attributed_sales", "ams_orders",
	"inventory_units", "category_l0", "category_l1", "category_l2",
	"acos", "tacos", "roas", "cac", "conversion_pct", "cpc",
	"contribution_to_sales_pct", "attributed_sales_pct", "organic_sales_pct", "sell_through_pct",
}

const createWeeklyFactTable = `
CREATE TABLE IF NOT EXISTS weekly_fact (
	week INTEGER NOT NULL,
	brand TEXT NOT NULL,
	model TEXT NOT NULL,
	channel TEXT NOT NULL,
	units DOUBLE PRECISION NOT NULL,
	gmv DOUBLE PRECISION NOT NULL,
	sessions DOUBLE PRECISION NOT NULL,
	buy_box_pct DOUBLE PRECISION NOT NULL,
	spend DOUBLE PRECISION NOT NULL,
	clicks DOUBLE PRECISION NOT NULL,
	impressions DOUBLE PRECISION NOT NULL,
	attributed_sales DOUBLE PRECISION NOT NULL,
	ams_orders DOUBLE PRECISION NOT NULL,
	inventory_units DOUBLE PRECISION,
	category_l0 TEXT NOT NULL,
	category_l1 TEXT NOT NULL,
	category_l2 TEXT NOT NULL,
	acos DOUBLE PRECISION,
	tacos DOUBLE PRECISION,
	roas DOUBLE PRECISION,
	cac DOUBLE PRECISION,
	conversion_pct DOUBLE PRECISION,
	cpc DOUBLE PRECISION,
	contribution_to_sales_pct DOUBLE PRECISION,
	attributed_sales_pct DOUBLE PRECISION,
	organic_sales_pct DOUBLE PRECISION,
	sell_through_pct DOUBLE PRECISION,
	PRIMARY KEY (week, brand, model, channel)
)`

// OpenWarehouse ouvre la base de publication ("postgres" via lib/pq, "sqlite" via modernc)
func OpenWarehouse(driver, dsn string) (*sql.DB, sharedinfra.Dialect, error) {
	dialect := sharedinfra.Dialect(strings.ToLower(driver))
	switch dialect {
	case sharedinfra.DialectPostgres, sharedinfra.DialectSQLite:
	default:
		return nil, "", fmt.Errorf("unsupported warehouse driver %q", driver)
	}
	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, "", err
	}
	if dialect == sharedinfra.DialectPostgres {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(2)
		db.SetConnMaxLifetime(5 * time.Minute)
	} else {
		// une seule connexion: une base :memory: n'est pas partagée entre connexions
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, "", fmt.Errorf("ping warehouse: %w", err)
	}
	return db, dialect, nil
}

// WeeklyFactRepository publie le fait hebdomadaire dans la table weekly_fact
type WeeklyFactRepository struct {
	sharedinfra.BaseRepository
	uow sharedinfra.UnitOfWork
}

// NewWeeklyFactRepository crée le repository
func NewWeeklyFactRepository(db *sql.DB, dialect sharedinfra.Dialect) *WeeklyFactRepository {
	return &WeeklyFactRepository{
		BaseRepository: sharedinfra.NewBaseRepository(db, dialect),
		uow:            sharedinfra.NewUnitOfWork(db),
	}
}

// EnsureSchema crée la table si besoin
func (r *WeeklyFactRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.Exec(ctx, createWeeklyFactTable)
	return err
}

// ReplaceWeeks remplace, dans une transaction, toutes les lignes des semaines présentes dans facts
func (r *WeeklyFactRepository) ReplaceWeeks(ctx context.Context, facts []*reconciledomain.WeeklyFact) (int, error) {
	weeks := distinctWeeks(facts)
	if len(weeks) == 0 {
		return 0, nil
	}
	d := r.Dialect()
	written := 0
	err := r.uow.Execute(ctx, func(tx *sql.Tx) error {
		for _, w := range weeks {
			if _, err := tx.ExecContext(ctx, "DELETE FROM weekly_fact WHERE week = "+d.Placeholder(1), w); err != nil {
				return fmt.Errorf("delete week %d: %w", w, err)
			}
		}
		for start := 0; start < len(facts); start += insertBatchSize {
			end := start + insertBatchSize
			if end > len(facts) {
				end = len(facts)
			}
			query, args := buildInsert(d, facts[start:end])
			res, err := tx.ExecContext(ctx, query, args...)
			if err != nil {
				return fmt.Errorf("insert weekly facts: %w", err)
			}
			if n, err := res.RowsAffected(); err == nil {
				written += int(n)
			} else {
				written += end - start
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return written, nil
}

// CountByWeek retourne le nombre de lignes publiées pour une semaine
func (r *WeeklyFactRepository) CountByWeek(ctx context.Context, week int) (int, error) {
	var n int
	err := r.QueryRow(ctx, "SELECT COUNT(*) FROM weekly_fact WHERE week = "+r.Dialect().Placeholder(1), week).Scan(&n)
	return n, err
}

func buildInsert(d sharedinfra.Dialect, facts []*reconciledomain.WeeklyFact) (string, []interface{}) {
	var b strings.Builder
	b.Grow(64 + len(facts)*len(weeklyFactColumns)*5)
	b.WriteString("INSERT INTO weekly_fact (")
	b.WriteString(strings.Join(weeklyFactColumns, ", "))
	b.WriteString(") VALUES ")

	args := make([]interface{}, 0, len(facts)*len(weeklyFactColumns))
	for i, f := range facts {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(d.Placeholders(len(args), len(weeklyFactColumns)))
		args = append(args, factArgs(f)...)
	}
	return b.String(), args
}

func factArgs(f *reconciledomain.WeeklyFact) []interface{} {
	inventory := sql.NullFloat64{Float64: f.InventoryUnits, Valid: f.HasInventory}
	m := f.Metrics
	return []interface{}{
		f.Week, f.Brand, f.Model, f.Channel,
		f.Units, f.GMV, f.Sessions, f.BuyBox,
		f.Spend, f.Clicks, f.Impressions, f.AttributedSales, f.Orders,
		inventory, f.Category.L0, f.Category.L1, f.Category.L2,
		nullable(m.ACOS.Ptr()), nullable(m.TACOS.Ptr()), nullable(m.ROAS.Ptr()), nullable(m.CAC.Ptr()),
		nullable(m.ConversionPct.Ptr()), nullable(m.CPC.Ptr()), nullable(m.ContributionPct.Ptr()),
		nullable(m.AttributedSalesPct.Ptr()), nullable(m.OrganicSalesPct.Ptr()), nullable(m.SellThroughPct.Ptr()),
	}
}

func nullable(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func distinctWeeks(facts []*reconciledomain.WeeklyFact) []int {
	seen := make(map[int]struct{})
	for _, f := range facts {
		seen[f.Week] = struct{}{}
	}
	weeks := make([]int, 0, len(seen))
	for w := range seen {
		weeks = append(weeks, w)
	}
	sort.Ints(weeks)
	return weeks
}
