package infrastructure

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Dialect isole les différences de syntaxe entre moteurs SQL
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// Placeholder retourne le marqueur du n-ième paramètre (1-indexé)
func (d Dialect) Placeholder(n int) string {
	if d == DialectPostgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// Placeholders retourne "(p1, p2, ...)" pour une ligne de count colonnes à partir de offset
func (d Dialect) Placeholders(offset, count int) string {
	parts := make([]string, count)
	for i := 0; i < count; i++ {
		parts[i] = d.Placeholder(offset + i + 1)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// UnitOfWork gère les transactions pour les opérations d'écriture
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(tx *sql.Tx) error) error
}

// DBUnitOfWork implémentation de UnitOfWork avec sql.DB
type DBUnitOfWork struct {
	db *sql.DB
}

// NewUnitOfWork crée une nouvelle instance de UnitOfWork
func NewUnitOfWork(db *sql.DB) UnitOfWork {
	return &DBUnitOfWork{db: db}
}

// Execute exécute une fonction dans une transaction
func (uow *DBUnitOfWork) Execute(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := uow.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%v (rollback: %w)", err, rbErr)
		}
		return err
	}

	return tx.Commit()
}

// BaseRepository structure de base pour les repositories
type BaseRepository struct {
	db      *sql.DB
	dialect Dialect
}

// NewBaseRepository crée un nouveau repository de base
func NewBaseRepository(db *sql.DB, dialect Dialect) BaseRepository {
	return BaseRepository{
		db:      db,
		dialect: dialect,
	}
}

// DB retourne la connexion
func (r *BaseRepository) DB() *sql.DB {
	return r.db
}

// Dialect retourne le dialecte SQL
func (r *BaseRepository) Dialect() Dialect {
	return r.dialect
}

// Exec exécute une requête d'écriture hors transaction
func (r *BaseRepository) Exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return r.db.ExecContext(ctx, query, args...)
}

// QueryRow exécute une requête de lecture pour une seule ligne
func (r *BaseRepository) QueryRow(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return r.db.QueryRowContext(ctx, query, args...)
}
