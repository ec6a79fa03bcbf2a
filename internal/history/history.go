// Package history reads the migrations recorded as applied in a project
// database.
package history

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"  // PostgreSQL driver
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/eleven-am/schemaviz/internal/driver"
	"github.com/eleven-am/schemaviz/internal/logger"
	"github.com/eleven-am/schemaviz/internal/migration"
)

// DefaultTable is the table applied migrations are recorded in.
const DefaultTable = "schema_migrations"

var ErrUnsupportedDriver = errors.New("migration history is not supported for this driver")

// Reader queries the applied migrations table.
type Reader struct {
	db      *sqlx.DB
	table   string
	builder sq.StatementBuilderType
	log     logger.Logger
}

// Open connects to the project database.
func Open(ctx context.Context, d driver.Driver, url, table string) (*Reader, error) {
	var name string
	switch d {
	case driver.Postgres:
		name = "postgres"
	case driver.SQLite:
		name = "sqlite"
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDriver, d)
	}

	db, err := sqlx.ConnectContext(ctx, name, url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return NewReader(db, table), nil
}

// NewReader wraps an open connection.
func NewReader(db *sqlx.DB, table string) *Reader {
	if table == "" {
		table = DefaultTable
	}

	var placeholder sq.PlaceholderFormat = sq.Question
	if db.DriverName() == "postgres" {
		placeholder = sq.Dollar
	}

	return &Reader{
		db:      db,
		table:   table,
		builder: sq.StatementBuilder.PlaceholderFormat(placeholder),
		log:     logger.DB(),
	}
}

type appliedRow struct {
	App  string `db:"app"`
	Name string `db:"name"`
}

// Applied returns the set of applied migrations.
func (r *Reader) Applied(ctx context.Context) (map[migration.Key]bool, error) {
	query, args, err := r.builder.Select("app", "name").From(r.table).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var rows []appliedRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", r.table, err)
	}

	applied := make(map[migration.Key]bool, len(rows))
	for _, row := range rows {
		applied[migration.Key{App: row.App, Name: row.Name}] = true
	}

	r.log.Debug("Read applied migrations", "table", r.table, "count", len(applied))
	return applied, nil
}

func (r *Reader) Close() error {
	return r.db.Close()
}
