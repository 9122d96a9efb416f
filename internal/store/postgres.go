package store

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var postgresTypes = map[FieldType]string{
	TypeTimestamp: "timestamp",
	TypeDate:      "date",
	TypeTime:      "time",
	TypeString:    "text",
	TypeFloat:     "double precision",
	TypeInteger:   "bigint",
}

// PostgresWarehouse appends forecast rows to a Postgres table. The dataset
// part of the table id is used as the schema name; the project part is
// ignored.
type PostgresWarehouse struct {
	pool  *pgxpool.Pool
	table TableID
}

// NewPostgresWarehouse connects to databaseURL and makes sure the table exists.
func NewPostgresWarehouse(ctx context.Context, databaseURL string, table TableID) (*PostgresWarehouse, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	w := &PostgresWarehouse{pool: pool, table: table}
	if err := w.ensureTable(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return w, nil
}

func (w *PostgresWarehouse) qualifiedName() string {
	return pgx.Identifier{w.table.Dataset, w.table.Table}.Sanitize()
}

func quotedColumns() string {
	cols := make([]string, len(Schema))
	for i, c := range Schema {
		cols[i] = pgx.Identifier{c.Name}.Sanitize()
	}
	return strings.Join(cols, ", ")
}

func (w *PostgresWarehouse) ensureTable(ctx context.Context) error {
	defs := make([]string, len(Schema))
	for i, c := range Schema {
		defs[i] = pgx.Identifier{c.Name}.Sanitize() + " " + postgresTypes[c.Type]
	}

	schemaSQL := "CREATE SCHEMA IF NOT EXISTS " + pgx.Identifier{w.table.Dataset}.Sanitize()
	if _, err := w.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	tableSQL := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n)", w.qualifiedName(), strings.Join(defs, ",\n  "))
	if _, err := w.pool.Exec(ctx, tableSQL); err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	return nil
}

// ExistingTimestamps reads the Datetime column and returns it in canonical
// form.
func (w *PostgresWarehouse) ExistingTimestamps(ctx context.Context) (map[string]struct{}, error) {
	rows, err := w.pool.Query(ctx, fmt.Sprintf(`SELECT "Datetime" FROM %s`, w.qualifiedName()))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	set := make(map[string]struct{})
	for rows.Next() {
		var ts time.Time
		if err := rows.Scan(&ts); err != nil {
			return nil, err
		}
		set[canonical(ts)] = struct{}{}
	}
	return set, rows.Err()
}

// Load streams the CSV payload through COPY FROM STDIN. COPY only appends.
func (w *PostgresWarehouse) Load(ctx context.Context, r io.Reader) (int64, error) {
	conn, err := w.pool.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Release()

	copySQL := fmt.Sprintf("COPY %s (%s) FROM STDIN WITH (FORMAT csv, HEADER true)", w.qualifiedName(), quotedColumns())
	tag, err := conn.Conn().PgConn().CopyFrom(ctx, r, copySQL)
	if err != nil {
		return 0, fmt.Errorf("copy into %s: %w", w.qualifiedName(), err)
	}
	return tag.RowsAffected(), nil
}

// Describe names the destination for log lines.
func (w *PostgresWarehouse) Describe() string {
	return "postgres:" + w.table.Dataset + "." + w.table.Table
}

// Close releases the pool resources.
func (w *PostgresWarehouse) Close() error {
	if w.pool != nil {
		w.pool.Close()
	}
	return nil
}
