package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"modeldoc/internal/database"
	"modeldoc/internal/models"
)

var ErrTableNotFound = errors.New("table not found")

// SchemaRepository lists the columns of a table, in schema order.
type SchemaRepository interface {
	ListColumns(ctx context.Context, table string) ([]models.Column, error)
}

// NewSchemaRepository picks the repository matching the connection's driver.
func NewSchemaRepository(conn *database.Connection) (SchemaRepository, error) {
	switch conn.Driver {
	case "pgsql":
		return NewPostgresSchemaRepository(conn.Pool, conn.Schema), nil
	case "mysql":
		return NewMySQLSchemaRepository(conn.DB), nil
	case "sqlite":
		return NewSQLiteSchemaRepository(conn.DB), nil
	}
	return nil, fmt.Errorf("no schema repository for driver %q", conn.Driver)
}

// Querier is the part of pgxpool.Pool the postgres repository needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type PostgresSchemaRepository struct {
	pool   Querier
	schema string
}

func NewPostgresSchemaRepository(pool Querier, schema string) *PostgresSchemaRepository {
	if schema == "" {
		schema = "public"
	}
	return &PostgresSchemaRepository{pool: pool, schema: schema}
}

const postgresColumnsQuery = `
		SELECT a.attname, t.typname, NOT a.attnotnull, col_description(c.oid, a.attnum)
		FROM pg_attribute a
		JOIN pg_class c ON c.oid = a.attrelid
		JOIN pg_namespace n ON n.oid = c.relnamespace
		JOIN pg_type t ON t.oid = a.atttypid
		WHERE n.nspname = $1 AND c.relname = $2
			AND a.attnum > 0 AND NOT a.attisdropped
		ORDER BY a.attnum
	`

// ListColumns returns the columns of table. A "schema.table" name overrides
// the repository's default schema.
func (r *PostgresSchemaRepository) ListColumns(ctx context.Context, table string) ([]models.Column, error) {
	schema := r.schema
	if s, t, ok := strings.Cut(table, "."); ok {
		schema, table = s, t
	}

	rows, err := r.pool.Query(ctx, postgresColumnsQuery, schema, table)
	if err != nil {
		return nil, fmt.Errorf("failed to list columns of %s.%s: %w", schema, table, err)
	}
	defer rows.Close()

	var columns []models.Column
	for rows.Next() {
		var col models.Column
		if err := rows.Scan(&col.Name, &col.DataType, &col.Nullable, &col.Comment); err != nil {
			return nil, err
		}
		col.DataType = normalizeType(col.DataType)
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: %s.%s", ErrTableNotFound, schema, table)
	}
	return columns, nil
}

type MySQLSchemaRepository struct {
	db *sql.DB
}

func NewMySQLSchemaRepository(db *sql.DB) *MySQLSchemaRepository {
	return &MySQLSchemaRepository{db: db}
}

const mysqlColumnsQuery = `
		SELECT column_name, data_type, is_nullable = 'YES', column_comment
		FROM information_schema.columns
		WHERE table_schema = DATABASE() AND table_name = ?
		ORDER BY ordinal_position
	`

func (r *MySQLSchemaRepository) ListColumns(ctx context.Context, table string) ([]models.Column, error) {
	rows, err := r.db.QueryContext(ctx, mysqlColumnsQuery, table)
	if err != nil {
		return nil, fmt.Errorf("failed to list columns of %s: %w", table, err)
	}
	defer rows.Close()

	var columns []models.Column
	for rows.Next() {
		var (
			col     models.Column
			comment sql.NullString
		)
		if err := rows.Scan(&col.Name, &col.DataType, &col.Nullable, &comment); err != nil {
			return nil, err
		}
		if comment.Valid && comment.String != "" {
			col.Comment = &comment.String
		}
		col.DataType = normalizeType(col.DataType)
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, table)
	}
	return columns, nil
}

type SQLiteSchemaRepository struct {
	db *sql.DB
}

func NewSQLiteSchemaRepository(db *sql.DB) *SQLiteSchemaRepository {
	return &SQLiteSchemaRepository{db: db}
}

func (r *SQLiteSchemaRepository) ListColumns(ctx context.Context, table string) ([]models.Column, error) {
	// PRAGMA arguments cannot be bound; quote the identifier instead.
	query := fmt.Sprintf("PRAGMA table_info(%s)", quoteSQLiteIdent(table))
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list columns of %s: %w", table, err)
	}
	defer rows.Close()

	var columns []models.Column
	for rows.Next() {
		var (
			cid        int
			name       string
			declared   string
			notNull    bool
			defaultVal sql.NullString
			pk         int
		)
		if err := rows.Scan(&cid, &name, &declared, &notNull, &defaultVal, &pk); err != nil {
			return nil, err
		}
		columns = append(columns, models.Column{
			Name:     name,
			DataType: normalizeType(declared),
			Nullable: !notNull,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, table)
	}
	return columns, nil
}

func quoteSQLiteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// normalizeType lower-cases a type name and drops its arguments and
// modifiers: "VARCHAR(255)" -> "varchar", "int unsigned" -> "int".
func normalizeType(raw string) string {
	t := strings.ToLower(strings.TrimSpace(raw))
	if i := strings.IndexByte(t, '('); i >= 0 {
		t = t[:i]
	}
	for _, modifier := range []string{" unsigned", " zerofill", " signed"} {
		t = strings.TrimSuffix(t, modifier)
	}
	return strings.TrimSpace(t)
}
