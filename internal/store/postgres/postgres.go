// Package postgres implements the tabular store port on PostgreSQL.
// Collections are modeled generically, as one header table and one row
// table with a JSONB cell array, so the same schema serves every
// collection without per-collection migrations.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"shop-agent/internal/store"
)

// Store is a pgxpool-backed Store.
type Store struct {
	pool *pgxpool.Pool
}

// NewPool connects to the database named by connStr, falling back to
// the DATABASE_URL environment variable.
func NewPool(ctx context.Context, connStr string) (*pgxpool.Pool, error) {
	if connStr == "" {
		connStr = os.Getenv("DATABASE_URL")
	}
	if connStr == "" {
		return nil, fmt.Errorf("postgres: connection string not set")
	}

	config, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse connection string: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("postgres: create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return pool, nil
}

// New builds a Store over pool and creates the backing tables when
// they do not exist.
func New(ctx context.Context, pool *pgxpool.Pool) (*Store, error) {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS collections (
			name   text PRIMARY KEY,
			header jsonb NOT NULL
		);
		CREATE TABLE IF NOT EXISTS collection_rows (
			collection text   NOT NULL REFERENCES collections(name),
			row_num    bigint NOT NULL,
			cells      jsonb  NOT NULL,
			PRIMARY KEY (collection, row_num)
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: create schema: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) EnsureCollection(ctx context.Context, name string, header []string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO collections (name, header)
		VALUES ($1, to_jsonb($2::text[]))
		ON CONFLICT (name) DO NOTHING
	`, name, header)
	if err != nil {
		return fmt.Errorf("postgres: ensure collection %s: %w", name, err)
	}
	return nil
}

func (s *Store) AppendRow(ctx context.Context, collection string, row []string) error {
	var exists bool
	if err := s.pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM collections WHERE name = $1)", collection,
	).Scan(&exists); err != nil {
		return fmt.Errorf("postgres: check collection %s: %w", collection, err)
	}
	if !exists {
		return fmt.Errorf("postgres: append to %s: %w", collection, store.ErrCollectionNotFound)
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO collection_rows (collection, row_num, cells)
		VALUES ($1,
		        (SELECT COALESCE(MAX(row_num), 0) + 1 FROM collection_rows WHERE collection = $1),
		        to_jsonb($2::text[]))
	`, collection, row)
	if err != nil {
		return fmt.Errorf("postgres: append to %s: %w", collection, err)
	}
	return nil
}

func (s *Store) ReadAll(ctx context.Context, collection string) ([]store.Record, error) {
	var header []string
	err := s.pool.QueryRow(ctx,
		"SELECT header FROM collections WHERE name = $1", collection,
	).Scan(&header)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("postgres: read %s: %w", collection, store.ErrCollectionNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: read header of %s: %w", collection, err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT row_num, cells
		FROM collection_rows
		WHERE collection = $1
		ORDER BY row_num
	`, collection)
	if err != nil {
		return nil, fmt.Errorf("postgres: read %s: %w", collection, err)
	}
	defer rows.Close()

	var records []store.Record
	for rows.Next() {
		var rowNum int64
		var cells []string
		if err := rows.Scan(&rowNum, &cells); err != nil {
			return nil, fmt.Errorf("postgres: scan %s row: %w", collection, err)
		}
		fields := make(map[string]string, len(header))
		for j, col := range header {
			if j < len(cells) {
				fields[col] = cells[j]
			} else {
				fields[col] = ""
			}
		}
		records = append(records, store.Record{Row: int(rowNum), Fields: fields})
	}
	return records, rows.Err()
}

func (s *Store) UpdateCell(ctx context.Context, collection string, row int, column, value string) error {
	var header []string
	err := s.pool.QueryRow(ctx,
		"SELECT header FROM collections WHERE name = $1", collection,
	).Scan(&header)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("postgres: update %s: %w", collection, store.ErrCollectionNotFound)
	}
	if err != nil {
		return fmt.Errorf("postgres: read header of %s: %w", collection, err)
	}

	col := -1
	for j, h := range header {
		if h == column {
			col = j
			break
		}
	}
	if col < 0 {
		return fmt.Errorf("postgres: unknown column %q in %s", column, collection)
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE collection_rows
		SET cells = jsonb_set(cells, ARRAY[$3::text], to_jsonb($4::text))
		WHERE collection = $1 AND row_num = $2
	`, collection, row, fmt.Sprint(col), value)
	if err != nil {
		return fmt.Errorf("postgres: update %s row %d: %w", collection, row, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("postgres: update %s row %d: %w", collection, row, store.ErrRowNotFound)
	}
	return nil
}
