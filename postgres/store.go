package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/velmie/mutationq"
)

// Store implements mutationq.KV over a single PostgreSQL table.
type Store struct {
	pool    *pgxpool.Pool
	cfg     Config
	queries queries
	table   string
}

var (
	_ mutationq.KV      = (*Store)(nil)
	_ mutationq.Counter = (*Store)(nil)
	_ mutationq.Locker  = (*Store)(nil)
)

// Open parses dsn, creates a pool and verifies connectivity.
func Open(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("mutationq postgres: parse config failed: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("mutationq postgres: create pool failed: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()

		return nil, fmt.Errorf("mutationq postgres: ping failed: %w", err)
	}

	return pool, nil
}

// NewStore constructs a PostgreSQL store with validated configuration.
func NewStore(pool *pgxpool.Pool, opts ...Option) (*Store, error) {
	if pool == nil {
		return nil, ErrPoolRequired
	}

	var cfg Config
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg = cfg.withDefaults()

	table, err := sanitizeTableName(cfg.Table)
	if err != nil {
		return nil, err
	}

	return &Store{
		pool:    pool,
		cfg:     cfg,
		queries: newQueries(table),
		table:   table,
	}, nil
}

// Table returns the sanitized table name.
func (s *Store) Table() string {
	return s.table
}

// Put inserts or replaces the record under key.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	if _, err := s.pool.Exec(ctx, s.queries.put, key, value); err != nil {
		return fmt.Errorf("mutationq postgres: put failed: %w", err)
	}

	return nil
}

// Get returns the record under key or mutationq.ErrNotFound.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.pool.QueryRow(ctx, s.queries.get, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, mutationq.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mutationq postgres: get failed: %w", err)
	}

	return value, nil
}

// Delete removes the record under key. Missing keys are ignored.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.pool.Exec(ctx, s.queries.delete, key); err != nil {
		return fmt.Errorf("mutationq postgres: delete failed: %w", err)
	}

	return nil
}

// Scan reads every record and then calls fn for each.
func (s *Store) Scan(ctx context.Context, fn func(key string, value []byte) error) error {
	rows, err := s.pool.Query(ctx, s.queries.scan)
	if err != nil {
		return fmt.Errorf("mutationq postgres: scan failed: %w", err)
	}

	type record struct {
		key   string
		value []byte
	}
	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (record, error) {
		var rec record
		err := row.Scan(&rec.key, &rec.value)

		return rec, err
	})
	if err != nil {
		return fmt.Errorf("mutationq postgres: scan rows failed: %w", err)
	}

	for _, rec := range records {
		if err := fn(rec.key, rec.value); err != nil {
			return err
		}
	}

	return nil
}

// Len returns the number of rows in the table.
func (s *Store) Len(ctx context.Context) (int, error) {
	var count int
	if err := s.pool.QueryRow(ctx, s.queries.count).Scan(&count); err != nil {
		return 0, fmt.Errorf("mutationq postgres: count failed: %w", err)
	}

	return count, nil
}
