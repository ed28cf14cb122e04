package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/velmie/mutationq"
)

// Store implements mutationq.KV over a single SQLite table.
type Store struct {
	db      *sql.DB
	cfg     Config
	queries queries
	table   string
}

var (
	_ mutationq.KV      = (*Store)(nil)
	_ mutationq.Counter = (*Store)(nil)
)

// NewStore constructs a SQLite store, creating its table when WithCreateSchema is set.
func NewStore(ctx context.Context, db *sql.DB, opts ...Option) (*Store, error) {
	if db == nil {
		return nil, ErrDBRequired
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

	if cfg.CreateSchema {
		schema, err := Schema(table)
		if err != nil {
			return nil, err
		}
		if _, err := db.ExecContext(ctx, schema); err != nil {
			return nil, fmt.Errorf("mutationq sqlite: create table %s failed: %w", table, err)
		}
	}

	return &Store{
		db:      db,
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
	if _, err := s.db.ExecContext(ctx, s.queries.put, key, value); err != nil {
		return fmt.Errorf("mutationq sqlite: put failed: %w", err)
	}

	return nil
}

// Get returns the record under key or mutationq.ErrNotFound.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, s.queries.get, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, mutationq.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mutationq sqlite: get failed: %w", err)
	}

	return value, nil
}

// Delete removes the record under key. Missing keys are ignored.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, s.queries.delete, key); err != nil {
		return fmt.Errorf("mutationq sqlite: delete failed: %w", err)
	}

	return nil
}

// Scan reads every record before calling fn, so fn may write to the store
// while the single connection is free.
func (s *Store) Scan(ctx context.Context, fn func(key string, value []byte) error) error {
	keys, values, err := s.readAll(ctx)
	if err != nil {
		return err
	}
	for i := range keys {
		if err := fn(keys[i], values[i]); err != nil {
			return err
		}
	}

	return nil
}

// Len returns the number of rows in the table.
func (s *Store) Len(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, s.queries.count).Scan(&count); err != nil {
		return 0, fmt.Errorf("mutationq sqlite: count failed: %w", err)
	}

	return count, nil
}

func (s *Store) readAll(ctx context.Context) (keys []string, values [][]byte, err error) {
	rows, err := s.db.QueryContext(ctx, s.queries.scan)
	if err != nil {
		return nil, nil, fmt.Errorf("mutationq sqlite: scan failed: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("mutationq sqlite: close rows failed: %w", closeErr)
		}
	}()

	for rows.Next() {
		var (
			key   string
			value []byte
		)
		if err := rows.Scan(&key, &value); err != nil {
			return nil, nil, fmt.Errorf("mutationq sqlite: scan row failed: %w", err)
		}
		keys = append(keys, key)
		values = append(values, value)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("mutationq sqlite: rows failed: %w", err)
	}

	return keys, values, nil
}
