package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/velmie/mutationq"
)

type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Store implements mutationq.KV over a single MySQL table.
type Store struct {
	db      *sql.DB
	exec    executor
	cfg     Config
	queries queries
	table   string
}

var (
	_ mutationq.KV      = (*Store)(nil)
	_ mutationq.Counter = (*Store)(nil)
	_ mutationq.Locker  = (*Store)(nil)
)

// NewStore constructs a MySQL store with validated configuration.
func NewStore(db *sql.DB, opts ...Option) (*Store, error) {
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

	return &Store{
		db:      db,
		exec:    db,
		cfg:     cfg,
		queries: newQueries(table),
		table:   table,
	}, nil
}

// MustNewStore constructs a MySQL store or panics on error.
func MustNewStore(db *sql.DB, opts ...Option) *Store {
	store, err := NewStore(db, opts...)
	if err != nil {
		panic(err)
	}

	return store
}

// Table returns the sanitized table name.
func (s *Store) Table() string {
	return s.table
}

// Put inserts or replaces the record under key.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	if _, err := s.exec.ExecContext(ctx, s.queries.put, key, value); err != nil {
		return fmt.Errorf("mutationq mysql: put failed: %w", err)
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
		return nil, fmt.Errorf("mutationq mysql: get failed: %w", err)
	}

	return value, nil
}

// Delete removes the record under key. Missing keys are ignored.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.exec.ExecContext(ctx, s.queries.delete, key); err != nil {
		return fmt.Errorf("mutationq mysql: delete failed: %w", err)
	}

	return nil
}

// Scan reads every record and then calls fn for each, so fn may write to the store.
func (s *Store) Scan(ctx context.Context, fn func(key string, value []byte) error) error {
	records, err := s.readAll(ctx)
	if err != nil {
		return err
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
	if err := s.db.QueryRowContext(ctx, s.queries.count).Scan(&count); err != nil {
		return 0, fmt.Errorf("mutationq mysql: count failed: %w", err)
	}

	return count, nil
}

type record struct {
	key   string
	value []byte
}

func (s *Store) readAll(ctx context.Context) (records []record, err error) {
	rows, err := s.db.QueryContext(ctx, s.queries.scan)
	if err != nil {
		return nil, fmt.Errorf("mutationq mysql: scan failed: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("mutationq mysql: close rows failed: %w", closeErr)
		}
	}()

	for rows.Next() {
		var rec record
		if err := rows.Scan(&rec.key, &rec.value); err != nil {
			return nil, fmt.Errorf("mutationq mysql: scan row failed: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("mutationq mysql: rows failed: %w", err)
	}

	return records, nil
}
