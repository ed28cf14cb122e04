package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/velmie/mutationq"
	"github.com/velmie/mutationq/mysql"
	"github.com/velmie/mutationq/natskv"
	"github.com/velmie/mutationq/postgres"
	"github.com/velmie/mutationq/sqlite"
)

const (
	driverSQLite   = "sqlite"
	driverMySQL    = "mysql"
	driverPostgres = "postgres"
	driverNATS     = "nats"
)

var (
	errUnknownDriver = errors.New("unknown driver")
	errNoSchema      = errors.New("driver has no table schema")
)

// backend is an opened pair of namespaces for one driver.
type backend struct {
	entries mutationq.KV
	blobs   mutationq.KV
	close   func() error
}

type backendConfig struct {
	driver     string
	dsn        string
	entryTable string
	blobTable  string
}

func openBackend(ctx context.Context, cfg backendConfig, logger *slog.Logger) (*backend, error) {
	switch strings.ToLower(cfg.driver) {
	case driverSQLite:
		return openSQLite(ctx, cfg)
	case driverMySQL:
		return openMySQL(ctx, cfg, logger)
	case driverPostgres:
		return openPostgres(ctx, cfg, logger)
	case driverNATS:
		return openNATS(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownDriver, cfg.driver)
	}
}

func openSQLite(ctx context.Context, cfg backendConfig) (*backend, error) {
	db, err := sqlite.Open(ctx, cfg.dsn)
	if err != nil {
		return nil, err
	}
	entries, err := sqlite.NewStore(ctx, db, sqlite.WithTable(cfg.entryTable), sqlite.WithCreateSchema(true))
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	blobs, err := sqlite.NewStore(ctx, db, sqlite.WithTable(cfg.blobTable), sqlite.WithCreateSchema(true))
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &backend{entries: entries, blobs: blobs, close: db.Close}, nil
}

func openMySQL(ctx context.Context, cfg backendConfig, logger *slog.Logger) (*backend, error) {
	db, err := sql.Open("mysql", cfg.dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	entries, err := mysql.NewStore(db, mysql.WithTable(cfg.entryTable), mysql.WithLogger(logger))
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	blobs, err := mysql.NewStore(db, mysql.WithTable(cfg.blobTable), mysql.WithLogger(logger))
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &backend{entries: entries, blobs: blobs, close: db.Close}, nil
}

func openPostgres(ctx context.Context, cfg backendConfig, logger *slog.Logger) (*backend, error) {
	pool, err := postgres.Open(ctx, cfg.dsn)
	if err != nil {
		return nil, err
	}
	entries, err := postgres.NewStore(pool, postgres.WithTable(cfg.entryTable), postgres.WithLogger(logger))
	if err != nil {
		pool.Close()
		return nil, err
	}
	blobs, err := postgres.NewStore(pool, postgres.WithTable(cfg.blobTable), postgres.WithLogger(logger))
	if err != nil {
		pool.Close()
		return nil, err
	}

	return &backend{
		entries: entries,
		blobs:   blobs,
		close: func() error {
			pool.Close()
			return nil
		},
	}, nil
}

func openNATS(ctx context.Context, cfg backendConfig, logger *slog.Logger) (*backend, error) {
	nc, err := nats.Connect(cfg.dsn)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	entries, err := natskv.Bind(ctx, js, cfg.entryTable, natskv.WithLogger(logger))
	if err != nil {
		nc.Close()
		return nil, err
	}
	blobs, err := natskv.Bind(ctx, js, cfg.blobTable, natskv.WithLogger(logger))
	if err != nil {
		nc.Close()
		return nil, err
	}

	return &backend{
		entries: entries,
		blobs:   blobs,
		close: func() error {
			return nc.Drain()
		},
	}, nil
}

func schemaFor(driver, table string) (string, error) {
	switch strings.ToLower(driver) {
	case driverSQLite:
		return sqlite.Schema(table)
	case driverMySQL:
		return mysql.Schema(table)
	case driverPostgres:
		return postgres.Schema(table)
	case driverNATS:
		return "", fmt.Errorf("%w: nats buckets are created on first use", errNoSchema)
	default:
		return "", fmt.Errorf("%w: %q", errUnknownDriver, driver)
	}
}
