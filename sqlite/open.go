package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const driverName = "sqlite"

var pragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA synchronous = NORMAL",
	"PRAGMA busy_timeout = 5000",
}

// Open opens (or creates) the database file at path with a single connection and WAL journaling.
// Use ":memory:" for a throwaway database.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	if path == "" {
		return nil, ErrPathRequired
	}

	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("mutationq sqlite: open failed: %w", err)
	}
	// SQLite serializes writers; one connection avoids SQLITE_BUSY and keeps :memory: databases shared.
	db.SetMaxOpenConns(1)

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()

			return nil, fmt.Errorf("mutationq sqlite: %s failed: %w", pragma, err)
		}
	}

	return db, nil
}
