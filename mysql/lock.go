package mysql

import (
	"context"
	"database/sql"
	"fmt"
)

// TryLock takes a session-level GET_LOCK without waiting. The lock lives on a dedicated
// connection that is returned to the pool when release is called.
func (s *Store) TryLock(ctx context.Context, name string) (func(), bool, error) {
	if name == "" {
		return nil, false, ErrLockNameRequired
	}
	name = lockName(s.table, name)

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("mutationq mysql: lock conn failed: %w", err)
	}

	var got sql.NullInt64
	if err := conn.QueryRowContext(ctx, "SELECT GET_LOCK(?, 0)", name).Scan(&got); err != nil {
		_ = conn.Close()

		return nil, false, fmt.Errorf("mutationq mysql: acquire lock failed: %w", err)
	}
	if !got.Valid || got.Int64 == 0 {
		_ = conn.Close()

		return nil, false, nil
	}

	release := func() {
		// The drain context may already be canceled; the lock must still be released.
		var released sql.NullInt64
		if err := conn.QueryRowContext(context.Background(), "SELECT RELEASE_LOCK(?)", name).Scan(&released); err != nil {
			s.cfg.Logger.Warn("mutationq mysql release lock failed", "lock", name, "err", err)
		}
		if err := conn.Close(); err != nil {
			s.cfg.Logger.Warn("mutationq mysql lock conn close failed", "err", err)
		}
	}

	return release, true, nil
}
