package postgres

import (
	"context"
	"fmt"
)

// TryLock takes a session-level advisory lock keyed by hashtext(name:table) without waiting.
// The lock lives on a connection acquired from the pool until release is called.
func (s *Store) TryLock(ctx context.Context, name string) (func(), bool, error) {
	if name == "" {
		return nil, false, ErrLockNameRequired
	}
	key := name + ":" + s.table

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("mutationq postgres: lock conn failed: %w", err)
	}

	var got bool
	if err := conn.QueryRow(ctx, "SELECT pg_try_advisory_lock(hashtext($1))", key).Scan(&got); err != nil {
		conn.Release()

		return nil, false, fmt.Errorf("mutationq postgres: acquire lock failed: %w", err)
	}
	if !got {
		conn.Release()

		return nil, false, nil
	}

	release := func() {
		var released bool
		if err := conn.QueryRow(context.Background(), "SELECT pg_advisory_unlock(hashtext($1))", key).Scan(&released); err != nil {
			s.cfg.Logger.Warn("mutationq postgres release lock failed", "lock", key, "err", err)
		}
		conn.Release()
	}

	return release, true, nil
}
