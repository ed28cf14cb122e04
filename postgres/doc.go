// Package postgres provides a PostgreSQL store for mutationq queues built on pgx.
//
// Each Store owns one table (k TEXT primary key, v BYTEA). Drains are serialized across
// processes with pg_try_advisory_lock held on a dedicated pooled connection.
package postgres
