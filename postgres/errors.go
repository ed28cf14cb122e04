package postgres

import "errors"

var (
	// ErrPoolRequired is returned when a nil pool is provided.
	ErrPoolRequired = errors.New("mutationq postgres: pool is required")
	// ErrTableNameRequired is returned when the table name is empty.
	ErrTableNameRequired = errors.New("mutationq postgres: table name is required")
	// ErrInvalidTableName is returned when the table name has disallowed characters.
	ErrInvalidTableName = errors.New("mutationq postgres: invalid table name")
	// ErrLockNameRequired is returned when TryLock is called without a name.
	ErrLockNameRequired = errors.New("mutationq postgres: lock name is required")
)
