package mysql

import "errors"

var (
	// ErrDBRequired is returned when a nil *sql.DB is provided.
	ErrDBRequired = errors.New("mutationq mysql: db is required")
	// ErrTableNameRequired is returned when the table name is empty.
	ErrTableNameRequired = errors.New("mutationq mysql: table name is required")
	// ErrInvalidTableName is returned when the table name has disallowed characters.
	ErrInvalidTableName = errors.New("mutationq mysql: invalid table name")
	// ErrLockNameRequired is returned when TryLock is called without a name.
	ErrLockNameRequired = errors.New("mutationq mysql: lock name is required")
)
