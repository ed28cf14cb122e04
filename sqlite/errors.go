package sqlite

import "errors"

var (
	// ErrDBRequired is returned when a nil *sql.DB is provided.
	ErrDBRequired = errors.New("mutationq sqlite: db is required")
	// ErrPathRequired is returned when Open is called without a path.
	ErrPathRequired = errors.New("mutationq sqlite: path is required")
	// ErrTableNameRequired is returned when the table name is empty.
	ErrTableNameRequired = errors.New("mutationq sqlite: table name is required")
	// ErrInvalidTableName is returned when the table name has disallowed characters.
	ErrInvalidTableName = errors.New("mutationq sqlite: invalid table name")
)
