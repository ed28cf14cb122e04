package postgres

import "fmt"

const schemaTemplate = `CREATE TABLE IF NOT EXISTS %s (
	k TEXT NOT NULL PRIMARY KEY,
	v BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

// Schema returns the DDL for a store table.
func Schema(table string) (string, error) {
	name, err := sanitizeTableName(table)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(schemaTemplate, name), nil
}
