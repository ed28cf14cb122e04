package sqlite

import "fmt"

const schemaTemplate = `CREATE TABLE IF NOT EXISTS %s (
	k TEXT NOT NULL PRIMARY KEY,
	v BLOB NOT NULL
) WITHOUT ROWID;`

// Schema returns the DDL for a store table.
func Schema(table string) (string, error) {
	name, err := sanitizeTableName(table)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(schemaTemplate, name), nil
}
