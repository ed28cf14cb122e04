package mysql

import (
	"fmt"
	"strings"
)

// maxLockNameLen is the GET_LOCK name limit.
const maxLockNameLen = 64

func sanitizeTableName(name string) (string, error) {
	if name == "" {
		return "", ErrTableNameRequired
	}
	parts := strings.Split(name, ".")
	for _, part := range parts {
		if part == "" {
			return "", fmt.Errorf("%w: %s", ErrInvalidTableName, name)
		}
		for _, r := range part {
			if r == '_' || (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				continue
			}

			return "", fmt.Errorf("%w: %s", ErrInvalidTableName, name)
		}
	}

	return name, nil
}

// lockName scopes a drain lock name to the table and trims it to what GET_LOCK accepts.
func lockName(table, name string) string {
	scoped := name + ":" + table
	if len(scoped) > maxLockNameLen {
		scoped = scoped[:maxLockNameLen]
	}

	return scoped
}
