package mysql

import "fmt"

type queries struct {
	put    string
	get    string
	delete string
	scan   string
	count  string
}

func newQueries(table string) queries {
	return queries{
		put: fmt.Sprintf(
			"INSERT INTO %s (k, v) VALUES (?, ?) ON DUPLICATE KEY UPDATE v = VALUES(v)",
			table,
		),
		get:    fmt.Sprintf("SELECT v FROM %s WHERE k = ?", table),
		delete: fmt.Sprintf("DELETE FROM %s WHERE k = ?", table),
		scan:   fmt.Sprintf("SELECT k, v FROM %s ORDER BY k", table),
		count:  fmt.Sprintf("SELECT COUNT(*) FROM %s", table),
	}
}
