package sqlite

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
			"INSERT INTO %s (k, v) VALUES (?, ?) ON CONFLICT(k) DO UPDATE SET v = excluded.v",
			table,
		),
		get:    fmt.Sprintf("SELECT v FROM %s WHERE k = ?", table),
		delete: fmt.Sprintf("DELETE FROM %s WHERE k = ?", table),
		scan:   fmt.Sprintf("SELECT k, v FROM %s ORDER BY k", table),
		count:  fmt.Sprintf("SELECT COUNT(*) FROM %s", table),
	}
}
