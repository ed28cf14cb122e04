package postgres

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
			"INSERT INTO %s (k, v) VALUES ($1, $2) ON CONFLICT (k) DO UPDATE SET v = EXCLUDED.v, updated_at = now()",
			table,
		),
		get:    fmt.Sprintf("SELECT v FROM %s WHERE k = $1", table),
		delete: fmt.Sprintf("DELETE FROM %s WHERE k = $1", table),
		scan:   fmt.Sprintf("SELECT k, v FROM %s ORDER BY k", table),
		count:  fmt.Sprintf("SELECT COUNT(*) FROM %s", table),
	}
}
