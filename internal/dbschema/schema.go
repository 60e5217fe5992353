// Package dbschema is the live-database collaborator behind
// check-strategies and generate-strategies: it scrapes the column set of
// a running PostgreSQL database via information_schema.
package dbschema

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/Multiverse-io/anonymiser-sub000/internal/strategy"
)

// Columns connects to dbURL and returns every user-table column as a
// SimpleColumn, fully qualified with its schema.
func Columns(dbURL string) ([]strategy.SimpleColumn, error) {
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	defer db.Close()

	rows, err := db.Query(`
		SELECT table_schema || '.' || table_name AS qualified_table, column_name
		FROM information_schema.columns
		WHERE table_schema NOT IN ('pg_catalog', 'information_schema')
		ORDER BY qualified_table, column_name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query information_schema.columns: %w", err)
	}
	defer rows.Close()

	var columns []strategy.SimpleColumn
	for rows.Next() {
		var table, column string
		if err := rows.Scan(&table, &column); err != nil {
			return nil, fmt.Errorf("failed to scan column row: %w", err)
		}
		columns = append(columns, strategy.SimpleColumn{TableName: table, ColumnName: column})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating column rows: %w", err)
	}
	return columns, nil
}

// Tables groups Columns' output by table, the shape generate-strategies
// needs to emit one skeleton TablePolicy per table.
func Tables(dbURL string) (map[string][]string, error) {
	cols, err := Columns(dbURL)
	if err != nil {
		return nil, err
	}
	out := map[string][]string{}
	for _, c := range cols {
		out[c.TableName] = append(out[c.TableName], c.ColumnName)
	}
	return out, nil
}
