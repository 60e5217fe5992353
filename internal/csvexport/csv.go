// Package csvexport emits the PII inventory CSV behind the to-csv
// subcommand.
package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"

	"github.com/Multiverse-io/anonymiser-sub000/internal/strategy"
)

// Write emits "table name, column name, description" for every
// Pii/PotentialPii column across tables, sorted by table then column.
func Write(w io.Writer, tables []strategy.TablePolicy) error {
	type row struct{ table, column, description string }
	var rows []row
	for _, t := range tables {
		for _, c := range t.Columns {
			if c.DataCategory == strategy.Pii || c.DataCategory == strategy.PotentialPii {
				rows = append(rows, row{t.TableName, c.Name, c.Description})
			}
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].table != rows[j].table {
			return rows[i].table < rows[j].table
		}
		return rows[i].column < rows[j].column
	})

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"table name", "column name", "description"}); err != nil {
		return fmt.Errorf("failed writing CSV header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write([]string{r.table, r.column, r.description}); err != nil {
			return fmt.Errorf("failed writing CSV row for %s.%s: %w", r.table, r.column, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
