// Package dump implements the COPY-header parser and the line-oriented
// state machine that rewrites a pg_dump text stream row by row.
package dump

import (
	"fmt"
	"log"
	"regexp"
	"sort"
	"strings"

	"github.com/Multiverse-io/anonymiser-sub000/internal/ddl"
	"github.com/Multiverse-io/anonymiser-sub000/internal/strategy"
)

var copyHeaderRE = regexp.MustCompile(`^COPY (?P<table>.*) \((?P<columns>.*)\) FROM stdin;$`)

// CurrentTable is the per-column-ordered state opened by a COPY header:
// the table name plus the transformer and type aligned to each dump
// column, in dump column order.
type CurrentTable struct {
	TableName          string
	Columns            []string
	ColumnTransformers []strategy.Transformer
	ColumnTypes        []ddl.ColumnType
	Truncate           bool
}

// ParseCopyHeader parses a `COPY table (cols...) FROM stdin;` line,
// looking up each column's transformer in strategies and its type in
// types. It is fatal for the table to have no strategy entry at all, or
// for a COPY column to be absent from that table's strategy.
func ParseCopyHeader(line string, strategies strategy.Strategies, types ddl.TypesRegistry) (CurrentTable, error) {
	m := copyHeaderRE.FindStringSubmatch(line)
	if m == nil {
		return CurrentTable{}, fmt.Errorf("invalid COPY row format: %q", line)
	}
	tableName := stripQuotes(strings.TrimSpace(m[copyHeaderRE.SubexpIndex("table")]))
	rawColumns := m[copyHeaderRE.SubexpIndex("columns")]

	var columns []string
	for _, c := range strings.Split(rawColumns, ",") {
		columns = append(columns, stripQuotes(strings.TrimSpace(c)))
	}

	tableInfo, ok := strategies[tableName]
	if !ok {
		return CurrentTable{}, fmt.Errorf("no transforms found for table: %q", tableName)
	}

	transformers := make([]strategy.Transformer, len(columns))
	columnTypes := make([]ddl.ColumnType, len(columns))
	headerSet := make(map[string]bool, len(columns))
	for i, col := range columns {
		colInfo, ok := tableInfo.Columns[col]
		if !ok {
			return CurrentTable{}, fmt.Errorf("no transform found for column: %q in table: %q", col, tableName)
		}
		transformers[i] = colInfo.Transformer
		columnTypes[i] = types.Lookup(tableName, col)
		headerSet[col] = true
	}

	// The dump is authoritative: strategy columns absent from the COPY
	// header are warned about, not fatal.
	var unlisted []string
	for name := range tableInfo.Columns {
		if !headerSet[name] {
			unlisted = append(unlisted, name)
		}
	}
	if len(unlisted) > 0 {
		sort.Strings(unlisted)
		log.Printf("warning: strategy lists columns not in the COPY header for table %s: %s", tableName, strings.Join(unlisted, ", "))
	}

	return CurrentTable{
		TableName:          tableName,
		Columns:            columns,
		ColumnTransformers: transformers,
		ColumnTypes:        columnTypes,
		Truncate:           tableInfo.Truncate,
	}, nil
}

func stripQuotes(s string) string {
	return strings.ReplaceAll(s, "\"", "")
}
