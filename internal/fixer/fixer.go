// Package fixer implements check-strategies --fix: mutating the strategy
// file in place to match a live database's column set, adding skeleton
// entries for missing columns, dropping redundant ones, and deduplicating.
package fixer

import (
	"github.com/Multiverse-io/anonymiser-sub000/internal/strategy"
)

// Fix dedupes duplicate columns (first occurrence wins), adds placeholder
// entries for database columns missing from the strategy file, and
// removes strategy entries the database no longer has — dropping a table
// entirely once it has no columns left.
func Fix(tables []strategy.TablePolicy, dbColumns []strategy.SimpleColumn) []strategy.TablePolicy {
	byTable := dedup(tables)
	addMissing(byTable, dbColumns)
	removeRedundant(byTable, dbColumns)

	out := make([]strategy.TablePolicy, 0, len(byTable))
	for _, t := range byTable {
		if len(t.Columns) > 0 {
			out = append(out, t)
		}
	}
	return strategy.Sorted(out)
}

// dedup drops any column after its first occurrence within a table.
func dedup(tables []strategy.TablePolicy) map[string]strategy.TablePolicy {
	byTable := map[string]strategy.TablePolicy{}
	for _, t := range tables {
		seen := map[string]bool{}
		var cols []strategy.ColumnPolicy
		for _, c := range t.Columns {
			if seen[c.Name] {
				continue
			}
			seen[c.Name] = true
			cols = append(cols, c)
		}
		t.Columns = cols
		byTable[t.TableName] = t
	}
	return byTable
}

// addMissing inserts a placeholder column for every database column
// absent from the strategy file, creating the table entry if necessary.
// Placeholders use data_category Unknown and the Error transformer
// sentinel so validation forces an explicit policy decision before the
// next anonymise run.
func addMissing(byTable map[string]strategy.TablePolicy, dbColumns []strategy.SimpleColumn) {
	for _, dbCol := range dbColumns {
		t, ok := byTable[dbCol.TableName]
		if !ok {
			t = strategy.TablePolicy{TableName: dbCol.TableName}
		}
		found := false
		for _, c := range t.Columns {
			if c.Name == dbCol.ColumnName {
				found = true
				break
			}
		}
		if !found {
			t.Columns = append(t.Columns, strategy.ColumnPolicy{
				Name:         dbCol.ColumnName,
				DataCategory: strategy.Unknown,
				Transformer:  strategy.Transformer{Kind: strategy.Error},
			})
		}
		byTable[dbCol.TableName] = t
	}
}

// removeRedundant drops strategy columns the database no longer has.
func removeRedundant(byTable map[string]strategy.TablePolicy, dbColumns []strategy.SimpleColumn) {
	dbCols := map[strategy.SimpleColumn]bool{}
	for _, c := range dbColumns {
		dbCols[c] = true
	}

	for name, t := range byTable {
		var cols []strategy.ColumnPolicy
		for _, c := range t.Columns {
			if dbCols[strategy.SimpleColumn{TableName: name, ColumnName: c.Name}] {
				cols = append(cols, c)
			}
		}
		t.Columns = cols
		byTable[name] = t
	}
}
