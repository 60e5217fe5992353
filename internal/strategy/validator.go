package strategy

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationErrors aggregates every problem found while building Strategies
// from the on-disk policy. It is never partial: either Build returns a
// complete Strategies value, or it returns one of these, fully populated.
type ValidationErrors struct {
	UnknownDataCategories []SimpleColumn
	ErrorTransformerTypes []SimpleColumn
	UnanonymisedPii       []SimpleColumn
	DuplicateColumns      []SimpleColumn
	DuplicateTables       []string
}

// IsEmpty reports whether no validation problems were recorded.
func (e *ValidationErrors) IsEmpty() bool {
	return e == nil || (len(e.UnknownDataCategories) == 0 &&
		len(e.ErrorTransformerTypes) == 0 &&
		len(e.UnanonymisedPii) == 0 &&
		len(e.DuplicateColumns) == 0 &&
		len(e.DuplicateTables) == 0)
}

func (e *ValidationErrors) Error() string {
	var b strings.Builder
	if len(e.DuplicateTables) > 0 {
		sort.Strings(e.DuplicateTables)
		fmt.Fprintf(&b, "duplicate tables in strategy file: %s\n", strings.Join(e.DuplicateTables, ", "))
	}
	writeColumns(&b, "duplicate columns", e.DuplicateColumns)
	writeColumns(&b, "unknown data categories", e.UnknownDataCategories)
	writeColumns(&b, "columns using the Error transformer sentinel", e.ErrorTransformerTypes)
	writeColumns(&b, "Pii/PotentialPii columns left as Identity", e.UnanonymisedPii)
	return strings.TrimRight(b.String(), "\n")
}

func writeColumns(b *strings.Builder, label string, cols []SimpleColumn) {
	if len(cols) == 0 {
		return
	}
	sorted := sortedColumns(cols)
	names := make([]string, len(sorted))
	for i, c := range sorted {
		names[i] = c.String()
	}
	fmt.Fprintf(b, "%s: %s\n", label, strings.Join(names, ", "))
}

func sortedColumns(cols []SimpleColumn) []SimpleColumn {
	out := make([]SimpleColumn, len(cols))
	copy(out, cols)
	sort.Slice(out, func(i, j int) bool {
		if out[i].TableName != out[j].TableName {
			return out[i].TableName < out[j].TableName
		}
		return out[i].ColumnName < out[j].ColumnName
	})
	return out
}

// Build validates a deserialised policy file and, on success, produces the
// read-only in-memory Strategies. It rejects a (table, column) appearing
// twice, a Pii/PotentialPii column left at Identity unless overridden, and
// any column still carrying an Unknown data category, the Error transformer
// sentinel, or a transformer kind outside the closed set.
func Build(tables []TablePolicy, overrides TransformerOverrides) (Strategies, error) {
	errs := &ValidationErrors{}
	seenTables := map[string]int{}
	for _, t := range tables {
		seenTables[t.TableName]++
	}
	for name, count := range seenTables {
		if count > 1 {
			errs.DuplicateTables = append(errs.DuplicateTables, name)
		}
	}

	strategies := Strategies{}
	for _, t := range tables {
		if seenTables[t.TableName] > 1 {
			// Duplicate table definitions are reported, not merged.
			continue
		}
		columns := map[string]ColumnInfo{}
		seenColumns := map[string]int{}
		for _, c := range t.Columns {
			seenColumns[c.Name]++
		}
		for _, c := range t.Columns {
			sc := SimpleColumn{TableName: t.TableName, ColumnName: c.Name}
			if seenColumns[c.Name] > 1 {
				errs.DuplicateColumns = append(errs.DuplicateColumns, sc)
				continue
			}

			if c.DataCategory == Unknown || c.DataCategory == "" {
				errs.UnknownDataCategories = append(errs.UnknownDataCategories, sc)
			}
			if c.Transformer.Kind == Error || !IsKnown(c.Transformer.Kind) {
				errs.ErrorTransformerTypes = append(errs.ErrorTransformerTypes, sc)
			}

			transformer := c.Transformer
			overridden := (c.DataCategory == PotentialPii && overrides.AllowPotentialPii) ||
				(c.DataCategory == CommerciallySensitive && overrides.AllowCommerciallySensitive)
			if overridden {
				// Overrides force an explicit passthrough rather than merely
				// tolerating one already declared.
				transformer = Transformer{Kind: Identity}
			} else {
				needsAnonymisation := c.DataCategory == Pii || c.DataCategory == PotentialPii
				if needsAnonymisation && transformer.Kind == Identity {
					errs.UnanonymisedPii = append(errs.UnanonymisedPii, sc)
				}
			}

			columns[c.Name] = ColumnInfo{
				Name:         c.Name,
				DataCategory: c.DataCategory,
				Transformer:  transformer,
			}
		}
		strategies[t.TableName] = TableInfo{Columns: columns, Truncate: t.Truncate}
	}

	if !errs.IsEmpty() {
		return nil, errs
	}
	return strategies, nil
}

// DbErrors aggregates the two-way set difference between a strategy file
// and a live database's column set.
type DbErrors struct {
	MissingFromStrategyFile []SimpleColumn
	MissingFromDb           []SimpleColumn
}

func (e *DbErrors) IsEmpty() bool {
	return e == nil || (len(e.MissingFromStrategyFile) == 0 && len(e.MissingFromDb) == 0)
}

func (e *DbErrors) Error() string {
	var b strings.Builder
	writeColumns(&b, "present in the database but missing from the strategy file", e.MissingFromStrategyFile)
	writeColumns(&b, "present in the strategy file but missing from the database", e.MissingFromDb)
	return strings.TrimRight(b.String(), "\n")
}

// ValidateAgainstDb computes the bidirectional difference between the
// strategy's column set and dbColumns:
//
//	missing_from_strategy_file = DbColumns \ StrategyColumns
//	missing_from_db            = StrategyColumns \ DbColumns
func ValidateAgainstDb(strategies Strategies, dbColumns []SimpleColumn) *DbErrors {
	strategyCols := map[SimpleColumn]bool{}
	for table, info := range strategies {
		for col := range info.Columns {
			strategyCols[SimpleColumn{TableName: table, ColumnName: col}] = true
		}
	}
	dbCols := map[SimpleColumn]bool{}
	for _, c := range dbColumns {
		dbCols[c] = true
	}

	errs := &DbErrors{}
	for _, c := range dbColumns {
		if !strategyCols[c] {
			errs.MissingFromStrategyFile = append(errs.MissingFromStrategyFile, c)
		}
	}
	for c := range strategyCols {
		if !dbCols[c] {
			errs.MissingFromDb = append(errs.MissingFromDb, c)
		}
	}
	errs.MissingFromStrategyFile = sortedColumns(errs.MissingFromStrategyFile)
	errs.MissingFromDb = sortedColumns(errs.MissingFromDb)
	return errs
}
