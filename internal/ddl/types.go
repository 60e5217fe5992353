// Package ddl parses CREATE TABLE body lines into column name/type pairs
// and tracks them per table for later lookup by the dump rewriter.
package ddl

import "strings"

// SubTypeKind is the coarse scalar classification used by transformers
// that need to distinguish character data from integers.
type SubTypeKind int

const (
	Character SubTypeKind = iota
	Integer
	UnknownSubType
)

// SubType is a scalar column type: either a recognised kind, or Unknown
// carrying the raw, unrecognised type text.
type SubType struct {
	Kind SubTypeKind
	Raw  string
}

// ColumnType is either a scalar or an array of a scalar subtype.
type ColumnType struct {
	Array   bool
	SubType SubType
}

// Column is a single parsed CREATE TABLE column definition.
type Column struct {
	Name string
	Type ColumnType
}

// nonColumnPrefixes are the table-level constraint/clause keywords that
// mean a CREATE TABLE body line is not a column definition at all.
var nonColumnPrefixes = []string{
	"NOT", "CONSTRAINT", "CHECK", "UNIQUE", "PRIMARY", "EXCLUDE",
	"FOREIGN", "DEFERRABLE", "INITIALLY", "INHERITS", "ON",
	"PARTITION", "TABLESPACE", "USING", "WITH",
}

// typeStopTokens are the column modifiers/constraints that terminate the
// type-name portion of a column definition.
var typeStopTokens = map[string]bool{
	"COLLATE": true, "COMPRESSION": true, "NOT": true, "NULL": true,
	"CHECK": true, "DEFAULT": true, "GENERATED": true, "UNIQUE": true,
	"PRIMARY": true, "REFERENCES": true, "DEFERRABLE": true, "INITIALLY": true,
}

// ParseColumnLine parses one line from inside a CREATE TABLE body. It
// returns ok=false if the line is a table-level constraint/clause rather
// than a column definition.
func ParseColumnLine(line string) (Column, bool) {
	trimmed := strings.TrimSpace(line)
	trimmed = strings.TrimSuffix(trimmed, ",")
	if trimmed == "" {
		return Column{}, false
	}

	upper := strings.ToUpper(trimmed)
	for _, kw := range nonColumnPrefixes {
		if upper == kw || strings.HasPrefix(upper, kw+" ") {
			return Column{}, false
		}
	}

	fields := strings.Fields(trimmed)
	if len(fields) < 2 {
		return Column{}, false
	}
	name := stripQuotes(fields[0])

	var typeTokens []string
	for _, tok := range fields[1:] {
		if typeStopTokens[strings.ToUpper(tok)] {
			break
		}
		typeTokens = append(typeTokens, tok)
	}
	rawType := strings.Join(typeTokens, " ")

	array := false
	if strings.HasSuffix(rawType, "[]") {
		array = true
		rawType = strings.TrimSuffix(rawType, "[]")
	}

	sub := classify(rawType)
	return Column{
		Name: name,
		Type: ColumnType{Array: array, SubType: sub},
	}, true
}

func classify(rawType string) SubType {
	lower := strings.ToLower(rawType)
	switch {
	case strings.HasPrefix(lower, "character"):
		return SubType{Kind: Character, Raw: rawType}
	case strings.HasPrefix(lower, "bigint"):
		return SubType{Kind: Integer, Raw: rawType}
	default:
		return SubType{Kind: UnknownSubType, Raw: rawType}
	}
}

func stripQuotes(s string) string {
	return strings.ReplaceAll(s, "\"", "")
}

// TypesRegistry holds committed column types, keyed by table then column,
// populated as CREATE TABLE blocks close and consulted when COPY blocks
// open. It grows monotonically over a run, bounded by schema size.
type TypesRegistry map[string]map[string]ColumnType

// Commit records the columns of a just-closed CREATE TABLE block.
func (r TypesRegistry) Commit(tableName string, columns []Column) {
	cols := make(map[string]ColumnType, len(columns))
	for _, c := range columns {
		cols[c.Name] = c.Type
	}
	r[tableName] = cols
}

// Lookup returns the committed type for table.column, defaulting to an
// unknown scalar type when the table was never declared (e.g. a COPY
// block for a table whose CREATE TABLE wasn't present in this dump).
func (r TypesRegistry) Lookup(tableName, columnName string) ColumnType {
	if cols, ok := r[tableName]; ok {
		if t, ok := cols[columnName]; ok {
			return t
		}
	}
	return ColumnType{SubType: SubType{Kind: UnknownSubType}}
}
