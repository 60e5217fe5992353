package dump

import (
	"fmt"
	"strings"

	"github.com/Multiverse-io/anonymiser-sub000/internal/ddl"
	"github.com/Multiverse-io/anonymiser-sub000/internal/strategy"
	"github.com/Multiverse-io/anonymiser-sub000/internal/transform"
)

type stateKind int

const (
	normal stateKind = iota
	inCreateTable
	inCopy
)

type createTableState struct {
	tableName string
	columns   []ddl.Column
}

// Machine is the single-threaded, sequential row/state machine. One
// Machine processes exactly one dump stream; it is not safe for
// concurrent use.
type Machine struct {
	kind        stateKind
	createTable createTableState
	copy        CurrentTable
	types       ddl.TypesRegistry
	strategies  strategy.Strategies
	salt        string
}

// NewMachine constructs a Machine starting in the Normal state.
func NewMachine(strategies strategy.Strategies, salt string) *Machine {
	return &Machine{
		kind:       normal,
		types:      ddl.TypesRegistry{},
		strategies: strategies,
		salt:       salt,
	}
}

// StreamError is a fatal mid-run error: table/column and, where
// available, a line-number hint are carried for the caller to report.
type StreamError struct {
	Table  string
	Column string
	Line   int
	Err    error
}

func (e *StreamError) Error() string {
	loc := ""
	if e.Table != "" {
		loc = fmt.Sprintf(" (table=%s", e.Table)
		if e.Column != "" {
			loc += fmt.Sprintf(", column=%s", e.Column)
		}
		loc += ")"
	}
	if e.Line > 0 {
		return fmt.Sprintf("line %d%s: %v", e.Line, loc, e.Err)
	}
	return fmt.Sprintf("%s%s", e.Err, loc)
}

func (e *StreamError) Unwrap() error { return e.Err }

// ProcessLine classifies and transforms a single input line (without its
// trailing newline). It returns the line(s) to emit verbatim/transformed,
// and whether anything should be emitted at all (false only for data rows
// suppressed by a table's truncate flag).
func (m *Machine) ProcessLine(lineNo int, line string) (string, bool, error) {
	switch {
	case (strings.HasPrefix(line, "CREATE TABLE ") || strings.HasPrefix(line, "CREATE UNLOGGED TABLE ")) && strings.HasSuffix(line, "("):
		if m.kind != normal {
			panic(fmt.Sprintf("line %d: illegal transition: CREATE TABLE opened while not in Normal state", lineNo))
		}
		m.kind = inCreateTable
		m.createTable = createTableState{tableName: extractCreateTableName(line)}
		return line, true, nil

	case strings.HasPrefix(line, "COPY ") && strings.HasSuffix(line, "FROM stdin;"):
		if m.kind != normal {
			panic(fmt.Sprintf("line %d: illegal transition: COPY opened while not in Normal state", lineNo))
		}
		current, err := ParseCopyHeader(line, m.strategies, m.types)
		if err != nil {
			return "", false, &StreamError{Line: lineNo, Err: err}
		}
		m.kind = inCopy
		m.copy = current
		return line, true, nil

	case strings.HasPrefix(line, `\.`):
		if m.kind != inCopy {
			panic(fmt.Sprintf("line %d: illegal transition: \\. terminator outside InCopy", lineNo))
		}
		m.kind = normal
		m.copy = CurrentTable{}
		return line, true, nil

	case line == ");" && m.kind == inCreateTable:
		m.types.Commit(m.createTable.tableName, m.createTable.columns)
		m.kind = normal
		m.createTable = createTableState{}
		return line, true, nil

	case m.kind == inCreateTable:
		if col, ok := ddl.ParseColumnLine(line); ok {
			m.createTable.columns = append(m.createTable.columns, col)
		}
		return line, true, nil

	case m.kind == inCopy:
		if m.copy.Truncate {
			return "", false, nil
		}
		out, err := m.transformRow(lineNo, line)
		if err != nil {
			return "", false, err
		}
		return out, true, nil

	default:
		return line, true, nil
	}
}

// transformRow splits a data row on tab, applies the positionally-aligned
// transformer to each field, and rejoins on tab. Every field must get a
// transformed replacement; a field-count mismatch against the table's
// known columns is a fatal error rather than a best-effort rewrite.
func (m *Machine) transformRow(lineNo int, line string) (string, error) {
	fields := strings.Split(line, "\t")
	if len(fields) != len(m.copy.ColumnTransformers) {
		return "", &StreamError{
			Table: m.copy.TableName,
			Line:  lineNo,
			Err:   fmt.Errorf("row has %d fields but table %s has %d columns", len(fields), m.copy.TableName, len(m.copy.ColumnTransformers)),
		}
	}

	out := make([]string, len(fields))
	for i, field := range fields {
		t := m.copy.ColumnTransformers[i]
		colName := m.copy.Columns[i]
		transformed, err := transform.Apply(t.Kind, t.Args, field, m.copy.ColumnTypes[i], m.copy.TableName, colName, fields, m.salt)
		if err != nil {
			return "", &StreamError{Table: m.copy.TableName, Column: colName, Line: lineNo, Err: err}
		}
		out[i] = transformed
	}
	return strings.Join(out, "\t"), nil
}

func extractCreateTableName(line string) string {
	rest := strings.TrimPrefix(line, "CREATE UNLOGGED TABLE ")
	rest = strings.TrimPrefix(rest, "CREATE TABLE ")
	rest = strings.TrimSuffix(rest, "(")
	rest = strings.TrimSpace(rest)
	return strings.ReplaceAll(rest, "\"", "")
}
