package dump

import (
	"strings"
	"testing"

	"github.com/Multiverse-io/anonymiser-sub000/internal/strategy"
)

func newUsersMachine() *Machine {
	strategies := strategy.Strategies{
		"public.users": strategy.TableInfo{
			Columns: map[string]strategy.ColumnInfo{
				"id":    {Name: "id", DataCategory: strategy.General, Transformer: strategy.Transformer{Kind: strategy.Identity}},
				"email": {Name: "email", DataCategory: strategy.Pii, Transformer: strategy.Transformer{Kind: strategy.Fixed, Args: map[string]string{"value": "redacted@example.test"}}},
			},
		},
	}
	return NewMachine(strategies, "test-salt")
}

func process(t *testing.T, m *Machine, lines []string) []string {
	t.Helper()
	var out []string
	for i, l := range lines {
		line, emit, err := m.ProcessLine(i+1, l)
		if err != nil {
			t.Fatalf("line %d (%q): unexpected error: %v", i+1, l, err)
		}
		if emit {
			out = append(out, line)
		}
	}
	return out
}

func TestMachineRewritesDataRowsAndPassesDdlThrough(t *testing.T) {
	m := newUsersMachine()
	lines := []string{
		`CREATE TABLE public.users (`,
		`    id bigint NOT NULL,`,
		`    email character varying(255),`,
		`);`,
		`COPY public.users (id, email) FROM stdin;`,
		"1\treal@example.com",
		`\.`,
	}

	out := process(t, m, lines)
	if len(out) != len(lines) {
		t.Fatalf("expected every line emitted, got %d of %d: %+v", len(out), len(lines), out)
	}
	if out[5] != "1\tredacted@example.test" {
		t.Errorf("expected id passed through and email fixed, got %q", out[5])
	}
}

func TestMachineSuppressesRowsForTruncatedTable(t *testing.T) {
	strategies := strategy.Strategies{
		"public.users": strategy.TableInfo{
			Truncate: true,
			Columns: map[string]strategy.ColumnInfo{
				"id": {Name: "id", DataCategory: strategy.General, Transformer: strategy.Transformer{Kind: strategy.Identity}},
			},
		},
	}
	m := NewMachine(strategies, "salt")
	lines := []string{
		`COPY public.users (id) FROM stdin;`,
		"1",
		"2",
		`\.`,
	}

	out := process(t, m, lines)
	if len(out) != 2 {
		t.Fatalf("expected only header and terminator emitted, got %+v", out)
	}
	if out[0] != lines[0] || out[1] != `\.` {
		t.Errorf("expected header+terminator verbatim, got %+v", out)
	}
}

func TestMachineNullSentinelBypassesTransform(t *testing.T) {
	m := newUsersMachine()
	lines := []string{
		`COPY public.users (id, email) FROM stdin;`,
		"2\t\\N",
		`\.`,
	}
	out := process(t, m, lines)
	if out[1] != "2\t\\N" {
		t.Errorf("expected NULL sentinel to bypass transform, got %q", out[1])
	}
}

func TestMachineErrorsOnFieldCountMismatch(t *testing.T) {
	m := newUsersMachine()
	lines := []string{`COPY public.users (id, email) FROM stdin;`}
	process(t, m, lines)

	_, _, err := m.ProcessLine(2, "only-one-field-value-with-no-tab")
	if err == nil {
		t.Fatal("expected a field-count mismatch error")
	}
	if !strings.Contains(err.Error(), "fields but table") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestMachineErrorsOnUnknownTableInCopyHeader(t *testing.T) {
	m := newUsersMachine()
	_, _, err := m.ProcessLine(1, `COPY public.orders (id) FROM stdin;`)
	if err == nil {
		t.Fatal("expected an error for an unstrategised table")
	}
}

func TestMachinePanicsOnIllegalNestedCreateTable(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic for nested CREATE TABLE")
		}
	}()
	m := newUsersMachine()
	m.ProcessLine(1, `CREATE TABLE public.users (`)
	m.ProcessLine(2, `CREATE TABLE public.other (`)
}
