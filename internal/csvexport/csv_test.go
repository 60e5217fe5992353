package csvexport

import (
	"strings"
	"testing"

	"github.com/Multiverse-io/anonymiser-sub000/internal/strategy"
)

func TestWriteFiltersAndSorts(t *testing.T) {
	tables := []strategy.TablePolicy{
		{TableName: "public.zebras", Columns: []strategy.ColumnPolicy{
			{Name: "nickname", DataCategory: strategy.PotentialPii, Description: "maybe identifying"},
			{Name: "id", DataCategory: strategy.General, Description: "not pii"},
		}},
		{TableName: "public.apples", Columns: []strategy.ColumnPolicy{
			{Name: "email", DataCategory: strategy.Pii, Description: "contact address"},
		}},
	}

	var buf strings.Builder
	if err := Write(&buf, tables); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\r\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines: %q", len(lines), buf.String())
	}
	if lines[0] != "table name,column name,description" {
		t.Errorf("unexpected header: %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "public.apples,email,") {
		t.Errorf("expected public.apples first (sorted), got %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "public.zebras,nickname,") {
		t.Errorf("expected public.zebras.nickname, got %q", lines[2])
	}
	if strings.Contains(buf.String(), "public.zebras,id,") {
		t.Error("General column should have been filtered out")
	}
}
