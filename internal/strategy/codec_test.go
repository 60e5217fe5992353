package strategy

import (
	"path/filepath"
	"testing"
)

func TestWriteReadRoundTripIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "strategy.json")

	tables := []TablePolicy{
		{TableName: "public.zebras", Columns: []ColumnPolicy{
			{Name: "b", DataCategory: General, Transformer: Transformer{Kind: Identity}},
			{Name: "a", DataCategory: General, Transformer: Transformer{Kind: Identity}},
		}},
		{TableName: "public.apples", Columns: []ColumnPolicy{
			{Name: "id", DataCategory: General, Transformer: Transformer{Kind: Identity}},
		}},
	}

	if err := Write(path, tables); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	first, err := Read(path)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if first[0].TableName != "public.apples" || first[1].TableName != "public.zebras" {
		t.Fatalf("expected tables sorted by name, got %+v", first)
	}
	if first[1].Columns[0].Name != "a" || first[1].Columns[1].Name != "b" {
		t.Fatalf("expected columns sorted by name, got %+v", first[1].Columns)
	}

	if err := Write(path, first); err != nil {
		t.Fatalf("second Write failed: %v", err)
	}
	second, err := Read(path)
	if err != nil {
		t.Fatalf("second Read failed: %v", err)
	}
	if len(second) != len(first) {
		t.Fatalf("round trip changed table count: %d vs %d", len(second), len(first))
	}
	for i := range first {
		if first[i].TableName != second[i].TableName {
			t.Errorf("round trip not idempotent at table %d: %q vs %q", i, first[i].TableName, second[i].TableName)
		}
	}
}

func TestAppendToFileCreatesMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "strategy.json")

	err := AppendToFile(path, TablePolicy{TableName: "public.users"})
	if err != nil {
		t.Fatalf("AppendToFile on missing file failed: %v", err)
	}

	tables, err := Read(path)
	if err != nil {
		t.Fatalf("Read after append failed: %v", err)
	}
	if len(tables) != 1 || tables[0].TableName != "public.users" {
		t.Fatalf("expected single appended table, got %+v", tables)
	}
}
