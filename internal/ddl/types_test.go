package ddl

import "testing"

func TestParseColumnLine(t *testing.T) {
	cases := []struct {
		name     string
		line     string
		wantOK   bool
		wantName string
		wantKind SubTypeKind
		wantArr  bool
	}{
		{"simple bigint", "id bigint NOT NULL,", true, "id", Integer, false},
		{"character varying", "first_name character varying(255),", true, "first_name", Character, false},
		{"array suffix", "tags character varying(255)[],", true, "tags", Character, true},
		{"unknown type", "created_at timestamp without time zone,", true, "created_at", UnknownSubType, false},
		{"quoted name", `"from" bigint,`, true, "from", Integer, false},
		{"constraint line", "CONSTRAINT users_pkey PRIMARY KEY (id)", false, "", 0, false},
		{"not null standalone", "NOT NULL", false, "", 0, false},
		{"primary key clause", "PRIMARY KEY (id)", false, "", 0, false},
		{"check constraint", "CHECK (age > 0)", false, "", 0, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			col, ok := ParseColumnLine(c.line)
			if ok != c.wantOK {
				t.Fatalf("ParseColumnLine(%q) ok = %v, want %v", c.line, ok, c.wantOK)
			}
			if !ok {
				return
			}
			if col.Name != c.wantName {
				t.Errorf("name = %q, want %q", col.Name, c.wantName)
			}
			if col.Type.SubType.Kind != c.wantKind {
				t.Errorf("kind = %v, want %v", col.Type.SubType.Kind, c.wantKind)
			}
			if col.Type.Array != c.wantArr {
				t.Errorf("array = %v, want %v", col.Type.Array, c.wantArr)
			}
		})
	}
}

func TestTypesRegistryCommitAndLookup(t *testing.T) {
	reg := TypesRegistry{}
	reg.Commit("public.users", []Column{
		{Name: "id", Type: ColumnType{SubType: SubType{Kind: Integer}}},
		{Name: "name", Type: ColumnType{SubType: SubType{Kind: Character}}},
	})

	got := reg.Lookup("public.users", "id")
	if got.SubType.Kind != Integer {
		t.Errorf("expected Integer, got %v", got.SubType.Kind)
	}

	missing := reg.Lookup("public.other", "whatever")
	if missing.SubType.Kind != UnknownSubType {
		t.Errorf("expected UnknownSubType for uncommitted table, got %v", missing.SubType.Kind)
	}
}
