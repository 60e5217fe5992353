package strategy

import "testing"

func policy(table string, cols ...ColumnPolicy) TablePolicy {
	return TablePolicy{TableName: table, Columns: cols}
}

func TestBuildRejectsUnanonymisedPii(t *testing.T) {
	tables := []TablePolicy{
		policy("public.users", ColumnPolicy{
			Name:         "email",
			DataCategory: Pii,
			Transformer:  Transformer{Kind: Identity},
		}),
	}

	_, err := Build(tables, TransformerOverrides{})
	if err == nil {
		t.Fatal("expected a validation error")
	}
	ve, ok := err.(*ValidationErrors)
	if !ok {
		t.Fatalf("expected *ValidationErrors, got %T", err)
	}
	if len(ve.UnanonymisedPii) != 1 {
		t.Errorf("expected 1 unanonymised PII column, got %d", len(ve.UnanonymisedPii))
	}
}

func TestBuildRejectsErrorSentinelAndUnknownCategory(t *testing.T) {
	tables := []TablePolicy{
		policy("public.users",
			ColumnPolicy{Name: "id", DataCategory: General, Transformer: Transformer{Kind: Error}},
			ColumnPolicy{Name: "dob", DataCategory: Unknown, Transformer: Transformer{Kind: Identity}},
		),
	}

	_, err := Build(tables, TransformerOverrides{})
	ve, ok := err.(*ValidationErrors)
	if !ok {
		t.Fatalf("expected *ValidationErrors, got %T", err)
	}
	if len(ve.ErrorTransformerTypes) != 1 {
		t.Errorf("expected 1 Error-transformer column, got %d", len(ve.ErrorTransformerTypes))
	}
	if len(ve.UnknownDataCategories) != 1 {
		t.Errorf("expected 1 unknown-category column, got %d", len(ve.UnknownDataCategories))
	}
}

func TestBuildRejectsUnrecognisedTransformerKind(t *testing.T) {
	tables := []TablePolicy{
		policy("public.users", ColumnPolicy{
			Name:         "email",
			DataCategory: General,
			Transformer:  Transformer{Kind: "FakeTelegramHandle"},
		}),
	}

	_, err := Build(tables, TransformerOverrides{})
	ve, ok := err.(*ValidationErrors)
	if !ok {
		t.Fatalf("expected *ValidationErrors, got %T", err)
	}
	if len(ve.ErrorTransformerTypes) != 1 {
		t.Errorf("expected the unrecognised kind reported, got %+v", ve)
	}
}

func TestBuildRejectsDuplicates(t *testing.T) {
	tables := []TablePolicy{
		policy("public.users",
			ColumnPolicy{Name: "id", DataCategory: General, Transformer: Transformer{Kind: Identity}},
			ColumnPolicy{Name: "id", DataCategory: General, Transformer: Transformer{Kind: Identity}},
		),
		policy("public.users"),
	}

	_, err := Build(tables, TransformerOverrides{})
	ve, ok := err.(*ValidationErrors)
	if !ok {
		t.Fatalf("expected *ValidationErrors, got %T", err)
	}
	if len(ve.DuplicateTables) != 1 {
		t.Errorf("expected 1 duplicate table, got %d", len(ve.DuplicateTables))
	}
}

func TestBuildOverridesForcesIdentity(t *testing.T) {
	tables := []TablePolicy{
		policy("public.users", ColumnPolicy{
			Name:         "notes",
			DataCategory: PotentialPii,
			Transformer:  Transformer{Kind: FakeFirstName},
		}),
	}

	strategies, err := Build(tables, TransformerOverrides{AllowPotentialPii: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	col, _ := strategies.Lookup("public.users", "notes")
	if col.Transformer.Kind != Identity {
		t.Errorf("expected override to force Identity, got %v", col.Transformer.Kind)
	}
}

func TestValidationMonotonicity(t *testing.T) {
	tables := []TablePolicy{
		policy("public.users",
			ColumnPolicy{Name: "a", DataCategory: PotentialPii, Transformer: Transformer{Kind: Identity}},
			ColumnPolicy{Name: "b", DataCategory: CommerciallySensitive, Transformer: Transformer{Kind: Identity}},
		),
	}

	_, errNone := Build(tables, TransformerOverrides{})
	_, errBoth := Build(tables, TransformerOverrides{AllowPotentialPii: true, AllowCommerciallySensitive: true})

	veNone := errNone.(*ValidationErrors)
	if errBoth != nil {
		t.Fatalf("expected no errors with both overrides, got %v", errBoth)
	}
	if len(veNone.UnanonymisedPii) == 0 {
		t.Fatal("expected errors with no overrides")
	}
}

func TestValidateAgainstDb(t *testing.T) {
	tables := []TablePolicy{
		policy("public.users", ColumnPolicy{Name: "id", DataCategory: General, Transformer: Transformer{Kind: Identity}}),
	}
	strategies, err := Build(tables, TransformerOverrides{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dbCols := []SimpleColumn{
		{TableName: "public.users", ColumnName: "id"},
		{TableName: "public.users", ColumnName: "email"},
	}

	errs := ValidateAgainstDb(strategies, dbCols)
	if len(errs.MissingFromStrategyFile) != 1 || errs.MissingFromStrategyFile[0].ColumnName != "email" {
		t.Errorf("expected email missing from strategy file, got %+v", errs.MissingFromStrategyFile)
	}
	if len(errs.MissingFromDb) != 0 {
		t.Errorf("expected nothing missing from db, got %+v", errs.MissingFromDb)
	}
}
