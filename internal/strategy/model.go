// Package strategy holds the in-file and in-memory anonymisation policy
// models, the validation pipeline, and the JSON codec for the policy file.
package strategy

import "fmt"

// DataCategory classifies the sensitivity of a column.
type DataCategory string

const (
	General               DataCategory = "General"
	PotentialPii          DataCategory = "PotentialPii"
	Pii                   DataCategory = "Pii"
	CommerciallySensitive DataCategory = "CommerciallySensitive"
	Security              DataCategory = "Security"
	Unknown               DataCategory = "Unknown"
)

// TransformerKind is the closed set of named transformers. Error is a
// sentinel meaning "no transformer has been chosen yet" and must never
// survive validation; Identity is the passthrough.
type TransformerKind string

const (
	Identity     TransformerKind = "Identity"
	Error        TransformerKind = "Error"
	Fixed        TransformerKind = "Fixed"
	Redact       TransformerKind = "Redact"
	EmptyJson    TransformerKind = "EmptyJson"
	Scramble     TransformerKind = "Scramble"
	ObfuscateDay TransformerKind = "ObfuscateDay"

	FakeUUID                   TransformerKind = "FakeUUID"
	FakeEmail                  TransformerKind = "FakeEmail"
	FakeFirstName              TransformerKind = "FakeFirstName"
	FakeLastName               TransformerKind = "FakeLastName"
	FakeFullName               TransformerKind = "FakeFullName"
	FakeCompanyName            TransformerKind = "FakeCompanyName"
	FakeCity                   TransformerKind = "FakeCity"
	FakeState                  TransformerKind = "FakeState"
	FakePostCode               TransformerKind = "FakePostCode"
	FakeStreetAddress          TransformerKind = "FakeStreetAddress"
	FakeFullAddress            TransformerKind = "FakeFullAddress"
	FakeIPv4                   TransformerKind = "FakeIPv4"
	FakePhoneNumber            TransformerKind = "FakePhoneNumber"
	FakeUsername               TransformerKind = "FakeUsername"
	FakeNationalIdentityNumber TransformerKind = "FakeNationalIdentityNumber"
	FakeBase16String           TransformerKind = "FakeBase16String"
	FakeBase32String           TransformerKind = "FakeBase32String"

	// Password-hash transformers: the hashed value is always derived from
	// a deterministically-faked password, never the real input.
	HashBcrypt   TransformerKind = "HashBcrypt"
	HashScrypt   TransformerKind = "HashScrypt"
	HashPBKDF2   TransformerKind = "HashPBKDF2"
	HashArgon2id TransformerKind = "HashArgon2id"
)

// knownKinds is the exhaustive, closed set consulted by validation so an
// unrecognised kind (typo, future addition) is rejected rather than
// silently treated as Identity.
var knownKinds = map[TransformerKind]bool{
	Identity: true, Error: true, Fixed: true, Redact: true, EmptyJson: true,
	Scramble: true, ObfuscateDay: true, FakeUUID: true, FakeEmail: true,
	FakeFirstName: true, FakeLastName: true, FakeFullName: true,
	FakeCompanyName: true, FakeCity: true, FakeState: true, FakePostCode: true,
	FakeStreetAddress: true, FakeFullAddress: true, FakeIPv4: true,
	FakePhoneNumber: true, FakeUsername: true, FakeNationalIdentityNumber: true,
	FakeBase16String: true, FakeBase32String: true,
	HashBcrypt: true, HashScrypt: true, HashPBKDF2: true, HashArgon2id: true,
}

// IsKnown reports whether kind is a member of the closed transformer set.
func IsKnown(kind TransformerKind) bool {
	return knownKinds[kind]
}

// Transformer is a named transform plus its optional arguments.
type Transformer struct {
	Kind TransformerKind   `json:"name"`
	Args map[string]string `json:"args,omitempty"`
}

// ColumnPolicy is the on-disk, per-column form of the policy file.
type ColumnPolicy struct {
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	DataCategory DataCategory `json:"data_category"`
	Transformer  Transformer  `json:"transformer"`
}

// TablePolicy is the on-disk, per-table form of the policy file.
type TablePolicy struct {
	TableName   string         `json:"table_name"`
	Description string         `json:"description"`
	Truncate    bool           `json:"truncate,omitempty"`
	Columns     []ColumnPolicy `json:"columns"`
}

// SimpleColumn is a fully-qualified (table, column) pair used throughout
// the validation set algebra.
type SimpleColumn struct {
	TableName  string
	ColumnName string
}

func (c SimpleColumn) String() string {
	return fmt.Sprintf("%s.%s", c.TableName, c.ColumnName)
}

// ColumnInfo is the in-memory per-column record consulted while rewriting.
type ColumnInfo struct {
	Name         string
	DataCategory DataCategory
	Transformer  Transformer
}

// TableInfo is the in-memory per-table record: columns keyed by name, plus
// the truncate flag consulted by the row/state machine.
type TableInfo struct {
	Columns  map[string]ColumnInfo
	Truncate bool
}

// Strategies is the authoritative, read-only-after-construction in-memory
// policy: table_name -> (column_name -> ColumnInfo). A table absent here
// must never be encountered inside a COPY block without raising an error.
type Strategies map[string]TableInfo

// Lookup returns the column policy for table.column, and whether it exists.
func (s Strategies) Lookup(table, column string) (ColumnInfo, bool) {
	t, ok := s[table]
	if !ok {
		return ColumnInfo{}, false
	}
	c, ok := t.Columns[column]
	return c, ok
}

// TransformerOverrides loosens validation for explicitly-acknowledged
// categories, replacing their transformer with Identity.
type TransformerOverrides struct {
	AllowPotentialPii          bool
	AllowCommerciallySensitive bool
}
