package viewspec

// Statement is one compilable change.
//
// This is a sealed interface - only types in this package implement it.
// Compilers dispatch with an exhaustive type switch over the cases below.
type Statement interface {
	statementNode() // Marker method - seals interface to this package

	// StatementName returns the name the change is recorded under.
	StatementName() string
}

// CreateSearchCondition creates the <name>_v view described by View and,
// when View.Indexing is set, the search indexes backing it.
type CreateSearchCondition struct {
	View ViewSpec `json:"view"`
}

func (CreateSearchCondition) statementNode() {}

// StatementName returns the view spec name.
func (s CreateSearchCondition) StatementName() string { return s.View.Name }

// CreateSimpleSearchCondition exposes every column of a single table as a
// view searchable by one column.
//
// Semantics:
//
//	CREATE OR REPLACE VIEW <Name>_v AS SELECT <alias>.* FROM <Table> AS <alias> [LIMIT <Limit>];
//	CREATE INDEX IF NOT EXISTS ix_<table>__<column> ON <table> ...;  -- when Indexing
type CreateSimpleSearchCondition struct {
	Name         string     `json:"name"`
	Table        TableSpec  `json:"table"` // Columns and Functions are ignored
	SearchColumn ColumnSpec `json:"search_column"`
	Indexing     bool       `json:"indexing,omitempty"`
	Limit        string     `json:"limit,omitempty"`
}

func (CreateSimpleSearchCondition) statementNode() {}

// StatementName returns the view name.
func (s CreateSimpleSearchCondition) StatementName() string { return s.Name }

// DropSearchCondition drops the <name>_v view.
type DropSearchCondition struct {
	Name string `json:"name"`
}

func (DropSearchCondition) statementNode() {}

// StatementName returns the view name.
func (s DropSearchCondition) StatementName() string { return s.Name }

// CreateManyToMany exposes an array-of-keys column as a relation view and
// indexes the array column.
//
// Semantics:
//
//	CREATE OR REPLACE VIEW <main>_<reference>_rel_v AS
//	  SELECT <main>.<key>, UNNEST(<main>.<array>) AS <reference>_id FROM <main>;
//	CREATE INDEX ix_<main>__<array> ON <main> USING GIN (<array>);
type CreateManyToMany struct {
	MainTableName      string `json:"main_table_name"`
	MainTableKeyField  string `json:"main_table_key_field"`
	ReferenceTableName string `json:"reference_table_name"`
	ReferenceKeysArray string `json:"reference_keys_array"`
}

func (CreateManyToMany) statementNode() {}

// StatementName returns the relation name, <main>_<reference>.
func (s CreateManyToMany) StatementName() string {
	return s.MainTableName + "_" + s.ReferenceTableName
}

// Statement kinds, as named in spec files.
const (
	KindCreateSearchCondition       = "createSearchCondition"
	KindCreateSimpleSearchCondition = "createSimpleSearchCondition"
	KindDropSearchCondition         = "dropSearchCondition"
	KindCreateManyToMany            = "createManyToMany"
)

// Kind returns the kind name of stmt, or "" for nil and unknown types.
func Kind(stmt Statement) string {
	switch stmt.(type) {
	case CreateSearchCondition, *CreateSearchCondition:
		return KindCreateSearchCondition
	case CreateSimpleSearchCondition, *CreateSimpleSearchCondition:
		return KindCreateSimpleSearchCondition
	case DropSearchCondition, *DropSearchCondition:
		return KindDropSearchCondition
	case CreateManyToMany, *CreateManyToMany:
		return KindCreateManyToMany
	default:
		return ""
	}
}
