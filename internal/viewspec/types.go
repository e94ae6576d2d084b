package viewspec

// SearchType declares how a column is searched. It drives the index
// strategy chosen by the index planner and the predicate shape of search
// queries against the compiled view.
type SearchType string

const (
	SearchNone       SearchType = ""
	SearchEqual      SearchType = "equal"
	SearchContains   SearchType = "contains"
	SearchStartsWith SearchType = "startsWith"
)

// Valid reports whether s is one of the declared search types (or unset).
func (s SearchType) Valid() bool {
	switch s {
	case SearchNone, SearchEqual, SearchContains, SearchStartsWith:
		return true
	}
	return false
}

// Sorting is the ORDER BY direction of a column.
type Sorting string

const (
	SortNone Sorting = ""
	SortAsc  Sorting = "asc"
	SortDesc Sorting = "desc"
)

// Valid reports whether s is asc, desc or unset.
func (s Sorting) Valid() bool {
	return s == SortNone || s == SortAsc || s == SortDesc
}

// JoinType selects the join keyword.
type JoinType string

const (
	JoinInner JoinType = "inner"
	JoinLeft  JoinType = "left"
)

// Valid reports whether j is inner or left.
func (j JoinType) Valid() bool {
	return j == JoinInner || j == JoinLeft
}

// Operator is the comparison operator of a condition leaf.
type Operator string

const (
	OpEq      Operator = "eq"
	OpNe      Operator = "ne"
	OpGt      Operator = "gt"
	OpGe      Operator = "ge"
	OpLt      Operator = "lt"
	OpLe      Operator = "le"
	OpIn      Operator = "in"
	OpNotIn   Operator = "notIn"
	OpIsNull  Operator = "isNull"
	OpSimilar Operator = "similar"
	OpLike    Operator = "like"
)

// Valid reports whether o is a known operator.
func (o Operator) Valid() bool {
	switch o {
	case OpEq, OpNe, OpGt, OpGe, OpLt, OpLe, OpIn, OpNotIn, OpIsNull, OpSimilar, OpLike:
		return true
	}
	return false
}

// LogicOperator joins a condition to its preceding sibling.
type LogicOperator string

const (
	LogicNone LogicOperator = ""
	LogicAnd  LogicOperator = "and"
	LogicOr   LogicOperator = "or"
)

// Valid reports whether l is and, or or unset.
func (l LogicOperator) Valid() bool {
	return l == LogicNone || l == LogicAnd || l == LogicOr
}

// LimitAll is the limit value that suppresses the LIMIT clause.
const LimitAll = "all"

// ViewSpec is the aggregate root of a view definition.
//
// Semantics:
//
//	CREATE OR REPLACE VIEW <Name>_v AS
//	  [WITH <CTEs>] SELECT <Tables columns/functions>
//	  FROM <Tables joined by Joins> [WHERE <Where>] [GROUP BY] [ORDER BY] [LIMIT <Limit>]
//
// A ViewSpec is built once, read during one compile call and discarded.
type ViewSpec struct {
	Name     string          `json:"name" yaml:"name"`
	CTEs     []CTESpec       `json:"ctes,omitempty" yaml:"cte,omitempty"`
	Tables   []TableSpec     `json:"tables" yaml:"table"`
	Joins    []JoinSpec      `json:"joins,omitempty" yaml:"join,omitempty"`
	Indexing bool            `json:"indexing,omitempty" yaml:"indexing,omitempty"`
	Limit    string          `json:"limit,omitempty" yaml:"limit,omitempty"` // "all" or "" = no LIMIT
	Where    []ConditionSpec `json:"where,omitempty" yaml:"where,omitempty"`
}

// HasLimit reports whether the view renders a LIMIT clause.
func (v ViewSpec) HasLimit() bool {
	return v.Limit != "" && v.Limit != LimitAll
}

// TableSpec is a table (or CTE name) read by a query.
type TableSpec struct {
	Name      string         `json:"name" yaml:"name"`
	Alias     string         `json:"alias,omitempty" yaml:"alias,omitempty"`
	Columns   []ColumnSpec   `json:"columns,omitempty" yaml:"column,omitempty"`
	Functions []FunctionSpec `json:"functions,omitempty" yaml:"function,omitempty"`
}

// RenderAlias returns the alias used to qualify this table's columns.
// Without an explicit alias the table name is used.
func (t TableSpec) RenderAlias() string {
	if t.Alias != "" {
		return t.Alias
	}
	return t.Name
}

// ColumnSpec is a column of a table.
type ColumnSpec struct {
	Name       string     `json:"name" yaml:"name"`
	Alias      string     `json:"alias,omitempty" yaml:"alias,omitempty"`
	Type       string     `json:"type,omitempty" yaml:"type,omitempty"`
	SearchType SearchType `json:"search_type,omitempty" yaml:"searchType,omitempty"`
	Returning  *bool      `json:"returning,omitempty" yaml:"returning,omitempty"` // nil = true
	Sorting    Sorting    `json:"sorting,omitempty" yaml:"sorting,omitempty"`
}

// IsReturning reports whether the column appears in the SELECT list.
// Columns are returned unless explicitly marked otherwise.
func (c ColumnSpec) IsReturning() bool {
	return c.Returning == nil || *c.Returning
}

// ExposedName is the name under which the column is visible to readers of
// the query: the display alias when set, otherwise the column name.
func (c ColumnSpec) ExposedName() string {
	if c.Alias != "" {
		return c.Alias
	}
	return c.Name
}

// JoinSpec joins two aliased tables on positional column pairs.
type JoinSpec struct {
	Type         JoinType        `json:"type" yaml:"type"`
	LeftAlias    string          `json:"left_alias" yaml:"leftAlias"`
	LeftColumns  []string        `json:"left_columns" yaml:"leftColumns"`
	RightAlias   string          `json:"right_alias" yaml:"rightAlias"`
	RightColumns []string        `json:"right_columns" yaml:"rightColumns"`
	Conditions   []ConditionSpec `json:"conditions,omitempty" yaml:"condition,omitempty"`
}

// ConditionSpec is one node of a boolean condition tree.
//
// Value is raw SQL literal text; escaping is the caller's responsibility.
// LogicOperator joins this node to its preceding sibling and is ignored on
// the first node of a sibling list. When Included is non-empty the node and
// its included sub-tree form one parenthesised compound clause.
type ConditionSpec struct {
	TableAlias    string          `json:"table_alias" yaml:"tableAlias"`
	ColumnName    string          `json:"column_name" yaml:"columnName"`
	Operator      Operator        `json:"operator" yaml:"operator"`
	Value         string          `json:"value,omitempty" yaml:"value,omitempty"`
	LogicOperator LogicOperator   `json:"logic_operator,omitempty" yaml:"logicOperator,omitempty"`
	Included      []ConditionSpec `json:"included,omitempty" yaml:"included,omitempty"`
}

// CTESpec is a named sub-query rendered into the WITH clause.
type CTESpec struct {
	Name   string          `json:"name" yaml:"name"`
	Tables []TableSpec     `json:"tables" yaml:"table"`
	Joins  []JoinSpec      `json:"joins,omitempty" yaml:"join,omitempty"`
	Where  []ConditionSpec `json:"where,omitempty" yaml:"where,omitempty"`
}

// FunctionSpec is an aggregate function applied to a column.
type FunctionSpec struct {
	TableAlias string `json:"table_alias" yaml:"tableAlias"`
	ColumnName string `json:"column_name" yaml:"columnName"`
	Name       string `json:"name" yaml:"name"`
	Alias      string `json:"alias,omitempty" yaml:"alias,omitempty"`
	Parameter  string `json:"parameter,omitempty" yaml:"parameter,omitempty"`
}

// parameterizedFunctions lists aggregates that take a second argument.
var parameterizedFunctions = map[string]bool{
	"string_agg": true,
}

// RequiresParameter reports whether the function needs Parameter set.
func (f FunctionSpec) RequiresParameter() bool {
	return parameterizedFunctions[normalizeFunctionName(f.Name)]
}

// Bool returns a pointer to b, for ColumnSpec.Returning literals.
func Bool(b bool) *bool {
	return &b
}
