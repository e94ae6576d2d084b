package viewspec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validView() ViewSpec {
	return ViewSpec{
		Name: "name",
		Tables: []TableSpec{
			{
				Name:  "table1",
				Alias: "t1",
				Columns: []ColumnSpec{
					{Name: "column11", Type: "text", SearchType: SearchContains},
				},
			},
			{
				Name:    "table2",
				Alias:   "t2",
				Columns: []ColumnSpec{{Name: "column21"}},
			},
		},
		Joins: []JoinSpec{
			{
				Type:         JoinInner,
				LeftAlias:    "t1",
				LeftColumns:  []string{"column11"},
				RightAlias:   "t2",
				RightColumns: []string{"column21"},
			},
		},
		Indexing: true,
		Limit:    "10",
	}
}

func codes(errs ValidationErrors) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Code
	}
	return out
}

func TestValidateSearchConditionValid(t *testing.T) {
	errs := Validate(CreateSearchCondition{View: validView()})
	assert.Empty(t, errs, "valid spec should have no errors")
}

func TestValidateSearchConditionPointer(t *testing.T) {
	errs := Validate(&CreateSearchCondition{View: validView()})
	assert.Empty(t, errs)
}

func TestValidateMissingNames(t *testing.T) {
	view := validView()
	view.Name = "  "
	view.Tables[0].Name = ""
	view.Tables[1].Columns[0].Name = ""

	errs := Validate(CreateSearchCondition{View: view})
	require.Len(t, errs, 3)
	for _, e := range errs {
		assert.Equal(t, ErrMissingName, e.Code)
	}
	assert.Equal(t, "name", errs[0].Field)
	assert.Equal(t, "tables[0].name", errs[1].Field)
	assert.Equal(t, "tables[1].columns[0].name", errs[2].Field)
}

func TestValidateNoTables(t *testing.T) {
	errs := Validate(CreateSearchCondition{View: ViewSpec{Name: "empty"}})
	require.Len(t, errs, 1)
	assert.Equal(t, ErrMissingName, errs[0].Code)
	assert.Equal(t, "tables", errs[0].Field)
}

func TestValidateJoinColumnMismatch(t *testing.T) {
	view := validView()
	view.Joins[0].RightColumns = []string{"column21", "column22"}

	errs := Validate(CreateSearchCondition{View: view})
	require.Len(t, errs, 1)
	assert.Equal(t, ErrJoinColumnMismatch, errs[0].Code)
	assert.Contains(t, errs[0].Message, "(1)")
	assert.Contains(t, errs[0].Message, "(2)")
}

func TestValidateJoinEmptyColumns(t *testing.T) {
	view := validView()
	view.Joins[0].LeftColumns = nil
	view.Joins[0].RightColumns = nil

	errs := Validate(CreateSearchCondition{View: view})
	require.Len(t, errs, 1)
	assert.Equal(t, ErrJoinColumnMismatch, errs[0].Code)
}

func TestValidateJoinType(t *testing.T) {
	tests := []struct {
		name     string
		joinType JoinType
		code     string
	}{
		{"missing", "", ErrMissingType},
		{"unknown", "full", ErrInvalidValue},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			view := validView()
			view.Joins[0].Type = tc.joinType

			errs := Validate(CreateSearchCondition{View: view})
			require.Len(t, errs, 1)
			assert.Equal(t, tc.code, errs[0].Code)
			assert.Equal(t, "joins[0].type", errs[0].Field)
		})
	}
}

func TestValidateIndexingWithoutSearchType(t *testing.T) {
	view := validView()
	view.Tables[0].Columns[0].SearchType = SearchNone

	errs := Validate(CreateSearchCondition{View: view})
	require.Len(t, errs, 1)
	assert.Equal(t, ErrNoSearchableColumn, errs[0].Code)
}

func TestValidateIndexingSearchTypeInsideCTE(t *testing.T) {
	view := ViewSpec{
		Name: "cte_only",
		CTEs: []CTESpec{{
			Name: "c",
			Tables: []TableSpec{{
				Name:    "t1_name",
				Columns: []ColumnSpec{{Name: "c11_name", SearchType: SearchEqual}},
			}},
		}},
		Tables:   []TableSpec{{Name: "c", Columns: []ColumnSpec{{Name: "c11_name"}}}},
		Indexing: true,
	}

	errs := Validate(CreateSearchCondition{View: view})
	assert.Empty(t, errs)
}

func TestValidateFunctionParameter(t *testing.T) {
	tests := []struct {
		name string
		fn   FunctionSpec
		code string
	}{
		{
			name: "string_agg without parameter",
			fn:   FunctionSpec{TableAlias: "t1", ColumnName: "column11", Name: "string_agg", Alias: "names"},
			code: ErrMissingParameter,
		},
		{
			name: "upper-case STRING_AGG without parameter",
			fn:   FunctionSpec{TableAlias: "t1", ColumnName: "column11", Name: "STRING_AGG", Alias: "names"},
			code: ErrMissingParameter,
		},
		{
			name: "count with parameter",
			fn:   FunctionSpec{TableAlias: "t1", ColumnName: "column11", Name: "count", Alias: "cnt", Parameter: "','"},
			code: ErrUnexpectedParameter,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			view := validView()
			view.Tables[0].Functions = []FunctionSpec{tc.fn}

			errs := Validate(CreateSearchCondition{View: view})
			require.Len(t, errs, 1)
			assert.Equal(t, tc.code, errs[0].Code)
			assert.Equal(t, "tables[0].functions[0].parameter", errs[0].Field)
		})
	}
}

func TestValidateFunctionParameterAccepted(t *testing.T) {
	view := validView()
	view.Tables[0].Functions = []FunctionSpec{
		{TableAlias: "t1", ColumnName: "column11", Name: "string_agg", Alias: "names", Parameter: "', '"},
		{TableAlias: "t1", ColumnName: "column11", Name: "count", Alias: "cnt"},
	}

	errs := Validate(CreateSearchCondition{View: view})
	assert.Empty(t, errs)
}

func TestValidateDuplicateAliases(t *testing.T) {
	view := validView()
	view.Tables[1].Alias = "t1"
	view.CTEs = []CTESpec{
		{Name: "c", Tables: []TableSpec{{Name: "x"}}},
		{Name: "c", Tables: []TableSpec{{Name: "y"}}},
	}

	errs := Validate(CreateSearchCondition{View: view})
	assert.Equal(t, []string{ErrDuplicateAlias, ErrDuplicateAlias}, codes(errs))
}

func TestValidateAliasCollidesWithCTE(t *testing.T) {
	view := validView()
	view.CTEs = []CTESpec{{Name: "t2", Tables: []TableSpec{{Name: "x"}}}}

	errs := Validate(CreateSearchCondition{View: view})
	require.Len(t, errs, 1)
	assert.Equal(t, ErrDuplicateAlias, errs[0].Code)
	assert.Equal(t, "tables[1].alias", errs[0].Field)
}

func TestValidateTableReadingCTEMayUseItsName(t *testing.T) {
	view := validView()
	view.CTEs = []CTESpec{{Name: "recent", Tables: []TableSpec{{Name: "x"}}}}
	view.Tables = append(view.Tables, TableSpec{Name: "recent", Columns: []ColumnSpec{{Name: "id"}}})

	errs := Validate(CreateSearchCondition{View: view})
	assert.Empty(t, errs)
}

func TestValidateConditions(t *testing.T) {
	view := validView()
	view.Where = []ConditionSpec{
		{TableAlias: "t1", ColumnName: "column11", Operator: OpEq, Value: "'a'"},
		{TableAlias: "t1", ColumnName: "column11", Operator: "between", Value: "1", LogicOperator: LogicAnd},
		{TableAlias: "t1", ColumnName: "column11", Operator: OpIsNull, Value: "yes", LogicOperator: "xor"},
		{
			TableAlias: "t2", ColumnName: "column21", Operator: OpEq, Value: "1", LogicOperator: LogicOr,
			Included: []ConditionSpec{{TableAlias: "t2", ColumnName: ""}},
		},
	}

	errs := Validate(CreateSearchCondition{View: view})

	assert.Equal(t, []string{
		ErrInvalidValue, // between
		ErrInvalidValue, // isNull "yes"
		ErrInvalidValue, // xor
		ErrMissingName,  // included column
		ErrMissingType,  // included operator
	}, codes(errs))
	assert.Equal(t, "where[3].included[0].column_name", errs[3].Field)
}

func TestValidateLimit(t *testing.T) {
	tests := []struct {
		limit string
		valid bool
	}{
		{"", true},
		{"all", true},
		{"10", true},
		{"0", false},
		{"-1", false},
		{"ten", false},
	}

	for _, tc := range tests {
		t.Run("limit="+tc.limit, func(t *testing.T) {
			view := validView()
			view.Limit = tc.limit
			errs := Validate(CreateSearchCondition{View: view})
			if tc.valid {
				assert.Empty(t, errs)
				return
			}
			require.Len(t, errs, 1)
			assert.Equal(t, ErrInvalidLimit, errs[0].Code)
		})
	}
}

func TestValidateSimpleSearchCondition(t *testing.T) {
	valid := CreateSimpleSearchCondition{
		Name:         "simple",
		Table:        TableSpec{Name: "table1", Alias: "t"},
		SearchColumn: ColumnSpec{Name: "column1", SearchType: SearchStartsWith},
		Indexing:     true,
	}
	assert.Empty(t, Validate(valid))

	bad := valid
	bad.SearchColumn.SearchType = SearchNone
	bad.Table.Name = ""
	errs := Validate(bad)
	assert.Equal(t, []string{ErrMissingName, ErrNoSearchableColumn}, codes(errs))
}

func TestValidateDropAndManyToMany(t *testing.T) {
	assert.Empty(t, Validate(DropSearchCondition{Name: "x"}))
	assert.Equal(t, []string{ErrMissingName}, codes(Validate(&DropSearchCondition{})))

	errs := Validate(CreateManyToMany{MainTableName: "main"})
	assert.Len(t, errs, 3)
}

func TestValidationErrorsError(t *testing.T) {
	errs := ValidationErrors{
		{Field: "name", Message: "name is required", Code: ErrMissingName},
		{Field: "limit", Message: "bad", Code: ErrInvalidLimit},
	}
	assert.Equal(t, "2 validation errors: [E101] name: name is required; [E109] limit: bad", errs.Error())
	assert.Equal(t, "[E101] name: name is required", errs[:1].Error())
}
