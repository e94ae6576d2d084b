package viewspec

import (
	"fmt"
	"strconv"
	"strings"
)

// Validation error codes (E100-E199)
const (
	ErrUnsupportedStatement = "E100" // unsupported statement type for validation

	ErrMissingName         = "E101" // required name missing
	ErrMissingType         = "E102" // required type/operator missing
	ErrInvalidValue        = "E103" // value outside its enum
	ErrJoinColumnMismatch  = "E104" // left/right join column counts differ
	ErrNoSearchableColumn  = "E105" // indexing requested without any searchType
	ErrMissingParameter    = "E106" // parameterised function without parameter
	ErrUnexpectedParameter = "E107" // plain function given a parameter
	ErrDuplicateAlias      = "E108" // duplicate table alias or CTE name
	ErrInvalidLimit        = "E109" // limit neither "all" nor a positive integer
)

// ValidationError represents a structural validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// ValidationErrors is the collected result of Validate. A non-empty value
// is returned as an error by the compiler.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (errs ValidationErrors) Error() string {
	switch len(errs) {
	case 0:
		return "no validation errors"
	case 1:
		return errs[0].Error()
	}
	parts := make([]string, len(errs))
	for i, e := range errs {
		parts[i] = e.Error()
	}
	return fmt.Sprintf("%d validation errors: %s", len(errs), strings.Join(parts, "; "))
}

// Validate checks a statement against the structural rules.
// Returns all errors found (does not fail-fast).
func Validate(stmt Statement) ValidationErrors {
	v := &validator{}

	switch s := stmt.(type) {
	case CreateSearchCondition:
		v.validateView(s.View)
	case *CreateSearchCondition:
		v.validateView(s.View)
	case CreateSimpleSearchCondition:
		v.validateSimple(s)
	case *CreateSimpleSearchCondition:
		v.validateSimple(*s)
	case DropSearchCondition:
		v.require("name", s.Name)
	case *DropSearchCondition:
		v.require("name", s.Name)
	case CreateManyToMany:
		v.validateManyToMany(s)
	case *CreateManyToMany:
		v.validateManyToMany(*s)
	default:
		v.add("statement", ErrUnsupportedStatement, "unsupported statement type: %T", stmt)
	}

	return v.errs
}

// validator accumulates errors during traversal.
type validator struct {
	errs ValidationErrors
}

func (v *validator) add(field, code, format string, args ...any) {
	v.errs = append(v.errs, ValidationError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
		Code:    code,
	})
}

// require records E101 when value is blank.
func (v *validator) require(field, value string) {
	if strings.TrimSpace(value) == "" {
		v.add(field, ErrMissingName, "%s is required", lastSegment(field))
	}
}

func (v *validator) validateView(view ViewSpec) {
	v.require("name", view.Name)

	cteNames := make(map[string]bool)
	for i, cte := range view.CTEs {
		field := fmt.Sprintf("ctes[%d]", i)
		v.require(field+".name", cte.Name)
		if cte.Name != "" {
			if cteNames[cte.Name] {
				v.add(field+".name", ErrDuplicateAlias, "duplicate CTE name: %q", cte.Name)
			}
			cteNames[cte.Name] = true
		}
		v.validateQuery(field, cte.Tables, cte.Joins, cte.Where)
	}

	v.validateQuery("", view.Tables, view.Joins, view.Where)

	for i, cte := range view.CTEs {
		v.validateAliasesAgainstCTEs(fmt.Sprintf("ctes[%d]", i), cte.Tables, cteNames)
	}
	v.validateAliasesAgainstCTEs("", view.Tables, cteNames)

	if view.Indexing && !hasSearchableColumn(view) {
		v.add("indexing", ErrNoSearchableColumn, "indexing requires at least one column with a searchType")
	}

	v.validateLimit(view.Limit)
}

// validateQuery validates a table/join/where set shared by views and CTEs.
func (v *validator) validateQuery(prefix string, tables []TableSpec, joins []JoinSpec, where []ConditionSpec) {
	if len(tables) == 0 {
		v.add(join(prefix, "tables"), ErrMissingName, "at least one table is required")
	}

	aliases := make(map[string]bool)
	for i, table := range tables {
		field := join(prefix, fmt.Sprintf("tables[%d]", i))
		v.validateTable(field, table)

		alias := table.RenderAlias()
		if alias == "" {
			continue
		}
		if aliases[alias] {
			v.add(field+".alias", ErrDuplicateAlias, "duplicate table alias: %q", alias)
		}
		aliases[alias] = true
	}

	for i, j := range joins {
		v.validateJoin(join(prefix, fmt.Sprintf("joins[%d]", i)), j)
	}

	v.validateConditions(join(prefix, "where"), where)
}

// validateAliasesAgainstCTEs reports table aliases that shadow a CTE name.
// A table reading the CTE itself may use the CTE name as its alias.
func (v *validator) validateAliasesAgainstCTEs(prefix string, tables []TableSpec, cteNames map[string]bool) {
	for i, table := range tables {
		alias := table.RenderAlias()
		if alias == "" || alias == table.Name || !cteNames[alias] {
			continue
		}
		v.add(join(prefix, fmt.Sprintf("tables[%d].alias", i)), ErrDuplicateAlias,
			"table alias %q collides with CTE name", alias)
	}
}

func (v *validator) validateTable(field string, table TableSpec) {
	v.require(field+".name", table.Name)

	for i, col := range table.Columns {
		colField := fmt.Sprintf("%s.columns[%d]", field, i)
		v.require(colField+".name", col.Name)
		if !col.SearchType.Valid() {
			v.add(colField+".search_type", ErrInvalidValue,
				"invalid searchType %q, must be \"equal\", \"contains\" or \"startsWith\"", col.SearchType)
		}
		if !col.Sorting.Valid() {
			v.add(colField+".sorting", ErrInvalidValue,
				"invalid sorting %q, must be \"asc\" or \"desc\"", col.Sorting)
		}
	}

	for i, fn := range table.Functions {
		fnField := fmt.Sprintf("%s.functions[%d]", field, i)
		v.require(fnField+".name", fn.Name)
		v.require(fnField+".column_name", fn.ColumnName)
		if fn.Name == "" {
			continue
		}
		switch {
		case fn.RequiresParameter() && fn.Parameter == "":
			v.add(fnField+".parameter", ErrMissingParameter,
				"function %q requires a parameter", fn.Name)
		case !fn.RequiresParameter() && fn.Parameter != "":
			v.add(fnField+".parameter", ErrUnexpectedParameter,
				"function %q does not take a parameter", fn.Name)
		}
	}
}

func (v *validator) validateJoin(field string, j JoinSpec) {
	switch {
	case j.Type == "":
		v.add(field+".type", ErrMissingType, "join type is required")
	case !j.Type.Valid():
		v.add(field+".type", ErrInvalidValue, "invalid join type %q, must be \"inner\" or \"left\"", j.Type)
	}

	v.require(field+".left_alias", j.LeftAlias)
	v.require(field+".right_alias", j.RightAlias)

	if len(j.LeftColumns) == 0 || len(j.RightColumns) == 0 {
		v.add(field, ErrJoinColumnMismatch, "join requires at least one column on each side")
	} else if len(j.LeftColumns) != len(j.RightColumns) {
		v.add(field, ErrJoinColumnMismatch,
			"left columns (%d) and right columns (%d) must have the same length",
			len(j.LeftColumns), len(j.RightColumns))
	}

	v.validateConditions(field+".conditions", j.Conditions)
}

// validateConditions recursively validates a sibling list.
func (v *validator) validateConditions(field string, conds []ConditionSpec) {
	for i, c := range conds {
		condField := fmt.Sprintf("%s[%d]", field, i)
		v.require(condField+".table_alias", c.TableAlias)
		v.require(condField+".column_name", c.ColumnName)

		switch {
		case c.Operator == "":
			v.add(condField+".operator", ErrMissingType, "operator is required")
		case !c.Operator.Valid():
			v.add(condField+".operator", ErrInvalidValue, "invalid operator %q", c.Operator)
		case c.Operator == OpIsNull && c.Value != "true" && c.Value != "false":
			v.add(condField+".value", ErrInvalidValue,
				"isNull value must be \"true\" or \"false\", got %q", c.Value)
		}

		if !c.LogicOperator.Valid() {
			v.add(condField+".logic_operator", ErrInvalidValue,
				"invalid logicOperator %q, must be \"and\" or \"or\"", c.LogicOperator)
		}

		v.validateConditions(condField+".included", c.Included)
	}
}

func (v *validator) validateSimple(s CreateSimpleSearchCondition) {
	v.require("name", s.Name)
	v.require("table.name", s.Table.Name)
	v.require("search_column.name", s.SearchColumn.Name)
	if !s.SearchColumn.SearchType.Valid() {
		v.add("search_column.search_type", ErrInvalidValue,
			"invalid searchType %q, must be \"equal\", \"contains\" or \"startsWith\"", s.SearchColumn.SearchType)
	}
	if s.Indexing && s.SearchColumn.SearchType == SearchNone {
		v.add("indexing", ErrNoSearchableColumn, "indexing requires the search column to declare a searchType")
	}
	v.validateLimit(s.Limit)
}

func (v *validator) validateManyToMany(s CreateManyToMany) {
	v.require("main_table_name", s.MainTableName)
	v.require("main_table_key_field", s.MainTableKeyField)
	v.require("reference_table_name", s.ReferenceTableName)
	v.require("reference_keys_array", s.ReferenceKeysArray)
}

func (v *validator) validateLimit(limit string) {
	if limit == "" || limit == LimitAll {
		return
	}
	n, err := strconv.Atoi(limit)
	if err != nil || n <= 0 {
		v.add("limit", ErrInvalidLimit, "limit must be %q or a positive integer, got %q", LimitAll, limit)
	}
}

// hasSearchableColumn reports whether any column of the view, including
// columns inside CTEs, declares a searchType.
func hasSearchableColumn(view ViewSpec) bool {
	for _, cte := range view.CTEs {
		if tablesSearchable(cte.Tables) {
			return true
		}
	}
	return tablesSearchable(view.Tables)
}

func tablesSearchable(tables []TableSpec) bool {
	for _, t := range tables {
		for _, c := range t.Columns {
			if c.SearchType != SearchNone {
				return true
			}
		}
	}
	return false
}

func join(prefix, field string) string {
	if prefix == "" {
		return field
	}
	return prefix + "." + field
}

func lastSegment(field string) string {
	if i := strings.LastIndex(field, "."); i >= 0 {
		return field[i+1:]
	}
	return field
}

func normalizeFunctionName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
