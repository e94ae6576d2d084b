package specfile

import (
	"fmt"
	"slices"
	"strconv"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/epam/edp-ddm-liquibase-ddm-ext-sub001/internal/viewspec"
)

// cueDecoder decodes one labelled statement entry.
type cueDecoder func(name string, v cue.Value, path string) (viewspec.Statement, error)

// cueKinds maps top-level CUE keys to their decoders.
var cueKinds = map[string]cueDecoder{
	"searchCondition":       decodeCUESearchCondition,
	"simpleSearchCondition": decodeCUESimpleSearchCondition,
	"dropSearchCondition":   decodeCUEDropSearchCondition,
	"manyToMany":            decodeCUEManyToMany,
}

// LoadCUEBytes compiles CUE source and decodes its statements.
// filename is used for error positions.
func LoadCUEBytes(filename string, src []byte) ([]viewspec.Statement, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err, ErrCodeParseFailed)
	}
	return LoadCUE(v)
}

// LoadCUE decodes statements from a CUE value.
//
// The value is a struct keyed by statement kind; each kind holds a struct
// of statements labelled by name:
//
//	searchCondition: person_search: {
//		indexing: true
//		table: [{name: "person", alias: "p", column: [{name: "last_name", searchType: "startsWith"}]}]
//	}
//	dropSearchCondition: old_search: {}
//
// Statements are returned in declaration order.
func LoadCUE(v cue.Value) ([]viewspec.Statement, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err, ErrCodeParseFailed)
	}

	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err, ErrCodeWrongType)
	}

	var stmts []viewspec.Statement
	for iter.Next() {
		kind := iter.Label()
		decode, ok := cueKinds[kind]
		if !ok {
			return nil, atPos(ErrCodeUnknownKey, kind,
				fmt.Sprintf("unknown statement kind %q", kind), iter.Value().Pos())
		}

		entries, err := iter.Value().Fields()
		if err != nil {
			return nil, formatCUEError(err, ErrCodeWrongType)
		}
		for entries.Next() {
			name := entries.Label()
			stmt, err := decode(name, entries.Value(), kind+"."+name)
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, normalizeStatement(stmt))
		}
	}
	return stmts, nil
}

func decodeCUESearchCondition(name string, v cue.Value, path string) (viewspec.Statement, error) {
	view := viewspec.ViewSpec{Name: name}

	if err := cueKnownFields(v, path, "indexing", "limit", "cte", "table", "join", "where"); err != nil {
		return nil, err
	}
	var err error
	if view.Indexing, err = cueBool(v, "indexing", path); err != nil {
		return nil, err
	}
	if view.Limit, err = cueLimit(v, "limit", path); err != nil {
		return nil, err
	}

	err = cueList(v, "cte", path, func(item cue.Value, itemPath string) error {
		cte, err := decodeCUECTE(item, itemPath)
		if err != nil {
			return err
		}
		view.CTEs = append(view.CTEs, cte)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if view.Tables, view.Joins, view.Where, err = decodeCUEQuery(v, path); err != nil {
		return nil, err
	}
	return viewspec.CreateSearchCondition{View: view}, nil
}

func decodeCUECTE(v cue.Value, path string) (viewspec.CTESpec, error) {
	var cte viewspec.CTESpec
	if err := cueKnownFields(v, path, "name", "table", "join", "where"); err != nil {
		return cte, err
	}
	var err error
	if cte.Name, err = cueString(v, "name", path); err != nil {
		return cte, err
	}
	cte.Tables, cte.Joins, cte.Where, err = decodeCUEQuery(v, path)
	return cte, err
}

// decodeCUEQuery decodes the table/join/where lists shared by views and CTEs.
func decodeCUEQuery(v cue.Value, path string) ([]viewspec.TableSpec, []viewspec.JoinSpec, []viewspec.ConditionSpec, error) {
	var tables []viewspec.TableSpec
	err := cueList(v, "table", path, func(item cue.Value, itemPath string) error {
		table, err := decodeCUETable(item, itemPath)
		if err != nil {
			return err
		}
		tables = append(tables, table)
		return nil
	})
	if err != nil {
		return nil, nil, nil, err
	}

	var joins []viewspec.JoinSpec
	err = cueList(v, "join", path, func(item cue.Value, itemPath string) error {
		j, err := decodeCUEJoin(item, itemPath)
		if err != nil {
			return err
		}
		joins = append(joins, j)
		return nil
	})
	if err != nil {
		return nil, nil, nil, err
	}

	where, err := decodeCUEConditions(v, "where", path)
	if err != nil {
		return nil, nil, nil, err
	}
	return tables, joins, where, nil
}

func decodeCUETable(v cue.Value, path string) (viewspec.TableSpec, error) {
	var table viewspec.TableSpec
	if err := cueKnownFields(v, path, "name", "alias", "column", "function"); err != nil {
		return table, err
	}
	var err error
	if table.Name, err = cueString(v, "name", path); err != nil {
		return table, err
	}
	if table.Alias, err = cueString(v, "alias", path); err != nil {
		return table, err
	}

	err = cueList(v, "column", path, func(item cue.Value, itemPath string) error {
		col, err := decodeCUEColumn(item, itemPath)
		if err != nil {
			return err
		}
		table.Columns = append(table.Columns, col)
		return nil
	})
	if err != nil {
		return table, err
	}

	err = cueList(v, "function", path, func(item cue.Value, itemPath string) error {
		var fn viewspec.FunctionSpec
		if err := cueKnownFields(item, itemPath, "name", "tableAlias", "columnName", "alias", "parameter"); err != nil {
			return err
		}
		var err error
		if fn.Name, err = cueString(item, "name", itemPath); err != nil {
			return err
		}
		if fn.TableAlias, err = cueString(item, "tableAlias", itemPath); err != nil {
			return err
		}
		if fn.ColumnName, err = cueString(item, "columnName", itemPath); err != nil {
			return err
		}
		if fn.Alias, err = cueString(item, "alias", itemPath); err != nil {
			return err
		}
		if fn.Parameter, err = cueString(item, "parameter", itemPath); err != nil {
			return err
		}
		table.Functions = append(table.Functions, fn)
		return nil
	})
	return table, err
}

func decodeCUEColumn(v cue.Value, path string) (viewspec.ColumnSpec, error) {
	var col viewspec.ColumnSpec
	if err := cueKnownFields(v, path, "name", "alias", "type", "searchType", "sorting", "returning"); err != nil {
		return col, err
	}
	var err error
	if col.Name, err = cueString(v, "name", path); err != nil {
		return col, err
	}
	if col.Alias, err = cueString(v, "alias", path); err != nil {
		return col, err
	}
	if col.Type, err = cueString(v, "type", path); err != nil {
		return col, err
	}

	var s string
	if s, err = cueString(v, "searchType", path); err != nil {
		return col, err
	}
	col.SearchType = viewspec.SearchType(s)
	if s, err = cueString(v, "sorting", path); err != nil {
		return col, err
	}
	col.Sorting = viewspec.Sorting(s)

	if f := v.LookupPath(cue.ParsePath("returning")); f.Exists() {
		b, err := f.Bool()
		if err != nil {
			return col, wrongType(path+".returning", "bool", f)
		}
		col.Returning = viewspec.Bool(b)
	}
	return col, nil
}

func decodeCUEJoin(v cue.Value, path string) (viewspec.JoinSpec, error) {
	var j viewspec.JoinSpec
	if err := cueKnownFields(v, path, "type", "leftAlias", "leftColumns", "rightAlias", "rightColumns", "condition"); err != nil {
		return j, err
	}
	var err error

	var s string
	if s, err = cueString(v, "type", path); err != nil {
		return j, err
	}
	j.Type = viewspec.JoinType(s)
	if j.LeftAlias, err = cueString(v, "leftAlias", path); err != nil {
		return j, err
	}
	if j.LeftColumns, err = cueStrings(v, "leftColumns", path); err != nil {
		return j, err
	}
	if j.RightAlias, err = cueString(v, "rightAlias", path); err != nil {
		return j, err
	}
	if j.RightColumns, err = cueStrings(v, "rightColumns", path); err != nil {
		return j, err
	}
	j.Conditions, err = decodeCUEConditions(v, "condition", path)
	return j, err
}

// decodeCUEConditions decodes a condition list and its included sub-trees.
func decodeCUEConditions(v cue.Value, field, path string) ([]viewspec.ConditionSpec, error) {
	var conds []viewspec.ConditionSpec
	err := cueList(v, field, path, func(item cue.Value, itemPath string) error {
		var c viewspec.ConditionSpec
		if err := cueKnownFields(item, itemPath, "tableAlias", "columnName", "operator", "value", "logicOperator", "included"); err != nil {
			return err
		}
		var err error
		if c.TableAlias, err = cueString(item, "tableAlias", itemPath); err != nil {
			return err
		}
		if c.ColumnName, err = cueString(item, "columnName", itemPath); err != nil {
			return err
		}
		var s string
		if s, err = cueString(item, "operator", itemPath); err != nil {
			return err
		}
		c.Operator = viewspec.Operator(s)
		if c.Value, err = cueScalar(item, "value", itemPath); err != nil {
			return err
		}
		if s, err = cueString(item, "logicOperator", itemPath); err != nil {
			return err
		}
		c.LogicOperator = viewspec.LogicOperator(s)
		if c.Included, err = decodeCUEConditions(item, "included", itemPath); err != nil {
			return err
		}
		conds = append(conds, c)
		return nil
	})
	return conds, err
}

func decodeCUESimpleSearchCondition(name string, v cue.Value, path string) (viewspec.Statement, error) {
	s := viewspec.CreateSimpleSearchCondition{Name: name}
	if err := cueKnownFields(v, path, "table", "searchColumn", "indexing", "limit"); err != nil {
		return nil, err
	}
	var err error

	if f := v.LookupPath(cue.ParsePath("table")); f.Exists() {
		if err := cueKnownFields(f, path+".table", "name", "alias"); err != nil {
			return nil, err
		}
		if s.Table.Name, err = cueString(f, "name", path+".table"); err != nil {
			return nil, err
		}
		if s.Table.Alias, err = cueString(f, "alias", path+".table"); err != nil {
			return nil, err
		}
	}
	if f := v.LookupPath(cue.ParsePath("searchColumn")); f.Exists() {
		if s.SearchColumn, err = decodeCUEColumn(f, path+".searchColumn"); err != nil {
			return nil, err
		}
	}
	if s.Indexing, err = cueBool(v, "indexing", path); err != nil {
		return nil, err
	}
	if s.Limit, err = cueLimit(v, "limit", path); err != nil {
		return nil, err
	}
	return s, nil
}

func decodeCUEDropSearchCondition(name string, v cue.Value, path string) (viewspec.Statement, error) {
	if err := cueKnownFields(v, path); err != nil {
		return nil, err
	}
	return viewspec.DropSearchCondition{Name: name}, nil
}

// decodeCUEManyToMany ignores the entry label; the relation is named after
// its tables.
func decodeCUEManyToMany(_ string, v cue.Value, path string) (viewspec.Statement, error) {
	var s viewspec.CreateManyToMany
	if err := cueKnownFields(v, path, "mainTableName", "mainTableKeyField", "referenceTableName", "referenceKeysArray"); err != nil {
		return nil, err
	}
	var err error
	if s.MainTableName, err = cueString(v, "mainTableName", path); err != nil {
		return nil, err
	}
	if s.MainTableKeyField, err = cueString(v, "mainTableKeyField", path); err != nil {
		return nil, err
	}
	if s.ReferenceTableName, err = cueString(v, "referenceTableName", path); err != nil {
		return nil, err
	}
	if s.ReferenceKeysArray, err = cueString(v, "referenceKeysArray", path); err != nil {
		return nil, err
	}
	return s, nil
}

// cueKnownFields rejects fields of struct v not listed in known.
func cueKnownFields(v cue.Value, path string, known ...string) error {
	iter, err := v.Fields()
	if err != nil {
		return wrongType(path, "struct", v)
	}
	for iter.Next() {
		label := iter.Label()
		if !slices.Contains(known, label) {
			return atPos(ErrCodeUnknownKey, path+"."+label,
				fmt.Sprintf("unknown field %q", label), iter.Value().Pos())
		}
	}
	return nil
}

// cueString returns an optional string field; missing fields are "".
func cueString(v cue.Value, field, path string) (string, error) {
	f := v.LookupPath(cue.ParsePath(field))
	if !f.Exists() {
		return "", nil
	}
	s, err := f.String()
	if err != nil {
		return "", wrongType(path+"."+field, "string", f)
	}
	return s, nil
}

// cueScalar returns a string, number or bool field as text.
func cueScalar(v cue.Value, field, path string) (string, error) {
	f := v.LookupPath(cue.ParsePath(field))
	if !f.Exists() {
		return "", nil
	}
	switch f.IncompleteKind() {
	case cue.StringKind:
		return f.String()
	case cue.IntKind:
		n, err := f.Int64()
		if err != nil {
			return "", formatCUEError(err, ErrCodeWrongType)
		}
		return strconv.FormatInt(n, 10), nil
	case cue.BoolKind:
		b, err := f.Bool()
		if err != nil {
			return "", formatCUEError(err, ErrCodeWrongType)
		}
		return strconv.FormatBool(b), nil
	default:
		return "", wrongType(path+"."+field, "string, int or bool", f)
	}
}

// cueLimit accepts "all", a positive integer or a numeric string.
func cueLimit(v cue.Value, field, path string) (string, error) {
	f := v.LookupPath(cue.ParsePath(field))
	if !f.Exists() {
		return "", nil
	}
	switch f.IncompleteKind() {
	case cue.IntKind, cue.StringKind:
		return cueScalar(v, field, path)
	default:
		return "", wrongType(path+"."+field, "int or \"all\"", f)
	}
}

func cueBool(v cue.Value, field, path string) (bool, error) {
	f := v.LookupPath(cue.ParsePath(field))
	if !f.Exists() {
		return false, nil
	}
	b, err := f.Bool()
	if err != nil {
		return false, wrongType(path+"."+field, "bool", f)
	}
	return b, nil
}

func cueStrings(v cue.Value, field, path string) ([]string, error) {
	var out []string
	err := cueList(v, field, path, func(item cue.Value, itemPath string) error {
		s, err := item.String()
		if err != nil {
			return wrongType(itemPath, "string", item)
		}
		out = append(out, s)
		return nil
	})
	return out, err
}

// cueList calls fn for each element of an optional list field.
func cueList(v cue.Value, field, path string, fn func(item cue.Value, itemPath string) error) error {
	f := v.LookupPath(cue.ParsePath(field))
	if !f.Exists() {
		return nil
	}
	if f.IncompleteKind() != cue.ListKind {
		return wrongType(path+"."+field, "list", f)
	}

	iter, err := f.List()
	if err != nil {
		return formatCUEError(err, ErrCodeWrongType)
	}
	for i := 0; iter.Next(); i++ {
		if err := fn(iter.Value(), fmt.Sprintf("%s.%s[%d]", path, field, i)); err != nil {
			return err
		}
	}
	return nil
}

func wrongType(field, want string, v cue.Value) *LoadError {
	return atPos(ErrCodeWrongType, field,
		fmt.Sprintf("expected %s, got %s", want, v.IncompleteKind()), v.Pos())
}
