package viewsql

import (
	"strings"

	"github.com/epam/edp-ddm-liquibase-ddm-ext-sub001/internal/viewspec"
)

// origin is the physical source of a column exposed by a CTE.
type origin struct {
	Table    string
	Column   string
	Type     string
	Function string // aggregate that computes the column; empty for plain columns
}

// computed reports whether the column is an aggregate output.
func (o origin) computed() bool {
	return o.Function != ""
}

// resolver maps columns exposed by CTEs back to the physical columns they
// read. It is built once per view, before any rendering, in CTE
// declaration order so that a CTE may read an earlier one.
type resolver struct {
	ctes     map[string]map[string]origin
	declared map[string]bool
}

func newResolver(ctes []viewspec.CTESpec) (*resolver, error) {
	r := &resolver{
		ctes:     make(map[string]map[string]origin, len(ctes)),
		declared: make(map[string]bool, len(ctes)),
	}
	for _, cte := range ctes {
		r.declared[cte.Name] = true
	}
	for _, cte := range ctes {
		if err := r.expose(cte); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// expose records the columns cte makes visible under their exposed names.
// A table named like the CTE itself is physical; a table named like a later
// CTE is a forward reference.
func (r *resolver) expose(cte viewspec.CTESpec) error {
	exposed := make(map[string]origin)

	for _, table := range cte.Tables {
		if table.Name != cte.Name && r.declared[table.Name] && !r.isCTE(table.Name) {
			return ErrForwardCTEReference.New(cte.Name, table.Name)
		}
		for _, col := range table.Columns {
			if !col.IsReturning() {
				continue
			}
			o, err := r.resolve(table.Name, col.Name)
			if err != nil {
				return err
			}
			if col.Type != "" {
				o.Type = col.Type
			}
			exposed[col.ExposedName()] = o
		}

		for _, fn := range table.Functions {
			if fn.Alias == "" {
				continue
			}
			exposed[fn.Alias] = origin{
				Table:    table.Name,
				Column:   fn.ColumnName,
				Function: strings.ToUpper(strings.TrimSpace(fn.Name)),
			}
		}
	}

	r.ctes[cte.Name] = exposed
	return nil
}

// isCTE reports whether name refers to a CTE rather than a physical table.
func (r *resolver) isCTE(name string) bool {
	_, ok := r.ctes[name]
	return ok
}

// resolve returns the origin of column read from table. Columns of
// physical tables resolve to themselves.
func (r *resolver) resolve(table, column string) (origin, error) {
	exposed, ok := r.ctes[table]
	if !ok {
		return origin{Table: table, Column: column}, nil
	}
	o, ok := exposed[column]
	if !ok {
		return origin{}, ErrUnknownCTEColumn.New(column, table)
	}
	return o, nil
}

// check verifies that every column a main table reads from a CTE is
// exposed by that CTE.
func (r *resolver) check(tables []viewspec.TableSpec) error {
	for _, table := range tables {
		if !r.isCTE(table.Name) {
			continue
		}
		for _, col := range table.Columns {
			if _, err := r.resolve(table.Name, col.Name); err != nil {
				return err
			}
		}
	}
	return nil
}

// renderWith renders "WITH a AS (...), b AS (...)".
func renderWith(ctes []viewspec.CTESpec) (string, error) {
	parts := make([]string, len(ctes))
	for i, cte := range ctes {
		body, err := renderQuery(cte.Tables, cte.Joins, cte.Where)
		if err != nil {
			return "", err
		}
		parts[i] = cte.Name + " AS (" + body + ")"
	}
	return "WITH " + strings.Join(parts, ", "), nil
}
