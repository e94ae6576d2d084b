package viewsql

import (
	"strings"

	"github.com/epam/edp-ddm-liquibase-ddm-ext-sub001/internal/viewspec"
)

// projection holds the column-derived clauses of one query.
type projection struct {
	selects []string // SELECT list, in declaration order
	groupBy []string // non-function columns of tables carrying functions
	orderBy []string // "alias.column ASC|DESC"
}

// project computes the SELECT list, GROUP BY and ORDER BY items.
//
// Order follows table declaration order, then column declaration order,
// then function declaration order within each table.
func project(tables []viewspec.TableSpec, s scope) (projection, error) {
	var p projection

	for _, table := range tables {
		alias := table.RenderAlias()

		var returned []string
		for _, col := range table.Columns {
			ref := alias + "." + col.Name
			if col.IsReturning() {
				p.selects = append(p.selects, selectItem(ref, col.Name, col.Alias))
				returned = append(returned, ref)
			}
			if col.Sorting != viewspec.SortNone {
				p.orderBy = append(p.orderBy, ref+" "+strings.ToUpper(string(col.Sorting)))
			}
		}

		for _, fn := range table.Functions {
			item, err := functionItem(fn, alias, s)
			if err != nil {
				return projection{}, err
			}
			p.selects = append(p.selects, item)
		}

		if len(table.Functions) > 0 {
			p.groupBy = append(p.groupBy, returned...)
		}
	}

	return p, nil
}

// selectItem renders "ref" or "ref AS alias". AS is only emitted when the
// alias differs from the source name.
func selectItem(ref, name, alias string) string {
	if alias == "" || alias == name {
		return ref
	}
	return ref + " AS " + alias
}

// functionItem renders "FUNC(alias.column[, parameter])[ AS alias]".
// Functions without a table alias apply to the owning table.
func functionItem(fn viewspec.FunctionSpec, ownerAlias string, s scope) (string, error) {
	tableAlias := fn.TableAlias
	if tableAlias == "" {
		tableAlias = ownerAlias
	}
	if _, err := s.lookup(tableAlias); err != nil {
		return "", err
	}

	arg := tableAlias + "." + fn.ColumnName
	if fn.ColumnName == "*" {
		arg = "*"
	}
	if fn.Parameter != "" {
		arg += ", " + fn.Parameter
	}

	item := strings.ToUpper(strings.TrimSpace(fn.Name)) + "(" + arg + ")"
	if fn.Alias != "" {
		item += " AS " + fn.Alias
	}
	return item, nil
}
