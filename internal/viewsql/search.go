package viewsql

import (
	"fmt"
	"sort"
	"strings"

	"github.com/epam/edp-ddm-liquibase-ddm-ext-sub001/internal/viewspec"
)

// searchColumn is a column of a compiled view that accepts search values.
type searchColumn struct {
	name   string
	search viewspec.SearchType
}

// SearchQuery builds the parameterized read query a service runs against a
// compiled search condition view.
// Returns (sql, params, error) tuple.
//
//	equal      name = $1
//	contains   name LIKE '%' || $1 || '%'
//	startsWith name LIKE $1 || '%'
//
// Values are keyed by the exposed column name. Predicates follow column
// declaration order; columns without a value are not constrained. All
// values are parameterized, never interpolated.
func (c *Compiler) SearchQuery(view viewspec.ViewSpec, values map[string]any) (string, []any, error) {
	columns := searchColumns(view)

	known := make(map[string]bool, len(columns))
	for _, col := range columns {
		known[col.name] = true
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !known[k] {
			return "", nil, ErrUnknownSearchColumn.New(k, view.Name)
		}
	}

	var preds []string
	var params []any
	for _, col := range columns {
		v, ok := values[col.name]
		if !ok {
			continue
		}
		params = append(params, v)
		preds = append(preds, searchPredicate(col, len(params)))
	}

	var sb strings.Builder
	sb.WriteString("SELECT * FROM ")
	sb.WriteString(c.viewName(view.Name))
	if len(preds) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(preds, " AND "))
	}
	if order := exposedOrder(view); len(order) > 0 {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(order, ", "))
	}
	if view.HasLimit() {
		sb.WriteString(" LIMIT ")
		sb.WriteString(view.Limit)
	}

	return sb.String(), params, nil
}

// searchColumns lists the returned main-query columns declaring a searchType.
func searchColumns(view viewspec.ViewSpec) []searchColumn {
	var cols []searchColumn
	for _, table := range view.Tables {
		for _, col := range table.Columns {
			if col.SearchType == viewspec.SearchNone || !col.IsReturning() {
				continue
			}
			cols = append(cols, searchColumn{name: col.ExposedName(), search: col.SearchType})
		}
	}
	return cols
}

func searchPredicate(col searchColumn, n int) string {
	switch col.search {
	case viewspec.SearchContains:
		return fmt.Sprintf("%s LIKE '%%' || $%d || '%%'", col.name, n)
	case viewspec.SearchStartsWith:
		return fmt.Sprintf("%s LIKE $%d || '%%'", col.name, n)
	default:
		return fmt.Sprintf("%s = $%d", col.name, n)
	}
}

// exposedOrder repeats the view's ordering in terms of its exposed columns.
func exposedOrder(view viewspec.ViewSpec) []string {
	var order []string
	for _, table := range view.Tables {
		for _, col := range table.Columns {
			if col.Sorting == viewspec.SortNone || !col.IsReturning() {
				continue
			}
			order = append(order, col.ExposedName()+" "+strings.ToUpper(string(col.Sorting)))
		}
	}
	return order
}
