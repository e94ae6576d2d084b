package viewsql

import (
	"strings"

	"github.com/epam/edp-ddm-liquibase-ddm-ext-sub001/internal/viewspec"
)

// indexKey identifies a physical column. At most one index is emitted per key.
type indexKey struct {
	table  string
	column string
}

// planIndexes emits one CREATE INDEX statement per distinct physical column
// declaring a searchType. Main tables are walked first (columns read from
// CTEs resolve to their physical origin), then the tables inside CTEs.
func planIndexes(view viewspec.ViewSpec, r *resolver) ([]string, error) {
	seen := make(map[indexKey]bool)
	var stmts []string

	walk := func(tables []viewspec.TableSpec) error {
		for _, table := range tables {
			for _, col := range table.Columns {
				if col.SearchType == viewspec.SearchNone {
					continue
				}
				o, err := r.resolve(table.Name, col.Name)
				if err != nil {
					return err
				}
				if o.computed() {
					return ErrComputedColumn.New(col.Name, table.Name, o.Function)
				}

				key := indexKey{table: o.Table, column: o.Column}
				if seen[key] {
					continue
				}
				seen[key] = true

				typ := col.Type
				if typ == "" {
					typ = o.Type
				}
				stmts = append(stmts, createIndex(o.Table, o.Column, typ, col.SearchType))
			}
		}
		return nil
	}

	if err := walk(view.Tables); err != nil {
		return nil, err
	}
	for _, cte := range view.CTEs {
		if err := walk(cte.Tables); err != nil {
			return nil, err
		}
	}
	return stmts, nil
}

// indexName returns ix_<table>__<column>.
func indexName(table, column string) string {
	return "ix_" + table + "__" + column
}

// createIndex renders the search index for one column.
//
//	equal      CREATE INDEX IF NOT EXISTS ix_t__c ON t (c);
//	contains   CREATE INDEX IF NOT EXISTS ix_t__c ON t USING GIN (c gin_trgm_ops);
//	startsWith CREATE INDEX IF NOT EXISTS ix_t__c ON t (c text_pattern_ops);
func createIndex(table, column, typ string, search viewspec.SearchType) string {
	var form string
	switch search {
	case viewspec.SearchContains:
		form = "USING GIN (" + column + " gin_trgm_ops)"
	case viewspec.SearchStartsWith:
		form = "(" + column + " " + patternOps(typ) + ")"
	default:
		form = "(" + column + ")"
	}
	return "CREATE INDEX IF NOT EXISTS " + indexName(table, column) + " ON " + table + " " + form + ";"
}

// patternOps picks the operator class for prefix searches from the column
// type. Unknown and unset types use text_pattern_ops.
func patternOps(typ string) string {
	switch typeCategory(typ) {
	case "char":
		return "bpchar_pattern_ops"
	case "varchar":
		return "varchar_pattern_ops"
	default:
		return "text_pattern_ops"
	}
}

// typeCategory lowercases typ and strips any length modifier:
// "VARCHAR(255)" → "varchar".
func typeCategory(typ string) string {
	t := strings.ToLower(strings.TrimSpace(typ))
	if i := strings.IndexByte(t, '('); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	switch t {
	case "char", "character", "bpchar":
		return "char"
	case "varchar", "character varying":
		return "varchar"
	case "", "text":
		return "text"
	default:
		return "other"
	}
}
