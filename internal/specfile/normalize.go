package specfile

import (
	"golang.org/x/text/unicode/norm"

	"github.com/epam/edp-ddm-liquibase-ddm-ext-sub001/internal/viewspec"
)

// normalizeStatement puts every identifier of stmt in Unicode NFC so that
// visually equal names compare, dedup and hash equal. Condition values and
// function parameters are SQL text and are left untouched.
func normalizeStatement(stmt viewspec.Statement) viewspec.Statement {
	switch s := stmt.(type) {
	case viewspec.CreateSearchCondition:
		s.View = normalizeView(s.View)
		return s
	case viewspec.CreateSimpleSearchCondition:
		s.Name = nfc(s.Name)
		s.Table = normalizeTable(s.Table)
		s.SearchColumn = normalizeColumn(s.SearchColumn)
		return s
	case viewspec.DropSearchCondition:
		s.Name = nfc(s.Name)
		return s
	case viewspec.CreateManyToMany:
		s.MainTableName = nfc(s.MainTableName)
		s.MainTableKeyField = nfc(s.MainTableKeyField)
		s.ReferenceTableName = nfc(s.ReferenceTableName)
		s.ReferenceKeysArray = nfc(s.ReferenceKeysArray)
		return s
	default:
		return stmt
	}
}

func normalizeView(v viewspec.ViewSpec) viewspec.ViewSpec {
	v.Name = nfc(v.Name)
	for i := range v.CTEs {
		v.CTEs[i].Name = nfc(v.CTEs[i].Name)
		normalizeQuery(v.CTEs[i].Tables, v.CTEs[i].Joins, v.CTEs[i].Where)
	}
	normalizeQuery(v.Tables, v.Joins, v.Where)
	return v
}

// normalizeQuery rewrites the slices in place.
func normalizeQuery(tables []viewspec.TableSpec, joins []viewspec.JoinSpec, where []viewspec.ConditionSpec) {
	for i := range tables {
		tables[i] = normalizeTable(tables[i])
	}
	for i := range joins {
		j := &joins[i]
		j.LeftAlias = nfc(j.LeftAlias)
		j.RightAlias = nfc(j.RightAlias)
		for k := range j.LeftColumns {
			j.LeftColumns[k] = nfc(j.LeftColumns[k])
		}
		for k := range j.RightColumns {
			j.RightColumns[k] = nfc(j.RightColumns[k])
		}
		normalizeConditions(j.Conditions)
	}
	normalizeConditions(where)
}

func normalizeTable(t viewspec.TableSpec) viewspec.TableSpec {
	t.Name = nfc(t.Name)
	t.Alias = nfc(t.Alias)
	for i := range t.Columns {
		t.Columns[i] = normalizeColumn(t.Columns[i])
	}
	for i := range t.Functions {
		fn := &t.Functions[i]
		fn.TableAlias = nfc(fn.TableAlias)
		fn.ColumnName = nfc(fn.ColumnName)
		fn.Alias = nfc(fn.Alias)
	}
	return t
}

func normalizeColumn(c viewspec.ColumnSpec) viewspec.ColumnSpec {
	c.Name = nfc(c.Name)
	c.Alias = nfc(c.Alias)
	return c
}

func normalizeConditions(conds []viewspec.ConditionSpec) {
	for i := range conds {
		conds[i].TableAlias = nfc(conds[i].TableAlias)
		conds[i].ColumnName = nfc(conds[i].ColumnName)
		normalizeConditions(conds[i].Included)
	}
}

func nfc(s string) string {
	return norm.NFC.String(s)
}
