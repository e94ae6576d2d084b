package viewsql

import (
	"strings"

	"github.com/epam/edp-ddm-liquibase-ddm-ext-sub001/internal/viewspec"
)

// fromClause renders the FROM clause with its join chain.
//
//	FROM table1 AS t1 INNER JOIN table2 AS t2 ON (t1.c1 = t2.c2) AND (t1.d1 = t2.d2)
//
// The root is the left table of the first join, or the first declared
// table when there are no joins. Every join must introduce exactly one new
// table. Tables that take part in no join follow the chain, comma separated.
func fromClause(tables []viewspec.TableSpec, joins []viewspec.JoinSpec, s scope) (string, error) {
	var sb strings.Builder
	sb.WriteString("FROM ")

	joined := make(map[string]bool)

	root := tables[0]
	if len(joins) > 0 {
		var err error
		root, err = s.lookup(joins[0].LeftAlias)
		if err != nil {
			return "", err
		}
	}
	sb.WriteString(tableRef(root))
	joined[root.RenderAlias()] = true

	for i, j := range joins {
		left, err := s.lookup(j.LeftAlias)
		if err != nil {
			return "", err
		}
		right, err := s.lookup(j.RightAlias)
		if err != nil {
			return "", err
		}

		var introduced viewspec.TableSpec
		switch {
		case joined[j.LeftAlias] && !joined[j.RightAlias]:
			introduced = right
		case joined[j.RightAlias] && !joined[j.LeftAlias]:
			introduced = left
		case joined[j.LeftAlias] && joined[j.RightAlias]:
			return "", ErrRedundantJoin.New(i, j.LeftAlias, j.RightAlias)
		default:
			return "", ErrDisconnectedJoin.New(i, j.LeftAlias, j.RightAlias)
		}
		joined[introduced.RenderAlias()] = true

		on, err := joinPredicate(j, s)
		if err != nil {
			return "", err
		}

		sb.WriteString(" ")
		sb.WriteString(joinKeyword(j.Type))
		sb.WriteString(" ")
		sb.WriteString(tableRef(introduced))
		sb.WriteString(" ON ")
		sb.WriteString(on)
	}

	for _, t := range tables {
		if joined[t.RenderAlias()] {
			continue
		}
		sb.WriteString(", ")
		sb.WriteString(tableRef(t))
	}

	return sb.String(), nil
}

// joinPredicate renders the positional column equalities followed by the
// join's extra conditions. The equality clause is the first sibling, so each
// extra is joined to the clause before it by its own logic operator.
//
//	(l.a = r.b) AND (l.c = r.d) OR (r.x = 1)
func joinPredicate(j viewspec.JoinSpec, s scope) (string, error) {
	parts := make([]string, len(j.LeftColumns))
	for i := range j.LeftColumns {
		parts[i] = "(" + j.LeftAlias + "." + j.LeftColumns[i] + " = " + j.RightAlias + "." + j.RightColumns[i] + ")"
	}

	var sb strings.Builder
	sb.WriteString(strings.Join(parts, " AND "))
	for _, cond := range j.Conditions {
		clause, err := renderCondition(cond, s)
		if err != nil {
			return "", err
		}
		sb.WriteString(" ")
		sb.WriteString(logicKeyword(cond.LogicOperator))
		sb.WriteString(" ")
		sb.WriteString(clause)
	}
	return sb.String(), nil
}

// tableRef renders "name" or "name AS alias".
func tableRef(t viewspec.TableSpec) string {
	if t.Alias == "" || t.Alias == t.Name {
		return t.Name
	}
	return t.Name + " AS " + t.Alias
}

func joinKeyword(t viewspec.JoinType) string {
	if t == viewspec.JoinLeft {
		return "LEFT JOIN"
	}
	return "INNER JOIN"
}
