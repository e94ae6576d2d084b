package viewsql

import (
	"fmt"
	"strings"

	"github.com/epam/edp-ddm-liquibase-ddm-ext-sub001/internal/viewspec"
)

// scope maps the aliases visible in one query to their tables.
type scope map[string]viewspec.TableSpec

func newScope(tables []viewspec.TableSpec) scope {
	s := make(scope, len(tables))
	for _, t := range tables {
		s[t.RenderAlias()] = t
	}
	return s
}

// lookup returns the table declared under alias.
func (s scope) lookup(alias string) (viewspec.TableSpec, error) {
	t, ok := s[alias]
	if !ok {
		return viewspec.TableSpec{}, ErrUnknownAlias.New(alias)
	}
	return t, nil
}

// renderConditions renders a sibling list of conditions.
//
// The logic operator of item i (i >= 1) joins item i-1 to item i; the
// operator of the first item is never emitted.
//
//	[a, OR b, AND c] → (a) OR (b) AND (c)
func renderConditions(conds []viewspec.ConditionSpec, s scope) (string, error) {
	var sb strings.Builder
	for i, cond := range conds {
		clause, err := renderCondition(cond, s)
		if err != nil {
			return "", err
		}
		if i > 0 {
			sb.WriteString(" ")
			sb.WriteString(logicKeyword(cond.LogicOperator))
			sb.WriteString(" ")
		}
		sb.WriteString(clause)
	}
	return sb.String(), nil
}

// renderCondition renders one node. A node with an included sub-tree
// becomes a single compound clause combining the leaf and the sub-tree with
// the node's own logic operator:
//
//	((leaf) OR ((inc1) AND (inc2)))
func renderCondition(cond viewspec.ConditionSpec, s scope) (string, error) {
	leaf, err := renderLeaf(cond, s)
	if err != nil {
		return "", err
	}
	if len(cond.Included) == 0 {
		return leaf, nil
	}

	included, err := renderConditions(cond.Included, s)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("(%s %s (%s))", leaf, logicKeyword(cond.LogicOperator), included), nil
}

// renderLeaf renders "(alias.column OP value)".
func renderLeaf(cond viewspec.ConditionSpec, s scope) (string, error) {
	if _, err := s.lookup(cond.TableAlias); err != nil {
		return "", err
	}
	column := cond.TableAlias + "." + cond.ColumnName

	switch cond.Operator {
	case viewspec.OpEq:
		return binary(column, "=", cond.Value), nil
	case viewspec.OpNe:
		return binary(column, "<>", cond.Value), nil
	case viewspec.OpGt:
		return binary(column, ">", cond.Value), nil
	case viewspec.OpGe:
		return binary(column, ">=", cond.Value), nil
	case viewspec.OpLt:
		return binary(column, "<", cond.Value), nil
	case viewspec.OpLe:
		return binary(column, "<=", cond.Value), nil
	case viewspec.OpSimilar:
		return binary(column, "~", cond.Value), nil
	case viewspec.OpLike:
		return binary(column, "LIKE", cond.Value), nil
	case viewspec.OpIn:
		return fmt.Sprintf("(%s IN (%s))", column, cond.Value), nil
	case viewspec.OpNotIn:
		return fmt.Sprintf("(%s NOT IN (%s))", column, cond.Value), nil
	case viewspec.OpIsNull:
		if cond.Value == "true" {
			return fmt.Sprintf("(%s IS NULL)", column), nil
		}
		return fmt.Sprintf("(%s IS NOT NULL)", column), nil
	default:
		return "", fmt.Errorf("unsupported operator %q on %s", cond.Operator, column)
	}
}

func binary(column, op, value string) string {
	return "(" + column + " " + op + " " + value + ")"
}

// logicKeyword maps a logic operator to its keyword. Unset means AND.
func logicKeyword(op viewspec.LogicOperator) string {
	if op == viewspec.LogicOr {
		return "OR"
	}
	return "AND"
}
