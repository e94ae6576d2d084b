package viewsql

import (
	"fmt"
	"strings"

	"github.com/epam/edp-ddm-liquibase-ddm-ext-sub001/internal/viewspec"
)

// DefaultViewSuffix is appended to search condition names to form view names.
const DefaultViewSuffix = "_v"

// StatementSeparator separates statements in a compiled script.
const StatementSeparator = "\n\n"

// Compiler compiles viewspec statements to PostgreSQL DDL.
//
// A Compiler holds no per-call state; one value may be shared by
// concurrent callers. Output is a pure function of the statement.
type Compiler struct {
	// ViewSuffix is appended to view names. Defaults to DefaultViewSuffix.
	ViewSuffix string
}

// NewCompiler creates a Compiler with the default view suffix.
func NewCompiler() *Compiler {
	return &Compiler{ViewSuffix: DefaultViewSuffix}
}

// Compile compiles stmt with a default Compiler.
func Compile(stmt viewspec.Statement) ([]string, error) {
	return NewCompiler().Compile(stmt)
}

// Join concatenates compiled statements into one script.
func Join(stmts []string) string {
	return strings.Join(stmts, StatementSeparator)
}

// Compile converts a statement to its ordered list of SQL statements. The
// view statement, when there is one, always comes first.
//
// Structural problems are reported together as viewspec.ValidationErrors
// before any SQL is rendered. Unresolvable references abort with one of
// the error kinds declared in this package.
func (c *Compiler) Compile(stmt viewspec.Statement) ([]string, error) {
	if stmt == nil {
		return nil, ErrNilStatement.New()
	}

	switch s := stmt.(type) {
	case viewspec.CreateSearchCondition:
		return c.compileSearchCondition(s)
	case *viewspec.CreateSearchCondition:
		return c.compileSearchCondition(*s)
	case viewspec.CreateSimpleSearchCondition:
		return c.compileSimpleSearchCondition(s)
	case *viewspec.CreateSimpleSearchCondition:
		return c.compileSimpleSearchCondition(*s)
	case viewspec.DropSearchCondition:
		return c.compileDropSearchCondition(s)
	case *viewspec.DropSearchCondition:
		return c.compileDropSearchCondition(*s)
	case viewspec.CreateManyToMany:
		return c.compileManyToMany(s)
	case *viewspec.CreateManyToMany:
		return c.compileManyToMany(*s)
	default:
		return nil, ErrUnsupportedStatement.New(stmt)
	}
}

func (c *Compiler) viewName(name string) string {
	suffix := c.ViewSuffix
	if suffix == "" {
		suffix = DefaultViewSuffix
	}
	return name + suffix
}

func (c *Compiler) compileSearchCondition(s viewspec.CreateSearchCondition) ([]string, error) {
	if errs := viewspec.Validate(s); len(errs) > 0 {
		return nil, errs
	}
	view := s.View

	r, err := newResolver(view.CTEs)
	if err != nil {
		return nil, err
	}
	if err := r.check(view.Tables); err != nil {
		return nil, err
	}

	var sb strings.Builder
	sb.WriteString("CREATE OR REPLACE VIEW ")
	sb.WriteString(c.viewName(view.Name))
	sb.WriteString(" AS ")

	if len(view.CTEs) > 0 {
		with, err := renderWith(view.CTEs)
		if err != nil {
			return nil, err
		}
		sb.WriteString(with)
		sb.WriteString(" ")
	}

	body, err := renderQuery(view.Tables, view.Joins, view.Where)
	if err != nil {
		return nil, err
	}
	sb.WriteString(body)

	if view.HasLimit() {
		sb.WriteString(" LIMIT ")
		sb.WriteString(view.Limit)
	}
	sb.WriteString(";")

	stmts := []string{sb.String()}
	if !view.Indexing {
		return stmts, nil
	}

	indexes, err := planIndexes(view, r)
	if err != nil {
		return nil, err
	}
	return append(stmts, indexes...), nil
}

// renderQuery renders one SELECT without terminator or LIMIT. It is shared
// by the main query and CTE bodies.
//
//	SELECT <projection> FROM <joins>[ WHERE ...][ GROUP BY ...][ ORDER BY ...]
func renderQuery(tables []viewspec.TableSpec, joins []viewspec.JoinSpec, where []viewspec.ConditionSpec) (string, error) {
	s := newScope(tables)

	p, err := project(tables, s)
	if err != nil {
		return "", err
	}
	from, err := fromClause(tables, joins, s)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	if len(p.selects) == 0 {
		sb.WriteString("*")
	} else {
		sb.WriteString(strings.Join(p.selects, ", "))
	}
	sb.WriteString(" ")
	sb.WriteString(from)

	if len(where) > 0 {
		cond, err := renderConditions(where, s)
		if err != nil {
			return "", err
		}
		sb.WriteString(" WHERE ")
		sb.WriteString(cond)
	}
	if len(p.groupBy) > 0 {
		sb.WriteString(" GROUP BY ")
		sb.WriteString(strings.Join(p.groupBy, ", "))
	}
	if len(p.orderBy) > 0 {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(p.orderBy, ", "))
	}

	return sb.String(), nil
}

func (c *Compiler) compileSimpleSearchCondition(s viewspec.CreateSimpleSearchCondition) ([]string, error) {
	if errs := viewspec.Validate(s); len(errs) > 0 {
		return nil, errs
	}

	view := fmt.Sprintf("CREATE OR REPLACE VIEW %s AS SELECT %s.* FROM %s",
		c.viewName(s.Name), s.Table.RenderAlias(), tableRef(s.Table))
	if s.Limit != "" && s.Limit != viewspec.LimitAll {
		view += " LIMIT " + s.Limit
	}
	view += ";"

	stmts := []string{view}
	if s.Indexing {
		stmts = append(stmts, createIndex(s.Table.Name, s.SearchColumn.Name, s.SearchColumn.Type, s.SearchColumn.SearchType))
	}
	return stmts, nil
}

func (c *Compiler) compileDropSearchCondition(s viewspec.DropSearchCondition) ([]string, error) {
	if errs := viewspec.Validate(s); len(errs) > 0 {
		return nil, errs
	}
	return []string{"DROP VIEW IF EXISTS " + c.viewName(s.Name) + ";"}, nil
}

// compileManyToMany renders the relation view and its GIN index. The index
// statement carries no IF NOT EXISTS guard, unlike search indexes.
func (c *Compiler) compileManyToMany(s viewspec.CreateManyToMany) ([]string, error) {
	if errs := viewspec.Validate(s); len(errs) > 0 {
		return nil, errs
	}

	mainTable := s.MainTableName
	view := fmt.Sprintf("CREATE OR REPLACE VIEW %s AS SELECT %s.%s, UNNEST(%s.%s) AS %s_id FROM %s;",
		c.viewName(mainTable+"_"+s.ReferenceTableName+"_rel"),
		mainTable, s.MainTableKeyField,
		mainTable, s.ReferenceKeysArray,
		s.ReferenceTableName,
		mainTable)
	index := fmt.Sprintf("CREATE INDEX %s ON %s USING GIN (%s);",
		indexName(mainTable, s.ReferenceKeysArray), mainTable, s.ReferenceKeysArray)

	return []string{view, index}, nil
}
