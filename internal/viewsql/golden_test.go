package viewsql

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/epam/edp-ddm-liquibase-ddm-ext-sub001/internal/viewspec"
)

// assertGoldenScript compiles stmt and compares the joined script with
// testdata/golden/<name>.golden.
//
// To update golden files after intentional changes:
//
//	go test ./internal/viewsql/... -update
func assertGoldenScript(t *testing.T, name string, stmt viewspec.Statement) {
	t.Helper()

	stmts, err := Compile(stmt)
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, []byte(Join(stmts)))
}

// loadedFullView exercises joins with extra conditions, nested where
// clauses, display aliases, ordering, limits and a prefix index.
func loadedFullView() viewspec.ViewSpec {
	return viewspec.ViewSpec{
		Name:     "full",
		Indexing: true,
		Limit:    "10",
		Tables: []viewspec.TableSpec{
			{
				Name:  "table1",
				Alias: "t1",
				Columns: []viewspec.ColumnSpec{
					{Name: "id"},
					{Name: "name", Alias: "display_name", Sorting: viewspec.SortAsc},
				},
			},
			{
				Name:  "table2",
				Alias: "t2",
				Columns: []viewspec.ColumnSpec{
					{Name: "code", Type: "varchar(32)", SearchType: viewspec.SearchStartsWith},
				},
			},
		},
		Joins: []viewspec.JoinSpec{{
			Type:         viewspec.JoinLeft,
			LeftAlias:    "t1",
			LeftColumns:  []string{"id"},
			RightAlias:   "t2",
			RightColumns: []string{"t1_id"},
			Conditions: []viewspec.ConditionSpec{
				{TableAlias: "t2", ColumnName: "active", Operator: viewspec.OpEq, Value: "true"},
			},
		}},
		Where: []viewspec.ConditionSpec{
			{TableAlias: "t1", ColumnName: "status", Operator: viewspec.OpIn, Value: "'a', 'b'"},
			{
				TableAlias:    "t2",
				ColumnName:    "deleted_at",
				Operator:      viewspec.OpIsNull,
				Value:         "true",
				LogicOperator: viewspec.LogicOr,
				Included: []viewspec.ConditionSpec{
					{TableAlias: "t1", ColumnName: "name", Operator: viewspec.OpLike, Value: "'x%'"},
					{TableAlias: "t1", ColumnName: "kind", Operator: viewspec.OpNe, Value: "'draft'", LogicOperator: viewspec.LogicOr},
				},
			},
		},
	}
}

func TestGolden_FullView(t *testing.T) {
	assertGoldenScript(t, "full_view", viewspec.CreateSearchCondition{View: loadedFullView()})
}

func TestGolden_ChainedCTEs(t *testing.T) {
	view := viewspec.ViewSpec{
		Name:     "surnames",
		Indexing: true,
		CTEs: []viewspec.CTESpec{
			{
				Name: "a",
				Tables: []viewspec.TableSpec{{
					Name:  "person",
					Alias: "p",
					Columns: []viewspec.ColumnSpec{
						{Name: "last_name", Alias: "surname", Type: "character varying(100)"},
						{Name: "id"},
					},
				}},
			},
			{
				Name: "b",
				Tables: []viewspec.TableSpec{{
					Name:    "a",
					Columns: []viewspec.ColumnSpec{{Name: "surname"}, {Name: "id"}},
				}},
			},
		},
		Tables: []viewspec.TableSpec{{
			Name:  "b",
			Alias: "x",
			Columns: []viewspec.ColumnSpec{
				{Name: "surname", SearchType: viewspec.SearchStartsWith, Sorting: viewspec.SortDesc},
			},
			Functions: []viewspec.FunctionSpec{{Name: "count", ColumnName: "*", Alias: "total"}},
		}},
	}

	assertGoldenScript(t, "chained_ctes", viewspec.CreateSearchCondition{View: view})
}

func TestGolden_ManyToMany(t *testing.T) {
	assertGoldenScript(t, "many_to_many", viewspec.CreateManyToMany{
		MainTableName:      "order",
		MainTableKeyField:  "id",
		ReferenceTableName: "item",
		ReferenceKeysArray: "item_ids",
	})
}
