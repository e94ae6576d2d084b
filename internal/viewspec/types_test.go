package viewspec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Compile-time checks that all variants implement Statement.
var (
	_ Statement = CreateSearchCondition{}
	_ Statement = (*CreateSearchCondition)(nil)
	_ Statement = CreateSimpleSearchCondition{}
	_ Statement = DropSearchCondition{}
	_ Statement = CreateManyToMany{}
)

func TestTableSpecRenderAlias(t *testing.T) {
	assert.Equal(t, "t1", TableSpec{Name: "table1", Alias: "t1"}.RenderAlias())
	assert.Equal(t, "table1", TableSpec{Name: "table1"}.RenderAlias())
}

func TestColumnSpecReturningDefault(t *testing.T) {
	assert.True(t, ColumnSpec{Name: "c"}.IsReturning(), "nil Returning means returned")
	assert.True(t, ColumnSpec{Name: "c", Returning: Bool(true)}.IsReturning())
	assert.False(t, ColumnSpec{Name: "c", Returning: Bool(false)}.IsReturning())
}

func TestColumnSpecExposedName(t *testing.T) {
	assert.Equal(t, "c", ColumnSpec{Name: "c"}.ExposedName())
	assert.Equal(t, "display", ColumnSpec{Name: "c", Alias: "display"}.ExposedName())
}

func TestViewSpecHasLimit(t *testing.T) {
	assert.False(t, ViewSpec{}.HasLimit())
	assert.False(t, ViewSpec{Limit: LimitAll}.HasLimit())
	assert.True(t, ViewSpec{Limit: "5"}.HasLimit())
}

func TestEnumValidity(t *testing.T) {
	assert.True(t, SearchStartsWith.Valid())
	assert.False(t, SearchType("fuzzy").Valid())
	assert.True(t, SortNone.Valid())
	assert.False(t, Sorting("up").Valid())
	assert.True(t, JoinLeft.Valid())
	assert.False(t, JoinType("").Valid())
	assert.True(t, OpNotIn.Valid())
	assert.False(t, Operator("between").Valid())
	assert.True(t, LogicOr.Valid())
	assert.False(t, LogicOperator("xor").Valid())
}

func TestStatementName(t *testing.T) {
	assert.Equal(t, "v", CreateSearchCondition{View: ViewSpec{Name: "v"}}.StatementName())
	assert.Equal(t, "s", CreateSimpleSearchCondition{Name: "s"}.StatementName())
	assert.Equal(t, "d", DropSearchCondition{Name: "d"}.StatementName())
	assert.Equal(t, "order_item", CreateManyToMany{MainTableName: "order", ReferenceTableName: "item"}.StatementName())
}

func TestFunctionRequiresParameter(t *testing.T) {
	assert.True(t, FunctionSpec{Name: "string_agg"}.RequiresParameter())
	assert.True(t, FunctionSpec{Name: " String_Agg "}.RequiresParameter())
	assert.False(t, FunctionSpec{Name: "count"}.RequiresParameter())
}

func TestKind(t *testing.T) {
	assert.Equal(t, KindCreateSearchCondition, Kind(CreateSearchCondition{}))
	assert.Equal(t, KindCreateSearchCondition, Kind(&CreateSearchCondition{}))
	assert.Equal(t, KindCreateSimpleSearchCondition, Kind(CreateSimpleSearchCondition{}))
	assert.Equal(t, KindDropSearchCondition, Kind(DropSearchCondition{}))
	assert.Equal(t, KindCreateManyToMany, Kind(&CreateManyToMany{}))
	assert.Equal(t, "", Kind(nil))
}
