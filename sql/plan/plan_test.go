// Copyright 2020-2021 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package plan

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qxengine/qx/sql"
	"github.com/qxengine/qx/sql/expression"
	"github.com/qxengine/qx/sql/types"
)

func childSchema() sql.Schema {
	return sql.Schema{
		{Name: "a", Type: types.Int64},
		{Name: "b", Type: types.Varchar},
	}
}

func leaf() sql.Node {
	return NewResolvedTable("t", nil, childSchema(), nil, nil)
}

func TestScanSchemaProjection(t *testing.T) {
	s := NewResolvedTable("t", nil, childSchema(), []string{"b"}, nil)
	require.Equal(t, sql.Schema{{Name: "b", Type: types.Varchar}}, s.Schema())
	require.Empty(t, s.Children())
}

func TestFilterPreservesSchema(t *testing.T) {
	f := NewFilter(expression.NewEquals(
		expression.NewGetField(0, types.Int64, "a", false),
		expression.NewLiteral(int64(1), types.Int64),
	), leaf())
	require.Equal(t, childSchema(), f.Schema())
	require.Len(t, f.Children(), 1)
}

func TestProjectDerivesSchema(t *testing.T) {
	p := NewProject(
		[]sql.Expression{expression.NewGetField(1, types.Varchar, "b", false)},
		[]string{"b"},
		leaf(),
	)
	require.Equal(t, sql.Schema{{Name: "b", Type: types.Varchar}}, p.Schema())
}

func TestLimitWithOffsetExpressions(t *testing.T) {
	l := NewLimitWithOffset(
		expression.NewLiteral(int64(10), types.Int64),
		expression.NewLiteral(int64(5), types.Int64),
		leaf(),
	)
	require.Len(t, l.Expressions(), 2)
	require.Equal(t, childSchema(), l.Schema())
}

func TestDistinctAndCrossJoinSchema(t *testing.T) {
	d := NewDistinct(leaf())
	require.Equal(t, childSchema(), d.Schema())

	cj := NewCrossJoin(leaf(), leaf())
	require.Len(t, cj.Schema(), 4)
}

func TestJoinSemiAntiKeepLeftSchema(t *testing.T) {
	cond := expression.NewEquals(
		expression.NewGetField(0, types.Int64, "a", false),
		expression.NewGetField(2, types.Int64, "a", false),
	)
	semi := NewLeftSemiJoin(leaf(), leaf(), cond)
	require.Equal(t, childSchema(), semi.Schema())

	anti := NewLeftAntiJoin(leaf(), leaf(), cond)
	require.Equal(t, childSchema(), anti.Schema())

	inner := NewInnerJoin(leaf(), leaf(), cond)
	require.Len(t, inner.Schema(), 4)
}

func TestGroupBySchema(t *testing.T) {
	funcs := []AggregateFunc{
		{Name: "COUNT", Arg: nil, Alias: "n", Type: types.Int64},
	}
	agg := NewGroupBy(funcs, []sql.Expression{expression.NewGetField(0, types.Int64, "a", false)}, leaf())
	require.Equal(t, sql.Schema{
		{Name: "group0", Type: types.Int64},
		{Name: "n", Type: types.Int64},
	}, agg.Schema())
}

func TestUnnestAppendsElementColumn(t *testing.T) {
	u := NewUnnest(expression.NewGetField(1, types.Varchar, "b", false), "elem", types.Varchar, leaf())
	require.Len(t, u.Schema(), 3)
	require.Equal(t, "elem", u.Schema()[2].Name)
}

func TestValuesWithExpressionsRebuildsRows(t *testing.T) {
	v := NewValues(sql.Schema{{Name: "x", Type: types.Int64}}, [][]sql.Expression{
		{expression.NewLiteral(int64(1), types.Int64)},
		{expression.NewLiteral(int64(2), types.Int64)},
	})
	require.Len(t, v.Expressions(), 2)

	n, err := v.WithExpressions(
		expression.NewLiteral(int64(10), types.Int64),
		expression.NewLiteral(int64(20), types.Int64),
	)
	require.NoError(t, err)
	rebuilt := n.(*Values)
	require.Equal(t, int64(10), rebuilt.Rows[0][0].(*expression.Literal).Value())
}

func TestHintsDefaultEmpty(t *testing.T) {
	f := NewFilter(expression.NewLiteral(true, types.Boolean), leaf())
	require.Empty(t, f.Hints())
}
