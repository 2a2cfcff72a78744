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

package rowexec

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qxengine/qx/sql"
	"github.com/qxengine/qx/sql/expression"
	"github.com/qxengine/qx/sql/physical"
	"github.com/qxengine/qx/sql/types"
)

func abSchema() sql.Schema {
	return sql.Schema{
		{Name: "a", Type: types.Int64},
		{Name: "b", Type: types.Varchar},
	}
}

func literalScan(rows ...sql.Row) *physical.LiteralScan {
	return &physical.LiteralScan{OutSchema: abSchema(), Rows: rows}
}

func row(a int64, b string) sql.Row { return sql.Row{a, b} }

func drain(t *testing.T, it sql.BatchIter) []sql.Row {
	t.Helper()
	ctx := sql.NewEmptyContext()
	var out []sql.Row
	for {
		b, err := it.Next(ctx)
		if err == sql.ErrIterDone {
			break
		}
		require.NoError(t, err)
		out = append(out, batchRows(b)...)
	}
	require.NoError(t, it.Close(ctx))
	return out
}

func TestLiteralScanAndFilter(t *testing.T) {
	src := literalScan(row(1, "x"), row(2, "y"), row(3, "z"))
	cond := expression.NewGreaterThan(
		expression.NewGetField(0, types.Int64, "a", false),
		expression.NewLiteral(int64(1), types.Int64),
	)
	op := &physical.VectorFilter{Predicate: cond, Input: src}

	it, err := Build(sql.NewEmptyContext(), op)
	require.NoError(t, err)
	rows := drain(t, it)
	require.Equal(t, []sql.Row{row(2, "y"), row(3, "z")}, rows)
}

func TestVectorProject(t *testing.T) {
	src := literalScan(row(1, "x"), row(2, "y"))
	proj := &physical.VectorProject{
		Projections: []sql.Expression{expression.NewGetField(1, types.Varchar, "b", false)},
		OutSchema:   sql.Schema{{Name: "b", Type: types.Varchar}},
		Input:       src,
	}

	it, err := Build(sql.NewEmptyContext(), proj)
	require.NoError(t, err)
	rows := drain(t, it)
	require.Equal(t, []sql.Row{{"x"}, {"y"}}, rows)
}

func TestLimitWithOffset(t *testing.T) {
	src := literalScan(row(1, "a"), row(2, "b"), row(3, "c"), row(4, "d"))
	op := &physical.Limit{Count: 2, Offset: 1, Input: src}

	it, err := Build(sql.NewEmptyContext(), op)
	require.NoError(t, err)
	rows := drain(t, it)
	require.Equal(t, []sql.Row{row(2, "b"), row(3, "c")}, rows)
}

func TestLimitZeroCount(t *testing.T) {
	src := literalScan(row(1, "a"), row(2, "b"))
	op := &physical.Limit{Count: 0, Offset: 0, Input: src}

	it, err := Build(sql.NewEmptyContext(), op)
	require.NoError(t, err)
	rows := drain(t, it)
	require.Empty(t, rows)
}

func TestCrossJoin(t *testing.T) {
	left := literalScan(row(1, "x"))
	right := literalScan(row(2, "y"), row(3, "z"))
	op := &physical.CrossJoinOp{Left: left, Right: right}

	it, err := Build(sql.NewEmptyContext(), op)
	require.NoError(t, err)
	rows := drain(t, it)
	require.Len(t, rows, 2)
	require.Equal(t, sql.Row{int64(1), "x", int64(2), "y"}, rows[0])
	require.Equal(t, sql.Row{int64(1), "x", int64(3), "z"}, rows[1])
}

func TestUnion(t *testing.T) {
	left := literalScan(row(1, "x"))
	right := literalScan(row(2, "y"))
	op := &physical.UnionOp{Left: left, Right: right}

	it, err := Build(sql.NewEmptyContext(), op)
	require.NoError(t, err)
	rows := drain(t, it)
	require.Equal(t, []sql.Row{row(1, "x"), row(2, "y")}, rows)
}

func TestHashJoinInner(t *testing.T) {
	left := &physical.LiteralScan{
		OutSchema: sql.Schema{{Name: "a", Type: types.Int64}},
		Rows:      []sql.Row{{int64(1)}, {int64(2)}, {int64(3)}},
	}
	right := &physical.LiteralScan{
		OutSchema: sql.Schema{{Name: "a2", Type: types.Int64}, {Name: "v", Type: types.Varchar}},
		Rows:      []sql.Row{{int64(2), "two"}, {int64(3), "three"}, {int64(9), "nine"}},
	}
	op := &physical.HashJoinOp{
		Left:      left,
		Right:     right,
		LeftKeys:  []sql.Expression{expression.NewGetField(0, types.Int64, "a", false)},
		RightKeys: []sql.Expression{expression.NewGetField(0, types.Int64, "a2", false)},
		Type:      physical.Inner,
	}

	it, err := Build(sql.NewEmptyContext(), op)
	require.NoError(t, err)
	rows := drain(t, it)
	require.Len(t, rows, 2)
}

func TestHashJoinLeftOuterPadsUnmatched(t *testing.T) {
	left := &physical.LiteralScan{
		OutSchema: sql.Schema{{Name: "a", Type: types.Int64}},
		Rows:      []sql.Row{{int64(1)}, {int64(5)}},
	}
	right := &physical.LiteralScan{
		OutSchema: sql.Schema{{Name: "a2", Type: types.Int64}},
		Rows:      []sql.Row{{int64(1)}},
	}
	op := &physical.HashJoinOp{
		Left:      left,
		Right:     right,
		LeftKeys:  []sql.Expression{expression.NewGetField(0, types.Int64, "a", false)},
		RightKeys: []sql.Expression{expression.NewGetField(0, types.Int64, "a2", false)},
		Type:      physical.LeftOuter,
	}

	it, err := Build(sql.NewEmptyContext(), op)
	require.NoError(t, err)
	rows := drain(t, it)
	require.Len(t, rows, 2)
	require.Contains(t, rows, sql.Row{int64(1), int64(1)})
	require.Contains(t, rows, sql.Row{int64(5), nil})
}

func TestHashJoinLeftSemiEmitsOnce(t *testing.T) {
	left := &physical.LiteralScan{
		OutSchema: sql.Schema{{Name: "a", Type: types.Int64}},
		Rows:      []sql.Row{{int64(1)}},
	}
	right := &physical.LiteralScan{
		OutSchema: sql.Schema{{Name: "a2", Type: types.Int64}},
		Rows:      []sql.Row{{int64(1)}, {int64(1)}, {int64(1)}},
	}
	op := &physical.HashJoinOp{
		Left:      left,
		Right:     right,
		LeftKeys:  []sql.Expression{expression.NewGetField(0, types.Int64, "a", false)},
		RightKeys: []sql.Expression{expression.NewGetField(0, types.Int64, "a2", false)},
		Type:      physical.LeftSemi,
	}

	it, err := Build(sql.NewEmptyContext(), op)
	require.NoError(t, err)
	rows := drain(t, it)
	require.Len(t, rows, 1, "LEFT SEMI must emit the left row exactly once regardless of match count")
}

func TestHashJoinNullNeverMatches(t *testing.T) {
	left := &physical.LiteralScan{
		OutSchema: sql.Schema{{Name: "a", Type: types.Int64}},
		Rows:      []sql.Row{{nil}},
	}
	right := &physical.LiteralScan{
		OutSchema: sql.Schema{{Name: "a2", Type: types.Int64}},
		Rows:      []sql.Row{{nil}},
	}
	op := &physical.HashJoinOp{
		Left:      left,
		Right:     right,
		LeftKeys:  []sql.Expression{expression.NewGetField(0, types.Int64, "a", false)},
		RightKeys: []sql.Expression{expression.NewGetField(0, types.Int64, "a2", false)},
		Type:      physical.Inner,
	}

	it, err := Build(sql.NewEmptyContext(), op)
	require.NoError(t, err)
	rows := drain(t, it)
	require.Empty(t, rows, "NULL = NULL must never match in an equi-join")
}

func TestNestedLoopJoinInequality(t *testing.T) {
	left := &physical.LiteralScan{
		OutSchema: sql.Schema{{Name: "a", Type: types.Int64}},
		Rows:      []sql.Row{{int64(1)}, {int64(5)}},
	}
	right := &physical.LiteralScan{
		OutSchema: sql.Schema{{Name: "a2", Type: types.Int64}},
		Rows:      []sql.Row{{int64(3)}},
	}
	cond := expression.NewLessThan(
		expression.NewGetField(0, types.Int64, "a", false),
		expression.NewGetField(1, types.Int64, "a2", false),
	)
	op := &physical.NestedLoopJoinOp{Left: left, Right: right, Condition: cond, Type: physical.Inner}

	it, err := Build(sql.NewEmptyContext(), op)
	require.NoError(t, err)
	rows := drain(t, it)
	require.Equal(t, []sql.Row{{int64(1), int64(3)}}, rows)
}

func TestHashAggregateGroupBy(t *testing.T) {
	src := &physical.LiteralScan{
		OutSchema: sql.Schema{{Name: "k", Type: types.Varchar}, {Name: "v", Type: types.Int64}},
		Rows: []sql.Row{
			{"a", int64(1)},
			{"a", int64(2)},
			{"b", int64(10)},
		},
	}
	op := &physical.HashAggregateOp{
		GroupBy: []sql.Expression{expression.NewGetField(0, types.Varchar, "k", false)},
		Aggregates: []physical.Aggregator{
			{Func: physical.AggSum, Arg: expression.NewGetField(1, types.Int64, "v", false), Alias: "s", Type: types.Int64},
		},
		OutSchema: sql.Schema{{Name: "k", Type: types.Varchar}, {Name: "s", Type: types.Int64}},
		Input:     src,
	}

	it, err := Build(sql.NewEmptyContext(), op)
	require.NoError(t, err)
	rows := drain(t, it)
	require.Len(t, rows, 2)
	sums := map[string]int64{}
	for _, r := range rows {
		sums[r[0].(string)] = r[1].(int64)
	}
	require.Equal(t, int64(3), sums["a"])
	require.Equal(t, int64(10), sums["b"])
}

func TestHashAggregateEmptyInputNoGroupByEmitsOneRow(t *testing.T) {
	src := &physical.LiteralScan{OutSchema: sql.Schema{{Name: "v", Type: types.Int64}}}
	op := &physical.HashAggregateOp{
		Aggregates: []physical.Aggregator{{Func: physical.AggCountStar, Alias: "n", Type: types.Int64}},
		OutSchema:  sql.Schema{{Name: "n", Type: types.Int64}},
		Input:      src,
	}

	it, err := Build(sql.NewEmptyContext(), op)
	require.NoError(t, err)
	rows := drain(t, it)
	require.Equal(t, []sql.Row{{int64(0)}}, rows)
}

func TestDistinct(t *testing.T) {
	src := literalScan(row(1, "x"), row(1, "x"), row(2, "y"))
	op := &physical.DistinctOp{Input: src}

	it, err := Build(sql.NewEmptyContext(), op)
	require.NoError(t, err)
	rows := drain(t, it)
	require.Len(t, rows, 2)
}

func TestSort(t *testing.T) {
	src := literalScan(row(3, "c"), row(1, "a"), row(2, "b"))
	op := &physical.SortOp{
		Fields: []physical.SortField{{Expr: expression.NewGetField(0, types.Int64, "a", false)}},
		Input:  src,
	}

	it, err := Build(sql.NewEmptyContext(), op)
	require.NoError(t, err)
	rows := drain(t, it)
	require.Equal(t, []sql.Row{row(1, "a"), row(2, "b"), row(3, "c")}, rows)
}

func TestSortDescending(t *testing.T) {
	src := literalScan(row(1, "a"), row(3, "c"), row(2, "b"))
	op := &physical.SortOp{
		Fields: []physical.SortField{{Expr: expression.NewGetField(0, types.Int64, "a", false), Descending: true}},
		Input:  src,
	}

	it, err := Build(sql.NewEmptyContext(), op)
	require.NoError(t, err)
	rows := drain(t, it)
	require.Equal(t, []sql.Row{row(3, "c"), row(2, "b"), row(1, "a")}, rows)
}

func TestHeapSortKeepsKBest(t *testing.T) {
	src := literalScan(row(5, "e"), row(1, "a"), row(4, "d"), row(2, "b"), row(3, "c"))
	op := &physical.HeapSortOp{
		Fields: []physical.SortField{{Expr: expression.NewGetField(0, types.Int64, "a", false)}},
		K:      2,
		Input:  src,
	}

	it, err := Build(sql.NewEmptyContext(), op)
	require.NoError(t, err)
	rows := drain(t, it)
	require.Equal(t, []sql.Row{row(1, "a"), row(2, "b")}, rows)
}

func TestHeapSortZeroKEmitsNothing(t *testing.T) {
	src := literalScan(row(1, "a"))
	op := &physical.HeapSortOp{Fields: nil, K: 0, Input: src}

	it, err := Build(sql.NewEmptyContext(), op)
	require.NoError(t, err)
	rows := drain(t, it)
	require.Empty(t, rows)
}

func TestUnnest(t *testing.T) {
	schema := sql.Schema{{Name: "a", Type: types.Int64}, {Name: "items", Type: types.Varchar}}
	src := &physical.LiteralScan{
		OutSchema: schema,
		Rows: []sql.Row{
			{int64(1), []interface{}{"x", "y"}},
			{int64(2), []interface{}{}},
		},
	}
	outSchema := sql.Schema{{Name: "a", Type: types.Int64}, {Name: "items", Type: types.Varchar}, {Name: "item", Type: types.Varchar}}
	op := &physical.UnnestOp{
		Column:    expression.NewGetField(1, types.Varchar, "items", false),
		OutSchema: outSchema,
		Input:     src,
	}

	it, err := Build(sql.NewEmptyContext(), op)
	require.NoError(t, err)
	rows := drain(t, it)
	require.Len(t, rows, 2)
	require.Equal(t, "x", rows[0][2])
	require.Equal(t, "y", rows[1][2])
}
