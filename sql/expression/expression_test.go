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

package expression

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qxengine/qx/sql"
	"github.com/qxengine/qx/sql/types"
)

func testBatch() *sql.Batch {
	schema := sql.Schema{
		{Name: "a", Type: types.Int64},
		{Name: "b", Type: types.Int64},
	}
	b := sql.NewBatch(schema, 4)
	b.Columns[0].Values = []int64{1, 2, 3, 4}
	b.Columns[1].Values = []int64{10, 2, 30, 4}
	return b
}

func TestGetFieldAndLiteral(t *testing.T) {
	ctx := sql.NewEmptyContext()
	b := testBatch()

	gf := NewGetField(0, types.Int64, "a", false)
	col, err := gf.Eval(ctx, b)
	require.NoError(t, err)
	require.Equal(t, []int64{1, 2, 3, 4}, col.Values)

	lit := NewLiteral(int64(5), types.Int64)
	col, err = lit.Eval(ctx, b)
	require.NoError(t, err)
	require.Equal(t, []interface{}{int64(5), int64(5), int64(5), int64(5)}, col.Values)
}

func TestEqualsBetweenColumns(t *testing.T) {
	ctx := sql.NewEmptyContext()
	b := testBatch()

	eq := NewEquals(NewGetField(0, types.Int64, "a", false), NewGetField(1, types.Int64, "b", false))
	col, err := eq.Eval(ctx, b)
	require.NoError(t, err)
	vals := AsSlice(col, b.Rows)
	require.Equal(t, []interface{}{false, true, false, true}, vals)
}

func TestAndShortCircuitsOnFalse(t *testing.T) {
	ctx := sql.NewEmptyContext()
	b := testBatch()

	and := NewAnd(
		NewGreaterThan(NewGetField(0, types.Int64, "a", false), NewLiteral(int64(1), types.Int64)),
		NewLessThan(NewGetField(1, types.Int64, "b", false), NewLiteral(int64(100), types.Int64)),
	)
	col, err := and.Eval(ctx, b)
	require.NoError(t, err)
	vals := AsSlice(col, b.Rows)
	require.Equal(t, []interface{}{false, true, true, true}, vals)
}

func TestCaseWhenElse(t *testing.T) {
	ctx := sql.NewEmptyContext()
	b := testBatch()

	c := NewCase([]CaseBranch{
		{
			Cond: NewEquals(NewGetField(0, types.Int64, "a", false), NewLiteral(int64(2), types.Int64)),
			Then: NewLiteral("two", types.Varchar),
		},
	}, NewLiteral("other", types.Varchar), types.Varchar)

	col, err := c.Eval(ctx, b)
	require.NoError(t, err)
	vals := AsSlice(col, b.Rows)
	require.Equal(t, []interface{}{"other", "two", "other", "other"}, vals)
}

func TestBetween(t *testing.T) {
	ctx := sql.NewEmptyContext()
	b := testBatch()

	between := NewBetween(
		NewGetField(0, types.Int64, "a", false),
		NewLiteral(int64(2), types.Int64),
		NewLiteral(int64(3), types.Int64),
	)
	col, err := between.Eval(ctx, b)
	require.NoError(t, err)
	vals := AsSlice(col, b.Rows)
	require.Equal(t, []interface{}{false, true, true, false}, vals)
}

func TestInList(t *testing.T) {
	ctx := sql.NewEmptyContext()
	b := testBatch()

	in := NewInList(NewGetField(0, types.Int64, "a", false), []sql.Expression{
		NewLiteral(int64(1), types.Int64),
		NewLiteral(int64(3), types.Int64),
	}, false)
	col, err := in.Eval(ctx, b)
	require.NoError(t, err)
	vals := AsSlice(col, b.Rows)
	require.Equal(t, []interface{}{true, false, true, false}, vals)
}

func TestLikeWildcards(t *testing.T) {
	ctx := sql.NewEmptyContext()
	schema := sql.Schema{{Name: "s", Type: types.Varchar}}
	b := sql.NewBatch(schema, 3)
	b.Columns[0].Values = []string{"hello", "help", "world"}

	like := NewLike(NewGetField(0, types.Varchar, "s", false), "hel%")
	col, err := like.Eval(ctx, b)
	require.NoError(t, err)
	vals := AsSlice(col, b.Rows)
	require.Equal(t, []interface{}{true, true, false}, vals)
}

func TestCastStrict(t *testing.T) {
	ctx := sql.NewEmptyContext()
	schema := sql.Schema{{Name: "s", Type: types.Varchar}}
	b := sql.NewBatch(schema, 2)
	b.Columns[0].Values = []string{"42", "not-a-number"}

	cast := NewCast(NewGetField(0, types.Varchar, "s", false), types.Int64)
	_, err := cast.Eval(ctx, b)
	require.Error(t, err)
}
