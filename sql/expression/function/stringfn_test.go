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

package function

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qxengine/qx/sql"
	"github.com/qxengine/qx/sql/expression"
	"github.com/qxengine/qx/sql/types"
)

func TestStartsWithEndsWith(t *testing.T) {
	r := NewRegistry()
	schema := sql.Schema{{Name: "s", Type: types.Varchar}}
	b := batchOf(schema, 1)
	b.Columns[0].Values = []string{"hello world"}

	sw, err := r.Resolve("STARTS_WITH", []sql.Expression{
		expression.NewGetField(0, types.Varchar, "s", false),
		expression.NewLiteral("hello", types.Varchar),
	})
	require.NoError(t, err)
	col, err := sw.Eval(sql.NewEmptyContext(), b)
	require.NoError(t, err)
	require.Equal(t, true, expression.AsSlice(col, b.Rows)[0])

	ew, err := r.Resolve("ENDS_WITH", []sql.Expression{
		expression.NewGetField(0, types.Varchar, "s", false),
		expression.NewLiteral("world", types.Varchar),
	})
	require.NoError(t, err)
	col, err = ew.Eval(sql.NewEmptyContext(), b)
	require.NoError(t, err)
	require.Equal(t, true, expression.AsSlice(col, b.Rows)[0])
}

func TestIfNullPicksFallback(t *testing.T) {
	r := NewRegistry()
	schema := sql.Schema{{Name: "s", Type: types.Varchar}}
	b := batchOf(schema, 2)
	b.Columns[0].Values = []string{"x", ""}
	b.Columns[0].Valid = sql.NewValidity(2)
	b.Columns[0].Valid.Set(0, true)

	call, err := r.Resolve("IFNULL", []sql.Expression{
		expression.NewGetField(0, types.Varchar, "s", true),
		expression.NewLiteral("fallback", types.Varchar),
	})
	require.NoError(t, err)
	col, err := call.Eval(sql.NewEmptyContext(), b)
	require.NoError(t, err)
	vals := expression.AsSlice(col, b.Rows)
	require.Equal(t, "x", vals[0])
	require.Equal(t, "fallback", vals[1])
}

func TestArrayContains(t *testing.T) {
	r := NewRegistry()
	arrType := types.Array(types.Int64)
	schema := sql.Schema{{Name: "a", Type: arrType}}
	b := batchOf(schema, 1)
	b.Columns[0].Values = []interface{}{[]interface{}{int64(1), int64(2), int64(3)}}
	b.Columns[0].Valid = sql.NewValidity(1)
	b.Columns[0].Valid.Set(0, true)

	call, err := r.Resolve("ARRAY_CONTAINS", []sql.Expression{
		expression.NewGetField(0, arrType, "a", false),
		expression.NewLiteral(int64(2), types.Int64),
	})
	require.NoError(t, err)
	col, err := call.Eval(sql.NewEmptyContext(), b)
	require.NoError(t, err)
	require.Equal(t, true, expression.AsSlice(col, b.Rows)[0])
}
