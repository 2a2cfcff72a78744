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

func batchOf(schema sql.Schema, rows int) *sql.Batch {
	return sql.NewBatch(schema, rows)
}

func TestAddWidensToDouble(t *testing.T) {
	r := NewRegistry()
	schema := sql.Schema{{Name: "a", Type: types.Int64}, {Name: "b", Type: types.Double}}
	b := batchOf(schema, 2)
	b.Columns[0].Values = []int64{1, 2}
	b.Columns[1].Values = []float64{1.5, 2.5}

	call, err := r.Resolve("+", []sql.Expression{
		expression.NewGetField(0, types.Int64, "a", false),
		expression.NewGetField(1, types.Double, "b", false),
	})
	require.NoError(t, err)
	require.Equal(t, types.Double, call.Type())

	col, err := call.Eval(sql.NewEmptyContext(), b)
	require.NoError(t, err)
	vals := expression.AsSlice(col, b.Rows)
	require.Equal(t, []interface{}{2.5, 4.5}, vals)
}

func TestDivAlwaysReturnsDouble(t *testing.T) {
	r := NewRegistry()
	schema := sql.Schema{{Name: "a", Type: types.Int64}, {Name: "b", Type: types.Int64}}
	b := batchOf(schema, 1)
	b.Columns[0].Values = []int64{7}
	b.Columns[1].Values = []int64{2}

	call, err := r.Resolve("/", []sql.Expression{
		expression.NewGetField(0, types.Int64, "a", false),
		expression.NewGetField(1, types.Int64, "b", false),
	})
	require.NoError(t, err)
	require.Equal(t, types.Double, call.Type())

	col, err := call.Eval(sql.NewEmptyContext(), b)
	require.NoError(t, err)
	require.Equal(t, 3.5, expression.AsSlice(col, b.Rows)[0])
}

func TestIntDivTruncates(t *testing.T) {
	r := NewRegistry()
	schema := sql.Schema{{Name: "a", Type: types.Int64}, {Name: "b", Type: types.Int64}}
	b := batchOf(schema, 1)
	b.Columns[0].Values = []int64{7}
	b.Columns[1].Values = []int64{2}

	call, err := r.Resolve("DIV", []sql.Expression{
		expression.NewGetField(0, types.Int64, "a", false),
		expression.NewGetField(1, types.Int64, "b", false),
	})
	require.NoError(t, err)
	col, err := call.Eval(sql.NewEmptyContext(), b)
	require.NoError(t, err)
	require.Equal(t, int64(3), expression.AsSlice(col, b.Rows)[0])
}

func TestConcat(t *testing.T) {
	r := NewRegistry()
	schema := sql.Schema{{Name: "a", Type: types.Varchar}, {Name: "b", Type: types.Varchar}}
	b := batchOf(schema, 1)
	b.Columns[0].Values = []string{"foo"}
	b.Columns[1].Values = []string{"bar"}

	call, err := r.Resolve("||", []sql.Expression{
		expression.NewGetField(0, types.Varchar, "a", false),
		expression.NewGetField(1, types.Varchar, "b", false),
	})
	require.NoError(t, err)
	col, err := call.Eval(sql.NewEmptyContext(), b)
	require.NoError(t, err)
	require.Equal(t, "foobar", expression.AsSlice(col, b.Rows)[0])
}

func TestBitwiseOrCIDRContainment(t *testing.T) {
	r := NewRegistry()
	schema := sql.Schema{{Name: "net", Type: types.Varchar}, {Name: "ip", Type: types.Varchar}}
	b := batchOf(schema, 2)
	b.Columns[0].Values = []string{"10.0.0.0/8", "10.0.0.0/8"}
	b.Columns[1].Values = []string{"10.1.2.3", "192.168.0.1"}

	call, err := r.Resolve("|", []sql.Expression{
		expression.NewGetField(0, types.Varchar, "net", false),
		expression.NewGetField(1, types.Varchar, "ip", false),
	})
	require.NoError(t, err)
	col, err := call.Eval(sql.NewEmptyContext(), b)
	require.NoError(t, err)
	require.Equal(t, []interface{}{true, false}, expression.AsSlice(col, b.Rows))
}

func TestBitwiseOrMixedTypesFails(t *testing.T) {
	r := NewRegistry()
	_, err := r.Resolve("|", []sql.Expression{
		expression.NewLiteral(int64(1), types.Int64),
		expression.NewLiteral("10.0.0.0/8", types.Varchar),
	})
	require.Error(t, err)
}

func TestBase64RoundTrip(t *testing.T) {
	r := NewRegistry()
	schema := sql.Schema{{Name: "s", Type: types.Varchar}}
	b := batchOf(schema, 1)
	b.Columns[0].Values = []string{"hello world"}

	enc, err := r.Resolve("BASE64_ENCODE", []sql.Expression{expression.NewGetField(0, types.Varchar, "s", false)})
	require.NoError(t, err)
	encCol, err := enc.Eval(sql.NewEmptyContext(), b)
	require.NoError(t, err)
	encoded := expression.AsSlice(encCol, b.Rows)[0].(string)

	decSchema := sql.Schema{{Name: "s", Type: types.Varchar}}
	decBatch := batchOf(decSchema, 1)
	decBatch.Columns[0].Values = []string{encoded}
	dec, err := r.Resolve("BASE64_DECODE", []sql.Expression{expression.NewGetField(0, types.Varchar, "s", false)})
	require.NoError(t, err)
	decCol, err := dec.Eval(sql.NewEmptyContext(), decBatch)
	require.NoError(t, err)
	require.Equal(t, []byte("hello world"), expression.AsSlice(decCol, decBatch.Rows)[0])
}

func TestHexRoundTrip(t *testing.T) {
	r := NewRegistry()
	schema := sql.Schema{{Name: "s", Type: types.Varchar}}
	b := batchOf(schema, 1)
	b.Columns[0].Values = []string{"abc"}

	enc, err := r.Resolve("HEX_ENCODE", []sql.Expression{expression.NewGetField(0, types.Varchar, "s", false)})
	require.NoError(t, err)
	encCol, err := enc.Eval(sql.NewEmptyContext(), b)
	require.NoError(t, err)
	encoded := expression.AsSlice(encCol, b.Rows)[0].(string)
	require.Equal(t, "616263", encoded)
}

func TestFunctionNotFound(t *testing.T) {
	r := NewRegistry()
	_, err := r.Resolve("NOPE", nil)
	require.Error(t, err)
	require.False(t, r.Has("NOPE"))
	require.True(t, r.Has("+"))
}
