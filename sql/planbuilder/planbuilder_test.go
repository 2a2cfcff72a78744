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

package planbuilder

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qxengine/qx/sql"
	"github.com/qxengine/qx/sql/expression"
	"github.com/qxengine/qx/sql/types"
)

func ordersSchema() sql.Schema {
	return sql.Schema{
		{Name: "id", Type: types.Int64},
		{Name: "total", Type: types.Double},
	}
}

func customersSchema() sql.Schema {
	return sql.Schema{
		{Name: "id", Type: types.Int64},
		{Name: "name", Type: types.Varchar},
	}
}

func twoSourceScope() *scope {
	sc := newScope(nil)
	sc.addSource("orders", ordersSchema(), 0)
	sc.addSource("customers", customersSchema(), len(ordersSchema()))
	return sc
}

func TestResolveUnqualifiedUnique(t *testing.T) {
	sc := twoSourceScope()
	r, err := sc.resolve("", "total")
	require.NoError(t, err)
	require.Equal(t, 1, r.index)
}

func TestResolveAmbiguous(t *testing.T) {
	sc := twoSourceScope()
	_, err := sc.resolve("", "id")
	require.Error(t, err)
	require.True(t, sql.ErrAmbiguousIdentifier.Is(err))
}

func TestResolveQualifiedDisambiguates(t *testing.T) {
	sc := twoSourceScope()
	r, err := sc.resolve("customers", "id")
	require.NoError(t, err)
	require.Equal(t, 2, r.index)
}

func TestResolveUnknownQualifier(t *testing.T) {
	sc := twoSourceScope()
	_, err := sc.resolve("nope", "id")
	require.Error(t, err)
	require.True(t, sql.ErrUnexpectedDatasetReference.Is(err))
}

func TestResolveUnknownColumn(t *testing.T) {
	sc := twoSourceScope()
	_, err := sc.resolve("orders", "missing")
	require.Error(t, err)
	require.True(t, sql.ErrColumnNotFound.Is(err))
}

func TestResolveFallsBackToOuterScope(t *testing.T) {
	outer := newScope(nil)
	outer.addSource("customers", customersSchema(), 0)
	inner := newScope(outer)
	inner.addSource("orders", ordersSchema(), 0)

	r, err := inner.resolve("", "name")
	require.NoError(t, err)
	require.True(t, r.outer)
}

func TestCoerceForComparisonWidensNumeric(t *testing.T) {
	l := expression.NewGetField(0, types.Int64, "a", false)
	r := expression.NewGetField(1, types.Double, "b", false)
	lc, rc, err := coerceForComparison(l, r)
	require.NoError(t, err)
	require.Equal(t, types.Double, lc.Type())
	require.Equal(t, types.Double, rc.Type())
}

func TestCoerceForComparisonIncompatible(t *testing.T) {
	l := expression.NewGetField(0, types.Int64, "a", false)
	r := expression.NewGetField(1, types.Varchar, "b", false)
	_, _, err := coerceForComparison(l, r)
	require.Error(t, err)
	require.True(t, sql.ErrIncompatibleTypes.Is(err))
}

func TestBindSubscriptMember(t *testing.T) {
	structType := types.Struct(sql.Schema{{Name: "k", Type: types.Varchar}})
	inner := expression.NewGetField(0, structType, "s", true)

	e, err := BindSubscript(inner, OpMember, 0, "k")
	require.NoError(t, err)
	require.Equal(t, types.Varchar, e.Type())

	_, err = BindSubscript(inner, OpMember, 0, "missing")
	require.Error(t, err)
}

func TestBindSubscriptIndexRequiresArray(t *testing.T) {
	inner := expression.NewGetField(0, types.Int64, "a", false)
	_, err := BindSubscript(inner, OpIndex, 0, "")
	require.Error(t, err)
	require.True(t, sql.ErrIncorrectType.Is(err))
}
