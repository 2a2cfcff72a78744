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

package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qxengine/qx/connectors"
	"github.com/qxengine/qx/sql"
	"github.com/qxengine/qx/sql/types"
)

func fixtureConnector() *connectors.Memory {
	schema := sql.Schema{{Name: "a", Type: types.Int64}}
	return connectors.NewMemory(schema, []sql.Row{{int64(1)}})
}

func TestResolveBuiltinPlanets(t *testing.T) {
	reg := New()
	conn, inner, ok := reg.Resolve("$planets")
	require.True(t, ok)
	require.Equal(t, "$planets", inner)
	require.NotNil(t, conn)

	schema, err := conn.GetSchema(sql.NewEmptyContext())
	require.NoError(t, err)
	require.Equal(t, 5, len(schema))
}

func TestResolveBuiltinSatellites(t *testing.T) {
	reg := New()
	conn, _, ok := reg.Resolve("$satellites")
	require.True(t, ok)
	require.NotNil(t, conn)
}

func TestResolveUnknownFails(t *testing.T) {
	reg := New()
	_, _, ok := reg.Resolve("nope.nothing")
	require.False(t, ok)
}

func TestResolveExactMatchWinsOverPrefix(t *testing.T) {
	reg := New()
	reg.Register("a.b", connectorFactory(func() (sql.Connector, error) { return fixtureConnector(), nil }), RegisterOptions{})
	reg.Register("a.b.c", connectorFactory(func() (sql.Connector, error) { return fixtureConnector(), nil }), RegisterOptions{})

	_, inner, ok := reg.Resolve("a.b.c")
	require.True(t, ok)
	require.Equal(t, "a.b.c", inner)
}

func TestResolveLongestDottedPrefixWins(t *testing.T) {
	reg := New()
	reg.Register("a", connectorFactory(func() (sql.Connector, error) { return fixtureConnector(), nil }), RegisterOptions{})
	reg.Register("a.b", connectorFactory(func() (sql.Connector, error) { return fixtureConnector(), nil }), RegisterOptions{})

	_, inner, ok := reg.Resolve("a.b.c.d")
	require.True(t, ok)
	require.Equal(t, "a.b.c.d", inner)
}

func TestResolveDottedPrefixDoesNotMatchNonDottedSuffix(t *testing.T) {
	reg := New()
	reg.Register("a.b", connectorFactory(func() (sql.Connector, error) { return fixtureConnector(), nil }), RegisterOptions{})

	_, _, ok := reg.Resolve("a.bc")
	require.False(t, ok)
}

func TestResolveRemovePrefixStripsMatchedDottedPrefix(t *testing.T) {
	reg := New()
	reg.Register("warehouse", connectorFactory(func() (sql.Connector, error) { return fixtureConnector(), nil }), RegisterOptions{RemovePrefix: true})

	_, inner, ok := reg.Resolve("warehouse.orders.2024")
	require.True(t, ok)
	require.Equal(t, "orders.2024", inner)
}

func TestResolveRemovePrefixStripsSchemePrefix(t *testing.T) {
	reg := New()
	reg.Register("s3://bucket", connectorFactory(func() (sql.Connector, error) { return fixtureConnector(), nil }), RegisterOptions{RemovePrefix: true})

	_, inner, ok := reg.Resolve("s3://bucket/2024/01/data.parquet")
	require.True(t, ok)
	require.Equal(t, "/2024/01/data.parquet", inner)
}

func TestRegisterArrowIsResolvable(t *testing.T) {
	reg := New()
	schema := sql.Schema{{Name: "x", Type: types.Varchar}}
	reg.RegisterArrow("mytable", schema, []sql.Row{{"hello"}})

	conn, inner, ok := reg.Resolve("mytable")
	require.True(t, ok)
	require.Equal(t, "mytable", inner)
	got, err := conn.GetSchema(sql.NewEmptyContext())
	require.NoError(t, err)
	require.Equal(t, schema, got)
}

func TestReRegisterReplacesRule(t *testing.T) {
	reg := New()
	schemaA := sql.Schema{{Name: "a", Type: types.Int64}}
	schemaB := sql.Schema{{Name: "b", Type: types.Varchar}}
	reg.RegisterArrow("t", schemaA, []sql.Row{{int64(1)}})
	reg.RegisterArrow("t", schemaB, []sql.Row{{"x"}})

	conn, _, ok := reg.Resolve("t")
	require.True(t, ok)
	got, err := conn.GetSchema(sql.NewEmptyContext())
	require.NoError(t, err)
	require.Equal(t, schemaB, got)
}

func TestListDatasetsIncludesBuiltins(t *testing.T) {
	reg := New()
	names := reg.ListDatasets("")
	require.Contains(t, names, "$planets")
	require.Contains(t, names, "$satellites")
}

func TestListDatasetsFiltersByRoot(t *testing.T) {
	reg := New()
	reg.Register("warehouse.orders", connectorFactory(func() (sql.Connector, error) { return fixtureConnector(), nil }), RegisterOptions{})
	reg.Register("warehouse.users", connectorFactory(func() (sql.Connector, error) { return fixtureConnector(), nil }), RegisterOptions{})

	names := reg.ListDatasets("warehouse")
	require.ElementsMatch(t, []string{"warehouse.orders", "warehouse.users"}, names)
}
