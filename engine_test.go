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

package qx

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qxengine/qx/catalog"
	"github.com/qxengine/qx/permissions"
	"github.com/qxengine/qx/sql"
	"github.com/qxengine/qx/sql/types"
)

func ordersCatalog() *catalog.Registry {
	cat := catalog.New()
	cat.RegisterArrow("orders", sql.Schema{
		{Name: "id", Type: types.Int64},
		{Name: "customer", Type: types.Varchar},
		{Name: "total", Type: types.Double},
	}, []sql.Row{
		sql.NewRow(int64(1), "alice", 12.50),
		sql.NewRow(int64(2), "bob", 30.00),
		sql.NewRow(int64(3), "alice", 7.25),
	})
	return cat
}

func drainCursor(t *testing.T, cur *Cursor) []sql.Row {
	t.Helper()
	var rows []sql.Row
	for cur.Next() {
		rows = append(rows, cur.Row())
	}
	require.NoError(t, cur.Err())
	require.NoError(t, cur.Close())
	return rows
}

func TestEngineQuerySimpleSelect(t *testing.T) {
	e := New(ordersCatalog(), Config{})
	ctx := sql.NewEmptyContext()

	schema, cur, err := e.Query(ctx, "SELECT id, customer FROM orders WHERE total > 10")
	require.NoError(t, err)
	require.Len(t, schema, 2)

	rows := drainCursor(t, cur)
	require.Len(t, rows, 2)
}

func TestEngineQueryAggregation(t *testing.T) {
	e := New(ordersCatalog(), Config{})
	ctx := sql.NewEmptyContext()

	_, cur, err := e.Query(ctx, "SELECT customer, COUNT(*), SUM(total) FROM orders GROUP BY customer")
	require.NoError(t, err)
	rows := drainCursor(t, cur)
	require.Len(t, rows, 2)
}

func TestEngineQueryOrderByLimit(t *testing.T) {
	e := New(ordersCatalog(), Config{})
	ctx := sql.NewEmptyContext()

	_, cur, err := e.Query(ctx, "SELECT id FROM orders ORDER BY total DESC LIMIT 1")
	require.NoError(t, err)
	rows := drainCursor(t, cur)
	require.Len(t, rows, 1)
	require.Equal(t, int64(2), rows[0][0])
}

func TestEngineQueryUnknownDataset(t *testing.T) {
	e := New(ordersCatalog(), Config{})
	ctx := sql.NewEmptyContext()

	_, _, err := e.Query(ctx, "SELECT * FROM nope")
	require.Error(t, err)
}

func TestEngineQueryDeniedByPermissions(t *testing.T) {
	gate := permissions.New([]permissions.Entry{{Role: "analyst", Permission: "READ", Table: "public.*"}})
	e := New(ordersCatalog(), Config{Permissions: gate, Roles: []string{"analyst"}})
	ctx := sql.NewEmptyContext()

	_, _, err := e.Query(ctx, "SELECT * FROM orders")
	require.Error(t, err)
	require.True(t, sql.ErrPermissionsError.Is(err))
}

func TestEngineQueryAllowedByDefaultRole(t *testing.T) {
	gate := permissions.New([]permissions.Entry{{Role: "analyst", Permission: "READ", Table: "public.*"}})
	e := New(ordersCatalog(), Config{Permissions: gate})
	ctx := sql.NewEmptyContext()

	_, cur, err := e.Query(ctx, "SELECT * FROM orders")
	require.NoError(t, err)
	drainCursor(t, cur)
}

func TestEngineBuiltinPlanets(t *testing.T) {
	e := NewDefault()
	ctx := sql.NewEmptyContext()

	_, cur, err := e.Query(ctx, "SELECT name FROM $planets")
	require.NoError(t, err)
	rows := drainCursor(t, cur)
	require.Len(t, rows, 9)
}

func TestEngineExplainFormatTextShowsScanPredicate(t *testing.T) {
	e := New(ordersCatalog(), Config{})
	ctx := sql.NewEmptyContext()

	out, err := e.Explain(ctx, "EXPLAIN SELECT id FROM orders WHERE id = 1 AND id > 0")
	require.NoError(t, err)
	require.Contains(t, out, "ConnectorScan")
}

func TestEngineExplainFormatMermaidRendersFlowchart(t *testing.T) {
	e := New(ordersCatalog(), Config{})
	ctx := sql.NewEmptyContext()

	out, err := e.Explain(ctx, "EXPLAIN FORMAT MERMAID SELECT id FROM orders WHERE total > 10")
	require.NoError(t, err)
	require.Contains(t, out, "flowchart TD")
	require.Contains(t, out, "-->")
}

func TestEngineExplainAnalyzeExecutesThePlan(t *testing.T) {
	e := New(ordersCatalog(), Config{})
	ctx := sql.NewEmptyContext()

	out, err := e.Explain(ctx, "EXPLAIN ANALYZE SELECT id FROM orders")
	require.NoError(t, err)
	require.NotEmpty(t, out)
}

func TestEngineProcessListTracksActiveQuery(t *testing.T) {
	e := New(ordersCatalog(), Config{})
	ctx := sql.NewEmptyContext()

	_, cur, err := e.Query(ctx, "SELECT id FROM orders")
	require.NoError(t, err)
	require.Len(t, e.Processes.Processes(), 1)
	drainCursor(t, cur)
	require.Len(t, e.Processes.Processes(), 0)
}
