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

package connectors

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qxengine/qx/sql"
)

func newTestSQLConnector(t *testing.T) *SQL {
	t.Helper()
	conn, err := NewSQLConnector("sqlite", ":memory:", "widgets")
	require.NoError(t, err)

	_, err = conn.db.Exec(`CREATE TABLE widgets (id INTEGER, name TEXT, price REAL)`)
	require.NoError(t, err)
	_, err = conn.db.Exec(`INSERT INTO widgets VALUES (1, 'a', 1.5), (2, 'b', 2.5), (3, 'c', 3.5)`)
	require.NoError(t, err)
	return conn
}

func drainSQLIter(t *testing.T, it sql.BatchIter) []sql.Row {
	t.Helper()
	ctx := sql.NewEmptyContext()
	var rows []sql.Row
	for {
		batch, err := it.Next(ctx)
		if err == sql.ErrIterDone {
			break
		}
		require.NoError(t, err)
		for r := 0; r < batch.Rows; r++ {
			row := make(sql.Row, len(batch.Columns))
			for c, col := range batch.Columns {
				row[c] = col.Values.([]interface{})[r]
			}
			rows = append(rows, row)
		}
	}
	return rows
}

func TestSQLGetSchema(t *testing.T) {
	conn := newTestSQLConnector(t)
	schema, err := conn.GetSchema(sql.NewEmptyContext())
	require.NoError(t, err)
	require.Equal(t, 3, len(schema))
}

func TestSQLReadDatasetNoPushdown(t *testing.T) {
	conn := newTestSQLConnector(t)
	it, declined, err := conn.ReadDataset(sql.NewEmptyContext(), sql.PushdownRequest{})
	require.NoError(t, err)
	require.Nil(t, declined)
	rows := drainSQLIter(t, it)
	require.Len(t, rows, 3)
}

func TestSQLReadDatasetPushesLimit(t *testing.T) {
	conn := newTestSQLConnector(t)
	it, _, err := conn.ReadDataset(sql.NewEmptyContext(), sql.PushdownRequest{Limit: 2})
	require.NoError(t, err)
	rows := drainSQLIter(t, it)
	require.Len(t, rows, 2)
}

func TestSQLReadDatasetPushesPredicate(t *testing.T) {
	conn := newTestSQLConnector(t)
	it, _, err := conn.ReadDataset(sql.NewEmptyContext(), sql.PushdownRequest{
		Predicates: []sql.SimplePredicate{{Column: "id", Op: sql.OpGt, Value: int64(1)}},
	})
	require.NoError(t, err)
	rows := drainSQLIter(t, it)
	require.Len(t, rows, 2)
}

func TestSQLBuildQueryProjectsAndLimits(t *testing.T) {
	conn := newTestSQLConnector(t)
	query, args := conn.buildQuery(sql.PushdownRequest{Projection: []string{"id", "name"}, Limit: 5})
	require.Equal(t, "SELECT id, name FROM widgets LIMIT 5", query)
	require.Empty(t, args)
}

func TestSQLBuildQueryInClause(t *testing.T) {
	conn := newTestSQLConnector(t)
	query, args := conn.buildQuery(sql.PushdownRequest{
		Predicates: []sql.SimplePredicate{{Column: "id", Op: sql.OpIn, Values: []interface{}{int64(1), int64(2)}}},
	})
	require.Equal(t, "SELECT * FROM widgets WHERE id IN (?, ?)", query)
	require.Equal(t, []interface{}{int64(1), int64(2)}, args)
}

func TestSQLCapabilitiesAllPushdown(t *testing.T) {
	conn := newTestSQLConnector(t)
	caps := conn.Capabilities()
	require.True(t, caps.PredicatePushdown)
	require.True(t, caps.ProjectionPushdown)
	require.True(t, caps.LimitPushdown)
}

func TestSQLGetStatisticsCountsRows(t *testing.T) {
	conn := newTestSQLConnector(t)
	stats, err := conn.GetStatistics(sql.NewEmptyContext())
	require.NoError(t, err)
	require.True(t, stats.HasCount)
	require.Equal(t, int64(3), stats.RecordCount)
}
