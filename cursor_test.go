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

	"github.com/qxengine/qx/sql"
)

func TestCursorShapeMaterializesAndReportsDimensions(t *testing.T) {
	e := New(ordersCatalog(), Config{})
	ctx := sql.NewEmptyContext()

	_, cur, err := e.Query(ctx, "SELECT id, customer FROM orders WHERE total > 10")
	require.NoError(t, err)
	defer cur.Close()

	rows, cols, err := cur.Shape()
	require.NoError(t, err)
	require.Equal(t, 2, rows)
	require.Equal(t, 2, cols)
}

func TestCursorStatsReportsRuleFiringsAndRowCounts(t *testing.T) {
	e := New(ordersCatalog(), Config{})
	ctx := sql.NewEmptyContext()

	_, cur, err := e.Query(ctx, "SELECT id FROM orders WHERE id = 1 AND id > 0")
	require.NoError(t, err)
	defer cur.Close()

	require.NoError(t, cur.Materialize())
	stats := cur.Stats()
	require.Equal(t, 1, stats["rows_read"])
	require.Equal(t, 1, stats["columns_read"])
	require.NotEmpty(t, stats["executed_plan"])
	require.GreaterOrEqual(t, stats["optimization_predicate_compaction"], 1)
}

func TestCursorToArrowTableRoundTripsRowCount(t *testing.T) {
	e := New(ordersCatalog(), Config{})
	ctx := sql.NewEmptyContext()

	_, cur, err := e.Query(ctx, "SELECT id FROM orders")
	require.NoError(t, err)
	defer cur.Close()

	tbl, err := cur.ToArrowTable(nil)
	require.NoError(t, err)
	defer tbl.Release()
	require.Equal(t, int64(3), tbl.NumRows())
	require.Equal(t, int64(1), tbl.NumCols())
}
