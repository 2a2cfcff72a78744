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
	"github.com/qxengine/qx/sql/plan"
	"github.com/qxengine/qx/sql/types"
)

type fakeConnector struct {
	schema sql.Schema
}

func (f *fakeConnector) GetSchema(ctx *sql.Context) (sql.Schema, error) { return f.schema, nil }
func (f *fakeConnector) GetStatistics(ctx *sql.Context) (*sql.RelationStatistics, error) {
	return &sql.RelationStatistics{HasCount: false}, nil
}
func (f *fakeConnector) ListPartitions(ctx *sql.Context, r sql.TemporalRange) ([]sql.PartitionKey, error) {
	return nil, nil
}
func (f *fakeConnector) ReadDataset(ctx *sql.Context, req sql.PushdownRequest) (sql.BatchIter, []sql.SimplePredicate, error) {
	return nil, nil, nil
}
func (f *fakeConnector) Capabilities() sql.Capabilities { return sql.Capabilities{} }
func (f *fakeConnector) Mode() sql.Mode                 { return sql.ReadOnly }

type fakeCatalog struct {
	datasets map[string]sql.Connector
}

func (c *fakeCatalog) Resolve(name string) (sql.Connector, string, bool) {
	conn, ok := c.datasets[name]
	return conn, name, ok
}

func newOrdersBinder() (*Binder, *sql.Context) {
	cat := &fakeCatalog{datasets: map[string]sql.Connector{
		"orders": &fakeConnector{schema: sql.Schema{
			{Name: "id", Type: types.Int64},
			{Name: "customer", Type: types.Varchar},
			{Name: "total", Type: types.Double},
		}},
	}}
	return New(cat), sql.NewEmptyContext()
}

func TestBuildSimpleSelect(t *testing.T) {
	b, ctx := newOrdersBinder()
	node, err := b.Build(ctx, "SELECT id, total FROM orders WHERE total > 10")
	require.NoError(t, err)

	proj, ok := node.(*plan.Project)
	require.True(t, ok)
	require.Len(t, proj.Schema(), 2)
	require.Equal(t, "id", proj.Schema()[0].Name)

	_, ok = proj.Child.(*plan.Filter)
	require.True(t, ok)
}

func TestBuildSelectStar(t *testing.T) {
	b, ctx := newOrdersBinder()
	node, err := b.Build(ctx, "SELECT * FROM orders")
	require.NoError(t, err)
	require.Len(t, node.Schema(), 3)
}

func TestBuildGroupByWithCountAndSum(t *testing.T) {
	b, ctx := newOrdersBinder()
	node, err := b.Build(ctx, "SELECT customer, COUNT(*), SUM(total) FROM orders GROUP BY customer")
	require.NoError(t, err)

	proj, ok := node.(*plan.Project)
	require.True(t, ok)
	require.Len(t, proj.Schema(), 3)

	agg, ok := proj.Child.(*plan.Aggregate)
	require.True(t, ok)
	require.Len(t, agg.Funcs, 2)
	require.Equal(t, "COUNT_STAR", agg.Funcs[0].Name)
	require.Equal(t, "SUM", agg.Funcs[1].Name)
}

func TestBuildSelectListNotInGroupByErrors(t *testing.T) {
	b, ctx := newOrdersBinder()
	_, err := b.Build(ctx, "SELECT id, COUNT(*) FROM orders GROUP BY customer")
	require.Error(t, err)
}

func TestBuildOrderByAndLimit(t *testing.T) {
	b, ctx := newOrdersBinder()
	node, err := b.Build(ctx, "SELECT id FROM orders ORDER BY id DESC LIMIT 5")
	require.NoError(t, err)

	limit, ok := node.(*plan.Limit)
	require.True(t, ok)
	_, ok = limit.Child.(*plan.Sort)
	require.True(t, ok)
}

func TestBuildLimitWithOffset(t *testing.T) {
	b, ctx := newOrdersBinder()
	node, err := b.Build(ctx, "SELECT id FROM orders LIMIT 5 OFFSET 10")
	require.NoError(t, err)
	_, ok := node.(*plan.Limit)
	require.True(t, ok)
}

func TestBuildUnknownDatasetErrors(t *testing.T) {
	b, ctx := newOrdersBinder()
	_, err := b.Build(ctx, "SELECT * FROM nope")
	require.Error(t, err)
	require.True(t, sql.ErrDatasetNotFound.Is(err))
}

func TestBuildAliasedSource(t *testing.T) {
	b, ctx := newOrdersBinder()
	node, err := b.Build(ctx, "SELECT o.id FROM orders AS o WHERE o.total > 1")
	require.NoError(t, err)
	require.Len(t, node.Schema(), 1)
}
