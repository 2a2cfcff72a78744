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

// Package connectors implements sql.Connector for every supported data
// source: in-memory tables, local/S3 blob storage with Mabel-partition
// layout, relational databases, and Iceberg tables.
package connectors

import (
	"github.com/qxengine/qx/sql"
)

// Memory backs register_arrow/register_df style programmatic registration
// and the built-in $planets/$satellites virtual datasets: a fixed row set
// held in process memory, served back through the ordinary ReadDataset
// path like any other connector. It accepts every pushdown so the
// physical planner never needs a residual VectorFilter/VectorProject over
// data that is already entirely resident.
type Memory struct {
	schema sql.Schema
	rows   []sql.Row
}

// NewMemory wraps a fixed row set as a connector. rows must already match
// schema's column count and order.
func NewMemory(schema sql.Schema, rows []sql.Row) *Memory {
	return &Memory{schema: schema, rows: rows}
}

func (m *Memory) GetSchema(ctx *sql.Context) (sql.Schema, error) { return m.schema, nil }

func (m *Memory) GetStatistics(ctx *sql.Context) (*sql.RelationStatistics, error) {
	return &sql.RelationStatistics{RecordCount: int64(len(m.rows)), HasCount: true}, nil
}

func (m *Memory) ListPartitions(ctx *sql.Context, r sql.TemporalRange) ([]sql.PartitionKey, error) {
	return nil, nil
}

// ReadDataset applies every pushdown itself (Capabilities reports full
// support) rather than relying on the executor's residual operators: the
// whole dataset already sits in memory, so there is no cost difference
// between filtering here and filtering downstream, and doing it here lets
// EXPLAIN show zero residual filter nodes for the in-memory path.
func (m *Memory) ReadDataset(ctx *sql.Context, req sql.PushdownRequest) (sql.BatchIter, []sql.SimplePredicate, error) {
	rows := m.rows
	if len(req.Predicates) > 0 {
		var kept []sql.Row
		for _, row := range rows {
			if matchesAll(m.schema, row, req.Predicates) {
				kept = append(kept, row)
			}
		}
		rows = kept
	}

	outSchema := m.schema
	if len(req.Projection) > 0 {
		outSchema = m.schema.Project(req.Projection...)
		rows = projectRows(m.schema, outSchema, rows)
	}
	if req.Limit > 0 && len(rows) > req.Limit {
		rows = rows[:req.Limit]
	}
	return newSliceIter(outSchema, rows), nil, nil
}

func (m *Memory) Capabilities() sql.Capabilities {
	return sql.Capabilities{
		PredicatePushdown:         true,
		ProjectionPushdown:        true,
		LimitPushdown:             true,
		CanPushCompoundPredicates: true,
	}
}

func (m *Memory) Mode() sql.Mode { return sql.ReadOnly }

func projectRows(from, to sql.Schema, rows []sql.Row) []sql.Row {
	idx := make([]int, len(to))
	for i, col := range to {
		idx[i] = from.IndexOf(col.Name, col.Source)
	}
	out := make([]sql.Row, len(rows))
	for r, row := range rows {
		nr := make(sql.Row, len(idx))
		for i, c := range idx {
			if c >= 0 {
				nr[i] = row[c]
			}
		}
		out[r] = nr
	}
	return out
}

func matchesAll(schema sql.Schema, row sql.Row, preds []sql.SimplePredicate) bool {
	for _, p := range preds {
		if !matchesOne(schema, row, p) {
			return false
		}
	}
	return true
}

func matchesOne(schema sql.Schema, row sql.Row, p sql.SimplePredicate) bool {
	idx := schema.IndexOf(p.Column, "")
	if idx < 0 {
		return false
	}
	v := row[idx]
	switch p.Op {
	case sql.OpIsNull:
		return v == nil
	case sql.OpIsNotNull:
		return v != nil
	}
	if v == nil {
		return false
	}
	switch p.Op {
	case sql.OpIn:
		for _, want := range p.Values {
			if cmp, err := schema[idx].Type.Compare(v, want); err == nil && cmp == 0 {
				return true
			}
		}
		return false
	case sql.OpNotIn:
		for _, want := range p.Values {
			if cmp, err := schema[idx].Type.Compare(v, want); err == nil && cmp == 0 {
				return false
			}
		}
		return true
	}
	cmp, err := schema[idx].Type.Compare(v, p.Value)
	if err != nil {
		return false
	}
	switch p.Op {
	case sql.OpEq:
		return cmp == 0
	case sql.OpNe:
		return cmp != 0
	case sql.OpLt:
		return cmp < 0
	case sql.OpLe:
		return cmp <= 0
	case sql.OpGt:
		return cmp > 0
	case sql.OpGe:
		return cmp >= 0
	default:
		return false
	}
}

// sliceIter is the simplest possible BatchIter: it serves a fixed row set
// as a single batch, then ErrIterDone forever after.
type sliceIter struct {
	schema sql.Schema
	rows   []sql.Row
	done   bool
}

func newSliceIter(schema sql.Schema, rows []sql.Row) *sliceIter {
	return &sliceIter{schema: schema, rows: rows}
}

func (s *sliceIter) Next(ctx *sql.Context) (*sql.Batch, error) {
	if s.done || ctx.Cancelled() {
		if ctx.Cancelled() {
			return nil, ctx.Err()
		}
		return nil, sql.ErrIterDone
	}
	s.done = true
	cols := make([]sql.ColumnData, len(s.schema))
	for c := range s.schema {
		vals := make([]interface{}, len(s.rows))
		valid := sql.NewValidity(len(s.rows))
		for r, row := range s.rows {
			vals[r] = row[c]
			if row[c] != nil {
				valid.Set(r, true)
			}
		}
		cols[c] = sql.ColumnData{Values: vals, Valid: valid}
	}
	return &sql.Batch{Schema: s.schema, Columns: cols, Rows: len(s.rows)}, nil
}

func (s *sliceIter) Close(ctx *sql.Context) error { return nil }
