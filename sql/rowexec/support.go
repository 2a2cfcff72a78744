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

// Package rowexec builds pull-based BatchIter trees from a lowered
// physical.Op tree and runs them: one concrete iterator type per
// physical.Op type, wired up by Build's type-switch.
package rowexec

import (
	"fmt"

	"github.com/qxengine/qx/sql"
)

func morselSize(ctx *sql.Context) int {
	if ctx.Globals != nil {
		if n := ctx.Globals.MorselRows(); n > 0 {
			return n
		}
	}
	return sql.DefaultMorselRows
}

// rowBatch packs a fixed row set into a single Batch with generic
// []interface{} columns, the representation every expression Eval in
// sql/expression already produces via RepeatScalar/AsSlice.
func rowBatch(schema sql.Schema, rows []sql.Row) *sql.Batch {
	cols := make([]sql.ColumnData, len(schema))
	for c := range schema {
		vals := make([]interface{}, len(rows))
		valid := sql.NewValidity(len(rows))
		for r, row := range rows {
			vals[r] = row[c]
			if row[c] != nil {
				valid.Set(r, true)
			}
		}
		cols[c] = sql.ColumnData{Values: vals, Valid: valid}
	}
	return &sql.Batch{Schema: schema, Columns: cols, Rows: len(rows)}
}

func batchRows(b *sql.Batch) []sql.Row {
	rows := make([]sql.Row, b.Rows)
	for i := range rows {
		rows[i] = b.Row(i)
	}
	return rows
}

func gatherBatch(b *sql.Batch, idx []int) *sql.Batch {
	rows := make([]sql.Row, len(idx))
	for i, k := range idx {
		rows[i] = b.Row(k)
	}
	return rowBatch(b.Schema, rows)
}

// materializedIter serves a fixed, already-computed row set in
// morsel-sized batches; the terminal shape of every pipeline-breaking
// operator (HashAggregate, Sort, Distinct, ...) once it has drained its
// child.
type materializedIter struct {
	schema sql.Schema
	rows   []sql.Row
	pos    int
	morsel int
}

func newMaterializedIter(ctx *sql.Context, schema sql.Schema, rows []sql.Row) *materializedIter {
	return &materializedIter{schema: schema, rows: rows, morsel: morselSize(ctx)}
}

func (m *materializedIter) Next(ctx *sql.Context) (*sql.Batch, error) {
	if ctx.Cancelled() {
		return nil, ctx.Err()
	}
	if m.pos >= len(m.rows) {
		return nil, sql.ErrIterDone
	}
	end := m.pos + m.morsel
	if end > len(m.rows) {
		end = len(m.rows)
	}
	b := rowBatch(m.schema, m.rows[m.pos:end])
	m.pos = end
	return b, nil
}

func (m *materializedIter) Close(ctx *sql.Context) error { return nil }

// drainAllRows pulls every row out of a child iterator, enforcing
// MAX_MATERIALIZE_ROWS for the pipeline breakers that must hold their
// entire input in memory at once (Sort, Distinct, and the materialized
// right side of the hash, nested-loop and cross joins). HashAggregate
// does not use it; it caps its distinct group count instead.
func drainAllRows(ctx *sql.Context, it sql.BatchIter, cap int64) ([]sql.Row, error) {
	var out []sql.Row
	for {
		if ctx.Cancelled() {
			return nil, ctx.Err()
		}
		b, err := it.Next(ctx)
		if err == sql.ErrIterDone {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, batchRows(b)...)
		if cap > 0 && int64(len(out)) > cap {
			return nil, sql.ErrResourceExceeded.New(fmt.Sprintf("materialized row count exceeded MAX_MATERIALIZE_ROWS (%d)", cap))
		}
	}
	return out, nil
}

// tracedIter wraps any BatchIter so every Next call opens and closes an
// opentracing span named after the operator, reported to the context's
// Tracer; EXPLAIN ANALYZE output does not read these spans back.
type tracedIter struct {
	name  string
	inner sql.BatchIter
}

func trace(name string, inner sql.BatchIter) sql.BatchIter {
	return &tracedIter{name: name, inner: inner}
}

func (t *tracedIter) Next(ctx *sql.Context) (*sql.Batch, error) {
	span := ctx.StartSpan(t.name)
	defer span.Finish()
	return t.inner.Next(ctx)
}

func (t *tracedIter) Close(ctx *sql.Context) error { return t.inner.Close(ctx) }
