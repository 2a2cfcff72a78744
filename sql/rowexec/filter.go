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

package rowexec

import (
	"github.com/qxengine/qx/sql"
	"github.com/qxengine/qx/sql/expression"
)

// vectorFilterIter evaluates Predicate over a whole batch at once
// (Expression.Eval is itself columnar) and gathers the surviving rows.
type vectorFilterIter struct {
	predicate sql.Expression
	child     sql.BatchIter
}

func (v *vectorFilterIter) Next(ctx *sql.Context) (*sql.Batch, error) {
	for {
		if ctx.Cancelled() {
			return nil, ctx.Err()
		}
		b, err := v.child.Next(ctx)
		if err != nil {
			return nil, err
		}
		col, err := v.predicate.Eval(ctx, b)
		if err != nil {
			return nil, err
		}
		truth := expression.AsSlice(col, b.Rows)
		var idx []int
		for i := 0; i < b.Rows; i++ {
			if !col.Valid.Get(i) {
				continue
			}
			if t, ok := truth[i].(bool); ok && t {
				idx = append(idx, i)
			}
		}
		if len(idx) == 0 {
			continue
		}
		if len(idx) == b.Rows {
			return b, nil
		}
		return gatherBatch(b, idx), nil
	}
}

func (v *vectorFilterIter) Close(ctx *sql.Context) error { return v.child.Close(ctx) }

// vectorProjectIter evaluates Projections over each input batch,
// producing a new batch with exactly those output columns.
type vectorProjectIter struct {
	projections []sql.Expression
	schema      sql.Schema
	child       sql.BatchIter
}

func (v *vectorProjectIter) Next(ctx *sql.Context) (*sql.Batch, error) {
	if ctx.Cancelled() {
		return nil, ctx.Err()
	}
	b, err := v.child.Next(ctx)
	if err != nil {
		return nil, err
	}
	cols := make([]sql.ColumnData, len(v.projections))
	for i, p := range v.projections {
		col, err := p.Eval(ctx, b)
		if err != nil {
			return nil, err
		}
		cols[i] = col
	}
	return &sql.Batch{Schema: v.schema, Columns: cols, Rows: b.Rows}, nil
}

func (v *vectorProjectIter) Close(ctx *sql.Context) error { return v.child.Close(ctx) }
