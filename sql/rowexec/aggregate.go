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
	"fmt"

	"github.com/qxengine/qx/sql"
	"github.com/qxengine/qx/sql/expression"
	"github.com/qxengine/qx/sql/physical"
)

type groupState struct {
	key  sql.Row
	accs []aggAccumulator
}

// buildHashAggregate is the sole aggregation strategy: groups are keyed
// by Fingerprint over the evaluated GroupBy tuple, with a per-bucket
// type-aware equality check resolving collisions. An empty GroupBy
// still emits exactly one row, aggregated over zero rows if the input
// was empty, matching SQL's no-GROUP-BY-clause semantics.
func buildHashAggregate(ctx *sql.Context, o *physical.HashAggregateOp) (sql.BatchIter, error) {
	childIt, err := Build(ctx, o.Input)
	if err != nil {
		return nil, err
	}
	childSchema := o.Input.Schema()
	groups := make(map[uint64][]*groupState)
	matCap := ctx.Globals.MaxMaterializeRows()
	var total int64

	for {
		if ctx.Cancelled() {
			return nil, ctx.Err()
		}
		b, err := childIt.Next(ctx)
		if err == sql.ErrIterDone {
			break
		}
		if err != nil {
			return nil, err
		}
		for _, row := range batchRows(b) {
			rb := rowBatch(childSchema, []sql.Row{row})
			key := make(sql.Row, len(o.GroupBy))
			for i, g := range o.GroupBy {
				col, err := g.Eval(ctx, rb)
				if err != nil {
					return nil, err
				}
				key[i] = expression.AsSlice(col, 1)[0]
			}
			h, err := sql.Fingerprint(key)
			if err != nil {
				return nil, err
			}
			var gs *groupState
			for _, cand := range groups[h] {
				if groupKeysEqual(o.GroupBy, cand.key, key) {
					gs = cand
					break
				}
			}
			if gs == nil {
				gs = &groupState{key: key, accs: make([]aggAccumulator, len(o.Aggregates))}
				for i, agg := range o.Aggregates {
					gs.accs[i] = newAccumulator(agg)
				}
				groups[h] = append(groups[h], gs)
				total++
				if matCap > 0 && total > matCap {
					return nil, sql.ErrResourceExceeded.New(fmt.Sprintf("distinct group count exceeded MAX_MATERIALIZE_ROWS (%d)", matCap))
				}
			}
			for i, agg := range o.Aggregates {
				var v interface{}
				if agg.Arg != nil {
					col, err := agg.Arg.Eval(ctx, rb)
					if err != nil {
						return nil, err
					}
					if col.Valid.Get(0) {
						v = expression.AsSlice(col, 1)[0]
					}
				} else {
					v = struct{}{} // COUNT(*) sentinel; countAcc ignores the value
				}
				if err := gs.accs[i].update(v); err != nil {
					return nil, err
				}
			}
		}
	}
	if err := childIt.Close(ctx); err != nil {
		return nil, err
	}

	var outRows []sql.Row
	for _, bucket := range groups {
		for _, gs := range bucket {
			row := make(sql.Row, 0, len(gs.key)+len(gs.accs))
			row = append(row, gs.key...)
			for _, acc := range gs.accs {
				v, err := acc.finalize()
				if err != nil {
					return nil, err
				}
				row = append(row, v)
			}
			outRows = append(outRows, row)
		}
	}
	if len(o.GroupBy) == 0 && len(outRows) == 0 {
		row := make(sql.Row, len(o.Aggregates))
		for i, agg := range o.Aggregates {
			v, err := newAccumulator(agg).finalize()
			if err != nil {
				return nil, err
			}
			row[i] = v
		}
		outRows = append(outRows, row)
	}
	return newMaterializedIter(ctx, o.OutSchema, outRows), nil
}

func groupKeysEqual(groupBy []sql.Expression, a, b sql.Row) bool {
	for i, g := range groupBy {
		cmp, err := g.Type().Compare(a[i], b[i])
		if err != nil || cmp != 0 {
			return false
		}
	}
	return true
}

// buildDistinct is hash aggregation with no aggregators: the full row is
// the group key.
func buildDistinct(ctx *sql.Context, o *physical.DistinctOp) (sql.BatchIter, error) {
	childIt, err := Build(ctx, o.Input)
	if err != nil {
		return nil, err
	}
	schema := o.Input.Schema()
	rows, err := drainAllRows(ctx, childIt, ctx.Globals.MaxMaterializeRows())
	if err != nil {
		return nil, err
	}
	if err := childIt.Close(ctx); err != nil {
		return nil, err
	}

	seen := make(map[uint64][]sql.Row)
	var out []sql.Row
	for _, row := range rows {
		h, err := sql.Fingerprint(row)
		if err != nil {
			return nil, err
		}
		dup := false
		for _, existing := range seen[h] {
			if rowsEqual(schema, existing, row) {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		seen[h] = append(seen[h], row)
		out = append(out, row)
	}
	return newMaterializedIter(ctx, schema, out), nil
}

func rowsEqual(schema sql.Schema, a, b sql.Row) bool {
	for i := range schema {
		cmp, err := schema[i].Type.Compare(a[i], b[i])
		if err != nil || cmp != 0 {
			return false
		}
	}
	return true
}
