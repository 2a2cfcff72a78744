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
	"container/heap"
	"sort"

	"github.com/qxengine/qx/sql"
	"github.com/qxengine/qx/sql/expression"
	"github.com/qxengine/qx/sql/physical"
)

// buildSort materializes Input fully and sorts it: used whenever a Sort
// has no following Limit for HeapSort to fuse with.
func buildSort(ctx *sql.Context, o *physical.SortOp) (sql.BatchIter, error) {
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
	cmp := sortComparator(schema, o.Fields)
	sort.SliceStable(rows, func(i, j int) bool { return cmp(rows[i], rows[j]) < 0 })
	return newMaterializedIter(ctx, schema, rows), nil
}

// buildHeapSort keeps a bounded max-heap of size K instead of sorting
// the whole input: only the K best rows seen so far are ever retained.
func buildHeapSort(ctx *sql.Context, o *physical.HeapSortOp) (sql.BatchIter, error) {
	childIt, err := Build(ctx, o.Input)
	if err != nil {
		return nil, err
	}
	schema := o.Input.Schema()
	cmp := sortComparator(schema, o.Fields)
	k := int(o.K)
	if k <= 0 {
		if err := childIt.Close(ctx); err != nil {
			return nil, err
		}
		return newMaterializedIter(ctx, schema, nil), nil
	}

	h := &rowHeap{cmp: cmp}
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
			if h.Len() < k {
				heap.Push(h, row)
				continue
			}
			// h.rows[0] is the current worst of the K kept (the heap
			// orders by "most worth evicting first"); replace it only if
			// row sorts ahead of it.
			if cmp(row, h.rows[0]) < 0 {
				h.rows[0] = row
				heap.Fix(h, 0)
			}
		}
	}
	if err := childIt.Close(ctx); err != nil {
		return nil, err
	}

	out := make([]sql.Row, h.Len())
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(h).(sql.Row)
	}
	return newMaterializedIter(ctx, schema, out), nil
}

// rowHeap is a max-heap ordered so the worst-ranked of the retained rows
// (by cmp) sits at the root, ready to be evicted by a better candidate.
type rowHeap struct {
	rows []sql.Row
	cmp  func(a, b sql.Row) int
}

func (h *rowHeap) Len() int            { return len(h.rows) }
func (h *rowHeap) Less(i, j int) bool  { return h.cmp(h.rows[i], h.rows[j]) > 0 }
func (h *rowHeap) Swap(i, j int)       { h.rows[i], h.rows[j] = h.rows[j], h.rows[i] }
func (h *rowHeap) Push(x interface{})  { h.rows = append(h.rows, x.(sql.Row)) }
func (h *rowHeap) Pop() interface{} {
	old := h.rows
	n := len(old)
	x := old[n-1]
	h.rows = old[:n-1]
	return x
}

// sortComparator builds a total order over rows from Fields, applied in
// order until one field breaks the tie; NULLS FIRST/LAST is honored
// per-field.
func sortComparator(schema sql.Schema, fields []physical.SortField) func(a, b sql.Row) int {
	return func(a, b sql.Row) int {
		for _, f := range fields {
			av, bv := evalSortField(schema, f, a), evalSortField(schema, f, b)
			c := compareNullable(f.Expr.Type(), av, bv, f.NullsFirst)
			if f.Descending {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	}
}

func evalSortField(schema sql.Schema, f physical.SortField, row sql.Row) interface{} {
	ctx := sql.NewEmptyContext()
	b := rowBatch(schema, []sql.Row{row})
	col, err := f.Expr.Eval(ctx, b)
	if err != nil || !col.Valid.Get(0) {
		return nil
	}
	return expression.AsSlice(col, 1)[0]
}

func compareNullable(t sql.Type, a, b interface{}, nullsFirst bool) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		if nullsFirst {
			return -1
		}
		return 1
	}
	if b == nil {
		if nullsFirst {
			return 1
		}
		return -1
	}
	cmp, err := t.Compare(a, b)
	if err != nil {
		return 0
	}
	return cmp
}
