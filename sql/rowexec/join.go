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
	"github.com/qxengine/qx/sql/physical"
)

// buildHashJoin materializes the build side (Right) into a fingerprint
// multimap, then probes it once per batch of the streamed (Left) side.
// Null-equals-null is always false, per SQL join semantics; a fingerprint
// match is re-checked with a type-aware per-key compare to rule out
// hash collisions.
func buildHashJoin(ctx *sql.Context, o *physical.HashJoinOp) (sql.BatchIter, error) {
	leftIt, err := Build(ctx, o.Left)
	if err != nil {
		return nil, err
	}
	rightIt, err := Build(ctx, o.Right)
	if err != nil {
		return nil, err
	}
	rightRows, err := drainAllRows(ctx, rightIt, ctx.Globals.MaxMaterializeRows())
	if err != nil {
		return nil, err
	}
	if err := rightIt.Close(ctx); err != nil {
		return nil, err
	}

	rightSchema := o.Right.Schema()
	buildMap := make(map[uint64][]int, len(rightRows))
	for i, row := range rightRows {
		key, ok, err := joinKey(ctx, o.RightKeys, rightSchema, row)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		h, err := sql.Fingerprint(key)
		if err != nil {
			return nil, err
		}
		buildMap[h] = append(buildMap[h], i)
	}

	return &hashJoinIter{
		left:        leftIt,
		leftKeys:    o.LeftKeys,
		leftSchema:  o.Left.Schema(),
		rightRows:   rightRows,
		rightKeys:   o.RightKeys,
		rightSchema: rightSchema,
		buildMap:    buildMap,
		typ:         o.Type,
		outSchema:   o.Schema(),
		matched:     make(map[int]bool),
	}, nil
}

func joinKey(ctx *sql.Context, keys []sql.Expression, schema sql.Schema, row sql.Row) (sql.Row, bool, error) {
	b := rowBatch(schema, []sql.Row{row})
	key := make(sql.Row, len(keys))
	for i, k := range keys {
		col, err := k.Eval(ctx, b)
		if err != nil {
			return nil, false, err
		}
		if !col.Valid.Get(0) {
			return nil, false, nil
		}
		key[i] = expression.AsSlice(col, 1)[0]
	}
	return key, true, nil
}

func equalKeys(ctx *sql.Context, leftKey sql.Row, rightKeys []sql.Expression, rightSchema sql.Schema, right sql.Row) (bool, error) {
	rk, ok, err := joinKey(ctx, rightKeys, rightSchema, right)
	if err != nil || !ok {
		return false, err
	}
	for i, k := range rightKeys {
		cmp, err := k.Type().Compare(leftKey[i], rk[i])
		if err != nil {
			return false, err
		}
		if cmp != 0 {
			return false, nil
		}
	}
	return true, nil
}

func concatRows(a, b sql.Row) sql.Row {
	out := make(sql.Row, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return out
}

func nullRow(n int) sql.Row { return make(sql.Row, n) }

type hashJoinIter struct {
	left        sql.BatchIter
	leftKeys    []sql.Expression
	leftSchema  sql.Schema
	rightRows   []sql.Row
	rightKeys   []sql.Expression
	rightSchema sql.Schema
	buildMap    map[uint64][]int
	typ         physical.JoinLogicalType
	outSchema   sql.Schema

	pend    []sql.Row
	pos     int
	done    bool
	matched map[int]bool
}

func (h *hashJoinIter) Next(ctx *sql.Context) (*sql.Batch, error) {
	const outRows = 1024
	for {
		if h.pos < len(h.pend) {
			take := len(h.pend) - h.pos
			if take > outRows {
				take = outRows
			}
			out := h.pend[h.pos : h.pos+take]
			h.pos += take
			return rowBatch(h.outSchema, out), nil
		}
		if h.done {
			return nil, sql.ErrIterDone
		}
		if ctx.Cancelled() {
			return nil, ctx.Err()
		}
		b, err := h.left.Next(ctx)
		if err == sql.ErrIterDone {
			h.done = true
			if h.typ == physical.RightOuter || h.typ == physical.FullOuter {
				h.pend = h.unmatchedRightRows()
				h.pos = 0
			}
			continue
		}
		if err != nil {
			return nil, err
		}
		out, err := h.probeBatch(ctx, b)
		if err != nil {
			return nil, err
		}
		if len(out) == 0 {
			continue
		}
		return rowBatch(h.outSchema, out), nil
	}
}

func (h *hashJoinIter) probeBatch(ctx *sql.Context, b *sql.Batch) ([]sql.Row, error) {
	var out []sql.Row
	for _, left := range batchRows(b) {
		key, ok, err := joinKey(ctx, h.leftKeys, h.leftSchema, left)
		if err != nil {
			return nil, err
		}
		var candidates []int
		if ok {
			hv, err := sql.Fingerprint(key)
			if err != nil {
				return nil, err
			}
			candidates = h.buildMap[hv]
		}
		matchedAny := false
		for _, ri := range candidates {
			right := h.rightRows[ri]
			eq, err := equalKeys(ctx, key, h.rightKeys, h.rightSchema, right)
			if err != nil {
				return nil, err
			}
			if !eq {
				continue
			}
			matchedAny = true
			h.matched[ri] = true
			switch h.typ {
			case physical.LeftSemi, physical.LeftAnti:
				// handled once, below
			default:
				out = append(out, concatRows(left, right))
			}
		}
		switch h.typ {
		case physical.LeftSemi:
			if matchedAny {
				out = append(out, left)
			}
		case physical.LeftAnti:
			if !matchedAny {
				out = append(out, left)
			}
		case physical.LeftOuter, physical.FullOuter:
			if !matchedAny {
				out = append(out, concatRows(left, nullRow(len(h.rightSchema))))
			}
		}
	}
	return out, nil
}

func (h *hashJoinIter) unmatchedRightRows() []sql.Row {
	var out []sql.Row
	for i, right := range h.rightRows {
		if h.matched[i] {
			continue
		}
		out = append(out, concatRows(nullRow(len(h.leftSchema)), right))
	}
	return out
}

func (h *hashJoinIter) Close(ctx *sql.Context) error { return h.left.Close(ctx) }
