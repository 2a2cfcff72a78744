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

// buildNestedLoopJoin materializes Right once and evaluates Condition
// for every (left, right) pair: the fallback for cross/non-equi
// conditions HashJoin can't key on.
func buildNestedLoopJoin(ctx *sql.Context, o *physical.NestedLoopJoinOp) (sql.BatchIter, error) {
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
	return &nestedLoopJoinIter{
		left:        leftIt,
		leftSchema:  o.Left.Schema(),
		rightRows:   rightRows,
		rightSchema: o.Right.Schema(),
		condition:   o.Condition,
		typ:         o.Type,
		outSchema:   o.Schema(),
		matched:     make(map[int]bool),
	}, nil
}

type nestedLoopJoinIter struct {
	left        sql.BatchIter
	leftSchema  sql.Schema
	rightRows   []sql.Row
	rightSchema sql.Schema
	condition   sql.Expression // nil for a plain cross join
	typ         physical.JoinLogicalType
	outSchema   sql.Schema

	pend    []sql.Row
	pos     int
	done    bool
	matched map[int]bool
}

func (n *nestedLoopJoinIter) Next(ctx *sql.Context) (*sql.Batch, error) {
	const outRows = 1024
	for {
		if n.pos < len(n.pend) {
			take := len(n.pend) - n.pos
			if take > outRows {
				take = outRows
			}
			out := n.pend[n.pos : n.pos+take]
			n.pos += take
			return rowBatch(n.outSchema, out), nil
		}
		if n.done {
			return nil, sql.ErrIterDone
		}
		if ctx.Cancelled() {
			return nil, ctx.Err()
		}
		b, err := n.left.Next(ctx)
		if err == sql.ErrIterDone {
			n.done = true
			if n.typ == physical.RightOuter || n.typ == physical.FullOuter {
				n.pend = n.unmatchedRightRows()
				n.pos = 0
			}
			continue
		}
		if err != nil {
			return nil, err
		}
		out, err := n.probeBatch(ctx, b)
		if err != nil {
			return nil, err
		}
		if len(out) == 0 {
			continue
		}
		return rowBatch(n.outSchema, out), nil
	}
}

func (n *nestedLoopJoinIter) probeBatch(ctx *sql.Context, b *sql.Batch) ([]sql.Row, error) {
	var out []sql.Row
	for _, left := range batchRows(b) {
		matchedAny := false
		for ri, right := range n.rightRows {
			ok, err := n.evalCondition(ctx, left, right)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			matchedAny = true
			n.matched[ri] = true
			switch n.typ {
			case physical.LeftSemi, physical.LeftAnti:
			default:
				out = append(out, concatRows(left, right))
			}
		}
		switch n.typ {
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
				out = append(out, concatRows(left, nullRow(len(n.rightSchema))))
			}
		}
	}
	return out, nil
}

func (n *nestedLoopJoinIter) evalCondition(ctx *sql.Context, left, right sql.Row) (bool, error) {
	if n.condition == nil {
		return true, nil
	}
	combined := concatRows(left, right)
	schema := append(append(sql.Schema{}, n.leftSchema...), n.rightSchema...)
	b := rowBatch(schema, []sql.Row{combined})
	col, err := n.condition.Eval(ctx, b)
	if err != nil {
		return false, err
	}
	if !col.Valid.Get(0) {
		return false, nil
	}
	t, _ := expression.AsSlice(col, 1)[0].(bool)
	return t, nil
}

func (n *nestedLoopJoinIter) unmatchedRightRows() []sql.Row {
	var out []sql.Row
	for i, right := range n.rightRows {
		if n.matched[i] {
			continue
		}
		out = append(out, concatRows(nullRow(len(n.leftSchema)), right))
	}
	return out
}

func (n *nestedLoopJoinIter) Close(ctx *sql.Context) error { return n.left.Close(ctx) }
