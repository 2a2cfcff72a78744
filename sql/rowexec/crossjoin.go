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

// buildCrossJoin materializes the right side once (it is re-scanned for
// every left row) and streams the left side, emitting the full Cartesian
// product row by row.
func buildCrossJoin(ctx *sql.Context, o *physical.CrossJoinOp) (sql.BatchIter, error) {
	left, err := Build(ctx, o.Left)
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
	schema := append(append(sql.Schema{}, o.Left.Schema()...), o.Right.Schema()...)
	return &crossJoinIter{left: left, rightRows: rightRows, schema: schema}, nil
}

type crossJoinIter struct {
	left      sql.BatchIter
	rightRows []sql.Row
	schema    sql.Schema
	leftRows  []sql.Row
	leftPos   int
	rightPos  int
}

func (c *crossJoinIter) Next(ctx *sql.Context) (*sql.Batch, error) {
	const outRows = 1024
	var out []sql.Row
	for len(out) < outRows {
		if ctx.Cancelled() {
			return nil, ctx.Err()
		}
		if c.leftRows == nil || c.leftPos >= len(c.leftRows) {
			b, err := c.left.Next(ctx)
			if err == sql.ErrIterDone {
				if len(out) == 0 {
					return nil, sql.ErrIterDone
				}
				break
			}
			if err != nil {
				return nil, err
			}
			c.leftRows = batchRows(b)
			c.leftPos = 0
			c.rightPos = 0
		}
		if len(c.rightRows) == 0 {
			c.leftPos++
			continue
		}
		left := c.leftRows[c.leftPos]
		for c.rightPos < len(c.rightRows) && len(out) < outRows {
			row := make(sql.Row, 0, len(left)+len(c.rightRows[c.rightPos]))
			row = append(row, left...)
			row = append(row, c.rightRows[c.rightPos]...)
			out = append(out, row)
			c.rightPos++
		}
		if c.rightPos >= len(c.rightRows) {
			c.leftPos++
			c.rightPos = 0
		}
	}
	if len(out) == 0 {
		return nil, sql.ErrIterDone
	}
	return rowBatch(c.schema, out), nil
}

func (c *crossJoinIter) Close(ctx *sql.Context) error { return c.left.Close(ctx) }

// unionIter concatenates left then right, both already narrowed to the
// same schema by the logical plan.
type unionIter struct {
	left, right sql.BatchIter
	leftDone    bool
}

func (u *unionIter) Next(ctx *sql.Context) (*sql.Batch, error) {
	if ctx.Cancelled() {
		return nil, ctx.Err()
	}
	if !u.leftDone {
		b, err := u.left.Next(ctx)
		if err == sql.ErrIterDone {
			u.leftDone = true
		} else if err != nil {
			return nil, err
		} else {
			return b, nil
		}
	}
	return u.right.Next(ctx)
}

func (u *unionIter) Close(ctx *sql.Context) error {
	if err := u.left.Close(ctx); err != nil {
		return err
	}
	return u.right.Close(ctx)
}

// unnestIter expands Column (an array-typed expression) into one output
// row per element, broadcasting the remaining input columns onto each
// expanded row.
type unnestIter struct {
	column sql.Expression
	schema sql.Schema
	child  sql.BatchIter
	pend   []sql.Row
	pos    int
}

func (u *unnestIter) Next(ctx *sql.Context) (*sql.Batch, error) {
	const outRows = 1024
	var out []sql.Row
	for len(out) < outRows {
		if ctx.Cancelled() {
			return nil, ctx.Err()
		}
		if u.pos >= len(u.pend) {
			b, err := u.child.Next(ctx)
			if err == sql.ErrIterDone {
				if len(out) == 0 {
					return nil, sql.ErrIterDone
				}
				break
			}
			if err != nil {
				return nil, err
			}
			col, err := u.column.Eval(ctx, b)
			if err != nil {
				return nil, err
			}
			rows := batchRows(b)
			elems := expression.AsSlice(col, b.Rows)
			var pend []sql.Row
			for i, row := range rows {
				if !col.Valid.Get(i) {
					continue
				}
				items, _ := elems[i].([]interface{})
				for _, item := range items {
					expanded := make(sql.Row, 0, len(row)+1)
					expanded = append(expanded, row...)
					expanded = append(expanded, item)
					pend = append(pend, expanded)
				}
			}
			u.pend = pend
			u.pos = 0
			if len(u.pend) == 0 {
				continue
			}
		}
		take := outRows - len(out)
		remaining := len(u.pend) - u.pos
		if take > remaining {
			take = remaining
		}
		out = append(out, u.pend[u.pos:u.pos+take]...)
		u.pos += take
	}
	if len(out) == 0 {
		return nil, sql.ErrIterDone
	}
	return rowBatch(u.schema, out), nil
}

func (u *unnestIter) Close(ctx *sql.Context) error { return u.child.Close(ctx) }
