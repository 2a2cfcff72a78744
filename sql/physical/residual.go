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

package physical

import (
	"fmt"

	"github.com/qxengine/qx/sql"
)

// VectorFilter re-applies a predicate a connector declined (or was not
// asked) to push down.
type VectorFilter struct {
	Predicate sql.Expression
	Input     Op
}

func (f *VectorFilter) Schema() sql.Schema { return f.Input.Schema() }
func (f *VectorFilter) Children() []Op     { return []Op{f.Input} }
func (f *VectorFilter) String() string     { return fmt.Sprintf("VectorFilter(%s)", f.Predicate) }

// VectorProject narrows/renames columns a connector did not project for
// itself.
type VectorProject struct {
	Projections []sql.Expression
	OutSchema   sql.Schema
	Input       Op
}

func (p *VectorProject) Schema() sql.Schema { return p.OutSchema }
func (p *VectorProject) Children() []Op     { return []Op{p.Input} }
func (p *VectorProject) String() string     { return "VectorProject" }

// Limit caps the number of rows that flow through, independent of any
// connector-side limit pushdown (used for the residual case, and for any
// Limit that did not end up fused into a HeapSort).
type Limit struct {
	Count  int64
	Offset int64
	Input  Op
}

func (l *Limit) Schema() sql.Schema { return l.Input.Schema() }
func (l *Limit) Children() []Op     { return []Op{l.Input} }
func (l *Limit) String() string     { return fmt.Sprintf("Limit(%d, offset=%d)", l.Count, l.Offset) }

// CrossJoinOp evaluates the Cartesian product; CrossJoin with an
// attached non-equality predicate lowers to this plus a VectorFilter
// rather than its own predicate-aware variant.
type CrossJoinOp struct {
	Left, Right Op
}

func (c *CrossJoinOp) Schema() sql.Schema {
	return append(append(sql.Schema{}, c.Left.Schema()...), c.Right.Schema()...)
}
func (c *CrossJoinOp) Children() []Op { return []Op{c.Left, c.Right} }
func (c *CrossJoinOp) String() string { return "CrossJoin" }

// UnionOp concatenates two same-shaped inputs.
type UnionOp struct {
	Left, Right Op
}

func (u *UnionOp) Schema() sql.Schema { return u.Left.Schema() }
func (u *UnionOp) Children() []Op     { return []Op{u.Left, u.Right} }
func (u *UnionOp) String() string     { return "Union" }

// UnnestOp flattens an array-typed column into one row per element,
// appending the element as a new trailing column.
type UnnestOp struct {
	Column    sql.Expression
	OutSchema sql.Schema
	Input     Op
}

func (u *UnnestOp) Schema() sql.Schema { return u.OutSchema }
func (u *UnnestOp) Children() []Op     { return []Op{u.Input} }
func (u *UnnestOp) String() string     { return "Unnest" }
