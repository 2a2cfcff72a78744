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

package plan

import (
	"fmt"

	"github.com/qxengine/qx/sql"
)

// Join combines Left and Right rows matching Condition. The physical
// planner inspects Condition's shape to decide HashJoin (equi-join) vs.
// NestedLoopJoin (everything else); LEFT SEMI/ANTI follow the same rule
// and carry their semi/anti type on that operator.
type Join struct {
	hinted
	Left, Right sql.Node
	Condition   sql.Expression
	Type        JoinType
}

func NewInnerJoin(left, right sql.Node, cond sql.Expression) *Join {
	return &Join{Left: left, Right: right, Condition: cond, Type: JoinInner}
}

func NewLeftOuterJoin(left, right sql.Node, cond sql.Expression) *Join {
	return &Join{Left: left, Right: right, Condition: cond, Type: JoinLeftOuter}
}

func NewRightOuterJoin(left, right sql.Node, cond sql.Expression) *Join {
	return &Join{Left: left, Right: right, Condition: cond, Type: JoinRightOuter}
}

func NewFullOuterJoin(left, right sql.Node, cond sql.Expression) *Join {
	return &Join{Left: left, Right: right, Condition: cond, Type: JoinFullOuter}
}

func NewLeftSemiJoin(left, right sql.Node, cond sql.Expression) *Join {
	return &Join{Left: left, Right: right, Condition: cond, Type: JoinLeftSemi}
}

func NewLeftAntiJoin(left, right sql.Node, cond sql.Expression) *Join {
	return &Join{Left: left, Right: right, Condition: cond, Type: JoinLeftAnti}
}

func (j *Join) Schema() sql.Schema {
	switch j.Type {
	case JoinLeftSemi, JoinLeftAnti:
		return j.Left.Schema()
	default:
		return append(append(sql.Schema{}, j.Left.Schema()...), j.Right.Schema()...)
	}
}

func (j *Join) Children() []sql.Node { return []sql.Node{j.Left, j.Right} }

func (j *Join) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 2 {
		return nil, fmt.Errorf("plan.Join: expected 2 children, got %d", len(children))
	}
	cp := *j
	cp.Left, cp.Right = children[0], children[1]
	return &cp, nil
}

func (j *Join) Expressions() []sql.Expression {
	if j.Condition == nil {
		return nil
	}
	return []sql.Expression{j.Condition}
}

func (j *Join) WithExpressions(exprs ...sql.Expression) (sql.Node, error) {
	cp := *j
	if len(exprs) > 0 {
		cp.Condition = exprs[0]
	}
	return &cp, nil
}

func (j *Join) String() string {
	return fmt.Sprintf("%s(%s)", j.Type, j.Condition)
}

// CrossJoin is the Cartesian product of Left and Right with no
// condition; kept as its own node (rather than Join with a nil,
// always-true condition) because it is the one join shape the binder
// can produce with no ON clause at all.
type CrossJoin struct {
	hinted
	Left, Right sql.Node
}

func NewCrossJoin(left, right sql.Node) *CrossJoin {
	return &CrossJoin{Left: left, Right: right}
}

func (c *CrossJoin) Schema() sql.Schema {
	return append(append(sql.Schema{}, c.Left.Schema()...), c.Right.Schema()...)
}

func (c *CrossJoin) Children() []sql.Node { return []sql.Node{c.Left, c.Right} }

func (c *CrossJoin) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 2 {
		return nil, fmt.Errorf("plan.CrossJoin: expected 2 children, got %d", len(children))
	}
	cp := *c
	cp.Left, cp.Right = children[0], children[1]
	return &cp, nil
}

func (c *CrossJoin) String() string { return "CrossJoin" }

// Union concatenates Left and Right, which must share a schema; UNION
// ALL semantics (deduplication, when requested, is expressed as a
// Distinct wrapping the Union).
type Union struct {
	hinted
	Left, Right sql.Node
}

func NewUnion(left, right sql.Node) *Union {
	return &Union{Left: left, Right: right}
}

func (u *Union) Schema() sql.Schema   { return u.Left.Schema() }
func (u *Union) Children() []sql.Node { return []sql.Node{u.Left, u.Right} }

func (u *Union) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 2 {
		return nil, fmt.Errorf("plan.Union: expected 2 children, got %d", len(children))
	}
	cp := *u
	cp.Left, cp.Right = children[0], children[1]
	return &cp, nil
}

func (u *Union) String() string { return "Union" }

// Unnest expands Column, an array-typed expression evaluated per input
// row, into one output row per array element, joined (CROSS JOIN
// LATERAL-style) back onto the remaining columns of that input row.
type Unnest struct {
	hinted
	Column sql.Expression
	Alias  string
	Child  sql.Node
	schema sql.Schema
}

func NewUnnest(column sql.Expression, alias string, elemType sql.Type, child sql.Node) *Unnest {
	schema := append(append(sql.Schema{}, child.Schema()...), &sql.Column{Name: alias, Type: elemType})
	return &Unnest{Column: column, Alias: alias, Child: child, schema: schema}
}

func (u *Unnest) Schema() sql.Schema   { return u.schema }
func (u *Unnest) Children() []sql.Node { return []sql.Node{u.Child} }

func (u *Unnest) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, fmt.Errorf("plan.Unnest: expected 1 child, got %d", len(children))
	}
	cp := *u
	cp.Child = children[0]
	return &cp, nil
}

func (u *Unnest) Expressions() []sql.Expression { return []sql.Expression{u.Column} }

func (u *Unnest) WithExpressions(exprs ...sql.Expression) (sql.Node, error) {
	if len(exprs) != 1 {
		return nil, fmt.Errorf("plan.Unnest: expected 1 expression, got %d", len(exprs))
	}
	cp := *u
	cp.Column = exprs[0]
	return &cp, nil
}

func (u *Unnest) String() string {
	return fmt.Sprintf("Unnest(%s AS %s)", u.Column, u.Alias)
}
