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

// AggregateFunc is one aggregate term of an Aggregate node (COUNT(x),
// SUM(x), AVG(x), ...). Name identifies the aggregation kind that
// sql/rowexec's hash aggregation core understands; Arg is nil for
// COUNT(*).
type AggregateFunc struct {
	Name  string
	Arg   sql.Expression
	Alias string
	Type  sql.Type
}

// Aggregate groups rows by GroupBy and computes Funcs per group. With no
// GroupBy terms the whole input is one group. Always lowers to
// HashAggregate; a COUNT(*) with no GROUP BY is not folded to a literal,
// even over a Scan whose row count is known.
type Aggregate struct {
	hinted
	GroupBy []sql.Expression
	Funcs   []AggregateFunc
	Child   sql.Node
	schema  sql.Schema
}

func NewGroupBy(funcs []AggregateFunc, groupBy []sql.Expression, child sql.Node) *Aggregate {
	schema := make(sql.Schema, 0, len(groupBy)+len(funcs))
	for i, g := range groupBy {
		schema = append(schema, &sql.Column{Name: fmt.Sprintf("group%d", i), Type: g.Type()})
	}
	for _, f := range funcs {
		schema = append(schema, &sql.Column{Name: f.Alias, Type: f.Type})
	}
	return &Aggregate{GroupBy: groupBy, Funcs: funcs, Child: child, schema: schema}
}

func (a *Aggregate) Schema() sql.Schema   { return a.schema }
func (a *Aggregate) Children() []sql.Node { return []sql.Node{a.Child} }

func (a *Aggregate) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, fmt.Errorf("plan.Aggregate: expected 1 child, got %d", len(children))
	}
	cp := *a
	cp.Child = children[0]
	return &cp, nil
}

func (a *Aggregate) Expressions() []sql.Expression {
	out := append([]sql.Expression{}, a.GroupBy...)
	for _, f := range a.Funcs {
		if f.Arg != nil {
			out = append(out, f.Arg)
		}
	}
	return out
}

func (a *Aggregate) WithExpressions(exprs ...sql.Expression) (sql.Node, error) {
	cp := *a
	groupBy := append([]sql.Expression{}, exprs[:len(a.GroupBy)]...)
	rest := exprs[len(a.GroupBy):]
	funcs := make([]AggregateFunc, len(a.Funcs))
	i := 0
	for fi, f := range a.Funcs {
		funcs[fi] = f
		if f.Arg != nil {
			funcs[fi].Arg = rest[i]
			i++
		}
	}
	cp.GroupBy = groupBy
	cp.Funcs = funcs
	return &cp, nil
}

func (a *Aggregate) String() string {
	return fmt.Sprintf("Aggregate(%d group terms, %d funcs)", len(a.GroupBy), len(a.Funcs))
}
