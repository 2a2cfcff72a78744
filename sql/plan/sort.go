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

// SortField is one ORDER BY term.
type SortField struct {
	Expr       sql.Expression
	Descending bool
	NullsFirst bool
}

// Sort reorders its input by SortFields. Sort directly above a Limit is
// the signal the physical planner fuses into a single HeapSort(k).
type Sort struct {
	hinted
	SortFields []SortField
	Child      sql.Node
}

func NewSort(fields []SortField, child sql.Node) *Sort {
	return &Sort{SortFields: fields, Child: child}
}

func (s *Sort) Schema() sql.Schema   { return s.Child.Schema() }
func (s *Sort) Children() []sql.Node { return []sql.Node{s.Child} }

func (s *Sort) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, fmt.Errorf("plan.Sort: expected 1 child, got %d", len(children))
	}
	cp := *s
	cp.Child = children[0]
	return &cp, nil
}

func (s *Sort) Expressions() []sql.Expression {
	out := make([]sql.Expression, len(s.SortFields))
	for i, f := range s.SortFields {
		out[i] = f.Expr
	}
	return out
}

func (s *Sort) WithExpressions(exprs ...sql.Expression) (sql.Node, error) {
	if len(exprs) != len(s.SortFields) {
		return nil, fmt.Errorf("plan.Sort: expected %d expressions, got %d", len(s.SortFields), len(exprs))
	}
	cp := *s
	fields := make([]SortField, len(s.SortFields))
	for i, f := range s.SortFields {
		fields[i] = SortField{Expr: exprs[i], Descending: f.Descending, NullsFirst: f.NullsFirst}
	}
	cp.SortFields = fields
	return &cp, nil
}

func (s *Sort) String() string {
	return fmt.Sprintf("Sort(%d fields)", len(s.SortFields))
}

// Limit caps the number of rows a query returns, optionally skipping
// Offset rows first. Count is an expression (not a plain int) so that a
// bound variable or a constant-folded arithmetic expression can both
// supply it.
type Limit struct {
	hinted
	Count  sql.Expression
	Offset sql.Expression
	Child  sql.Node
}

func NewLimit(count sql.Expression, child sql.Node) *Limit {
	return &Limit{Count: count, Child: child}
}

func NewLimitWithOffset(count, offset sql.Expression, child sql.Node) *Limit {
	return &Limit{Count: count, Offset: offset, Child: child}
}

func (l *Limit) Schema() sql.Schema   { return l.Child.Schema() }
func (l *Limit) Children() []sql.Node { return []sql.Node{l.Child} }

func (l *Limit) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, fmt.Errorf("plan.Limit: expected 1 child, got %d", len(children))
	}
	cp := *l
	cp.Child = children[0]
	return &cp, nil
}

func (l *Limit) Expressions() []sql.Expression {
	if l.Offset != nil {
		return []sql.Expression{l.Count, l.Offset}
	}
	return []sql.Expression{l.Count}
}

func (l *Limit) WithExpressions(exprs ...sql.Expression) (sql.Node, error) {
	cp := *l
	cp.Count = exprs[0]
	if len(exprs) > 1 {
		cp.Offset = exprs[1]
	}
	return &cp, nil
}

func (l *Limit) String() string {
	return fmt.Sprintf("Limit(%s)", l.Count)
}

// Distinct removes duplicate rows, comparing by the fingerprint of every
// output column; it is a pipeline breaker (equivalent to a hash
// aggregation with no aggregators).
type Distinct struct {
	hinted
	Child sql.Node
}

func NewDistinct(child sql.Node) *Distinct {
	return &Distinct{Child: child}
}

func (d *Distinct) Schema() sql.Schema   { return d.Child.Schema() }
func (d *Distinct) Children() []sql.Node { return []sql.Node{d.Child} }

func (d *Distinct) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, fmt.Errorf("plan.Distinct: expected 1 child, got %d", len(children))
	}
	cp := *d
	cp.Child = children[0]
	return &cp, nil
}

func (d *Distinct) String() string { return "Distinct" }
