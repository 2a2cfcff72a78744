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

// Filter keeps only rows for which Predicate evaluates true; NULL and
// FALSE are both dropped. Schema is unchanged from the child.
type Filter struct {
	hinted
	Predicate sql.Expression
	Child     sql.Node
}

func NewFilter(predicate sql.Expression, child sql.Node) *Filter {
	return &Filter{Predicate: predicate, Child: child}
}

func (f *Filter) Schema() sql.Schema   { return f.Child.Schema() }
func (f *Filter) Children() []sql.Node { return []sql.Node{f.Child} }

func (f *Filter) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, fmt.Errorf("plan.Filter: expected 1 child, got %d", len(children))
	}
	cp := *f
	cp.Child = children[0]
	return &cp, nil
}

func (f *Filter) Expressions() []sql.Expression { return []sql.Expression{f.Predicate} }

func (f *Filter) WithExpressions(exprs ...sql.Expression) (sql.Node, error) {
	if len(exprs) != 1 {
		return nil, fmt.Errorf("plan.Filter: expected 1 expression, got %d", len(exprs))
	}
	cp := *f
	cp.Predicate = exprs[0]
	return &cp, nil
}

func (f *Filter) String() string {
	return fmt.Sprintf("Filter(%s)", f.Predicate)
}

// Project evaluates Projections over each input batch and emits a new
// batch with exactly those output columns, in order; it is both the
// SELECT list and the rename point for aliases.
type Project struct {
	hinted
	Projections []sql.Expression
	Child       sql.Node
	schema      sql.Schema
}

// NewProject derives its output schema from the projection expressions'
// static types and names; aliasNames supplies the output column name for
// each projection (e.g. from an Alias wrapper or the source column name).
func NewProject(projections []sql.Expression, aliasNames []string, child sql.Node) *Project {
	schema := make(sql.Schema, len(projections))
	for i, p := range projections {
		schema[i] = &sql.Column{Name: aliasNames[i], Type: p.Type()}
	}
	return &Project{Projections: projections, Child: child, schema: schema}
}

func (p *Project) Schema() sql.Schema   { return p.schema }
func (p *Project) Children() []sql.Node { return []sql.Node{p.Child} }

func (p *Project) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, fmt.Errorf("plan.Project: expected 1 child, got %d", len(children))
	}
	cp := *p
	cp.Child = children[0]
	return &cp, nil
}

func (p *Project) Expressions() []sql.Expression { return p.Projections }

func (p *Project) WithExpressions(exprs ...sql.Expression) (sql.Node, error) {
	if len(exprs) != len(p.Projections) {
		return nil, fmt.Errorf("plan.Project: expected %d expressions, got %d", len(p.Projections), len(exprs))
	}
	cp := *p
	cp.Projections = exprs
	schema := make(sql.Schema, len(exprs))
	for i, e := range exprs {
		schema[i] = &sql.Column{Name: p.schema[i].Name, Type: e.Type()}
	}
	cp.schema = schema
	return &cp, nil
}

func (p *Project) String() string {
	return fmt.Sprintf("Project(%s)", joinStringers(p.Projections))
}

func joinStringers(exprs []sql.Expression) string {
	out := ""
	for i, e := range exprs {
		if i > 0 {
			out += ", "
		}
		out += e.String()
	}
	return out
}
