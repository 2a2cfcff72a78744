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

package analyzer

import (
	"github.com/qxengine/qx/sql"
	"github.com/qxengine/qx/sql/expression"
	"github.com/qxengine/qx/sql/plan"
)

// predicateCompaction keeps only the most restrictive of several AND'd
// comparisons on the same column (x>3 AND x>1 -> x>3), and drops a range
// bound that an equality on the same column already satisfies
// (x=3 AND x>0 -> x=3), operating on the flat conjunct list
// boolean_rewrite_and_flatten produces.
func predicateCompaction(ctx *sql.Context, n sql.Node) (sql.Node, bool, error) {
	return rewriteAllExpressions(n, func(e sql.Expression) (sql.Expression, bool, error) {
		and, ok := e.(*expression.And)
		if !ok {
			return e, false, nil
		}
		compacted, changed := compactConjuncts(and.Children())
		if !changed {
			return e, false, nil
		}
		if len(compacted) == 1 {
			return compacted[0], true, nil
		}
		return expression.NewAnd(compacted...), true, nil
	})
}

// compactConjuncts drops a bound comparison `col OP literal` when a
// stricter bound on the same column and direction is already present in
// the list, or when an equality on the same column satisfies it.
func compactConjuncts(conjuncts []sql.Expression) ([]sql.Expression, bool) {
	type bound struct {
		idx     int
		literal *expression.Literal
		cmp     *expression.Compare
		colName string
	}
	var bounds []bound
	var other []sql.Expression
	for i, c := range conjuncts {
		cmp, ok := c.(*expression.Compare)
		if !ok {
			other = append(other, c)
			continue
		}
		gf, litExpr, ok := columnLiteralForm(cmp)
		if !ok {
			other = append(other, c)
			continue
		}
		bounds = append(bounds, bound{idx: i, literal: litExpr, cmp: cmp, colName: gf.String()})
	}
	if len(bounds) < 2 {
		return conjuncts, false
	}

	keep := make(map[int]bool, len(bounds))
	for _, b := range bounds {
		keep[b.idx] = true
	}
	changed := false
	for i := 0; i < len(bounds); i++ {
		for j := i + 1; j < len(bounds); j++ {
			a, b := bounds[i], bounds[j]
			if a.colName == b.colName && (a.cmp.Symbol() == "=") != (b.cmp.Symbol() == "=") {
				eq, rng := a, b
				if b.cmp.Symbol() == "=" {
					eq, rng = b, a
				}
				c, err := eq.literal.Type().Compare(eq.literal.Value(), rng.literal.Value())
				sym := rng.cmp.Symbol()
				if err == nil && ((sym == ">" && c > 0) || (sym == ">=" && c >= 0) || (sym == "<" && c < 0) || (sym == "<=" && c <= 0)) {
					delete(keep, rng.idx)
					changed = true
				}
				continue
			}
			if a.colName != b.colName || a.cmp.Symbol() != b.cmp.Symbol() {
				continue
			}
			cmp, err := a.literal.Type().Compare(a.literal.Value(), b.literal.Value())
			if err != nil {
				continue
			}
			switch a.cmp.Symbol() {
			case ">", ">=":
				if cmp >= 0 {
					delete(keep, b.idx)
				} else {
					delete(keep, a.idx)
				}
				changed = true
			case "<", "<=":
				if cmp <= 0 {
					delete(keep, b.idx)
				} else {
					delete(keep, a.idx)
				}
				changed = true
			}
		}
	}
	if !changed {
		return conjuncts, false
	}
	out := append([]sql.Expression{}, other...)
	for _, b := range bounds {
		if keep[b.idx] {
			out = append(out, b.cmp)
		}
	}
	return out, true
}

func columnLiteralForm(cmp *expression.Compare) (*expression.GetField, *expression.Literal, bool) {
	if gf, ok := cmp.Left.(*expression.GetField); ok {
		if lit, ok := cmp.Right.(*expression.Literal); ok {
			return gf, lit, true
		}
	}
	return nil, nil, false
}

// predicatePushdown moves a Filter directly above a CrossJoin or Join into
// the join's left side whenever every column name the filter references
// is an output column name of that left side. It does not push a Filter
// below a Project or through a Union, and never into a join's right side.
func predicatePushdown(ctx *sql.Context, n sql.Node) (sql.Node, bool, error) {
	return transformUp(n, func(node sql.Node) (sql.Node, bool, error) {
		f, ok := node.(*plan.Filter)
		if !ok {
			return node, false, nil
		}
		needed := columnsOf(f.Predicate)

		switch child := f.Child.(type) {
		case *plan.CrossJoin:
			leftCols := columnNameSet(child.Left.Schema())
			if needed.SubsetOf(leftCols) {
				newLeft := plan.NewFilter(f.Predicate, child.Left)
				newJoin, err := child.WithChildren(newLeft, child.Right)
				if err != nil {
					return node, false, err
				}
				return newJoin, true, nil
			}
		case *plan.Join:
			leftCols := columnNameSet(child.Left.Schema())
			if needed.SubsetOf(leftCols) {
				newLeft := plan.NewFilter(f.Predicate, child.Left)
				newJoin, err := child.WithChildren(newLeft, child.Right)
				if err != nil {
					return node, false, err
				}
				return newJoin, true, nil
			}
		}
		return node, false, nil
	})
}

func columnNameSet(schema sql.Schema) sql.ColumnSet {
	cs := sql.NewColumnSet()
	for _, c := range schema {
		cs.Add(c.Name)
	}
	return cs
}

func columnsOf(e sql.Expression) sql.ColumnSet {
	cs := sql.NewColumnSet()
	collectColumns(e, cs)
	return cs
}

func collectColumns(e sql.Expression, cs sql.ColumnSet) {
	if gf, ok := e.(*expression.GetField); ok {
		cs.Add(gf.String())
		return
	}
	for _, c := range e.Children() {
		collectColumns(c, cs)
	}
}

// projectionPushdown narrows a Scan's requested column list to the set
// a parent Project actually consumes, when the Scan has no requested
// columns of its own yet.
func projectionPushdown(ctx *sql.Context, n sql.Node) (sql.Node, bool, error) {
	return transformUp(n, func(node sql.Node) (sql.Node, bool, error) {
		p, ok := node.(*plan.Project)
		if !ok {
			return node, false, nil
		}
		scan, ok := p.Child.(*plan.Scan)
		if !ok || len(scan.ColumnNames) > 0 {
			return node, false, nil
		}
		cs := sql.NewColumnSet()
		for _, e := range p.Projections {
			collectColumns(e, cs)
		}
		if len(cs) == 0 || len(cs) >= len(scan.Schema()) {
			return node, false, nil
		}
		names := make([]string, 0, len(cs))
		for _, c := range scan.Schema() {
			if _, ok := cs[c.Name]; ok {
				names = append(names, c.Name)
			}
		}
		narrowed := plan.NewResolvedTable(scan.DatasetName, scan.Connector, scan.Schema(), names, scan.Predicates)
		newProject, err := p.WithChildren(narrowed)
		if err != nil {
			return node, false, err
		}
		return newProject, true, nil
	})
}

// limitPushdown moves a Limit that sits directly above a Project to just
// below it (a Project keeps its input's row count). It moves a Limit
// through no other node type, and leaves a Limit above a Sort as it is.
func limitPushdown(ctx *sql.Context, n sql.Node) (sql.Node, bool, error) {
	return transformUp(n, func(node sql.Node) (sql.Node, bool, error) {
		l, ok := node.(*plan.Limit)
		if !ok {
			return node, false, nil
		}
		child, ok := l.Child.(*plan.Project)
		if !ok {
			return node, false, nil
		}
		pushed := plan.NewLimit(l.Count, child.Child)
		newProject, err := child.WithChildren(pushed)
		if err != nil {
			return node, false, nil
		}
		return newProject, true, nil
	})
}
