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
	"reflect"

	"github.com/qxengine/qx/sql"
	"github.com/qxengine/qx/sql/expression"
	"github.com/qxengine/qx/sql/plan"
)

// Lower converts a bound, analyzed logical plan into an executable
// physical tree, per the decisions in §4.4: Scan pushes down predicates
// and projections as its connector's Capabilities allow and leaves the
// rest as a residual Vector* wrapper (a LIMIT is never pushed into the
// scan, whatever LimitPushdown says); equi-joins become HashJoin, everything else
// NestedLoopJoin; Aggregate always becomes HashAggregate; a Sort
// immediately under a Limit fuses into HeapSort; Distinct becomes hash
// aggregation with no aggregators.
func Lower(ctx *sql.Context, n sql.Node) (Op, error) {
	switch node := n.(type) {
	case *plan.Scan:
		return lowerScan(node, nil, ctx.Range)
	case *plan.Values:
		return lowerValues(node)
	case *plan.Filter:
		if scan, ok := node.Child.(*plan.Scan); ok {
			return lowerScan(scan, node.Predicate, ctx.Range)
		}
		child, err := Lower(ctx, node.Child)
		if err != nil {
			return nil, err
		}
		return &VectorFilter{Predicate: node.Predicate, Input: child}, nil
	case *plan.Project:
		child, err := Lower(ctx, node.Child)
		if err != nil {
			return nil, err
		}
		return &VectorProject{Projections: node.Projections, OutSchema: node.Schema(), Input: child}, nil
	case *plan.Sort:
		child, err := Lower(ctx, node.Child)
		if err != nil {
			return nil, err
		}
		return &SortOp{Fields: lowerSortFields(node.SortFields), Input: child}, nil
	case *plan.Limit:
		return lowerLimit(ctx, node)
	case *plan.Distinct:
		child, err := Lower(ctx, node.Child)
		if err != nil {
			return nil, err
		}
		return &DistinctOp{Input: child}, nil
	case *plan.Aggregate:
		child, err := Lower(ctx, node.Child)
		if err != nil {
			return nil, err
		}
		return lowerAggregate(node, child)
	case *plan.Join:
		return lowerJoin(ctx, node)
	case *plan.CrossJoin:
		left, err := Lower(ctx, node.Left)
		if err != nil {
			return nil, err
		}
		right, err := Lower(ctx, node.Right)
		if err != nil {
			return nil, err
		}
		return &CrossJoinOp{Left: left, Right: right}, nil
	case *plan.Union:
		left, err := Lower(ctx, node.Left)
		if err != nil {
			return nil, err
		}
		right, err := Lower(ctx, node.Right)
		if err != nil {
			return nil, err
		}
		return &UnionOp{Left: left, Right: right}, nil
	case *plan.Unnest:
		child, err := Lower(ctx, node.Child)
		if err != nil {
			return nil, err
		}
		return &UnnestOp{Column: node.Column, OutSchema: node.Schema(), Input: child}, nil
	default:
		return nil, fmt.Errorf("physical: no lowering for node type %T", n)
	}
}

func lowerScan(scan *plan.Scan, residual sql.Expression, rng sql.TemporalRange) (Op, error) {
	var caps sql.Capabilities
	if scan.Connector != nil {
		caps = scan.Connector.Capabilities()
	}

	conjuncts := flattenAnd(residual)
	conjuncts = append(conjuncts, flattenAnd(exprsToAnd(scan.Predicates))...)

	var pushed []sql.SimplePredicate
	var leftover []sql.Expression
	if caps.PredicatePushdown {
		for _, c := range conjuncts {
			if sp, ok := toSimplePredicate(c); ok {
				pushed = append(pushed, sp)
			} else {
				leftover = append(leftover, c)
			}
		}
		if !caps.CanPushCompoundPredicates && len(pushed) > 1 {
			leftover = append(leftover, simplePredicatesToExprs(pushed[1:], conjuncts)...)
			pushed = pushed[:1]
		}
	} else {
		leftover = conjuncts
	}

	var projection []string
	if caps.ProjectionPushdown && len(scan.ColumnNames) > 0 {
		projection = scan.ColumnNames
	}

	var op Op = &ConnectorScan{
		DatasetName: scan.DatasetName,
		Connector:   scan.Connector,
		OutSchema:   scan.Schema(),
		Projection:  projection,
		Predicates:  pushed,
		Range:       rng,
	}
	if len(leftover) > 0 {
		op = &VectorFilter{Predicate: andAll(leftover), Input: op}
	}
	return op, nil
}

func lowerValues(v *plan.Values) (Op, error) {
	ctx := sql.NewEmptyContext()
	rows := make([]sql.Row, len(v.Rows))
	for i, exprRow := range v.Rows {
		row := make(sql.Row, len(exprRow))
		for j, e := range exprRow {
			col, err := e.Eval(ctx, &sql.Batch{Rows: 1})
			if err != nil {
				return nil, err
			}
			row[j] = expression.AsSlice(col, 1)[0]
		}
		rows[i] = row
	}
	return &LiteralScan{OutSchema: v.Schema(), Rows: rows}, nil
}

func lowerLimit(ctx *sql.Context, l *plan.Limit) (Op, error) {
	count, offset, err := literalLimitBounds(l)
	if err != nil {
		return nil, err
	}
	if sortChild, ok := l.Child.(*plan.Sort); ok && offset == 0 {
		child, err := Lower(ctx, sortChild.Child)
		if err != nil {
			return nil, err
		}
		return &HeapSortOp{Fields: lowerSortFields(sortChild.SortFields), K: count, Input: child}, nil
	}
	child, err := Lower(ctx, l.Child)
	if err != nil {
		return nil, err
	}
	return &Limit{Count: count, Offset: offset, Input: child}, nil
}

func literalLimitBounds(l *plan.Limit) (count, offset int64, err error) {
	ctx := sql.NewEmptyContext()
	count, err = evalInt64(ctx, l.Count)
	if err != nil {
		return 0, 0, err
	}
	if l.Offset == nil {
		return count, 0, nil
	}
	offset, err = evalInt64(ctx, l.Offset)
	return count, offset, err
}

func evalInt64(ctx *sql.Context, e sql.Expression) (int64, error) {
	col, err := e.Eval(ctx, &sql.Batch{Rows: 1})
	if err != nil {
		return 0, err
	}
	v := expression.AsSlice(col, 1)[0]
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("physical: limit/offset must evaluate to an integer, got %T", v)
	}
}

func lowerSortFields(fields []plan.SortField) []SortField {
	out := make([]SortField, len(fields))
	for i, f := range fields {
		out[i] = SortField{Expr: f.Expr, Descending: f.Descending, NullsFirst: f.NullsFirst}
	}
	return out
}

func lowerAggregate(a *plan.Aggregate, child Op) (Op, error) {
	aggs := make([]Aggregator, len(a.Funcs))
	for i, f := range a.Funcs {
		aggs[i] = Aggregator{Func: AggFunc(f.Name), Arg: f.Arg, Alias: f.Alias, Type: f.Type}
	}
	return &HashAggregateOp{GroupBy: a.GroupBy, Aggregates: aggs, OutSchema: a.Schema(), Input: child}, nil
}

func lowerJoin(ctx *sql.Context, j *plan.Join) (Op, error) {
	left, err := Lower(ctx, j.Left)
	if err != nil {
		return nil, err
	}
	right, err := Lower(ctx, j.Right)
	if err != nil {
		return nil, err
	}
	lt := logicalType(j.Type)

	if leftKeys, rightKeys, ok := equiJoinKeys(j.Condition); ok {
		return &HashJoinOp{Left: left, Right: right, LeftKeys: leftKeys, RightKeys: rightKeys, Type: lt}, nil
	}
	return &NestedLoopJoinOp{Left: left, Right: right, Condition: j.Condition, Type: lt}, nil
}

func logicalType(t plan.JoinType) JoinLogicalType {
	switch t {
	case plan.JoinLeftOuter:
		return LeftOuter
	case plan.JoinRightOuter:
		return RightOuter
	case plan.JoinFullOuter:
		return FullOuter
	case plan.JoinLeftSemi:
		return LeftSemi
	case plan.JoinLeftAnti:
		return LeftAnti
	default:
		return Inner
	}
}

// equiJoinKeys recognizes a (possibly AND'd) condition as a pure
// equi-join: every conjunct is `left.col = right.col`. Any other shape
// (inequality, OR, a non-GetField operand) degrades to NestedLoopJoin.
func equiJoinKeys(cond sql.Expression) (left, right []sql.Expression, ok bool) {
	for _, c := range flattenAnd(cond) {
		cmp, isCmp := c.(*expression.Compare)
		if !isCmp || cmp.Symbol() != "=" {
			return nil, nil, false
		}
		l, lok := cmp.Left.(*expression.GetField)
		r, rok := cmp.Right.(*expression.GetField)
		if !lok || !rok {
			return nil, nil, false
		}
		left = append(left, l)
		right = append(right, r)
	}
	if len(left) == 0 {
		return nil, nil, false
	}
	return left, right, true
}

func flattenAnd(e sql.Expression) []sql.Expression {
	if e == nil {
		return nil
	}
	and, ok := e.(*expression.And)
	if !ok {
		return []sql.Expression{e}
	}
	var out []sql.Expression
	for _, child := range and.Children() {
		out = append(out, flattenAnd(child)...)
	}
	return out
}

func andAll(exprs []sql.Expression) sql.Expression {
	if len(exprs) == 1 {
		return exprs[0]
	}
	return expression.NewAnd(exprs...)
}

func exprsToAnd(exprs []sql.Expression) sql.Expression {
	if len(exprs) == 0 {
		return nil
	}
	return andAll(exprs)
}

// toSimplePredicate recognizes the restricted shapes a connector may
// receive: `col OP literal`, `col IN (lit, ...)`, `col IS [NOT] NULL`.
func toSimplePredicate(e sql.Expression) (sql.SimplePredicate, bool) {
	switch expr := e.(type) {
	case *expression.Compare:
		col, lit, ok := colLiteral(expr.Left, expr.Right)
		if !ok {
			return sql.SimplePredicate{}, false
		}
		op, ok := compareOp(expr.Symbol())
		if !ok {
			return sql.SimplePredicate{}, false
		}
		return sql.SimplePredicate{Column: col.String(), Op: op, Value: lit.Value()}, true
	case *expression.InList:
		col, ok := expr.Value.(*expression.GetField)
		if !ok {
			return sql.SimplePredicate{}, false
		}
		vals := make([]interface{}, len(expr.Items))
		for i, it := range expr.Items {
			lit, ok := it.(*expression.Literal)
			if !ok {
				return sql.SimplePredicate{}, false
			}
			vals[i] = lit.Value()
		}
		op := sql.OpIn
		if expr.Negate {
			op = sql.OpNotIn
		}
		return sql.SimplePredicate{Column: col.String(), Op: op, Values: vals}, true
	case *expression.IsNull:
		col, ok := expr.Value.(*expression.GetField)
		if !ok {
			return sql.SimplePredicate{}, false
		}
		op := sql.OpIsNull
		if expr.Negate {
			op = sql.OpIsNotNull
		}
		return sql.SimplePredicate{Column: col.String(), Op: op}, true
	case *expression.Like:
		col, ok := expr.Value.(*expression.GetField)
		if !ok {
			return sql.SimplePredicate{}, false
		}
		return sql.SimplePredicate{Column: col.String(), Op: sql.OpLike, Value: expr.Pattern}, true
	default:
		return sql.SimplePredicate{}, false
	}
}

func colLiteral(a, b sql.Expression) (*expression.GetField, *expression.Literal, bool) {
	if col, ok := a.(*expression.GetField); ok {
		if lit, ok := b.(*expression.Literal); ok {
			return col, lit, true
		}
	}
	if col, ok := b.(*expression.GetField); ok {
		if lit, ok := a.(*expression.Literal); ok {
			return col, lit, true
		}
	}
	return nil, nil, false
}

func compareOp(symbol string) (sql.CompareOp, bool) {
	switch symbol {
	case "=":
		return sql.OpEq, true
	case "!=":
		return sql.OpNe, true
	case "<":
		return sql.OpLt, true
	case "<=":
		return sql.OpLe, true
	case ">":
		return sql.OpGt, true
	case ">=":
		return sql.OpGe, true
	default:
		return 0, false
	}
}

func simplePredicatesToExprs(dropped []sql.SimplePredicate, original []sql.Expression) []sql.Expression {
	// SimplePredicate has thrown away the original sql.Expression, so the
	// residual expressions are re-derived by converting each original
	// conjunct again and matching the whole predicate (column, operator
	// and value or values), not just the column.
	var out []sql.Expression
	for _, d := range dropped {
		for _, o := range original {
			if sp, ok := toSimplePredicate(o); ok && reflect.DeepEqual(sp, d) {
				out = append(out, o)
				break
			}
		}
	}
	return out
}
