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

package planbuilder

import (
	"strconv"
	"strings"

	"github.com/dolthub/vitess/go/vt/sqlparser"

	"github.com/qxengine/qx/sql"
	"github.com/qxengine/qx/sql/expression"
	"github.com/qxengine/qx/sql/plan"
	"github.com/qxengine/qx/sql/types"
)

// Build parses query text and binds it to a logical plan. The supported
// shape is the common single-source query: one FROM entry (by name or
// alias), WHERE, GROUP BY with COUNT/SUM/AVG/MIN/MAX, ORDER BY, and
// LIMIT/OFFSET. Multi-source FROM clauses, subqueries, and set
// operations aren't reachable from raw SQL text yet; callers that already
// hold resolved sources build those plans directly with plan.NewInnerJoin,
// plan.NewUnion, and friends.
func (b *Binder) Build(ctx *sql.Context, query string) (sql.Node, error) {
	stmt, err := sqlparser.Parse(query)
	if err != nil {
		return nil, err
	}
	sel, ok := stmt.(*sqlparser.Select)
	if !ok {
		return nil, sql.ErrUnsupportedSyntax.New(query)
	}
	return b.buildSelect(ctx, sel)
}

func (b *Binder) buildSelect(ctx *sql.Context, sel *sqlparser.Select) (sql.Node, error) {
	if len(sel.From) != 1 {
		return nil, sql.ErrUnsupportedSyntax.New("a FROM clause with more than one source")
	}
	ate, ok := sel.From[0].(*sqlparser.AliasedTableExpr)
	if !ok {
		return nil, sql.ErrUnsupportedSyntax.New("FROM clause")
	}
	tn, ok := ate.Expr.(sqlparser.TableName)
	if !ok {
		return nil, sql.ErrUnsupportedSyntax.New("FROM clause")
	}
	datasetName := tn.Name.String()
	if !tn.Qualifier.IsEmpty() {
		datasetName = tn.Qualifier.String() + "." + datasetName
	}

	scan, err := b.BindDataset(ctx, datasetName)
	if err != nil {
		return nil, err
	}

	sourceName := datasetName
	if !ate.As.IsEmpty() {
		sourceName = ate.As.String()
	}
	sc := newScopeFromSources(nil, []string{sourceName}, []sql.Node{scan})

	var node sql.Node = scan
	if sel.Where != nil {
		pred, err := b.bindExpr(sc, sel.Where.Expr)
		if err != nil {
			return nil, err
		}
		node = plan.NewFilter(pred, node)
	}

	node, err = b.bindSelectList(sc, sel, node)
	if err != nil {
		return nil, err
	}

	return b.applySortLimit(sel, node)
}

// selectItem is one entry of the SELECT list, bound against either the
// plain source scope (no aggregation) or resolved to a slot of the
// Aggregate node's output schema (aggregation present).
type selectItem struct {
	alias    string
	isAgg    bool
	aggIdx   int
	groupIdx int // >=0 when this item matches a GROUP BY term verbatim
	expr     sql.Expression
}

func (b *Binder) bindSelectList(sc *scope, sel *sqlparser.Select, child sql.Node) (sql.Node, error) {
	groupExprs := make([]sql.Expression, len(sel.GroupBy))
	groupKeyText := make([]string, len(sel.GroupBy))
	for i, g := range sel.GroupBy {
		e, err := b.bindExpr(sc, g)
		if err != nil {
			return nil, err
		}
		groupExprs[i] = e
		groupKeyText[i] = sqlparser.String(g)
	}

	var aggFuncs []plan.AggregateFunc
	var items []selectItem
	var hasStar bool

	for _, se := range sel.SelectExprs {
		switch e := se.(type) {
		case *sqlparser.StarExpr:
			hasStar = true
		case *sqlparser.AliasedExpr:
			if fn, ok := e.Expr.(*sqlparser.FuncExpr); ok && isAggregateFuncName(fn.Name.String()) {
				alias := aliasOrDefault(e)
				af, err := b.bindAggregateCall(sc, fn, alias)
				if err != nil {
					return nil, err
				}
				aggFuncs = append(aggFuncs, af)
				items = append(items, selectItem{alias: alias, isAgg: true, aggIdx: len(aggFuncs) - 1, groupIdx: -1})
				continue
			}

			groupIdx := -1
			if text := sqlparser.String(e.Expr); len(groupKeyText) > 0 {
				groupIdx = indexOfString(groupKeyText, text)
			}
			bound, err := b.bindExpr(sc, e.Expr)
			if err != nil {
				return nil, err
			}
			items = append(items, selectItem{alias: aliasOrDefault(e), groupIdx: groupIdx, expr: bound})
		default:
			return nil, sql.ErrUnsupportedSyntax.New("select expression")
		}
	}

	aggregating := len(aggFuncs) > 0 || len(groupExprs) > 0

	if hasStar {
		if aggregating {
			return nil, sql.ErrUnsupportedSyntax.New("SELECT * together with aggregation")
		}
		return child, nil
	}

	if !aggregating {
		projs := make([]sql.Expression, len(items))
		names := make([]string, len(items))
		for i, it := range items {
			projs[i] = it.expr
			names[i] = it.alias
		}
		return plan.NewProject(projs, names, child), nil
	}

	agg := plan.NewGroupBy(aggFuncs, groupExprs, child)
	aggSchema := agg.Schema()
	projs := make([]sql.Expression, len(items))
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.alias
		var idx int
		switch {
		case it.isAgg:
			idx = len(groupExprs) + it.aggIdx
		case it.groupIdx >= 0:
			idx = it.groupIdx
		default:
			return nil, sql.ErrUnsupportedSyntax.New("select expression not in GROUP BY and not an aggregate: " + it.alias)
		}
		col := aggSchema[idx]
		projs[i] = expression.NewGetField(idx, col.Type, col.Name, col.Nullable)
	}
	return plan.NewProject(projs, names, agg), nil
}

func indexOfString(haystack []string, needle string) int {
	for i, s := range haystack {
		if strings.EqualFold(s, needle) {
			return i
		}
	}
	return -1
}

func aliasOrDefault(e *sqlparser.AliasedExpr) string {
	if !e.As.IsEmpty() {
		return e.As.String()
	}
	if col, ok := e.Expr.(*sqlparser.ColName); ok {
		return col.Name.String()
	}
	return sqlparser.String(e.Expr)
}

func isAggregateFuncName(name string) bool {
	switch strings.ToUpper(name) {
	case "COUNT", "SUM", "AVG", "MIN", "MAX":
		return true
	}
	return false
}

func (b *Binder) bindAggregateCall(sc *scope, fn *sqlparser.FuncExpr, alias string) (plan.AggregateFunc, error) {
	name := strings.ToUpper(fn.Name.String())

	if name == "COUNT" && len(fn.Exprs) == 1 {
		if _, ok := fn.Exprs[0].(*sqlparser.StarExpr); ok {
			return plan.AggregateFunc{Name: "COUNT_STAR", Alias: alias, Type: types.Int64}, nil
		}
	}

	if len(fn.Exprs) != 1 {
		return plan.AggregateFunc{}, sql.ErrUnsupportedSyntax.New(fn.Name.String())
	}
	ae, ok := fn.Exprs[0].(*sqlparser.AliasedExpr)
	if !ok {
		return plan.AggregateFunc{}, sql.ErrUnsupportedSyntax.New(fn.Name.String())
	}
	arg, err := b.bindExpr(sc, ae.Expr)
	if err != nil {
		return plan.AggregateFunc{}, err
	}

	var retType sql.Type
	switch name {
	case "COUNT":
		retType = types.Int64
	case "SUM", "AVG":
		retType = types.Double
	case "MIN", "MAX":
		retType = arg.Type()
	default:
		return plan.AggregateFunc{}, sql.ErrFunctionNotFound.New(name)
	}
	return plan.AggregateFunc{Name: name, Arg: arg, Alias: alias, Type: retType}, nil
}

// bindExpr binds the scalar expression subset Build needs: column
// references, integer/float/string literals, boolean connectives, and
// the six comparison operators. LIKE takes its pattern from a string
// literal directly rather than as a bound expression.
func (b *Binder) bindExpr(sc *scope, e sqlparser.Expr) (sql.Expression, error) {
	switch e := e.(type) {
	case *sqlparser.ColName:
		qualifier := ""
		if !e.Qualifier.IsEmpty() {
			qualifier = e.Qualifier.Name.String()
		}
		return b.BindColumnRef(sc, qualifier, e.Name.String())
	case *sqlparser.Literal:
		return bindLiteral(e)
	case *sqlparser.AndExpr:
		l, err := b.bindExpr(sc, e.Left)
		if err != nil {
			return nil, err
		}
		r, err := b.bindExpr(sc, e.Right)
		if err != nil {
			return nil, err
		}
		return expression.NewAnd(l, r), nil
	case *sqlparser.OrExpr:
		l, err := b.bindExpr(sc, e.Left)
		if err != nil {
			return nil, err
		}
		r, err := b.bindExpr(sc, e.Right)
		if err != nil {
			return nil, err
		}
		return expression.NewOr(l, r), nil
	case *sqlparser.NotExpr:
		inner, err := b.bindExpr(sc, e.Expr)
		if err != nil {
			return nil, err
		}
		return expression.NewNot(inner), nil
	case *sqlparser.ParenExpr:
		return b.bindExpr(sc, e.Expr)
	case *sqlparser.ComparisonExpr:
		return b.bindComparison(sc, e)
	default:
		return nil, sql.ErrUnsupportedSyntax.New(sqlparser.String(e))
	}
}

func (b *Binder) bindComparison(sc *scope, e *sqlparser.ComparisonExpr) (sql.Expression, error) {
	l, err := b.bindExpr(sc, e.Left)
	if err != nil {
		return nil, err
	}

	op := e.Operator.ToString()
	if op == "like" || op == "not like" {
		lit, ok := e.Right.(*sqlparser.Literal)
		if !ok {
			return nil, sql.ErrUnsupportedSyntax.New("LIKE pattern must be a string literal")
		}
		like := expression.NewLike(l, lit.Val)
		if op == "not like" {
			return expression.NewNot(like), nil
		}
		return like, nil
	}

	r, err := b.bindExpr(sc, e.Right)
	if err != nil {
		return nil, err
	}
	l, r, err = coerceForComparison(l, r)
	if err != nil {
		return nil, err
	}
	switch op {
	case "=":
		return expression.NewEquals(l, r), nil
	case "!=", "<>":
		return expression.NewNotEquals(l, r), nil
	case "<":
		return expression.NewLessThan(l, r), nil
	case "<=":
		return expression.NewLessOrEqual(l, r), nil
	case ">":
		return expression.NewGreaterThan(l, r), nil
	case ">=":
		return expression.NewGreaterOrEqual(l, r), nil
	default:
		return nil, sql.ErrUnsupportedSyntax.New(op)
	}
}

func bindLiteral(l *sqlparser.Literal) (sql.Expression, error) {
	switch l.Type {
	case sqlparser.IntVal:
		n, err := strconv.ParseInt(l.Val, 10, 64)
		if err != nil {
			return nil, err
		}
		return expression.NewLiteral(n, types.Int64), nil
	case sqlparser.FloatVal:
		f, err := strconv.ParseFloat(l.Val, 64)
		if err != nil {
			return nil, err
		}
		return expression.NewLiteral(f, types.Double), nil
	case sqlparser.StrVal:
		return expression.NewLiteral(l.Val, types.Varchar), nil
	default:
		return expression.NewLiteral(nil, types.Null), nil
	}
}

func (b *Binder) applySortLimit(sel *sqlparser.Select, node sql.Node) (sql.Node, error) {
	if len(sel.OrderBy) > 0 {
		schema := node.Schema()
		fields := make([]plan.SortField, len(sel.OrderBy))
		for i, o := range sel.OrderBy {
			e, err := bindAgainstSchema(schema, o.Expr)
			if err != nil {
				return nil, err
			}
			fields[i] = plan.SortField{Expr: e, Descending: strings.EqualFold(o.Direction, sqlparser.DescScr)}
		}
		node = plan.NewSort(fields, node)
	}

	if sel.Limit != nil {
		count, err := bindLimitExpr(sel.Limit.Rowcount)
		if err != nil {
			return nil, err
		}
		if sel.Limit.Offset != nil {
			offset, err := bindLimitExpr(sel.Limit.Offset)
			if err != nil {
				return nil, err
			}
			return plan.NewLimitWithOffset(count, offset, node), nil
		}
		return plan.NewLimit(count, node), nil
	}
	return node, nil
}

// bindAgainstSchema binds an ORDER BY term against a node's own output
// schema (post-SELECT-list), supporting a bare column/alias name or a
// 1-based ordinal position.
func bindAgainstSchema(schema sql.Schema, e sqlparser.Expr) (sql.Expression, error) {
	switch e := e.(type) {
	case *sqlparser.ColName:
		i := schema.IndexOf(e.Name.String(), "")
		if i < 0 {
			return nil, sql.ErrColumnNotFound.New(e.Name.String())
		}
		return expression.NewGetField(i, schema[i].Type, schema[i].Name, schema[i].Nullable), nil
	case *sqlparser.Literal:
		if e.Type == sqlparser.IntVal {
			n, err := strconv.ParseInt(e.Val, 10, 64)
			if err != nil {
				return nil, err
			}
			i := int(n) - 1
			if i < 0 || i >= len(schema) {
				return nil, sql.ErrColumnNotFound.New(e.Val)
			}
			return expression.NewGetField(i, schema[i].Type, schema[i].Name, schema[i].Nullable), nil
		}
		return nil, sql.ErrUnsupportedSyntax.New("ORDER BY term")
	default:
		return nil, sql.ErrUnsupportedSyntax.New("ORDER BY term")
	}
}

func bindLimitExpr(e sqlparser.Expr) (sql.Expression, error) {
	lit, ok := e.(*sqlparser.Literal)
	if !ok || lit.Type != sqlparser.IntVal {
		return nil, sql.ErrUnsupportedSyntax.New("LIMIT/OFFSET must be an integer literal")
	}
	n, err := strconv.ParseInt(lit.Val, 10, 64)
	if err != nil {
		return nil, err
	}
	return expression.NewLiteral(n, types.Int64), nil
}
