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

package expression

import (
	"fmt"
	"strings"

	"github.com/qxengine/qx/sql"
	"github.com/qxengine/qx/sql/types"
)

// And is an n-ary conjunction: the optimizer's boolean-flattening rule
// keeps a run of ANDs flat rather than a binary tree. Evaluation is
// three-valued and short-circuits per row: a row-mask tracks rows
// already decided FALSE so later operands skip them.
type And struct{ args []sql.Expression }

func NewAnd(args ...sql.Expression) *And { return &And{args: args} }

func (a *And) Type() sql.Type             { return types.Boolean }
func (a *And) Children() []sql.Expression { return a.args }
func (a *And) Resolved() bool             { return allResolved(a.args) }
func (a *And) String() string             { return joinExprs(a.args, " AND ") }

func (a *And) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	return &And{args: children}, nil
}

func (a *And) Eval(ctx *sql.Context, b *sql.Batch) (sql.ColumnData, error) {
	result := make([]interface{}, b.Rows)
	valid := sql.NewValidity(b.Rows)
	decided := make([]bool, b.Rows)
	for i := range result {
		result[i] = true
	}
	valid.SetAllValid(b.Rows)

	for _, arg := range a.args {
		col, err := arg.Eval(ctx, b)
		if err != nil {
			return sql.ColumnData{}, err
		}
		vals := AsSlice(col, b.Rows)
		for i := 0; i < b.Rows; i++ {
			if decided[i] && result[i] == false {
				continue // short-circuit: already FALSE, later operands don't matter
			}
			if !col.Valid.Get(i) {
				result[i] = nil
				valid.Set(i, false)
				continue
			}
			v, _ := vals[i].(bool)
			if !v {
				result[i] = false
				valid.Set(i, true)
				decided[i] = true
			} else if result[i] == nil {
				// stays NULL unless a later FALSE decides it
			} else {
				result[i] = true
			}
		}
	}
	return sql.ColumnData{Values: result, Valid: valid}, nil
}

// Or is the n-ary dual of And, short-circuiting on the first TRUE per row.
type Or struct{ args []sql.Expression }

func NewOr(args ...sql.Expression) *Or { return &Or{args: args} }

func (o *Or) Type() sql.Type             { return types.Boolean }
func (o *Or) Children() []sql.Expression { return o.args }
func (o *Or) Resolved() bool             { return allResolved(o.args) }
func (o *Or) String() string             { return joinExprs(o.args, " OR ") }

func (o *Or) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	return &Or{args: children}, nil
}

func (o *Or) Eval(ctx *sql.Context, b *sql.Batch) (sql.ColumnData, error) {
	result := make([]interface{}, b.Rows)
	valid := sql.NewValidity(b.Rows)
	decided := make([]bool, b.Rows)
	valid.SetAllValid(b.Rows)
	for i := range result {
		result[i] = false
	}

	for _, arg := range o.args {
		col, err := arg.Eval(ctx, b)
		if err != nil {
			return sql.ColumnData{}, err
		}
		vals := AsSlice(col, b.Rows)
		for i := 0; i < b.Rows; i++ {
			if decided[i] && result[i] == true {
				continue
			}
			if !col.Valid.Get(i) {
				if result[i] != true {
					result[i] = nil
					valid.Set(i, false)
				}
				continue
			}
			v, _ := vals[i].(bool)
			if v {
				result[i] = true
				valid.Set(i, true)
				decided[i] = true
			}
		}
	}
	return sql.ColumnData{Values: result, Valid: valid}, nil
}

// Not negates a boolean expression (null stays null).
type Not struct{ arg sql.Expression }

func NewNot(arg sql.Expression) *Not { return &Not{arg: arg} }

func (n *Not) Type() sql.Type             { return types.Boolean }
func (n *Not) Children() []sql.Expression { return []sql.Expression{n.arg} }
func (n *Not) Resolved() bool             { return n.arg.Resolved() }
func (n *Not) String() string             { return fmt.Sprintf("NOT %s", n.arg) }
func (n *Not) Inner() sql.Expression       { return n.arg }

func (n *Not) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, fmt.Errorf("Not takes exactly 1 child")
	}
	return &Not{arg: children[0]}, nil
}

func (n *Not) Eval(ctx *sql.Context, b *sql.Batch) (sql.ColumnData, error) {
	col, err := n.arg.Eval(ctx, b)
	if err != nil {
		return sql.ColumnData{}, err
	}
	vals := AsSlice(col, b.Rows)
	out := make([]interface{}, b.Rows)
	for i := range out {
		if !col.Valid.Get(i) {
			continue
		}
		v, _ := vals[i].(bool)
		out[i] = !v
	}
	return sql.ColumnData{Values: out, Valid: col.Valid}, nil
}

// Case implements CASE WHEN ... THEN ... ELSE ... END with per-row
// short-circuit: once a row's branch is taken, later branches are not
// evaluated for it.
type CaseBranch struct {
	Cond sql.Expression
	Then sql.Expression
}

type Case struct {
	Branches []CaseBranch
	Else     sql.Expression
	typ      sql.Type
}

func NewCase(branches []CaseBranch, elseExpr sql.Expression, resultType sql.Type) *Case {
	return &Case{Branches: branches, Else: elseExpr, typ: resultType}
}

func (c *Case) Type() sql.Type { return c.typ }
func (c *Case) Children() []sql.Expression {
	var out []sql.Expression
	for _, br := range c.Branches {
		out = append(out, br.Cond, br.Then)
	}
	if c.Else != nil {
		out = append(out, c.Else)
	}
	return out
}
func (c *Case) Resolved() bool { return allResolved(c.Children()) }
func (c *Case) String() string { return "CASE ... END" }

func (c *Case) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	branches := make([]CaseBranch, len(c.Branches))
	idx := 0
	for i := range branches {
		branches[i] = CaseBranch{Cond: children[idx], Then: children[idx+1]}
		idx += 2
	}
	var elseExpr sql.Expression
	if c.Else != nil {
		elseExpr = children[idx]
	}
	return &Case{Branches: branches, Else: elseExpr, typ: c.typ}, nil
}

func (c *Case) Eval(ctx *sql.Context, b *sql.Batch) (sql.ColumnData, error) {
	out := make([]interface{}, b.Rows)
	valid := sql.NewValidity(b.Rows)
	decided := make([]bool, b.Rows)

	for _, br := range c.Branches {
		condCol, err := br.Cond.Eval(ctx, b)
		if err != nil {
			return sql.ColumnData{}, err
		}
		thenCol, err := br.Then.Eval(ctx, b)
		if err != nil {
			return sql.ColumnData{}, err
		}
		condVals := AsSlice(condCol, b.Rows)
		thenVals := AsSlice(thenCol, b.Rows)
		for i := 0; i < b.Rows; i++ {
			if decided[i] || !condCol.Valid.Get(i) {
				continue
			}
			if v, _ := condVals[i].(bool); v {
				out[i] = thenVals[i]
				valid.Set(i, thenCol.Valid.Get(i))
				decided[i] = true
			}
		}
	}
	if c.Else != nil {
		elseCol, err := c.Else.Eval(ctx, b)
		if err != nil {
			return sql.ColumnData{}, err
		}
		elseVals := AsSlice(elseCol, b.Rows)
		for i := 0; i < b.Rows; i++ {
			if !decided[i] {
				out[i] = elseVals[i]
				valid.Set(i, elseCol.Valid.Get(i))
			}
		}
	}
	return sql.ColumnData{Values: out, Valid: valid}, nil
}

// Coalesce returns the first non-null argument per row. IfNull(x, c) is
// Coalesce(x, c), per the predicate_rewriter_case_to_ifnull rule.
type Coalesce struct {
	args []sql.Expression
	typ  sql.Type
}

func NewCoalesce(typ sql.Type, args ...sql.Expression) *Coalesce {
	return &Coalesce{args: args, typ: typ}
}

func (c *Coalesce) Type() sql.Type             { return c.typ }
func (c *Coalesce) Children() []sql.Expression { return c.args }
func (c *Coalesce) Resolved() bool             { return allResolved(c.args) }
func (c *Coalesce) String() string             { return "COALESCE(" + joinExprs(c.args, ", ") + ")" }

func (c *Coalesce) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	return &Coalesce{args: children, typ: c.typ}, nil
}

func (c *Coalesce) Eval(ctx *sql.Context, b *sql.Batch) (sql.ColumnData, error) {
	out := make([]interface{}, b.Rows)
	valid := sql.NewValidity(b.Rows)
	decided := make([]bool, b.Rows)
	for _, arg := range c.args {
		col, err := arg.Eval(ctx, b)
		if err != nil {
			return sql.ColumnData{}, err
		}
		vals := AsSlice(col, b.Rows)
		for i := 0; i < b.Rows; i++ {
			if decided[i] || !col.Valid.Get(i) {
				continue
			}
			out[i] = vals[i]
			valid.Set(i, true)
			decided[i] = true
		}
	}
	return sql.ColumnData{Values: out, Valid: valid}, nil
}

func allResolved(exprs []sql.Expression) bool {
	for _, e := range exprs {
		if !e.Resolved() {
			return false
		}
	}
	return true
}

func joinExprs(exprs []sql.Expression, sep string) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, sep)
}
