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

	"github.com/qxengine/qx/sql"
)

// ScalarFunction is implemented by every registered scalar/row function
// (ABS, CONCAT, CAST helpers, DATE_FORMAT, ...). Functions are looked up
// by name in a Registry at bind time; Call only needs the resolved Func
// to evaluate, so sql/expression never imports sql/expression/function
// and the two packages don't form a cycle.
type ScalarFunction interface {
	// Name is the canonical, upper-cased function name, used in EXPLAIN
	// output and error messages.
	Name() string
	// ReturnType computes the function's result type given its
	// arguments' types, called once at bind time.
	ReturnType(args []sql.Type) (sql.Type, error)
	// Eval computes the function's result over a whole batch of
	// already-evaluated argument columns.
	Eval(ctx *sql.Context, rows int, args []sql.ColumnData, argTypes []sql.Type) (sql.ColumnData, error)
}

// Call invokes a bound ScalarFunction with already-bound argument
// expressions.
type Call struct {
	Fn   ScalarFunction
	Args []sql.Expression
	typ  sql.Type
}

func NewCall(fn ScalarFunction, args []sql.Expression, returnType sql.Type) *Call {
	return &Call{Fn: fn, Args: args, typ: returnType}
}

func (c *Call) Type() sql.Type             { return c.typ }
func (c *Call) Children() []sql.Expression { return c.Args }
func (c *Call) Resolved() bool             { return allResolved(c.Args) }
func (c *Call) String() string {
	return fmt.Sprintf("%s(%s)", c.Fn.Name(), joinExprs(c.Args, ", "))
}

func (c *Call) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	return &Call{Fn: c.Fn, Args: children, typ: c.typ}, nil
}

func (c *Call) Eval(ctx *sql.Context, b *sql.Batch) (sql.ColumnData, error) {
	argCols := make([]sql.ColumnData, len(c.Args))
	argTypes := make([]sql.Type, len(c.Args))
	for i, arg := range c.Args {
		col, err := arg.Eval(ctx, b)
		if err != nil {
			return sql.ColumnData{}, err
		}
		argCols[i] = col
		argTypes[i] = arg.Type()
	}
	out, err := c.Fn.Eval(ctx, b.Rows, argCols, argTypes)
	if err != nil {
		return sql.ColumnData{}, sql.ErrFunctionExecutionError.New(c.Fn.Name(), err.Error())
	}
	return out, nil
}

// Alias names an expression's result, used by Project to bind an output
// column name that isn't itself a GetField.
type Alias struct {
	Inner sql.Expression
	Name  string
}

func NewAlias(inner sql.Expression, name string) *Alias {
	return &Alias{Inner: inner, Name: name}
}

func (a *Alias) Type() sql.Type             { return a.Inner.Type() }
func (a *Alias) Children() []sql.Expression { return []sql.Expression{a.Inner} }
func (a *Alias) Resolved() bool             { return a.Inner.Resolved() }
func (a *Alias) String() string             { return fmt.Sprintf("%s AS %s", a.Inner, a.Name) }

func (a *Alias) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, fmt.Errorf("Alias takes exactly 1 child")
	}
	return &Alias{Inner: children[0], Name: a.Name}, nil
}

func (a *Alias) Eval(ctx *sql.Context, b *sql.Batch) (sql.ColumnData, error) {
	return a.Inner.Eval(ctx, b)
}
