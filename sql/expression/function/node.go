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

package function

import (
	"fmt"

	"github.com/qxengine/qx/sql"
	"github.com/qxengine/qx/sql/expression"
)

// NamedCall is implemented by every expression this package constructs,
// letting other packages (the optimizer's call-rewriting rules) match a
// bound expression against a specific function name without depending
// on the unexported call type.
type NamedCall interface {
	sql.Expression
	Name() string
}

// RowFunc computes one function call's result from already non-null,
// per-row argument values. Returning a nil error with a nil value
// produces a NULL result row (used by the ARRAY_CONTAINS functions when
// the first argument is not an array).
type RowFunc func(args []interface{}) (interface{}, error)

// call is the concrete sql.Expression every builder in this package
// constructs: a name, its bound arguments, a pre-resolved return type,
// and a row-wise compute function. Rows where any argument is NULL are
// NULL without invoking fn, matching ordinary SQL NULL propagation. The
// one exception is IFNULL, whose fn receives a NULL argument as nil and
// picks its fallback itself.
type call struct {
	name    string
	args    []sql.Expression
	retType sql.Type
	fn      RowFunc
}

func newCall(name string, args []sql.Expression, retType sql.Type, fn RowFunc) sql.Expression {
	return &call{name: name, args: args, retType: retType, fn: fn}
}

func (c *call) Type() sql.Type             { return c.retType }
func (c *call) Children() []sql.Expression { return c.args }

// Name returns the registered function name, used by analyzer rules
// that rewrite one call into another (e.g. STARTS_WITH -> LIKE).
func (c *call) Name() string { return c.name }
func (c *call) Resolved() bool {
	for _, a := range c.args {
		if !a.Resolved() {
			return false
		}
	}
	return true
}
func (c *call) String() string {
	return fmt.Sprintf("%s(%s)", c.name, joinArgs(c.args))
}

func joinArgs(args []sql.Expression) string {
	out := ""
	for i, a := range args {
		if i > 0 {
			out += ", "
		}
		out += a.String()
	}
	return out
}

func (c *call) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != len(c.args) {
		return nil, fmt.Errorf("%s: expected %d children, got %d", c.name, len(c.args), len(children))
	}
	return &call{name: c.name, args: children, retType: c.retType, fn: c.fn}, nil
}

func (c *call) Eval(ctx *sql.Context, b *sql.Batch) (sql.ColumnData, error) {
	argCols := make([]sql.ColumnData, len(c.args))
	argVals := make([][]interface{}, len(c.args))
	for i, a := range c.args {
		col, err := a.Eval(ctx, b)
		if err != nil {
			return sql.ColumnData{}, err
		}
		argCols[i] = col
		argVals[i] = expression.AsSlice(col, b.Rows)
	}

	out := make([]interface{}, b.Rows)
	valid := sql.NewValidity(b.Rows)
	rowArgs := make([]interface{}, len(c.args))
	for row := 0; row < b.Rows; row++ {
		allValid := true
		for i := range c.args {
			if !argCols[i].Valid.Get(row) {
				if c.name == "IFNULL" {
					rowArgs[i] = nil
					continue
				}
				allValid = false
				break
			}
			rowArgs[i] = argVals[i][row]
		}
		if !allValid {
			continue
		}
		v, err := c.fn(rowArgs)
		if err != nil {
			return sql.ColumnData{}, sql.ErrFunctionExecutionError.New(c.name, err.Error())
		}
		if v == nil {
			continue
		}
		out[row] = v
		valid.Set(row, true)
	}
	return sql.ColumnData{Values: out, Valid: valid}, nil
}
