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
	"strings"

	"github.com/qxengine/qx/sql"
	"github.com/qxengine/qx/sql/expression"
	"github.com/qxengine/qx/sql/types"
)

// constantFoldExpression replaces any expression that references no
// columns with the Literal produced by evaluating it once against a
// single-row, columnless batch.
func constantFoldExpression(ctx *sql.Context, n sql.Node) (sql.Node, bool, error) {
	return rewriteAllExpressions(n, func(e sql.Expression) (sql.Expression, bool, error) {
		if _, ok := e.(*expression.Literal); ok {
			return e, false, nil
		}
		if !e.Resolved() || referencesColumn(e) {
			return e, false, nil
		}
		b := &sql.Batch{Rows: 1}
		col, err := e.Eval(ctx, b)
		if err != nil {
			// a constant expression that errors (e.g. division by zero)
			// is left for the executor to raise at run time.
			return e, false, nil
		}
		vals := expression.AsSlice(col, 1)
		return expression.NewLiteral(vals[0], e.Type()), true, nil
	})
}

func referencesColumn(e sql.Expression) bool {
	if _, ok := e.(*expression.GetField); ok {
		return true
	}
	for _, c := range e.Children() {
		if referencesColumn(c) {
			return true
		}
	}
	return false
}

// constantFoldReduce replaces a LIKE whose pattern is made only of '%'
// (it matches every string) with a TRUE Literal. No other always-true or
// always-false form is recognized.
func constantFoldReduce(ctx *sql.Context, n sql.Node) (sql.Node, bool, error) {
	return rewriteAllExpressions(n, func(e sql.Expression) (sql.Expression, bool, error) {
		if l, ok := e.(*expression.Like); ok && isAlwaysMatchPattern(l) {
			return expression.NewLiteral(true, types.Boolean), true, nil
		}
		return e, false, nil
	})
}

func isAlwaysMatchPattern(l *expression.Like) bool {
	return l.Pattern != "" && strings.Trim(l.Pattern, "%") == ""
}
