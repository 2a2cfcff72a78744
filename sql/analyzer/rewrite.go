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
	"github.com/qxengine/qx/sql/expression/function"
	"github.com/qxengine/qx/sql/types"
)

// rewriteStartsWithToLike turns STARTS_WITH(x, 's') into x LIKE 's%':
// LIKE's hand-compiled matcher is cheaper than a function-call dispatch
// for a pattern the rest of the optimizer (constant_fold_reduce,
// predicate_rewriter_replace_like_with_in_string) already knows how to
// simplify further.
func rewriteStartsWithToLike(ctx *sql.Context, n sql.Node) (sql.Node, bool, error) {
	return rewriteAllExpressions(n, func(e sql.Expression) (sql.Expression, bool, error) {
		lit, ok := literalSuffixCall(e, "STARTS_WITH")
		if !ok {
			return e, false, nil
		}
		return expression.NewLike(callArg(e, 0), lit+"%"), true, nil
	})
}

// rewriteEndsWithToLike turns ENDS_WITH(x, 's') into x LIKE '%s'.
func rewriteEndsWithToLike(ctx *sql.Context, n sql.Node) (sql.Node, bool, error) {
	return rewriteAllExpressions(n, func(e sql.Expression) (sql.Expression, bool, error) {
		lit, ok := literalSuffixCall(e, "ENDS_WITH")
		if !ok {
			return e, false, nil
		}
		return expression.NewLike(callArg(e, 0), "%"+lit), true, nil
	})
}

func literalSuffixCall(e sql.Expression, name string) (string, bool) {
	nc, ok := e.(function.NamedCall)
	if !ok || nc.Name() != name {
		return "", false
	}
	children := nc.Children()
	if len(children) != 2 {
		return "", false
	}
	lit, ok := children[1].(*expression.Literal)
	if !ok {
		return "", false
	}
	s, ok := lit.Value().(string)
	return s, ok
}

func callArg(e sql.Expression, i int) sql.Expression {
	return e.Children()[i]
}

// rewriteLikeToContains replaces `x LIKE '%literal%'`, where literal
// itself has no wildcards, with a plain substring-contains call: no
// pattern matcher needed when the pattern is just "anywhere in the
// string".
func rewriteLikeToContains(ctx *sql.Context, n sql.Node) (sql.Node, bool, error) {
	reg := builtinRegistry()
	return rewriteAllExpressions(n, func(e sql.Expression) (sql.Expression, bool, error) {
		like, ok := e.(*expression.Like)
		if !ok {
			return e, false, nil
		}
		if !strings.HasPrefix(like.Pattern, "%") || !strings.HasSuffix(like.Pattern, "%") {
			return e, false, nil
		}
		literal := like.Pattern[1 : len(like.Pattern)-1]
		if strings.ContainsAny(literal, "%_") {
			return e, false, nil
		}
		call, err := reg.Resolve("CONTAINS", []sql.Expression{
			like.Value,
			expression.NewLiteral(literal, like.Value.Type()),
		})
		if err != nil {
			return e, false, nil
		}
		return call, true, nil
	})
}

// rewriteCaseToIfNull turns the single-branch
// `CASE WHEN x IS NULL THEN c ELSE x END` into `IFNULL(x, c)`: same
// result, no per-row branch dispatch.
func rewriteCaseToIfNull(ctx *sql.Context, n sql.Node) (sql.Node, bool, error) {
	reg := builtinRegistry()
	return rewriteAllExpressions(n, func(e sql.Expression) (sql.Expression, bool, error) {
		c, ok := e.(*expression.Case)
		if !ok || len(c.Branches) != 1 || c.Else == nil {
			return e, false, nil
		}
		br := c.Branches[0]
		isNull, ok := br.Cond.(*expression.IsNull)
		if !ok || isNull.Negate {
			return e, false, nil
		}
		if isNull.Value.String() != c.Else.String() {
			return e, false, nil
		}
		call, err := reg.Resolve("IFNULL", []sql.Expression{isNull.Value, br.Then})
		if err != nil {
			return e, false, nil
		}
		return call, true, nil
	})
}

// rewriteAnyEqToContains collapses one or more `v = ANY(col)` terms
// OR'd together, over the same array column, into a single
// ARRAY_CONTAINS / ARRAY_CONTAINS_ANY call: membership against an
// array's contents belongs in the function registry, not spread across
// an OR tree the executor has to walk per row.
func rewriteAnyEqToContains(ctx *sql.Context, n sql.Node) (sql.Node, bool, error) {
	reg := builtinRegistry()
	return rewriteAllExpressions(n, func(e sql.Expression) (sql.Expression, bool, error) {
		if any, ok := e.(*expression.Any); ok {
			call, err := reg.Resolve("ARRAY_CONTAINS", []sql.Expression{any.Array, any.Value})
			if err != nil {
				return e, false, nil
			}
			return call, true, nil
		}

		or, ok := e.(*expression.Or)
		if !ok {
			return e, false, nil
		}
		terms := or.Children()
		var array sql.Expression
		values := make([]sql.Expression, 0, len(terms))
		for _, t := range terms {
			var termArray, termValue sql.Expression
			if any, ok := t.(*expression.Any); ok {
				termArray, termValue = any.Array, any.Value
			} else if nc, ok := t.(function.NamedCall); ok && nc.Name() == "ARRAY_CONTAINS" {
				// a lone ANY term already rewritten, bottom-up, to ARRAY_CONTAINS(array, value)
				termArray, termValue = nc.Children()[0], nc.Children()[1]
			} else {
				return e, false, nil
			}
			if array == nil {
				array = termArray
			} else if array.String() != termArray.String() {
				return e, false, nil
			}
			values = append(values, termValue)
		}
		if array == nil || len(values) < 2 {
			return e, false, nil
		}
		literalVals := make([]interface{}, len(values))
		for i, v := range values {
			lit, ok := v.(*expression.Literal)
			if !ok {
				return e, false, nil
			}
			literalVals[i] = lit.Value()
		}
		search := expression.NewLiteral(literalVals, types.Array(values[0].Type()))
		call, err := reg.Resolve("ARRAY_CONTAINS_ANY", []sql.Expression{array, search})
		if err != nil {
			return e, false, nil
		}
		return call, true, nil
	})
}
