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
)

// booleanRewriteInversion strips `NOT NOT e` down to `e`, and flips
// `NOT (a OP b)` into the negated comparison directly (e.g. `NOT (a=b)`
// becomes `a!=b`), so the rest of the boolean rules never have to look
// through a NOT.
func booleanRewriteInversion(ctx *sql.Context, n sql.Node) (sql.Node, bool, error) {
	return rewriteAllExpressions(n, func(e sql.Expression) (sql.Expression, bool, error) {
		not, ok := e.(*expression.Not)
		if !ok {
			return e, false, nil
		}
		inner := not.Inner()
		if doubleNot, ok := inner.(*expression.Not); ok {
			return doubleNot.Inner(), true, nil
		}
		if cmp, ok := inner.(*expression.Compare); ok {
			return cmp.Negated(), true, nil
		}
		return e, false, nil
	})
}

// booleanRewriteAndFlatten collapses a nested tree of binary Ands into a
// single n-ary And over all the leaf conjuncts, so predicate_compaction
// and predicate_pushdown can look at one flat conjunct list instead of
// recursing through a binary tree.
func booleanRewriteAndFlatten(ctx *sql.Context, n sql.Node) (sql.Node, bool, error) {
	return rewriteAllExpressions(n, func(e sql.Expression) (sql.Expression, bool, error) {
		and, ok := e.(*expression.And)
		if !ok {
			return e, false, nil
		}
		flat, changed := flattenAnd(and)
		if !changed {
			return e, false, nil
		}
		return expression.NewAnd(flat...), true, nil
	})
}

func flattenAnd(and *expression.And) ([]sql.Expression, bool) {
	var out []sql.Expression
	changed := false
	for _, operand := range and.Children() {
		if nested, ok := operand.(*expression.And); ok {
			changed = true
			nestedFlat, _ := flattenAnd(nested)
			out = append(out, nestedFlat...)
			continue
		}
		out = append(out, operand)
	}
	return out, changed
}

// booleanRewriteDeMorganNary rewrites `NOT(a OR b OR ...)` into
// `AND(NOT a, NOT b, ...)`, enabling predicate_pushdown to push each
// negated conjunct independently.
func booleanRewriteDeMorganNary(ctx *sql.Context, n sql.Node) (sql.Node, bool, error) {
	return rewriteAllExpressions(n, func(e sql.Expression) (sql.Expression, bool, error) {
		not, ok := e.(*expression.Not)
		if !ok {
			return e, false, nil
		}
		or, ok := not.Inner().(*expression.Or)
		if !ok {
			return e, false, nil
		}
		orOperands := or.Children()
		negated := make([]sql.Expression, len(orOperands))
		for i, op := range orOperands {
			negated[i] = expression.NewNot(op)
		}
		return expression.NewAnd(negated...), true, nil
	})
}
