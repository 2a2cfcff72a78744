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

import "github.com/qxengine/qx/sql"

// transformUp rewrites n bottom-up: children are transformed first, then
// f is applied to the node with its (possibly rewritten) children
// already in place. Returns whether any node in the subtree changed.
func transformUp(n sql.Node, f func(sql.Node) (sql.Node, bool, error)) (sql.Node, bool, error) {
	children := n.Children()
	changed := false
	if len(children) > 0 {
		newChildren := make([]sql.Node, len(children))
		for i, c := range children {
			nc, ch, err := transformUp(c, f)
			if err != nil {
				return nil, false, err
			}
			newChildren[i] = nc
			changed = changed || ch
		}
		if changed {
			var err error
			n, err = n.WithChildren(newChildren...)
			if err != nil {
				return nil, false, err
			}
		}
	}
	out, fired, err := f(n)
	if err != nil {
		return nil, false, err
	}
	return out, changed || fired, nil
}

// transformExpressionsUp rewrites every expression an ExpressionContainer
// node carries via g, bottom-up within each expression tree, leaving
// non-expression-carrying nodes untouched.
func transformExpressionsUp(n sql.Node, g func(sql.Expression) (sql.Expression, bool, error)) (sql.Node, bool, error) {
	ec, ok := n.(sql.ExpressionContainer)
	if !ok {
		return n, false, nil
	}
	exprs := ec.Expressions()
	if len(exprs) == 0 {
		return n, false, nil
	}
	changed := false
	out := make([]sql.Expression, len(exprs))
	for i, e := range exprs {
		ne, ch, err := transformExprUp(e, g)
		if err != nil {
			return nil, false, err
		}
		out[i] = ne
		changed = changed || ch
	}
	if !changed {
		return n, false, nil
	}
	newNode, err := ec.WithExpressions(out...)
	if err != nil {
		return nil, false, err
	}
	return newNode, true, nil
}

// rewriteAllExpressions walks every node of the plan and rewrites every
// expression it carries via g; used by the expression-level rules
// (constant folding, boolean simplification) which don't care which
// node kind holds the expression.
func rewriteAllExpressions(n sql.Node, g func(sql.Expression) (sql.Expression, bool, error)) (sql.Node, bool, error) {
	return transformUp(n, func(node sql.Node) (sql.Node, bool, error) {
		return transformExpressionsUp(node, g)
	})
}

func transformExprUp(e sql.Expression, g func(sql.Expression) (sql.Expression, bool, error)) (sql.Expression, bool, error) {
	children := e.Children()
	changed := false
	if len(children) > 0 {
		newChildren := make([]sql.Expression, len(children))
		for i, c := range children {
			nc, ch, err := transformExprUp(c, g)
			if err != nil {
				return nil, false, err
			}
			newChildren[i] = nc
			changed = changed || ch
		}
		if changed {
			var err error
			e, err = e.WithChildren(newChildren...)
			if err != nil {
				return nil, false, err
			}
		}
	}
	out, fired, err := g(e)
	if err != nil {
		return nil, false, err
	}
	return out, changed || fired, nil
}
