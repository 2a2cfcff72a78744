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

package sql

// Expression is the common interface for every node in an expression
// tree. Concrete node types live in sql/expression; this package only
// needs the interface so that Node (plan operators) can hold expressions
// without an import cycle.
type Expression interface {
	// Type returns the expression's cached result type, computed once at
	// bind time: the expression engine never guesses types at runtime.
	Type() Type
	// Resolved reports whether every column reference inside this
	// expression has been bound to an index.
	Resolved() bool
	// Children returns this node's sub-expressions, for tree walks
	// (constant folding, pushdown column-set checks, ...).
	Children() []Expression
	// WithChildren returns a copy of this expression with its children
	// replaced, used by optimizer rewrite rules.
	WithChildren(children ...Expression) (Expression, error)
	// Eval evaluates this expression over a full Batch, returning a
	// ColumnData of b.Rows values (or a single repeated value for a
	// expressions independent of any column, e.g. a Literal).
	Eval(ctx *Context, b *Batch) (ColumnData, error)
	// String renders the expression for EXPLAIN / debugging.
	String() string
}

// ColumnSet is a set of (source, column) references an expression
// touches, used by predicate/projection pushdown to check that the
// column set is a subset of the child's output columns before the
// predicate or projection can be pushed down.
type ColumnSet map[string]struct{}

func NewColumnSet(names ...string) ColumnSet {
	cs := make(ColumnSet, len(names))
	for _, n := range names {
		cs[n] = struct{}{}
	}
	return cs
}

func (cs ColumnSet) Add(name string) { cs[name] = struct{}{} }

func (cs ColumnSet) SubsetOf(other ColumnSet) bool {
	for n := range cs {
		if _, ok := other[n]; !ok {
			return false
		}
	}
	return true
}
