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

// Hint is a logical-plan annotation a binder may attach to a node to
// suppress an optimizer rewrite, e.g. NO_PUSH_PROJECTION or NO_CACHE.
type Hint string

const (
	HintNoPushProjection Hint = "NO_PUSH_PROJECTION"
	HintNoCache          Hint = "NO_CACHE"
)

// Node is the common interface for logical operators. Nodes are
// immutable: rewriting a plan means building new Node values, never
// mutating in place.
type Node interface {
	// Schema is a pure function of this node's children's schemas and its
	// own parameters.
	Schema() Schema
	// Children returns 0..2 child nodes.
	Children() []Node
	// WithChildren returns a copy of this node with its children
	// replaced; used by every rewrite rule in sql/analyzer.
	WithChildren(children ...Node) (Node, error)
	// Hints returns the hint set attached to this node.
	Hints() map[Hint]bool
	// String renders the node for EXPLAIN / debugging.
	String() string
}

// ExpressionContainer is implemented by Node types that carry bound
// expressions (Filter's predicate, Project's projections, Aggregate's
// group-by and aggregate expressions, Join's condition). The optimizer
// uses this to rewrite expressions in place during constant folding and
// boolean simplification without type-switching on every node kind.
type ExpressionContainer interface {
	Node
	Expressions() []Expression
	WithExpressions(exprs ...Expression) (Node, error)
}
