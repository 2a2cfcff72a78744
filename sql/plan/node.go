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

// Package plan implements the logical operator tree: Scan, Filter,
// Project, Aggregate, Join, Sort, Limit, Distinct, Union, CrossJoin,
// Unnest, and Values. Nodes are immutable; every rewrite in sql/analyzer
// builds new node values via WithChildren/WithExpressions rather than
// mutating a node in place.
package plan

import "github.com/qxengine/qx/sql"

// JoinType enumerates the join kinds Join nodes support; the physical
// planner decides between HashJoin and NestedLoopJoin based on this and
// the join condition's shape.
type JoinType int

const (
	JoinInner JoinType = iota
	JoinLeftOuter
	JoinRightOuter
	JoinFullOuter
	JoinLeftSemi
	JoinLeftAnti
)

func (t JoinType) String() string {
	switch t {
	case JoinInner:
		return "InnerJoin"
	case JoinLeftOuter:
		return "LeftOuterJoin"
	case JoinRightOuter:
		return "RightOuterJoin"
	case JoinFullOuter:
		return "FullOuterJoin"
	case JoinLeftSemi:
		return "LeftSemiJoin"
	case JoinLeftAnti:
		return "LeftAntiJoin"
	default:
		return "Join"
	}
}

// hinted is embedded by every node to provide the common Hints()
// storage and accessor, rather than repeating the same three lines in
// every node type.
type hinted struct {
	hints map[sql.Hint]bool
}

func (h hinted) Hints() map[sql.Hint]bool {
	if h.hints == nil {
		return map[sql.Hint]bool{}
	}
	return h.hints
}

// WithHint returns a copy of hints with name added. The binder does not
// parse `/*+ NO_CACHE */`-style annotations, so it never calls this.
func WithHint(n hinted, name sql.Hint) hinted {
	out := make(map[sql.Hint]bool, len(n.hints)+1)
	for k, v := range n.hints {
		out[k] = v
	}
	out[name] = true
	return hinted{hints: out}
}
