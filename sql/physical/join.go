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

package physical

import (
	"fmt"

	"github.com/qxengine/qx/sql"
)

// JoinKind distinguishes the physical join strategies the planner can
// pick; unrelated to plan.JoinType, which is the logical SQL join kind
// (INNER/LEFT OUTER/...) every one of these still carries.
type JoinKind uint8

const (
	KindHash JoinKind = iota
	KindNestedLoop
	KindSemi
	KindAnti
)

// HashJoinOp builds a multimap from the Right side keyed by RightKeys,
// then streams the Left side and probes with LeftKeys.
type HashJoinOp struct {
	Left, Right         Op
	LeftKeys, RightKeys []sql.Expression
	Type                JoinLogicalType
}

func (j *HashJoinOp) Schema() sql.Schema {
	if j.Type == LeftSemi || j.Type == LeftAnti {
		return j.Left.Schema()
	}
	return append(append(sql.Schema{}, j.Left.Schema()...), j.Right.Schema()...)
}
func (j *HashJoinOp) Children() []Op { return []Op{j.Left, j.Right} }
func (j *HashJoinOp) String() string { return fmt.Sprintf("HashJoin(%v)", j.Type) }

// NestedLoopJoinOp evaluates Condition row-by-row across the full
// Cartesian product: the fallback for cross joins and joins whose
// condition is not a pure equi-join.
type NestedLoopJoinOp struct {
	Left, Right Op
	Condition   sql.Expression
	Type        JoinLogicalType
}

func (j *NestedLoopJoinOp) Schema() sql.Schema {
	if j.Type == LeftSemi || j.Type == LeftAnti {
		return j.Left.Schema()
	}
	return append(append(sql.Schema{}, j.Left.Schema()...), j.Right.Schema()...)
}
func (j *NestedLoopJoinOp) Children() []Op { return []Op{j.Left, j.Right} }
func (j *NestedLoopJoinOp) String() string  { return "NestedLoopJoin" }

// JoinLogicalType mirrors plan.JoinType without importing sql/plan (the
// physical package only needs to know which SQL-level semantics a join
// op must produce, not the logical plan shape it was lowered from).
type JoinLogicalType uint8

const (
	Inner JoinLogicalType = iota
	LeftOuter
	RightOuter
	FullOuter
	LeftSemi
	LeftAnti
)
