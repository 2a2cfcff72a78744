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

// Package physical lowers a bound, analyzed logical plan into the
// executable tree sql/rowexec actually runs: the point where the
// optimizer's "what" (pushdown, join type, grouping) becomes a concrete
// "how" (ConnectorScan vs residual filter, HashJoin vs NestedLoopJoin,
// HeapSort vs a full sort-then-limit).
package physical

import "github.com/qxengine/qx/sql"

// Op is the common interface for physical operators. Unlike sql.Node, Op
// carries no bound-expression contract of its own: each concrete Op type
// exposes whatever expressions it needs directly (Predicate, Projections,
// Keys, ...), since rowexec builds one BatchIter implementation per Op
// type and never needs to walk an Op tree generically the way the
// optimizer walks a logical plan.
type Op interface {
	Schema() sql.Schema
	Children() []Op
	String() string
}

// Plan wraps a lowered physical tree, the unit EXPLAIN and the executor
// both operate on.
type Plan struct {
	Root Op
}
