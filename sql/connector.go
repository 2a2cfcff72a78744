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

// CompareOp is the closed set of comparison operators a connector may be
// asked to honor: a restricted DNF of simple comparisons, never an
// arbitrary expression tree.
type CompareOp uint8

const (
	OpEq CompareOp = iota
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpIn
	OpNotIn
	OpIsNull
	OpIsNotNull
	OpLike
	OpNotLike
)

func (o CompareOp) String() string {
	switch o {
	case OpEq:
		return "="
	case OpNe:
		return "!="
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	case OpIn:
		return "IN"
	case OpNotIn:
		return "NOT IN"
	case OpIsNull:
		return "IS NULL"
	case OpIsNotNull:
		return "IS NOT NULL"
	case OpLike:
		return "LIKE"
	case OpNotLike:
		return "NOT LIKE"
	default:
		return "?"
	}
}

// SimplePredicate is one conjunct of the restricted DNF a connector may
// receive: a single column compared to a literal (or list of literals,
// for IN/NOT IN). The physical planner never hands a connector anything
// more expressive than an AND of SimplePredicates: a predicate pushed to
// a connector references only that connector's own output columns.
type SimplePredicate struct {
	Column string
	Op     CompareOp
	Value  interface{}
	Values []interface{}
}

// PushdownRequest bundles everything a physical Scan may push into a
// connector's ReadDataset.
type PushdownRequest struct {
	// Projection is nil when no projection pushdown is requested (read
	// all columns); otherwise the exact, ordered column list the
	// returned Batch's schema must match.
	Projection []string
	// Predicates is the AND of SimplePredicates the connector is asked
	// to honor. ReadDataset returns the ones it did not apply, and
	// rowexec's connector scan re-applies those to every batch.
	Predicates []SimplePredicate
	// Limit <= 0 means unlimited.
	Limit int
	// Range is the query's resolved FOR clause, if any (the zero value
	// means no temporal constraint). A connector that varies its read
	// over time - Blob's date/hour partitions, Iceberg's snapshot
	// history - narrows ReadDataset/ListPartitions to it; a connector
	// with no time dimension (Memory) ignores it.
	Range TemporalRange
}

// Capabilities declares which pushdowns a connector honors. A connector
// that returns all-false still functions: the physical planner
// compensates with residual VectorFilter/VectorProject/Limit operators.
type Capabilities struct {
	PredicatePushdown         bool
	ProjectionPushdown        bool
	LimitPushdown             bool
	CanPushCompoundPredicates bool
}

// Mode distinguishes read-only connectors (the only kind this engine
// queries) from read-write ones a host application might still register
// for its own non-query purposes.
type Mode uint8

const (
	ReadOnly Mode = iota
	ReadWrite
)

// PartitionKey identifies one slice of a partitioned blob dataset: one
// day/hour/as_at partition slot.
type PartitionKey struct {
	Path string
	Day  string
	Hour string
	AsAt string
}

// Connector is the ABI seam between the engine and a data source. Every
// registered dataset prefix resolves, via catalog.Registry, to one
// Connector instance, reused across queries: GetSchema/ReadDataset must
// be reentrant.
type Connector interface {
	GetSchema(ctx *Context) (Schema, error)
	GetStatistics(ctx *Context) (*RelationStatistics, error)
	ListPartitions(ctx *Context, r TemporalRange) ([]PartitionKey, error)
	ReadDataset(ctx *Context, req PushdownRequest) (BatchIter, []SimplePredicate, error)
	Capabilities() Capabilities
	Mode() Mode
}

// TemporalRange is the resolved form of a `FOR ...` clause, produced by
// the temporal package and handed to connectors as scan parameters. It
// never reaches the executor.
type TemporalRange struct {
	// PointInTime is set for `FOR '<iso-timestamp>'`/TODAY/YESTERDAY/
	// weekday shorthands; zero value means "no point-in-time constraint".
	PointInTime   int64 // unix seconds; 0 means unset
	HasPointInTime bool
	// Since/Until bound a date range (inclusive) for `FOR DATES BETWEEN`/
	// `SINCE`/the named-cycle shorthands. Dates are "YYYY-MM-DD".
	Since, Until string
	HasRange     bool
}
