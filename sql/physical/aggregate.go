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

import "github.com/qxengine/qx/sql"

// AggFunc is the closed set of supported aggregators.
type AggFunc string

const (
	AggCount           AggFunc = "COUNT"
	AggCountStar       AggFunc = "COUNT_STAR"
	AggSum             AggFunc = "SUM"
	AggMin             AggFunc = "MIN"
	AggMax             AggFunc = "MAX"
	AggAvg             AggFunc = "AVG"
	AggArrayAgg        AggFunc = "ARRAY_AGG"
	AggCountDistinct   AggFunc = "COUNT_DISTINCT"
	AggStdDev          AggFunc = "STDDEV"
	AggVariance        AggFunc = "VARIANCE"
	AggOne             AggFunc = "ONE"
	AggApproxMedian    AggFunc = "APPROXIMATE_MEDIAN"
)

// Aggregator is one GROUP BY output column's aggregation spec.
type Aggregator struct {
	Func     AggFunc
	Arg      sql.Expression // nil for COUNT(*)
	Alias    string
	Type     sql.Type
	Distinct bool // for ARRAY_AGG DISTINCT
	Limit    int  // for ARRAY_AGG LIMIT n, 0 = unbounded
}

// HashAggregateOp is the sole aggregation strategy (§4.4: "HashAggregate
// in all cases"); GroupBy keyed by sql.Fingerprint over the canonicalized
// key tuple. An empty GroupBy means a single implicit group.
type HashAggregateOp struct {
	GroupBy    []sql.Expression
	Aggregates []Aggregator
	OutSchema  sql.Schema
	Input      Op
}

func (a *HashAggregateOp) Schema() sql.Schema { return a.OutSchema }
func (a *HashAggregateOp) Children() []Op     { return []Op{a.Input} }
func (a *HashAggregateOp) String() string     { return "HashAggregate" }

// DistinctOp is hash aggregation with no aggregators: one output row per
// distinct input row.
type DistinctOp struct {
	Input Op
}

func (d *DistinctOp) Schema() sql.Schema { return d.Input.Schema() }
func (d *DistinctOp) Children() []Op     { return []Op{d.Input} }
func (d *DistinctOp) String() string     { return "Distinct" }
