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

package rowexec

import (
	"fmt"

	"github.com/qxengine/qx/sql"
	"github.com/qxengine/qx/sql/physical"
)

// Build compiles a physical.Op tree into the executable BatchIter tree,
// recursively building children first. Every returned iterator is
// wrapped in a tracing span named after op.String().
func Build(ctx *sql.Context, op physical.Op) (sql.BatchIter, error) {
	it, err := build(ctx, op)
	if err != nil {
		return nil, err
	}
	return trace(op.String(), it), nil
}

func build(ctx *sql.Context, op physical.Op) (sql.BatchIter, error) {
	switch o := op.(type) {
	case *physical.ConnectorScan:
		return newConnectorScanIter(ctx, o)
	case *physical.LiteralScan:
		return newMaterializedIter(ctx, o.OutSchema, o.Rows), nil
	case *physical.VectorFilter:
		child, err := Build(ctx, o.Input)
		if err != nil {
			return nil, err
		}
		return &vectorFilterIter{predicate: o.Predicate, child: child}, nil
	case *physical.VectorProject:
		child, err := Build(ctx, o.Input)
		if err != nil {
			return nil, err
		}
		return &vectorProjectIter{projections: o.Projections, schema: o.OutSchema, child: child}, nil
	case *physical.Limit:
		child, err := Build(ctx, o.Input)
		if err != nil {
			return nil, err
		}
		return &limitIter{count: o.Count, offset: o.Offset, child: child}, nil
	case *physical.CrossJoinOp:
		return buildCrossJoin(ctx, o)
	case *physical.UnionOp:
		left, err := Build(ctx, o.Left)
		if err != nil {
			return nil, err
		}
		right, err := Build(ctx, o.Right)
		if err != nil {
			return nil, err
		}
		return &unionIter{left: left, right: right}, nil
	case *physical.UnnestOp:
		child, err := Build(ctx, o.Input)
		if err != nil {
			return nil, err
		}
		return &unnestIter{column: o.Column, schema: o.OutSchema, child: child}, nil
	case *physical.HashJoinOp:
		return buildHashJoin(ctx, o)
	case *physical.NestedLoopJoinOp:
		return buildNestedLoopJoin(ctx, o)
	case *physical.HashAggregateOp:
		return buildHashAggregate(ctx, o)
	case *physical.DistinctOp:
		return buildDistinct(ctx, o)
	case *physical.SortOp:
		return buildSort(ctx, o)
	case *physical.HeapSortOp:
		return buildHeapSort(ctx, o)
	default:
		return nil, fmt.Errorf("rowexec: no executor for op type %T", op)
	}
}
