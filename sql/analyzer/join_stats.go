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
	"github.com/qxengine/qx/sql/plan"
)

// innerJoinSmallestTableLeft swaps an inner join's sides so the side
// with fewer estimated rows is on the left. rowexec's hash join builds
// its table from the right side, so after a swap the larger side is the
// one materialized. Declines to fire when either side lacks a
// RecordCount estimate.
func innerJoinSmallestTableLeft(ctx *sql.Context, n sql.Node) (sql.Node, bool, error) {
	return transformUp(n, func(node sql.Node) (sql.Node, bool, error) {
		j, ok := node.(*plan.Join)
		if !ok || j.Type != plan.JoinInner {
			return node, false, nil
		}
		leftCount, leftOK := estimateRows(ctx, j.Left)
		rightCount, rightOK := estimateRows(ctx, j.Right)
		if !leftOK || !rightOK || leftCount <= rightCount {
			return node, false, nil
		}
		swapped := plan.NewInnerJoin(j.Right, j.Left, j.Condition)
		return swapped, true, nil
	})
}

// innerJoinCorrelatedFilter derives a range filter on the larger side of
// an equi-join from the smaller side's known min/max on the join key,
// letting the larger side's Scan apply predicate pushdown before the
// join ever runs. Declines to fire without min/max stats on the smaller
// side's join column.
func innerJoinCorrelatedFilter(ctx *sql.Context, n sql.Node) (sql.Node, bool, error) {
	return transformUp(n, func(node sql.Node) (sql.Node, bool, error) {
		j, ok := node.(*plan.Join)
		if !ok || j.Type != plan.JoinInner {
			return node, false, nil
		}
		cmp, ok := j.Condition.(*expression.Compare)
		if !ok || cmp.Symbol() != "=" {
			return node, false, nil
		}
		leftCol, leftOK := cmp.Left.(*expression.GetField)
		rightCol, rightOK := cmp.Right.(*expression.GetField)
		if !leftOK || !rightOK {
			return node, false, nil
		}

		leftStats := relationStats(ctx, j.Left)
		if leftStats == nil {
			return node, false, nil
		}
		cs, ok := leftStats.ColumnStats(leftCol.String())
		if !ok || !cs.HasMinMax {
			return node, false, nil
		}

		filtered := plan.NewFilter(expression.NewEncodedRange(rightCol, cs.Min, cs.Max), j.Right)
		newJoin, err := j.WithChildren(j.Left, filtered)
		if err != nil {
			return node, false, err
		}
		return newJoin, true, nil
	})
}

func estimateRows(ctx *sql.Context, n sql.Node) (int64, bool) {
	stats := relationStats(ctx, n)
	if stats == nil || !stats.HasCount {
		return 0, false
	}
	return stats.RecordCount, true
}

func relationStats(ctx *sql.Context, n sql.Node) *sql.RelationStatistics {
	scan, ok := n.(*plan.Scan)
	if !ok || scan.Connector == nil {
		return nil
	}
	stats, err := scan.Connector.GetStatistics(ctx)
	if err != nil {
		return nil
	}
	return stats
}
