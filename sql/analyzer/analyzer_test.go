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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qxengine/qx/sql"
	"github.com/qxengine/qx/sql/expression"
	"github.com/qxengine/qx/sql/expression/function"
	"github.com/qxengine/qx/sql/plan"
	"github.com/qxengine/qx/sql/types"
)

func baseSchema() sql.Schema {
	return sql.Schema{
		{Name: "a", Type: types.Int64},
		{Name: "b", Type: types.Varchar},
	}
}

func baseScan() *plan.Scan {
	return plan.NewResolvedTable("t", nil, baseSchema(), nil, nil)
}

func TestBooleanFlattenAndCompaction(t *testing.T) {
	a := NewDefault()
	ctx := sql.NewEmptyContext()

	pred := expression.NewAnd(
		expression.NewAnd(
			expression.NewGreaterThan(expression.NewGetField(0, types.Int64, "a", false), expression.NewLiteral(int64(3), types.Int64)),
			expression.NewGreaterThan(expression.NewGetField(0, types.Int64, "a", false), expression.NewLiteral(int64(1), types.Int64)),
		),
	)
	f := plan.NewFilter(pred, baseScan())

	out, stats, err := a.Analyze(ctx, f)
	require.NoError(t, err)
	require.Greater(t, stats.FiredByRule["boolean_rewrite_and_flatten"], 0)

	filtered := out.(*plan.Filter)
	cmp, ok := filtered.Predicate.(*expression.Compare)
	require.True(t, ok, "expected predicate_compaction to reduce to a single comparison, got %s", filtered.Predicate)
	require.Equal(t, int64(3), cmp.Right.(*expression.Literal).Value())
}

func TestDoubleNegationStripped(t *testing.T) {
	a := NewDefault()
	ctx := sql.NewEmptyContext()

	inner := expression.NewEquals(expression.NewGetField(0, types.Int64, "a", false), expression.NewLiteral(int64(1), types.Int64))
	pred := expression.NewNot(expression.NewNot(inner))
	f := plan.NewFilter(pred, baseScan())

	out, _, err := a.Analyze(ctx, f)
	require.NoError(t, err)
	require.Equal(t, inner, out.(*plan.Filter).Predicate)
}

func TestNotOfComparisonFlips(t *testing.T) {
	a := NewDefault()
	ctx := sql.NewEmptyContext()

	eq := expression.NewEquals(expression.NewGetField(0, types.Int64, "a", false), expression.NewLiteral(int64(1), types.Int64))
	f := plan.NewFilter(expression.NewNot(eq), baseScan())

	out, _, err := a.Analyze(ctx, f)
	require.NoError(t, err)
	cmp := out.(*plan.Filter).Predicate.(*expression.Compare)
	require.Equal(t, "!=", cmp.Symbol())
}

func TestStartsWithRewritesToLike(t *testing.T) {
	a := NewDefault()
	ctx := sql.NewEmptyContext()
	reg := builtinRegistry()

	call, err := reg.Resolve("STARTS_WITH", []sql.Expression{
		expression.NewGetField(1, types.Varchar, "b", false),
		expression.NewLiteral("foo", types.Varchar),
	})
	require.NoError(t, err)
	f := plan.NewFilter(call, baseScan())

	out, stats, err := a.Analyze(ctx, f)
	require.NoError(t, err)
	require.Greater(t, stats.FiredByRule["predicate_rewriter_starts_with_to_like"], 0)
	like := out.(*plan.Filter).Predicate.(*expression.Like)
	require.Equal(t, "foo%", like.Pattern)
}

func TestCaseIsNullRewritesToIfNull(t *testing.T) {
	a := NewDefault()
	ctx := sql.NewEmptyContext()

	x := expression.NewGetField(0, types.Int64, "a", true)
	c := expression.NewLiteral(int64(0), types.Int64)
	caseExpr := expression.NewCase(
		[]expression.CaseBranch{{Cond: expression.NewIsNull(x, false), Then: c}},
		x,
		types.Int64,
	)
	p := plan.NewProject([]sql.Expression{caseExpr}, []string{"coalesced"}, baseScan())

	out, stats, err := a.Analyze(ctx, p)
	require.NoError(t, err)
	require.Greater(t, stats.FiredByRule["predicate_rewriter_case_to_ifnull"], 0)
	call, ok := out.(*plan.Project).Projections[0].(function.NamedCall)
	require.True(t, ok)
	require.Equal(t, "IFNULL", call.Name())
}

func TestAnyEqOrChainRewritesToArrayContainsAny(t *testing.T) {
	a := NewDefault()
	ctx := sql.NewEmptyContext()

	col := expression.NewGetField(0, types.Array(types.Int64), "tags", false)
	pred := expression.NewOr(
		expression.NewAny(expression.NewLiteral(int64(1), types.Int64), col),
		expression.NewAny(expression.NewLiteral(int64(2), types.Int64), col),
	)
	f := plan.NewFilter(pred, baseScan())

	out, stats, err := a.Analyze(ctx, f)
	require.NoError(t, err)
	require.Greater(t, stats.FiredByRule["predicate_rewriter_anyeq_to_contains"], 0)
	call, ok := out.(*plan.Filter).Predicate.(function.NamedCall)
	require.True(t, ok)
	require.Equal(t, "ARRAY_CONTAINS_ANY", call.Name())
}

func TestProjectionPushdownNarrowsScan(t *testing.T) {
	a := NewDefault()
	ctx := sql.NewEmptyContext()

	p := plan.NewProject(
		[]sql.Expression{expression.NewGetField(1, types.Varchar, "b", false)},
		[]string{"b"},
		baseScan(),
	)

	out, stats, err := a.Analyze(ctx, p)
	require.NoError(t, err)
	require.Greater(t, stats.FiredByRule["projection_pushdown"], 0)
	scan := out.(*plan.Project).Child.(*plan.Scan)
	require.Equal(t, []string{"b"}, scan.ColumnNames)
}

func TestLimitPushesThroughProject(t *testing.T) {
	a := NewDefault()
	ctx := sql.NewEmptyContext()

	p := plan.NewProject([]sql.Expression{expression.NewGetField(0, types.Int64, "a", false)}, []string{"a"}, baseScan())
	l := plan.NewLimit(expression.NewLiteral(int64(5), types.Int64), p)

	out, stats, err := a.Analyze(ctx, l)
	require.NoError(t, err)
	require.Greater(t, stats.FiredByRule["limit_pushdown"], 0)
	newProject := out.(*plan.Project)
	_, ok := newProject.Child.(*plan.Limit)
	require.True(t, ok)
}

func TestDisableOptimizerIsNoop(t *testing.T) {
	a := NewDefault()
	a.DisableOptimizer = true
	ctx := sql.NewEmptyContext()

	pred := expression.NewNot(expression.NewNot(expression.NewLiteral(true, types.Boolean)))
	f := plan.NewFilter(pred, baseScan())

	out, stats, err := a.Analyze(ctx, f)
	require.NoError(t, err)
	require.Equal(t, 0, stats.Passes)
	require.Same(t, f, out)
}
