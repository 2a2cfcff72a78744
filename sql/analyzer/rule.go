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

// Package analyzer applies a fixed sequence of rewrite rules to a bound
// logical plan until none fires, producing an equivalent, cheaper plan
// for the physical planner to lower.
package analyzer

import (
	"sync"

	"github.com/qxengine/qx/sql"
	"github.com/qxengine/qx/sql/expression/function"
)

var (
	builtinRegistryOnce sync.Once
	builtinRegistryVal  *function.Registry
)

// builtinRegistry is the shared function registry the call-rewriting
// rules use to build replacement calls (e.g. LIKE -> CONTAINS); it is
// the same built-in set every Binder resolves names against.
func builtinRegistry() *function.Registry {
	builtinRegistryOnce.Do(func() { builtinRegistryVal = function.NewRegistry() })
	return builtinRegistryVal
}

// Rule rewrites a logical plan. Fired reports whether the rule changed
// anything; the Analyzer stops the current pass's rule list only once
// every rule in sequence reports Fired == false.
type Rule struct {
	Name  string
	Apply func(ctx *sql.Context, n sql.Node) (out sql.Node, fired bool, err error)
}

// defaultRules' order is significant: boolean simplification before predicate
// pushdown, predicate pushdown before projection pushdown, limit
// pushdown last so it sees the already-narrowed plan.
func defaultRules() []Rule {
	return []Rule{
		{Name: "constant_fold_expression", Apply: constantFoldExpression},
		{Name: "constant_fold_reduce", Apply: constantFoldReduce},
		{Name: "boolean_rewrite_inversion", Apply: booleanRewriteInversion},
		{Name: "boolean_rewrite_and_flatten", Apply: booleanRewriteAndFlatten},
		{Name: "boolean_rewrite_demorgan_nary", Apply: booleanRewriteDeMorganNary},
		{Name: "predicate_rewriter_starts_with_to_like", Apply: rewriteStartsWithToLike},
		{Name: "predicate_rewriter_ends_with_to_like", Apply: rewriteEndsWithToLike},
		{Name: "predicate_rewriter_replace_like_with_in_string", Apply: rewriteLikeToContains},
		{Name: "predicate_rewriter_case_to_ifnull", Apply: rewriteCaseToIfNull},
		{Name: "predicate_rewriter_anyeq_to_contains", Apply: rewriteAnyEqToContains},
		{Name: "predicate_compaction", Apply: predicateCompaction},
		{Name: "predicate_pushdown", Apply: predicatePushdown},
		{Name: "projection_pushdown", Apply: projectionPushdown},
		{Name: "inner_join_smallest_table_left", Apply: innerJoinSmallestTableLeft},
		{Name: "inner_join_correlated_filter", Apply: innerJoinCorrelatedFilter},
		{Name: "limit_pushdown", Apply: limitPushdown},
	}
}
