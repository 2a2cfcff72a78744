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
)

// Stats reports how many times each rule fired across an Analyze call,
// exposed to the caller as query statistics.
type Stats struct {
	FiredByRule map[string]int
	Passes      int
}

// Analyzer applies its Rules to a bound logical plan until a full pass
// fires no rule, or MaxPasses is reached (a safety bound against a
// mis-specified rule cycling forever).
type Analyzer struct {
	Rules     []Rule
	MaxPasses int
	// DisableOptimizer, when true, makes Analyze a no-op: the plan binds
	// straight through to the physical planner unmodified.
	DisableOptimizer bool
}

// NewDefault builds an Analyzer preloaded with the standard rule
// sequence, order-significant: boolean simplification before predicate
// pushdown, predicate pushdown before projection pushdown, limit
// pushdown last so it sees the already-narrowed plan.
func NewDefault() *Analyzer {
	return &Analyzer{Rules: defaultRules(), MaxPasses: 32}
}

// Analyze runs the rule sequence to fixpoint, returning the rewritten
// plan and a firing-count breakdown.
func (a *Analyzer) Analyze(ctx *sql.Context, n sql.Node) (sql.Node, *Stats, error) {
	stats := &Stats{FiredByRule: make(map[string]int)}
	if a.DisableOptimizer {
		return n, stats, nil
	}

	for pass := 0; pass < a.MaxPasses; pass++ {
		stats.Passes++
		anyFired := false
		for _, rule := range a.Rules {
			out, fired, err := rule.Apply(ctx, n)
			if err != nil {
				return nil, stats, err
			}
			if fired {
				stats.FiredByRule[rule.Name]++
				anyFired = true
				n = out
			}
		}
		if !anyFired {
			break
		}
	}
	return n, stats, nil
}
