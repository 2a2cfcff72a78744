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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qxengine/qx/sql"
)

func testPlan() *Plan {
	scan := &LiteralScan{OutSchema: sql.Schema{{Name: "id"}}, Rows: []sql.Row{{int64(1)}, {int64(2)}}}
	return &Plan{Root: &Limit{Count: 1, Input: scan}}
}

func TestPlanExplainIndentsChildren(t *testing.T) {
	out := testPlan().Explain()
	require.Equal(t, "Limit(1, offset=0)\n  LiteralScan(2 rows)\n", out)
}

func TestPlanMermaidDrawsEdgeFromChildToParent(t *testing.T) {
	out := testPlan().Mermaid()
	require.Contains(t, out, "flowchart TD\n")
	require.Contains(t, out, `n0["Limit(1, offset=0)"]`)
	require.Contains(t, out, `n1["LiteralScan(2 rows)"]`)
	require.Contains(t, out, "n1 --> n0")
}
