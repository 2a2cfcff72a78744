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
	"strings"
)

// ExplainFormat selects EXPLAIN's rendering.
type ExplainFormat int

const (
	ExplainText ExplainFormat = iota
	ExplainMermaid
)

// Explain renders p as an indented operator tree: FORMAT TEXT's output.
func (p *Plan) Explain() string {
	var b strings.Builder
	explainOp(&b, p.Root, 0)
	return b.String()
}

func explainOp(b *strings.Builder, op Op, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(op.String())
	b.WriteByte('\n')
	for _, c := range op.Children() {
		explainOp(b, c, depth+1)
	}
}

// Mermaid renders p as a Mermaid flowchart: one node per operator, with
// edges drawn from each operator to its parent in the direction rows
// actually flow during execution (a scan's output flows up into the
// filter or join that consumes it).
func (p *Plan) Mermaid() string {
	var b strings.Builder
	b.WriteString("flowchart TD\n")
	n := 0
	var walk func(op Op) string
	walk = func(op Op) string {
		id := fmt.Sprintf("n%d", n)
		n++
		fmt.Fprintf(&b, "    %s[%q]\n", id, op.String())
		for _, c := range op.Children() {
			childID := walk(c)
			fmt.Fprintf(&b, "    %s --> %s\n", childID, id)
		}
		return id
	}
	walk(p.Root)
	return b.String()
}
