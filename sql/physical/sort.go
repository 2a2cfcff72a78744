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

// SortField mirrors plan.SortField for the physical layer.
type SortField struct {
	Expr       sql.Expression
	Descending bool
	NullsFirst bool
}

// SortOp performs a full materialize-then-sort; used when a Sort has no
// following Limit for HeapSort to fuse with.
type SortOp struct {
	Fields []SortField
	Input  Op
}

func (s *SortOp) Schema() sql.Schema { return s.Input.Schema() }
func (s *SortOp) Children() []Op     { return []Op{s.Input} }
func (s *SortOp) String() string     { return "Sort" }

// HeapSortOp fuses a Sort immediately followed by a Limit: a bounded
// heap of the K best rows, with the worst of them at the root, is
// maintained instead of sorting the full input,
// per §4.4 ("Sort + Limit fuse into HeapSort(k)").
type HeapSortOp struct {
	Fields []SortField
	K      int64
	Input  Op
}

func (h *HeapSortOp) Schema() sql.Schema { return h.Input.Schema() }
func (h *HeapSortOp) Children() []Op     { return []Op{h.Input} }
func (h *HeapSortOp) String() string     { return "HeapSort" }
