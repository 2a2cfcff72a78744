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

	"github.com/qxengine/qx/sql"
)

// ConnectorScan reads a dataset through its Connector, pushing down
// whatever the connector's Capabilities allow. OutSchema is already
// narrowed to whatever projection_pushdown left on the logical Scan;
// Predicates holds only the conjuncts the connector itself is asked to
// honor (the rest became a residual VectorFilter the lowering pass wraps
// this in).
type ConnectorScan struct {
	DatasetName string
	Connector   sql.Connector
	OutSchema   sql.Schema
	Projection  []string
	Predicates  []sql.SimplePredicate
	Limit       int
	Range       sql.TemporalRange
}

func (s *ConnectorScan) Schema() sql.Schema { return s.OutSchema }

func (s *ConnectorScan) Children() []Op { return nil }

func (s *ConnectorScan) String() string {
	return fmt.Sprintf("ConnectorScan(%s, cols=%v, preds=%d, limit=%d)", s.DatasetName, s.Projection, len(s.Predicates), s.Limit)
}

// LiteralScan serves pre-computed rows directly: the lowered form of a
// VALUES source.
type LiteralScan struct {
	OutSchema sql.Schema
	Rows      []sql.Row
}

func (s *LiteralScan) Schema() sql.Schema { return s.OutSchema }
func (s *LiteralScan) Children() []Op     { return nil }
func (s *LiteralScan) String() string     { return fmt.Sprintf("LiteralScan(%d rows)", len(s.Rows)) }
