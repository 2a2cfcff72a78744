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

package plan

import (
	"fmt"

	"github.com/qxengine/qx/sql"
)

// Scan is the leaf node binding a single resolved dataset (the result of
// catalog lookup) into the plan tree. ColumnNames and Predicates, when
// non-nil, record what the optimizer has determined can be pushed to the
// connector (the binder leaves both nil); the physical planner decides
// whether the connector actually accepts the pushdown.
type Scan struct {
	hinted
	DatasetName string
	Connector   sql.Connector
	ColumnNames []string
	Predicates  []sql.Expression
	schema      sql.Schema
}

// NewResolvedTable builds a Scan over an already-resolved dataset. The
// name mirrors the historical convention of calling a bound source node
// a "resolved table"; projectCols and predicates may be nil when no
// pushdown candidate has been identified yet.
func NewResolvedTable(name string, conn sql.Connector, schema sql.Schema, projectCols []string, predicates []sql.Expression) *Scan {
	out := schema
	if len(projectCols) > 0 {
		out = schema.Project(projectCols...)
	}
	return &Scan{DatasetName: name, Connector: conn, ColumnNames: projectCols, Predicates: predicates, schema: out}
}

func (s *Scan) Schema() sql.Schema   { return s.schema }
func (s *Scan) Children() []sql.Node { return nil }
func (s *Scan) Name() string         { return s.DatasetName }

func (s *Scan) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 0 {
		return nil, fmt.Errorf("plan.Scan: expected 0 children, got %d", len(children))
	}
	return s, nil
}

func (s *Scan) Expressions() []sql.Expression {
	return s.Predicates
}

func (s *Scan) WithExpressions(exprs ...sql.Expression) (sql.Node, error) {
	cp := *s
	cp.Predicates = exprs
	return &cp, nil
}

func (s *Scan) String() string {
	if len(s.ColumnNames) > 0 {
		return fmt.Sprintf("Scan(%s, columns=%v)", s.DatasetName, s.ColumnNames)
	}
	return fmt.Sprintf("Scan(%s)", s.DatasetName)
}

// Values is a logical node producing a fixed, literal set of rows with
// no backing dataset, used for VALUES(...) lists and the single-row
// input of a scalar SELECT with no FROM clause.
type Values struct {
	hinted
	schema sql.Schema
	Rows   [][]sql.Expression
}

func NewValues(schema sql.Schema, rows [][]sql.Expression) *Values {
	return &Values{schema: schema, Rows: rows}
}

func (v *Values) Schema() sql.Schema   { return v.schema }
func (v *Values) Children() []sql.Node { return nil }

func (v *Values) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 0 {
		return nil, fmt.Errorf("plan.Values: expected 0 children, got %d", len(children))
	}
	return v, nil
}

func (v *Values) Expressions() []sql.Expression {
	var out []sql.Expression
	for _, row := range v.Rows {
		out = append(out, row...)
	}
	return out
}

func (v *Values) WithExpressions(exprs ...sql.Expression) (sql.Node, error) {
	cp := *v
	rows := make([][]sql.Expression, len(v.Rows))
	i := 0
	for r, row := range v.Rows {
		rows[r] = exprs[i : i+len(row)]
		i += len(row)
	}
	cp.Rows = rows
	return &cp, nil
}

func (v *Values) String() string {
	return fmt.Sprintf("Values(%d rows)", len(v.Rows))
}
