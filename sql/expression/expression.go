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

// Package expression implements the expression tree and its vectorized
// evaluator: each node type evaluates itself over a whole Batch at once
// (b.Rows values per Eval call) rather than one row at a time.
package expression

import (
	"fmt"

	"github.com/qxengine/qx/sql"
)

// GetField references column idx of the input batch/row — the only
// column-reference node. Every column reference resolves to an index at
// bind time; there are no late identifier lookups during execution.
type GetField struct {
	index    int
	fieldType sql.Type
	name     string
	nullable bool
}

func NewGetField(index int, fieldType sql.Type, name string, nullable bool) *GetField {
	return &GetField{index: index, fieldType: fieldType, name: name, nullable: nullable}
}

func (g *GetField) Index() int         { return g.index }
func (g *GetField) Type() sql.Type     { return g.fieldType }
func (g *GetField) Resolved() bool     { return true }
func (g *GetField) Children() []sql.Expression { return nil }
func (g *GetField) String() string     { return g.name }

func (g *GetField) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 0 {
		return nil, fmt.Errorf("GetField takes no children")
	}
	return g, nil
}

func (g *GetField) Eval(ctx *sql.Context, b *sql.Batch) (sql.ColumnData, error) {
	if g.index < 0 || g.index >= len(b.Columns) {
		return sql.ColumnData{}, sql.ErrColumnNotFound.New(g.name)
	}
	return b.Columns[g.index], nil
}

// Literal is a constant value of a known type, repeated for every row of
// the batch being evaluated.
type Literal struct {
	value     interface{}
	valueType sql.Type
}

func NewLiteral(value interface{}, t sql.Type) *Literal {
	return &Literal{value: value, valueType: t}
}

func (l *Literal) Value() interface{}          { return l.value }
func (l *Literal) Type() sql.Type              { return l.valueType }
func (l *Literal) Resolved() bool              { return true }
func (l *Literal) Children() []sql.Expression  { return nil }
func (l *Literal) String() string              { return fmt.Sprintf("%v", l.value) }

func (l *Literal) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 0 {
		return nil, fmt.Errorf("Literal takes no children")
	}
	return l, nil
}

func (l *Literal) Eval(ctx *sql.Context, b *sql.Batch) (sql.ColumnData, error) {
	return RepeatScalar(l.value, b.Rows), nil
}

// RepeatScalar builds a ColumnData repeating v for n rows, the shape a
// Literal (or any row-count-independent expression) evaluates to.
func RepeatScalar(v interface{}, n int) sql.ColumnData {
	valid := sql.NewValidity(n)
	if v != nil {
		valid.SetAllValid(n)
	}
	values := make([]interface{}, n)
	for i := range values {
		values[i] = v
	}
	return sql.ColumnData{Values: values, Valid: valid}
}

// AsSlice reads ColumnData.Values into a uniform []interface{} regardless
// of whether the underlying slice is a typed slice ([]int64, ...) or
// already []interface{}; used by row-wise node evaluation below.
func AsSlice(c sql.ColumnData, n int) []interface{} {
	if vals, ok := c.Values.([]interface{}); ok {
		return vals
	}
	out := make([]interface{}, n)
	for i := 0; i < n; i++ {
		out[i] = indexInto(c.Values, i)
	}
	return out
}

func indexInto(values interface{}, i int) interface{} {
	switch v := values.(type) {
	case []bool:
		return v[i]
	case []int64:
		return v[i]
	case []float64:
		return v[i]
	case []string:
		return v[i]
	case [][]byte:
		return v[i]
	default:
		return nil
	}
}
