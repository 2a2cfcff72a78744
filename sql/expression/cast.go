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

package expression

import (
	"fmt"

	"github.com/qxengine/qx/sql"
)

// Cast converts its child's values to Target, one value at a time via
// Target.Convert. A failed conversion on any single row surfaces as a
// query error rather than producing a NULL, matching strict-cast
// semantics (explicit CAST is a contract, not a best-effort coercion).
type Cast struct {
	Inner  sql.Expression
	Target sql.Type
}

func NewCast(inner sql.Expression, target sql.Type) *Cast {
	return &Cast{Inner: inner, Target: target}
}

func (c *Cast) Type() sql.Type             { return c.Target }
func (c *Cast) Children() []sql.Expression { return []sql.Expression{c.Inner} }
func (c *Cast) Resolved() bool             { return c.Inner.Resolved() }
func (c *Cast) String() string             { return fmt.Sprintf("CAST(%s AS %s)", c.Inner, c.Target.Name()) }

func (c *Cast) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, fmt.Errorf("Cast takes exactly 1 child")
	}
	return &Cast{Inner: children[0], Target: c.Target}, nil
}

func (c *Cast) Eval(ctx *sql.Context, b *sql.Batch) (sql.ColumnData, error) {
	col, err := c.Inner.Eval(ctx, b)
	if err != nil {
		return sql.ColumnData{}, err
	}
	vals := AsSlice(col, b.Rows)
	out := make([]interface{}, b.Rows)
	valid := sql.NewValidity(b.Rows)
	for i := 0; i < b.Rows; i++ {
		if !col.Valid.Get(i) {
			continue
		}
		converted, err := c.Target.Convert(vals[i])
		if err != nil {
			return sql.ColumnData{}, sql.ErrIncorrectType.New(c.Target.Name(), fmt.Sprintf("%v", vals[i]))
		}
		out[i] = converted
		valid.Set(i, true)
	}
	return sql.ColumnData{Values: out, Valid: valid}, nil
}

// SubscriptMode selects what a Subscript node extracts from a STRUCT or
// ARRAY value.
type SubscriptMode int

const (
	// SubscriptIndex reads ARRAY[n] (0-based).
	SubscriptIndex SubscriptMode = iota
	// SubscriptMember reads STRUCT.field, returning the field's native
	// type.
	SubscriptMember
	// SubscriptMemberAsString reads STRUCT.field and stringifies the
	// result, for dotted-path access into a loosely-typed STRUCT (e.g. a
	// JSON-sourced column) where the caller wants text regardless of the
	// field's underlying type.
	SubscriptMemberAsString
)

// Subscript implements `value[index]`, `value.field`, and the
// string-coercing dotted-path variant used when indexing into dynamic
// STRUCT columns.
type Subscript struct {
	Inner sql.Expression
	Mode  SubscriptMode
	Index int
	Field string
	typ   sql.Type
}

func NewSubscriptIndex(inner sql.Expression, index int, elemType sql.Type) *Subscript {
	return &Subscript{Inner: inner, Mode: SubscriptIndex, Index: index, typ: elemType}
}

func NewSubscriptMember(inner sql.Expression, field string, fieldType sql.Type) *Subscript {
	return &Subscript{Inner: inner, Mode: SubscriptMember, Field: field, typ: fieldType}
}

func NewSubscriptMemberAsString(inner sql.Expression, field string, stringType sql.Type) *Subscript {
	return &Subscript{Inner: inner, Mode: SubscriptMemberAsString, Field: field, typ: stringType}
}

func (s *Subscript) Type() sql.Type             { return s.typ }
func (s *Subscript) Children() []sql.Expression { return []sql.Expression{s.Inner} }
func (s *Subscript) Resolved() bool             { return s.Inner.Resolved() }
func (s *Subscript) String() string {
	switch s.Mode {
	case SubscriptIndex:
		return fmt.Sprintf("%s[%d]", s.Inner, s.Index)
	default:
		return fmt.Sprintf("%s.%s", s.Inner, s.Field)
	}
}

func (s *Subscript) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, fmt.Errorf("Subscript takes exactly 1 child")
	}
	out := *s
	out.Inner = children[0]
	return &out, nil
}

func (s *Subscript) Eval(ctx *sql.Context, b *sql.Batch) (sql.ColumnData, error) {
	col, err := s.Inner.Eval(ctx, b)
	if err != nil {
		return sql.ColumnData{}, err
	}
	vals := AsSlice(col, b.Rows)
	out := make([]interface{}, b.Rows)
	valid := sql.NewValidity(b.Rows)
	for i := 0; i < b.Rows; i++ {
		if !col.Valid.Get(i) {
			continue
		}
		v, ok := s.extract(vals[i])
		if !ok {
			continue
		}
		out[i] = v
		valid.Set(i, true)
	}
	return sql.ColumnData{Values: out, Valid: valid}, nil
}

func (s *Subscript) extract(v interface{}) (interface{}, bool) {
	switch s.Mode {
	case SubscriptIndex:
		arr, ok := v.([]interface{})
		if !ok || s.Index < 0 || s.Index >= len(arr) {
			return nil, false
		}
		return arr[s.Index], arr[s.Index] != nil
	case SubscriptMember:
		m, ok := v.(map[string]interface{})
		if !ok {
			return nil, false
		}
		field, ok := m[s.Field]
		return field, ok && field != nil
	case SubscriptMemberAsString:
		m, ok := v.(map[string]interface{})
		if !ok {
			return nil, false
		}
		field, ok := m[s.Field]
		if !ok || field == nil {
			return nil, false
		}
		return fmt.Sprintf("%v", field), true
	default:
		return nil, false
	}
}
