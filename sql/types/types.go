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

// Package types implements the engine's closed logical type set:
// BOOLEAN, INT64, DOUBLE, DECIMAL(p,s), VARCHAR, BLOB, DATE, TIMESTAMP,
// INTERVAL, ARRAY<T>, STRUCT<field:T,...> — a small closed set rather
// than an open-ended type zoo.
package types

import (
	"bytes"
	"fmt"
	"time"

	"github.com/spf13/cast"

	"github.com/qxengine/qx/sql"
)

type baseType struct {
	id   sql.TypeID
	name string
}

func (t baseType) ID() sql.TypeID { return t.id }
func (t baseType) Name() string   { return t.name }
func (t baseType) Equals(other sql.Type) bool {
	return other != nil && other.ID() == t.id
}

var (
	Boolean   = booleanType{baseType{sql.TypeBoolean, "BOOLEAN"}}
	Int64     = int64Type{baseType{sql.TypeInt64, "INT64"}}
	Double    = doubleType{baseType{sql.TypeDouble, "DOUBLE"}}
	Varchar   = varcharType{baseType{sql.TypeVarchar, "VARCHAR"}}
	Blob      = blobType{baseType{sql.TypeBlob, "BLOB"}}
	Date      = dateType{baseType{sql.TypeDate, "DATE"}}
	Timestamp = timestampType{baseType{sql.TypeTimestamp, "TIMESTAMP"}}
	Interval  = intervalType{baseType{sql.TypeInterval, "INTERVAL"}}
	Null      = nullType{baseType{sql.TypeNull, "NULL"}}
)

// Decimal creates a DECIMAL(p,s) type.
func Decimal(precision, scale int) sql.Type {
	return decimalType{baseType{sql.TypeDecimal, fmt.Sprintf("DECIMAL(%d,%d)", precision, scale)}, precision, scale}
}

// Array creates an ARRAY<T> type.
func Array(elem sql.Type) sql.Type {
	return arrayType{baseType{sql.TypeArray, fmt.Sprintf("ARRAY<%s>", elem.Name())}, elem}
}

// Struct creates a STRUCT<field:T,...> type.
func Struct(fields sql.Schema) sql.Type {
	return structType{baseType{sql.TypeStruct, structName(fields)}, fields}
}

func structName(fields sql.Schema) string {
	buf := bytes.Buffer{}
	buf.WriteString("STRUCT<")
	for i, f := range fields {
		if i > 0 {
			buf.WriteString(",")
		}
		buf.WriteString(f.Name + ":" + f.Type.Name())
	}
	buf.WriteString(">")
	return buf.String()
}

// ---- BOOLEAN ----

type booleanType struct{ baseType }

func (booleanType) Zero() interface{} { return false }
func (t booleanType) Convert(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	return cast.ToBoolE(v)
}
func (t booleanType) Compare(a, b interface{}) (int, error) {
	return compareOrdered(a, b, func(x interface{}) (bool, error) { return cast.ToBoolE(x) }, func(x, y bool) int {
		if x == y {
			return 0
		}
		if !x {
			return -1
		}
		return 1
	})
}

// ---- INT64 ----

type int64Type struct{ baseType }

func (int64Type) Zero() interface{}  { return int64(0) }
func (int64Type) Width() int          { return 2 }
func (t int64Type) Convert(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	return cast.ToInt64E(v)
}
func (t int64Type) Compare(a, b interface{}) (int, error) {
	return compareOrdered(a, b, cast.ToInt64E, func(x, y int64) int {
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		default:
			return 0
		}
	})
}

// ---- DOUBLE ----

type doubleType struct{ baseType }

func (doubleType) Zero() interface{} { return float64(0) }
func (doubleType) Width() int         { return 3 }
func (t doubleType) Convert(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	return cast.ToFloat64E(v)
}
func (t doubleType) Compare(a, b interface{}) (int, error) {
	return compareOrdered(a, b, cast.ToFloat64E, func(x, y float64) int {
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		default:
			return 0
		}
	})
}

// ---- DECIMAL(p,s) ----

type decimalType struct {
	baseType
	Precision, Scale int
}

func (decimalType) Zero() interface{} { return float64(0) }
func (d decimalType) Width() int       { return 4 }
func (d decimalType) Equals(other sql.Type) bool {
	o, ok := other.(decimalType)
	return ok && o.Precision == d.Precision && o.Scale == d.Scale
}
func (d decimalType) Convert(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return nil, err
	}
	scale := 1.0
	for i := 0; i < d.Scale; i++ {
		scale *= 10
	}
	rounded := float64(int64(f*scale+0.5)) / scale
	return rounded, nil
}
func (d decimalType) Compare(a, b interface{}) (int, error) {
	return Double.Compare(a, b)
}

// ---- VARCHAR ----

type varcharType struct{ baseType }

func (varcharType) Zero() interface{} { return "" }
func (t varcharType) Convert(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	return cast.ToStringE(v)
}
func (t varcharType) Compare(a, b interface{}) (int, error) {
	return compareOrdered(a, b, cast.ToStringE, func(x, y string) int {
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		default:
			return 0
		}
	})
}

// ---- BLOB ----

type blobType struct{ baseType }

func (blobType) Zero() interface{} { return []byte(nil) }
func (t blobType) Convert(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	switch x := v.(type) {
	case []byte:
		return x, nil
	case string:
		return []byte(x), nil
	default:
		return nil, fmt.Errorf("cannot convert %T to BLOB", v)
	}
}
func (t blobType) Compare(a, b interface{}) (int, error) {
	if a == nil || b == nil {
		return compareNil(a, b)
	}
	return bytes.Compare(a.([]byte), b.([]byte)), nil
}

// ---- DATE / TIMESTAMP ----

type dateType struct{ baseType }

func (dateType) Zero() interface{} { return time.Time{} }
func (t dateType) Convert(v interface{}) (interface{}, error) {
	return toTime(v, "2006-01-02")
}
func (t dateType) Compare(a, b interface{}) (int, error) {
	return compareTime(a, b)
}

type timestampType struct{ baseType }

func (timestampType) Zero() interface{} { return time.Time{} }
func (t timestampType) Convert(v interface{}) (interface{}, error) {
	return toTime(v, time.RFC3339)
}

// Compare normalizes both sides to time.Time and compares directly: a
// DATE compares equal to a TIMESTAMP at 00:00:00 on that date, since a
// DATE value is stored as midnight UTC on that date.
func (t timestampType) Compare(a, b interface{}) (int, error) {
	return compareTime(a, b)
}

func toTime(v interface{}, layout string) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	switch x := v.(type) {
	case time.Time:
		return x, nil
	case string:
		tm, err := time.Parse(layout, x)
		if err != nil {
			tm, err = time.Parse(time.RFC3339, x)
		}
		return tm, err
	default:
		return nil, fmt.Errorf("cannot convert %T to temporal type", v)
	}
}

func compareTime(a, b interface{}) (int, error) {
	if a == nil || b == nil {
		return compareNil(a, b)
	}
	ta, oka := a.(time.Time)
	tb, okb := b.(time.Time)
	if !oka || !okb {
		return 0, fmt.Errorf("compareTime: not time.Time values")
	}
	switch {
	case ta.Before(tb):
		return -1, nil
	case ta.After(tb):
		return 1, nil
	default:
		return 0, nil
	}
}

// ---- INTERVAL ----

// IntervalValue is the canonical representation of an INTERVAL value:
// normalized to whole seconds plus a month count, so that DAY/HOUR/...
// units and a duration-in-seconds comparison normalize to the same unit.
type IntervalValue struct {
	Months  int64
	Seconds int64
}

type intervalType struct{ baseType }

func (intervalType) Zero() interface{} { return IntervalValue{} }
func (t intervalType) Convert(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	if iv, ok := v.(IntervalValue); ok {
		return iv, nil
	}
	return nil, fmt.Errorf("cannot convert %T to INTERVAL", v)
}
func (t intervalType) Compare(a, b interface{}) (int, error) {
	if a == nil || b == nil {
		return compareNil(a, b)
	}
	ia, ib := a.(IntervalValue), b.(IntervalValue)
	as := ia.Months*30*86400 + ia.Seconds
	bs := ib.Months*30*86400 + ib.Seconds
	switch {
	case as < bs:
		return -1, nil
	case as > bs:
		return 1, nil
	default:
		return 0, nil
	}
}

// ---- ARRAY<T> ----

type arrayType struct {
	baseType
	Elem sql.Type
}

func (arrayType) Zero() interface{} { return []interface{}(nil) }
func (t arrayType) Equals(other sql.Type) bool {
	o, ok := other.(arrayType)
	return ok && t.Elem.Equals(o.Elem)
}
func (t arrayType) Convert(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	arr, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("cannot convert %T to %s", v, t.Name())
	}
	out := make([]interface{}, len(arr))
	for i, e := range arr {
		c, err := t.Elem.Convert(e)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}
func (t arrayType) Compare(a, b interface{}) (int, error) {
	return 0, fmt.Errorf("ARRAY is not orderable")
}

// ---- STRUCT<...> ----

type structType struct {
	baseType
	Fields sql.Schema
}

func (structType) Zero() interface{} { return map[string]interface{}(nil) }
func (t structType) Equals(other sql.Type) bool {
	o, ok := other.(structType)
	return ok && t.Fields.Equals(o.Fields)
}
func (t structType) Convert(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("cannot convert %T to %s", v, t.Name())
	}
	return m, nil
}
func (t structType) Compare(a, b interface{}) (int, error) {
	return 0, fmt.Errorf("STRUCT is not orderable")
}

// ---- NULL ----

type nullType struct{ baseType }

func (nullType) Zero() interface{}                             { return nil }
func (nullType) Convert(v interface{}) (interface{}, error)    { return nil, nil }
func (nullType) Compare(a, b interface{}) (int, error)         { return 0, nil }

// ---- shared helpers ----

func compareNil(a, b interface{}) (int, error) {
	switch {
	case a == nil && b == nil:
		return 0, nil
	case a == nil:
		return -1, nil
	default:
		return 1, nil
	}
}

func compareOrdered[T any](a, b interface{}, conv func(interface{}) (T, error), cmp func(T, T) int) (int, error) {
	if a == nil || b == nil {
		return compareNil(a, b)
	}
	x, err := conv(a)
	if err != nil {
		return 0, err
	}
	y, err := conv(b)
	if err != nil {
		return 0, err
	}
	return cmp(x, y), nil
}

// Widest returns whichever of a, b has the larger Width, implementing SQL
// numeric widening. Panics if either isn't a NumericType; callers must
// check first.
func Widest(a, b sql.NumericType) sql.NumericType {
	if a.Width() >= b.Width() {
		return a
	}
	return b
}

// IsNumeric reports whether t participates in numeric widening.
func IsNumeric(t sql.Type) (sql.NumericType, bool) {
	n, ok := t.(sql.NumericType)
	return n, ok
}

// ArrayElem returns t's element type if t is an ARRAY<...>.
func ArrayElem(t sql.Type) (sql.Type, bool) {
	a, ok := t.(arrayType)
	if !ok {
		return nil, false
	}
	return a.Elem, true
}

// StructField returns the type of field name within t if t is a
// STRUCT<...> with that field.
func StructField(t sql.Type, name string) (sql.Type, bool) {
	s, ok := t.(structType)
	if !ok {
		return nil, false
	}
	if i := s.Fields.IndexOf(name, ""); i >= 0 {
		return s.Fields[i].Type, true
	}
	return nil, false
}
