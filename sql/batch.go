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

package sql

import (
	"fmt"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// DefaultMorselRows is the suggested Batch size, tunable via the
// MORSEL_ROWS configuration variable.
const DefaultMorselRows = 64 * 1024

// ColumnData is a single field's values plus its validity bitmap. Values is
// always a slice of the field's canonical Go representation (int64,
// float64, string, []byte, time.Time, ...); index i of Values is
// meaningless when Valid.Get(i) is false.
type ColumnData struct {
	Values interface{}
	Valid  Validity
}

// Batch ("morsel") is a contiguous, immutable tabular chunk of up to
// MORSEL_ROWS rows carrying one Schema and one column-major buffer per
// field. A Batch is produced by a source and may be consumed
// at most once by a downstream operator — operators that need to hold
// onto rows across batches (pipeline breakers) copy what they need out.
type Batch struct {
	Schema  Schema
	Columns []ColumnData
	Rows    int
}

// NewBatch allocates an empty batch with room for n rows across the given
// schema; callers fill in Columns[i].Values themselves (the concrete
// slice type depends on the column's logical type).
func NewBatch(schema Schema, n int) *Batch {
	cols := make([]ColumnData, len(schema))
	for i := range cols {
		cols[i].Valid = NewValidity(n)
		cols[i].Valid.SetAllValid(n)
	}
	return &Batch{Schema: schema, Columns: cols, Rows: n}
}

// Row materializes row i as a scalar Row, used by non-vectorized
// consumers (rowexec's row-materializing operators, tests, the Cursor's
// row-at-a-time Row method).
func (b *Batch) Row(i int) Row {
	row := make(Row, len(b.Columns))
	for c := range b.Columns {
		if !b.Columns[c].Valid.Get(i) {
			row[c] = nil
			continue
		}
		row[c] = indexInto(b.Columns[c].Values, i)
	}
	return row
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
	case []interface{}:
		return v[i]
	default:
		return nil
	}
}

// Slice returns a new Batch containing rows [start, end) of b. The
// underlying value slices are shared (read-only), consistent with the
// "consumed at most once" rule: only the producer that owns b may slice
// it further.
func (b *Batch) Slice(start, end int) *Batch {
	out := &Batch{Schema: b.Schema, Rows: end - start, Columns: make([]ColumnData, len(b.Columns))}
	for i, c := range b.Columns {
		out.Columns[i] = ColumnData{Values: sliceValues(c.Values, start, end), Valid: sliceValidity(c.Valid, start, end)}
	}
	return out
}

func sliceValues(values interface{}, start, end int) interface{} {
	switch v := values.(type) {
	case []bool:
		return v[start:end]
	case []int64:
		return v[start:end]
	case []float64:
		return v[start:end]
	case []string:
		return v[start:end]
	case [][]byte:
		return v[start:end]
	case []interface{}:
		return v[start:end]
	default:
		return values
	}
}

func sliceValidity(v Validity, start, end int) Validity {
	out := NewValidity(end - start)
	out.SetAllValid(end - start)
	for i := start; i < end; i++ {
		out.Set(i-start, v.Get(i))
	}
	return out
}

// ToArrowRecord converts b into an arrow.Record, the boundary Cursor's
// ToArrowTable and any Arrow-speaking host cross to leave the engine's
// Go-native row/column representation behind. alloc defaults to
// memory.DefaultAllocator when nil. The caller owns the returned record
// and must Release it.
func (b *Batch) ToArrowRecord(alloc memory.Allocator) arrow.Record {
	if alloc == nil {
		alloc = memory.DefaultAllocator
	}
	schema := ArrowSchema(b.Schema)
	cols := make([]arrow.Array, len(b.Schema))
	for i, col := range b.Schema {
		cols[i] = buildArrowColumn(alloc, arrowTypeFor(col.Type), b.Columns[i], b.Rows)
	}
	rec := array.NewRecord(schema, cols, int64(b.Rows))
	for _, c := range cols {
		c.Release()
	}
	return rec
}

// ArrowSchema converts a logical Schema into its Arrow equivalent, used
// both by ToArrowRecord and by callers (Cursor.ToArrowTable) that need an
// arrow.Schema for a result set that may have produced zero records.
func ArrowSchema(s Schema) *arrow.Schema {
	fields := make([]arrow.Field, len(s))
	for i, col := range s {
		fields[i] = arrow.Field{Name: col.Name, Type: arrowTypeFor(col.Type), Nullable: col.Nullable}
	}
	return arrow.NewSchema(fields, nil)
}

// arrowTypeFor maps a logical Type to its Arrow representation. Decimal,
// interval, array, and struct values have no single canonical Arrow
// mapping in this engine, so they travel as strings - the same fallback
// arrowTypeToSQL's inverse (connectors.arrowTypeToSQL) uses for any Arrow
// type it doesn't otherwise recognize.
func arrowTypeFor(t Type) arrow.DataType {
	switch t.ID() {
	case TypeBoolean:
		return arrow.FixedWidthTypes.Boolean
	case TypeInt64:
		return arrow.PrimitiveTypes.Int64
	case TypeDouble:
		return arrow.PrimitiveTypes.Float64
	case TypeDate:
		return arrow.FixedWidthTypes.Date32
	case TypeTimestamp:
		return arrow.FixedWidthTypes.Timestamp_s
	case TypeBlob:
		return arrow.BinaryTypes.Binary
	default:
		return arrow.BinaryTypes.String
	}
}

func buildArrowColumn(alloc memory.Allocator, dt arrow.DataType, col ColumnData, n int) arrow.Array {
	switch dt.ID() {
	case arrow.BOOL:
		b := array.NewBooleanBuilder(alloc)
		defer b.Release()
		for i := 0; i < n; i++ {
			v := columnValueAt(col, i)
			if v == nil {
				b.AppendNull()
				continue
			}
			b.Append(v.(bool))
		}
		return b.NewArray()
	case arrow.INT64:
		b := array.NewInt64Builder(alloc)
		defer b.Release()
		for i := 0; i < n; i++ {
			v := columnValueAt(col, i)
			if v == nil {
				b.AppendNull()
				continue
			}
			b.Append(v.(int64))
		}
		return b.NewArray()
	case arrow.FLOAT64:
		b := array.NewFloat64Builder(alloc)
		defer b.Release()
		for i := 0; i < n; i++ {
			v := columnValueAt(col, i)
			if v == nil {
				b.AppendNull()
				continue
			}
			b.Append(v.(float64))
		}
		return b.NewArray()
	case arrow.BINARY:
		b := array.NewBinaryBuilder(alloc, arrow.BinaryTypes.Binary)
		defer b.Release()
		for i := 0; i < n; i++ {
			v := columnValueAt(col, i)
			if v == nil {
				b.AppendNull()
				continue
			}
			b.Append(v.([]byte))
		}
		return b.NewArray()
	case arrow.DATE32:
		b := array.NewDate32Builder(alloc)
		defer b.Release()
		for i := 0; i < n; i++ {
			v := columnValueAt(col, i)
			if v == nil {
				b.AppendNull()
				continue
			}
			b.Append(arrow.Date32FromTime(v.(time.Time)))
		}
		return b.NewArray()
	case arrow.TIMESTAMP:
		b := array.NewTimestampBuilder(alloc, dt.(*arrow.TimestampType))
		defer b.Release()
		for i := 0; i < n; i++ {
			v := columnValueAt(col, i)
			if v == nil {
				b.AppendNull()
				continue
			}
			ts, _ := arrow.TimestampFromTime(v.(time.Time), arrow.Second)
			b.Append(ts)
		}
		return b.NewArray()
	default:
		b := array.NewStringBuilder(alloc)
		defer b.Release()
		for i := 0; i < n; i++ {
			v := columnValueAt(col, i)
			if v == nil {
				b.AppendNull()
				continue
			}
			if s, ok := v.(string); ok {
				b.Append(s)
			} else {
				b.Append(fmt.Sprint(v))
			}
		}
		return b.NewArray()
	}
}

func columnValueAt(col ColumnData, i int) interface{} {
	if !col.Valid.Get(i) {
		return nil
	}
	return indexInto(col.Values, i)
}
