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

package connectors

import (
	"context"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/qxengine/qx/sql"
	"github.com/qxengine/qx/sql/types"
)

// decodeParquet reads a parquet blob into row form via arrow-go's columnar
// reader, then transposes each arrow.Record into sql.Row values: Blob
// keeps rows, not arrow.Records, resident past decode time so the rest of
// the connector stays format-agnostic.
func decodeParquet(path string) (sql.Schema, []sql.Row, error) {
	rdr, err := file.OpenParquetFile(path, false)
	if err != nil {
		return nil, nil, err
	}
	defer rdr.Close()

	fileReader, err := pqarrow.NewFileReader(rdr, pqarrow.ArrowReadProperties{}, memory.DefaultAllocator)
	if err != nil {
		return nil, nil, err
	}

	recordReader, err := fileReader.GetRecordReader(context.Background(), nil, nil)
	if err != nil {
		return nil, nil, err
	}
	defer recordReader.Release()

	arrowSchema := recordReader.Schema()
	schema := arrowSchemaToSQL(arrowSchema)

	var rows []sql.Row
	for recordReader.Next() {
		rec := recordReader.Record()
		rows = append(rows, recordToRows(rec)...)
	}
	if err := recordReader.Err(); err != nil {
		return nil, nil, err
	}
	return schema, rows, nil
}

func arrowSchemaToSQL(s *arrow.Schema) sql.Schema {
	schema := make(sql.Schema, s.NumFields())
	for i, f := range s.Fields() {
		schema[i] = &sql.Column{Name: f.Name, Type: arrowTypeToSQL(f.Type), Nullable: f.Nullable}
	}
	return schema
}

func arrowTypeToSQL(t arrow.DataType) sql.Type {
	switch t.ID() {
	case arrow.BOOL:
		return types.Boolean
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64,
		arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64:
		return types.Int64
	case arrow.FLOAT32, arrow.FLOAT64:
		return types.Double
	case arrow.DATE32, arrow.DATE64:
		return types.Date
	case arrow.TIMESTAMP:
		return types.Timestamp
	case arrow.BINARY, arrow.LARGE_BINARY:
		return types.Blob
	default:
		return types.Varchar
	}
}

func recordToRows(rec arrow.Record) []sql.Row {
	n := int(rec.NumRows())
	rows := make([]sql.Row, n)
	for r := 0; r < n; r++ {
		rows[r] = make(sql.Row, rec.NumCols())
	}
	for c := 0; c < int(rec.NumCols()); c++ {
		col := rec.Column(c)
		for r := 0; r < n; r++ {
			rows[r][c] = arrowValueAt(col, r)
		}
	}
	return rows
}

func arrowValueAt(col arrow.Array, i int) interface{} {
	if col.IsNull(i) {
		return nil
	}
	switch a := col.(type) {
	case *array.Boolean:
		return a.Value(i)
	case *array.Int8:
		return int64(a.Value(i))
	case *array.Int16:
		return int64(a.Value(i))
	case *array.Int32:
		return int64(a.Value(i))
	case *array.Int64:
		return a.Value(i)
	case *array.Uint8:
		return int64(a.Value(i))
	case *array.Uint16:
		return int64(a.Value(i))
	case *array.Uint32:
		return int64(a.Value(i))
	case *array.Uint64:
		return int64(a.Value(i))
	case *array.Float32:
		return float64(a.Value(i))
	case *array.Float64:
		return a.Value(i)
	case *array.String:
		return a.Value(i)
	case *array.LargeString:
		return a.Value(i)
	case *array.Binary:
		return a.Value(i)
	default:
		return nil
	}
}
