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
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/qxengine/qx/sql"
	"github.com/qxengine/qx/sql/types"
)

// decodeFile dispatches on extension to the matching row decoder. Every
// decoder returns a schema inferred from the file's own shape: Blob never
// requires an externally declared schema, treating every blob as a
// self-describing table source.
func decodeFile(path string) (sql.Schema, []sql.Row, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return decodeCSV(path)
	case ".jsonl", ".ndjson":
		return decodeNDJSON(path)
	case ".parquet":
		return decodeParquet(path)
	default:
		return nil, nil, fmt.Errorf("connectors: unsupported blob extension %q", filepath.Ext(path))
	}
}

func decodeCSV(path string) (sql.Schema, []sql.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err == io.EOF {
		return sql.Schema{}, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	var records [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		records = append(records, rec)
	}

	schema := inferCSVSchema(header, records)
	rows := make([]sql.Row, len(records))
	for i, rec := range records {
		row := make(sql.Row, len(schema))
		for c := range schema {
			if c >= len(rec) {
				continue
			}
			row[c] = convertCSVValue(schema[c].Type, rec[c])
		}
		rows[i] = row
	}
	return schema, rows, nil
}

func inferCSVSchema(header []string, records [][]string) sql.Schema {
	schema := make(sql.Schema, len(header))
	for c, name := range header {
		t := types.Varchar
		if len(records) > 0 {
			t = inferScalarType(records[0][c])
		}
		schema[c] = &sql.Column{Name: name, Type: t, Nullable: true}
	}
	return schema
}

func inferScalarType(s string) sql.Type {
	if s == "" {
		return types.Varchar
	}
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return types.Int64
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return types.Double
	}
	if _, err := strconv.ParseBool(s); err == nil {
		return types.Boolean
	}
	return types.Varchar
}

func convertCSVValue(t sql.Type, s string) interface{} {
	if s == "" {
		return nil
	}
	switch t.ID() {
	case types.Int64.ID():
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil
		}
		return v
	case types.Double.ID():
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		return v
	case types.Boolean.ID():
		v, err := strconv.ParseBool(s)
		if err != nil {
			return nil
		}
		return v
	default:
		return s
	}
}

// decodeNDJSON reads one JSON object per line, unioning keys across the
// whole file into a single schema; a key absent from a given line decodes
// to nil in that row. Columns follow the line that first introduced each
// key, and the keys one line introduces are ordered by name.
func decodeNDJSON(path string) (sql.Schema, []sql.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	var objects []map[string]interface{}
	order := []string{}
	seen := map[string]bool{}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var obj map[string]interface{}
		if err := json.Unmarshal([]byte(line), &obj); err != nil {
			return nil, nil, err
		}
		var newKeys []string
		for k := range obj {
			if !seen[k] {
				seen[k] = true
				newKeys = append(newKeys, k)
			}
		}
		sort.Strings(newKeys)
		order = append(order, newKeys...)
		objects = append(objects, obj)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}

	schema := make(sql.Schema, len(order))
	for i, name := range order {
		t := types.Varchar
		for _, obj := range objects {
			if v, ok := obj[name]; ok && v != nil {
				t = jsonScalarType(v)
				break
			}
		}
		schema[i] = &sql.Column{Name: name, Type: t, Nullable: true}
	}

	rows := make([]sql.Row, len(objects))
	for i, obj := range objects {
		row := make(sql.Row, len(order))
		for c, name := range order {
			row[c] = obj[name]
		}
		rows[i] = row
	}
	return schema, rows, nil
}

func jsonScalarType(v interface{}) sql.Type {
	switch v.(type) {
	case float64:
		return types.Double
	case bool:
		return types.Boolean
	default:
		return types.Varchar
	}
}
