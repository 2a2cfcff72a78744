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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qxengine/qx/sql/types"
)

func TestDecodeCSVInfersTypesFromFirstRow(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "t.csv")
	writeFile(t, path, "id,price,active,name\n1,9.99,true,widget\n")

	schema, rows, err := decodeCSV(path)
	require.NoError(t, err)
	require.Equal(t, types.Int64, schema[0].Type)
	require.Equal(t, types.Double, schema[1].Type)
	require.Equal(t, types.Boolean, schema[2].Type)
	require.Equal(t, types.Varchar, schema[3].Type)
	require.Equal(t, int64(1), rows[0][0])
	require.Equal(t, 9.99, rows[0][1])
	require.Equal(t, true, rows[0][2])
}

func TestDecodeCSVEmptyFieldIsNull(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "t.csv")
	writeFile(t, path, "id,name\n1,\n")

	_, rows, err := decodeCSV(path)
	require.NoError(t, err)
	require.Nil(t, rows[0][1])
}

func TestDecodeCSVHeaderOnlyIsEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "t.csv")
	writeFile(t, path, "id,name\n")

	schema, rows, err := decodeCSV(path)
	require.NoError(t, err)
	require.Equal(t, 2, len(schema))
	require.Empty(t, rows)
}

func TestDecodeNDJSONUnionsKeysAcrossLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "t.jsonl")
	writeFile(t, path, "{\"a\":1}\n{\"a\":2,\"b\":\"x\"}\n")

	schema, rows, err := decodeNDJSON(path)
	require.NoError(t, err)
	require.Equal(t, 2, len(schema))
	require.Equal(t, 2, len(rows))
	require.Nil(t, rows[0][1])
	require.Equal(t, "x", rows[1][1])
}

func TestDecodeFileDispatchesByExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "t.ndjson")
	writeFile(t, path, "{\"a\":1}\n")

	schema, rows, err := decodeFile(path)
	require.NoError(t, err)
	require.Len(t, schema, 1)
	require.Len(t, rows, 1)
}

func TestDecodeFileUnsupportedExtensionErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "t.xyz")
	writeFile(t, path, "junk")

	_, _, err := decodeFile(path)
	require.Error(t, err)
}

func TestDecodeCacheRoundTrips(t *testing.T) {
	c := newDecodeCache(4)
	_, _, ok := c.get("missing")
	require.False(t, ok)

	schema, rows, _ := decodeFile(writeTempCSV(t))
	c.put("k", schema, rows)
	gotSchema, gotRows, ok := c.get("k")
	require.True(t, ok)
	require.Equal(t, schema, gotSchema)
	require.Equal(t, rows, gotRows)
}

func TestDecodeCacheDisabledWhenZeroSized(t *testing.T) {
	c := newDecodeCache(0)
	require.Nil(t, c)
	_, _, ok := c.get("k")
	require.False(t, ok)
}

func writeTempCSV(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "t.csv")
	require.NoError(t, os.WriteFile(path, []byte("id\n1\n"), 0o644))
	return path
}
