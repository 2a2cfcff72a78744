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
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/qxengine/qx/sql"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestBlobDecodeCSV(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "data.csv"), "id,name\n1,alpha\n2,beta\n")

	blob := NewBlob(dir, 0)
	schema, rows, err := blob.decode(filepath.Join(dir, "data.csv"))
	require.NoError(t, err)
	require.Equal(t, 2, len(schema))
	require.Equal(t, "id", schema[0].Name)
	require.Equal(t, sql.Row{int64(1), "alpha"}, rows[0])
	require.Equal(t, sql.Row{int64(2), "beta"}, rows[1])
}

func TestBlobDecodeNDJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "data.jsonl"), "{\"a\":1,\"b\":\"x\"}\n{\"a\":2}\n")

	blob := NewBlob(dir, 0)
	schema, rows, err := blob.decode(filepath.Join(dir, "data.jsonl"))
	require.NoError(t, err)
	require.Equal(t, 2, len(schema))
	require.Equal(t, 2, len(rows))
	require.Nil(t, rows[1][1])
}

func TestBlobReadDatasetConcatenatesBlobs(t *testing.T) {
	dir := t.TempDir()
	today := time.Now().UTC()
	dayDir := filepath.Join(dir,
		"year_"+strconv.Itoa(today.Year()),
		"month_"+pad2(int(today.Month())),
		"day_"+pad2(today.Day()))
	writeFile(t, filepath.Join(dayDir, "a.csv"), "id\n1\n")
	writeFile(t, filepath.Join(dayDir, "b.csv"), "id\n2\n")

	blob := NewBlob(dir, 8)
	it, declined, err := blob.ReadDataset(sql.NewEmptyContext(), sql.PushdownRequest{})
	require.NoError(t, err)
	require.Nil(t, declined)

	var total int
	for {
		batch, err := it.Next(sql.NewEmptyContext())
		if err != nil {
			break
		}
		total += batch.Rows
	}
	require.Equal(t, 2, total)
}

func TestBlobReadDatasetHonorsForRange(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "year_2024", "month_01", "day_15", "data.csv"), "id\n1\n")
	writeFile(t, filepath.Join(dir, "year_2024", "month_01", "day_16", "data.csv"), "id\n2\n3\n")

	blob := NewBlob(dir, 0)
	it, _, err := blob.ReadDataset(sql.NewEmptyContext(), sql.PushdownRequest{
		Range: sql.TemporalRange{HasRange: true, Since: "2024-01-16", Until: "2024-01-16"},
	})
	require.NoError(t, err)

	var total int
	for {
		batch, err := it.Next(sql.NewEmptyContext())
		if err != nil {
			break
		}
		total += batch.Rows
	}
	require.Equal(t, 2, total)
}

func TestBlobCapabilitiesDeclineAllPushdown(t *testing.T) {
	blob := NewBlob(t.TempDir(), 0)
	require.Equal(t, sql.Capabilities{}, blob.Capabilities())
}

func TestBlobListPartitionsPrefersCompleteAsAt(t *testing.T) {
	dir := t.TempDir()
	dayDir := filepath.Join(dir, "year_2024", "month_01", "day_15")

	writeFile(t, filepath.Join(dayDir, "as_at_0002", "frame.ignore"), "")
	writeFile(t, filepath.Join(dayDir, "as_at_0002", "data.csv"), "id\n1\n")
	writeFile(t, filepath.Join(dayDir, "as_at_0001", "frame.complete"), "")
	writeFile(t, filepath.Join(dayDir, "as_at_0001", "data.csv"), "id\n1\n")

	blob := NewBlob(dir, 0)
	keys, err := blob.ListPartitions(sql.NewEmptyContext(), sql.TemporalRange{
		HasRange: true, Since: "2024-01-15", Until: "2024-01-15",
	})
	require.NoError(t, err)
	require.Len(t, keys, 1)
	require.Equal(t, "as_at_0001", keys[0].AsAt)
}

func TestBlobListPartitionsPrefersHourlySegments(t *testing.T) {
	dir := t.TempDir()
	dayDir := filepath.Join(dir, "year_2024", "month_03", "day_02")
	writeFile(t, filepath.Join(dayDir, "by_hour", "hour=08", "data.csv"), "id\n1\n")
	writeFile(t, filepath.Join(dayDir, "by_hour", "hour=09", "data.csv"), "id\n2\n")

	blob := NewBlob(dir, 0)
	keys, err := blob.ListPartitions(sql.NewEmptyContext(), sql.TemporalRange{
		HasRange: true, Since: "2024-03-02", Until: "2024-03-02",
	})
	require.NoError(t, err)
	require.Len(t, keys, 2)
	require.Equal(t, "08", keys[0].Hour)
	require.Equal(t, "09", keys[1].Hour)
}
