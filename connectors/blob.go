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
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/qxengine/qx/sql"
)

// dataExtensions lists the file extensions Blob treats as row data rather
// than partition control files. Control files (frame.complete,
// frame.ignore) never match.
var dataExtensions = map[string]bool{
	".parquet": true,
	".csv":     true,
	".jsonl":   true,
	".ndjson":  true,
}

// Blob reads a dataset laid out on local disk (or any os.DirFS-compatible
// root) using the year_YYYY/month_MM/day_DD partition convention, with
// optional by_hour sub-partitioning and as_at_* snapshot folders guarded
// by frame.complete/frame.ignore control files.
type Blob struct {
	root      string
	decodeFn  decodeFunc
	batchSize int
	cache     *decodeCache
}

type decodeFunc func(path string) (sql.Schema, []sql.Row, error)

// NewBlob opens a partitioned dataset rooted at dir. cacheEntries bounds
// the number of decoded partition files kept resident; 0 disables the
// cache.
func NewBlob(dir string, cacheEntries int) *Blob {
	return &Blob{
		root:     dir,
		decodeFn: decodeFile,
		cache:    newDecodeCache(cacheEntries),
	}
}

func (b *Blob) GetSchema(ctx *sql.Context) (sql.Schema, error) {
	blobs, err := b.listAllDataBlobs()
	if err != nil {
		return nil, err
	}
	if len(blobs) == 0 {
		return sql.Schema{}, nil
	}
	schema, _, err := b.decode(blobs[0])
	return schema, err
}

func (b *Blob) GetStatistics(ctx *sql.Context) (*sql.RelationStatistics, error) {
	return &sql.RelationStatistics{HasCount: false}, nil
}

// ListPartitions walks the Mabel partition hierarchy under root one day at
// a time across r's date range, returning one PartitionKey per matched
// day, or one per by_hour/hour=HH subdirectory of a day that has them.
// Every hour subdirectory of a matched day is returned: the range does
// not narrow hours within a day. An unset range defaults to "today":
// scanning the current UTC day when no FOR clause narrows it.
func (b *Blob) ListPartitions(ctx *sql.Context, r sql.TemporalRange) ([]sql.PartitionKey, error) {
	since, until := temporalBounds(r)

	var keys []sql.PartitionKey
	for d := since; !d.After(until); d = d.AddDate(0, 0, 1) {
		dayDir := filepath.Join(b.root,
			"year_"+strconv.Itoa(d.Year()),
			"month_"+pad2(int(d.Month())),
			"day_"+pad2(d.Day()))
		entries, err := os.ReadDir(dayDir)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, err
		}

		asAt := bestAsAt(dayDir, entries)
		hours := hourSubdirs(dayDir)
		if len(hours) == 0 {
			keys = append(keys, sql.PartitionKey{Path: dayDir, Day: d.Format("2006-01-02"), AsAt: asAt})
			continue
		}
		for _, h := range hours {
			keys = append(keys, sql.PartitionKey{Path: filepath.Join(dayDir, "by_hour", "hour="+h), Day: d.Format("2006-01-02"), Hour: h, AsAt: asAt})
		}
	}
	return keys, nil
}

func temporalBounds(r sql.TemporalRange) (time.Time, time.Time) {
	midnight := time.Now().UTC().Truncate(24 * time.Hour)
	since, until := midnight, midnight
	if r.HasPointInTime {
		since = time.Unix(r.PointInTime, 0).UTC().Truncate(24 * time.Hour)
		until = since
	}
	if r.HasRange {
		if t, err := time.Parse("2006-01-02", r.Since); err == nil {
			since = t
		}
		if t, err := time.Parse("2006-01-02", r.Until); err == nil {
			until = t
		}
	}
	return since, until
}

func pad2(n int) string {
	s := strconv.Itoa(n)
	if len(s) < 2 {
		return "0" + s
	}
	return s
}

// bestAsAt picks the newest as_at_* snapshot that carries frame.complete
// and not frame.ignore, walking snapshots newest-first until one is
// both complete and not ignored.
func bestAsAt(dayDir string, entries []os.DirEntry) string {
	var asAts []string
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), "as_at_") {
			asAts = append(asAts, e.Name())
		}
	}
	if len(asAts) == 0 {
		return ""
	}
	sort.Sort(sort.Reverse(sort.StringSlice(asAts)))
	for _, candidate := range asAts {
		dir := filepath.Join(dayDir, candidate)
		if fileExists(filepath.Join(dir, "frame.ignore")) {
			continue
		}
		if fileExists(filepath.Join(dir, "frame.complete")) {
			return candidate
		}
	}
	return ""
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func hourSubdirs(dayDir string) []string {
	byHour := filepath.Join(dayDir, "by_hour")
	entries, err := os.ReadDir(byHour)
	if err != nil {
		return nil
	}
	var hours []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() && strings.HasPrefix(name, "hour=") {
			hours = append(hours, strings.TrimPrefix(name, "hour="))
		}
	}
	sort.Strings(hours)
	return hours
}

func (b *Blob) listAllDataBlobs() ([]string, error) {
	return b.listDataBlobsUnder(b.root)
}

// listDataBlobsUnder walks one partition directory (or the whole root,
// for GetSchema's unrestricted sniffing) collecting data files. A root
// that doesn't exist yet (a day with no data) yields no blobs, not an
// error.
func (b *Blob) listDataBlobsUnder(root string) ([]string, error) {
	var blobs []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if os.IsNotExist(err) {
			return nil
		}
		if err != nil || d.IsDir() {
			return err
		}
		if dataExtensions[strings.ToLower(filepath.Ext(path))] {
			blobs = append(blobs, path)
		}
		return nil
	})
	return blobs, err
}

func (b *Blob) decode(path string) (sql.Schema, []sql.Row, error) {
	if b.cache != nil {
		if schema, rows, ok := b.cache.get(path); ok {
			return schema, rows, nil
		}
	}
	schema, rows, err := b.decodeFn(path)
	if err != nil {
		return nil, nil, errors.Wrap(err, "decoding "+path)
	}
	if b.cache != nil {
		b.cache.put(path, schema, rows)
	}
	return schema, rows, nil
}

// ReadDataset decodes every data blob under the partitions req.Range
// selects (ListPartitions narrows to "today" when Range is unset) and
// serves the concatenated rows as residual-filtered batches: Blob
// declares no pushdown capability beyond partition pruning, so the
// physical planner always wraps it in VectorFilter/VectorProject/Limit
// for everything else.
func (b *Blob) ReadDataset(ctx *sql.Context, req sql.PushdownRequest) (sql.BatchIter, []sql.SimplePredicate, error) {
	keys, err := b.ListPartitions(ctx, req.Range)
	if err != nil {
		return nil, nil, errors.Wrap(err, "listing partitions under "+b.root)
	}

	var schema sql.Schema
	var rows []sql.Row
	for _, k := range keys {
		dir := k.Path
		if k.AsAt != "" && k.Hour == "" {
			dir = filepath.Join(k.Path, k.AsAt)
		}
		blobs, err := b.listDataBlobsUnder(dir)
		if err != nil {
			return nil, nil, errors.Wrap(err, "listing blobs under "+dir)
		}
		for _, path := range blobs {
			if dir == k.Path && strings.Contains(path[len(dir):], string(filepath.Separator)+"as_at_") {
				continue
			}
			s, r, err := b.decode(path)
			if err != nil {
				return nil, nil, err
			}
			if schema == nil {
				schema = s
			}
			rows = append(rows, r...)
		}
	}
	if schema == nil {
		schema = sql.Schema{}
	}
	return newSliceIter(schema, rows), nil, nil
}

func (b *Blob) Capabilities() sql.Capabilities { return sql.Capabilities{} }

func (b *Blob) Mode() sql.Mode { return sql.ReadOnly }
