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
	"sort"
	"strconv"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/pkg/errors"
	iceberg "github.com/polarsignals/iceberg-go"
	icetable "github.com/polarsignals/iceberg-go/table"

	"github.com/qxengine/qx/sql"
)

// Iceberg reads one Iceberg table identified by its metadata.json location.
// The table metadata is loaded once, by NewIceberg, and every ReadDataset
// call scans the current snapshot of that loaded metadata, unless
// req.Range pins an earlier one (a point-in-time FOR clause resolved by
// ListPartitions below). Snapshots committed after NewIceberg returned are
// not seen.
type Iceberg struct {
	metadataLocation string
	table            *icetable.Table
}

// NewIceberg loads table metadata eagerly so GetSchema never has to touch
// storage; GetSchema, ListPartitions and ReadDataset all work from this
// one loaded copy, which is not re-read afterwards.
func NewIceberg(ctx context.Context, metadataLocation string) (*Iceberg, error) {
	tbl, err := icetable.NewFromLocation(ctx, metadataLocation)
	if err != nil {
		return nil, err
	}
	return &Iceberg{metadataLocation: metadataLocation, table: tbl}, nil
}

func (ic *Iceberg) GetSchema(ctx *sql.Context) (sql.Schema, error) {
	return icebergSchemaToSQL(ic.table.Schema()), nil
}

func icebergSchemaToSQL(s *iceberg.Schema) sql.Schema {
	fields := s.Fields()
	schema := make(sql.Schema, len(fields))
	for i, f := range fields {
		schema[i] = &sql.Column{Name: f.Name, Type: icebergTypeToSQL(f.Type), Nullable: !f.Required}
	}
	return schema
}

func icebergTypeToSQL(t iceberg.Type) sql.Type {
	switch t.(type) {
	case iceberg.BooleanType:
		return icebergBoolean
	case iceberg.Int32Type, iceberg.Int64Type:
		return icebergInt64
	case iceberg.Float32Type, iceberg.Float64Type:
		return icebergDouble
	case iceberg.DateType:
		return icebergDate
	case iceberg.TimestampType, iceberg.TimestampTzType:
		return icebergTimestamp
	case iceberg.BinaryType, iceberg.FixedType:
		return icebergBlob
	default:
		return icebergVarchar
	}
}

// GetStatistics reports no row count: row counts live in Iceberg manifest
// summaries, which this connector does not read independently of an
// actual scan, so it declines rather than guess.
func (ic *Iceberg) GetStatistics(ctx *sql.Context) (*sql.RelationStatistics, error) {
	return &sql.RelationStatistics{HasCount: false}, nil
}

// ListPartitions resolves r to the one Iceberg snapshot a read should use:
// Iceberg has no day/hour partition keys of its own to enumerate (its
// manifest/snapshot pruning already scopes a scan to the relevant data
// files), so this repurposes PartitionKey.AsAt to carry the resolved
// snapshot id instead. An unset r resolves to nothing (ReadDataset then
// scans the table's current snapshot, as it always did). A point in time
// at or after the newest snapshot also resolves to nothing, since "as of
// the future" is just the current snapshot; a point in time older than
// every committed snapshot has no snapshot to serve and is a read error.
func (ic *Iceberg) ListPartitions(ctx *sql.Context, r sql.TemporalRange) ([]sql.PartitionKey, error) {
	target, ok := temporalAsOfSeconds(r)
	if !ok {
		return nil, nil
	}

	snapshots := append([]iceberg.Snapshot(nil), ic.table.Metadata().Snapshots()...)
	if len(snapshots) == 0 {
		return nil, sql.ErrDatasetReadError.New(ic.metadataLocation, "table has no committed snapshots")
	}
	sort.Slice(snapshots, func(i, j int) bool { return snapshots[i].TimestampMs < snapshots[j].TimestampMs })

	targetMs := target * 1000
	if targetMs >= snapshots[len(snapshots)-1].TimestampMs {
		return nil, nil
	}

	var best *iceberg.Snapshot
	for i := range snapshots {
		if snapshots[i].TimestampMs <= targetMs {
			best = &snapshots[i]
		}
	}
	if best == nil {
		return nil, sql.ErrDatasetReadError.New(ic.metadataLocation, "FOR clause predates the table's earliest snapshot")
	}
	return []sql.PartitionKey{{Path: ic.metadataLocation, AsAt: strconv.FormatInt(best.SnapshotID, 10)}}, nil
}

// temporalAsOfSeconds extracts the single instant a FOR AS OF / point-in-
// time clause resolves to, in unix seconds. A DATES BETWEEN/named-cycle
// range has no single instant to pin a snapshot to, so Iceberg only acts
// on the point-in-time form.
func temporalAsOfSeconds(r sql.TemporalRange) (int64, bool) {
	if r.HasPointInTime {
		return r.PointInTime, true
	}
	return 0, false
}

func (ic *Iceberg) ReadDataset(ctx *sql.Context, req sql.PushdownRequest) (sql.BatchIter, []sql.SimplePredicate, error) {
	scan := ic.table.Scan()
	if len(req.Projection) > 0 {
		scan = scan.SelectColumns(req.Projection...)
	}

	keys, err := ic.ListPartitions(ctx, req.Range)
	if err != nil {
		return nil, nil, errors.Wrap(err, "resolving FOR clause against "+ic.metadataLocation)
	}
	if len(keys) > 0 {
		snapshotID, err := strconv.ParseInt(keys[0].AsAt, 10, 64)
		if err != nil {
			return nil, nil, errors.Wrap(err, "parsing resolved snapshot id")
		}
		scan = scan.WithSnapshotID(snapshotID)
	}

	records, err := scan.ToArrowRecords(ctx)
	if err != nil {
		return nil, nil, errors.Wrap(err, "scanning "+ic.metadataLocation)
	}

	var schema sql.Schema
	var rows []sql.Row
	for _, rec := range records {
		if schema == nil {
			schema = arrowSchemaToSQL(rec.Schema())
		}
		rows = append(rows, recordToRows(rec)...)
		rec.Release()
	}
	if schema == nil {
		schema = icebergSchemaToSQL(ic.table.Schema())
	}
	if req.Limit > 0 && len(rows) > req.Limit {
		rows = rows[:req.Limit]
	}
	return newSliceIter(schema, rows), nil, nil
}

func (ic *Iceberg) Capabilities() sql.Capabilities {
	return sql.Capabilities{ProjectionPushdown: true}
}

func (ic *Iceberg) Mode() sql.Mode { return sql.ReadOnly }

var (
	icebergBoolean   = arrowTypeToSQL(arrow.FixedWidthTypes.Boolean)
	icebergInt64     = arrowTypeToSQL(arrow.PrimitiveTypes.Int64)
	icebergDouble    = arrowTypeToSQL(arrow.PrimitiveTypes.Float64)
	icebergDate      = arrowTypeToSQL(arrow.FixedWidthTypes.Date32)
	icebergTimestamp = arrowTypeToSQL(arrow.FixedWidthTypes.Timestamp_s)
	icebergBlob      = arrowTypeToSQL(arrow.BinaryTypes.Binary)
	icebergVarchar   = arrowTypeToSQL(arrow.BinaryTypes.String)
)
