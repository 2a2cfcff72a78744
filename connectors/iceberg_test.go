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
	"testing"

	iceberg "github.com/polarsignals/iceberg-go"
	"github.com/stretchr/testify/require"

	"github.com/qxengine/qx/sql"
	"github.com/qxengine/qx/sql/types"
)

func TestIcebergTypeToSQL(t *testing.T) {
	require.Equal(t, types.Boolean, icebergTypeToSQL(iceberg.BooleanType{}))
	require.Equal(t, types.Int64, icebergTypeToSQL(iceberg.Int64Type{}))
	require.Equal(t, types.Double, icebergTypeToSQL(iceberg.Float64Type{}))
	require.Equal(t, types.Varchar, icebergTypeToSQL(iceberg.StringType{}))
}

func TestIcebergSchemaToSQL(t *testing.T) {
	schema := iceberg.NewSchema(0,
		iceberg.NestedField{ID: 1, Name: "id", Type: iceberg.Int64Type{}, Required: true},
		iceberg.NestedField{ID: 2, Name: "label", Type: iceberg.StringType{}, Required: false},
	)
	out := icebergSchemaToSQL(schema)
	require.Len(t, out, 2)
	require.Equal(t, "id", out[0].Name)
	require.False(t, out[0].Nullable)
	require.Equal(t, "label", out[1].Name)
	require.True(t, out[1].Nullable)
}

func TestIcebergCapabilitiesProjectionOnly(t *testing.T) {
	conn := &Iceberg{}
	caps := conn.Capabilities()
	require.True(t, caps.ProjectionPushdown)
	require.False(t, caps.PredicatePushdown)
	require.False(t, caps.LimitPushdown)
}

func TestTemporalAsOfSecondsPointInTime(t *testing.T) {
	sec, ok := temporalAsOfSeconds(sql.TemporalRange{HasPointInTime: true, PointInTime: 1700000000})
	require.True(t, ok)
	require.Equal(t, int64(1700000000), sec)
}

func TestTemporalAsOfSecondsDateRangeHasNoSingleInstant(t *testing.T) {
	_, ok := temporalAsOfSeconds(sql.TemporalRange{HasRange: true, Since: "2024-01-01", Until: "2024-01-02"})
	require.False(t, ok)
}

func TestTemporalAsOfSecondsUnsetRange(t *testing.T) {
	_, ok := temporalAsOfSeconds(sql.TemporalRange{})
	require.False(t, ok)
}
