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

package catalog

import (
	"github.com/qxengine/qx/connectors"
	"github.com/qxengine/qx/sql"
	"github.com/qxengine/qx/sql/types"
)

// planetsConnector backs $planets: the classic nine-row solar system
// sample dataset used throughout worked examples and tests.
func planetsConnector() *connectors.Memory {
	schema := sql.Schema{
		{Name: "id", Type: types.Int64},
		{Name: "name", Type: types.Varchar},
		{Name: "mass", Type: types.Double},
		{Name: "diameter", Type: types.Double},
		{Name: "numberOfMoons", Type: types.Int64},
	}
	rows := []sql.Row{
		{int64(1), "Mercury", 3.303e+23, 4879.0, int64(0)},
		{int64(2), "Venus", 4.869e+24, 12104.0, int64(0)},
		{int64(3), "Earth", 5.976e+24, 12756.0, int64(1)},
		{int64(4), "Mars", 6.421e+23, 6792.0, int64(2)},
		{int64(5), "Jupiter", 1.9e+27, 142984.0, int64(79)},
		{int64(6), "Saturn", 5.688e+26, 120536.0, int64(82)},
		{int64(7), "Uranus", 8.686e+25, 51118.0, int64(27)},
		{int64(8), "Neptune", 1.024e+26, 49528.0, int64(14)},
		{int64(9), "Pluto", 1.27e+22, 2370.0, int64(5)},
	}
	return connectors.NewMemory(schema, rows)
}

// satellitesConnector backs $satellites: one row per named moon, joinable
// to $planets on planetId.
func satellitesConnector() *connectors.Memory {
	schema := sql.Schema{
		{Name: "id", Type: types.Int64},
		{Name: "planetId", Type: types.Int64},
		{Name: "name", Type: types.Varchar},
	}
	rows := []sql.Row{
		{int64(1), int64(3), "Moon"},
		{int64(2), int64(4), "Phobos"},
		{int64(3), int64(4), "Deimos"},
		{int64(4), int64(5), "Io"},
		{int64(5), int64(5), "Europa"},
		{int64(6), int64(5), "Ganymede"},
	}
	return connectors.NewMemory(schema, rows)
}
