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

package permissions

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileFallsBackToDefault(t *testing.T) {
	g, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	require.True(t, g.CanReadTable([]string{"anyone"}, "any.table"))
}

func TestDefaultRoleAlwaysReadsEverything(t *testing.T) {
	g := New([]Entry{{Role: "restricted", Permission: "READ", Table: "opteryx.*"}})
	require.True(t, g.CanReadTable([]string{"opteryx"}, "any.table"))
}

func TestRestrictedRoleMatchesGlob(t *testing.T) {
	g := New([]Entry{{Role: "restricted", Permission: "READ", Table: "opteryx.*"}})
	require.True(t, g.CanReadTable([]string{"restricted"}, "opteryx.table1"))
	require.False(t, g.CanReadTable([]string{"restricted"}, "other.table"))
}

func TestUnknownRoleDenied(t *testing.T) {
	g := New([]Entry{{Role: "restricted", Permission: "READ", Table: "opteryx.*"}})
	require.False(t, g.CanReadTable([]string{"unrelated"}, "opteryx.table1"))
}

func TestEmptyRolesDenied(t *testing.T) {
	g := New([]Entry{{Role: "restricted", Permission: "READ", Table: "opteryx.*"}})
	require.False(t, g.CanReadTable(nil, "opteryx.table1"))
}

func TestMultipleRolesAnyMatchGrants(t *testing.T) {
	g := New([]Entry{{Role: "restricted", Permission: "READ", Table: "opteryx.*"}})
	require.True(t, g.CanReadTable([]string{"unrelated", "restricted"}, "opteryx.table1"))
}

func TestWritePermissionNeverGrantsRead(t *testing.T) {
	g := New([]Entry{{Role: "writer", Permission: "WRITE", Table: "*"}})
	require.False(t, g.CanReadTable([]string{"writer"}, "any.table"))
}

func TestLoadParsesNDJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "permissions.json")
	content := `{"role":"analyst","permission":"READ","table":"warehouse.*"}` + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	g, err := Load(path)
	require.NoError(t, err)
	require.True(t, g.CanReadTable([]string{"analyst"}, "warehouse.orders"))
	require.False(t, g.CanReadTable([]string{"analyst"}, "other.orders"))
	require.True(t, g.CanReadTable([]string{"opteryx"}, "other.orders"))
}

func TestZeroValueGateAllowsEverything(t *testing.T) {
	var g Gate
	require.True(t, g.CanReadTable([]string{"anyone"}, "anything"))
}
