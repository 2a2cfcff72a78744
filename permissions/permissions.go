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

// Package permissions gates which roles may read which dataset names,
// loaded from a newline-delimited JSON permissions file: one {role,
// permission, table} object per line, table a glob pattern matched
// against the full dotted/protocol-prefixed dataset reference.
package permissions

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
)

// Entry is one line of the permissions file.
type Entry struct {
	Role       string `json:"role"`
	Permission string `json:"permission"`
	Table      string `json:"table"`
}

// defaultEntry is the always-present fallback: the unrestricted "opteryx"
// role may read every table, whether or not a permissions file was found.
var defaultEntry = Entry{Role: "opteryx", Permission: "READ", Table: "*"}

// Gate answers read-access questions against a loaded entry set.
type Gate struct {
	entries []Entry
}

// Load reads path as newline-delimited JSON, one Entry per line, and
// appends the built-in unrestricted default. A missing file yields a
// Gate with only the default entry (every role reads every table); any
// other read or decode error is returned.
func Load(path string) (*Gate, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return &Gate{entries: []Entry{defaultEntry}}, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	entries, err := decodeEntries(f)
	if err != nil {
		return nil, err
	}
	entries = append(entries, defaultEntry)
	return &Gate{entries: entries}, nil
}

// New builds a Gate directly from entries, for callers that already have
// the permission set (e.g. loaded from a config source other than a
// file) rather than a file path. The built-in default is still appended.
func New(entries []Entry) *Gate {
	all := append(append([]Entry{}, entries...), defaultEntry)
	return &Gate{entries: all}
}

func decodeEntries(r io.Reader) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(line, &e); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// CanReadTable reports whether any of roles holds READ permission on a
// table pattern matching name. An empty permission set, per the zero
// value of Gate, means no restrictions (every read is allowed);
// Load/New always populate the default entry, so that path is only
// reached via the zero Gate{}.
func (g *Gate) CanReadTable(roles []string, name string) bool {
	if g == nil || len(g.entries) == 0 {
		return true
	}
	roleSet := make(map[string]bool, len(roles))
	for _, r := range roles {
		roleSet[r] = true
	}
	for _, e := range g.entries {
		if e.Permission != "READ" || !roleSet[e.Role] {
			continue
		}
		if matched, err := filepath.Match(e.Table, name); err == nil && matched {
			return true
		}
	}
	return false
}
