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

package sql

import "strings"

// Column describes one field of a Schema: name, logical type, and
// nullability, plus the name of the source (table/dataset) that produced
// it, used to resolve qualified references during binding.
type Column struct {
	Name     string
	Source   string
	Type     Type
	Nullable bool
}

// Schema is an ordered sequence of Columns. Two schemas are equivalent iff
// names, types, and order match.
type Schema []*Column

// Equals reports whether s and other have the same names, types, and
// order.
func (s Schema) Equals(other Schema) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i].Name != other[i].Name || !s[i].Type.Equals(other[i].Type) {
			return false
		}
	}
	return true
}

// IndexOf returns the position of the first column matching name
// (case-insensitively), optionally qualified by source, or -1.
func (s Schema) IndexOf(name, source string) int {
	for i, c := range s {
		if !strings.EqualFold(c.Name, name) {
			continue
		}
		if source != "" && !strings.EqualFold(c.Source, source) {
			continue
		}
		return i
	}
	return -1
}

// Project returns a narrowed schema containing only the named columns, in
// the order requested — the shape projection pushdown narrows a Scan or
// Project node to.
func (s Schema) Project(names ...string) Schema {
	out := make(Schema, 0, len(names))
	for _, n := range names {
		if i := s.IndexOf(n, ""); i >= 0 {
			out = append(out, s[i])
		}
	}
	return out
}

func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, c := range s {
		names[i] = c.Name
	}
	return names
}
