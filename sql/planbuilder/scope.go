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

// Package planbuilder binds a parsed statement to a logical plan: every
// column reference becomes a (source index, column index) pair, every
// dataset reference resolves to a catalog handle, and every expression
// carries a logical type before the optimizer ever sees it.
package planbuilder

import (
	"strings"

	"github.com/qxengine/qx/sql"
)

// scope is one level of identifier visibility: the schema of the
// FROM-clause sources visible at this nesting level of the query, plus a
// link to the enclosing scope for correlated subquery resolution.
type scope struct {
	sources []source
	parent  *scope
}

// source is one FROM-clause entry: a base name (or its alias) and the
// column range of the overall batch schema it contributes.
type source struct {
	name   string
	schema sql.Schema
	offset int // index of source.schema[0] within the batch's full schema
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent}
}

func (s *scope) addSource(name string, sch sql.Schema, offset int) {
	s.sources = append(s.sources, source{name: name, schema: sch, offset: offset})
}

// resolved is one successful identifier lookup.
type resolved struct {
	index    int
	col      *sql.Column
	outer    bool // true if satisfied by an enclosing (correlated) scope
}

// resolve implements identifier resolution: search scopes from innermost
// outward; within one scope, an unqualified name must match exactly one
// source's column or it's ambiguous; a qualified name restricts the
// search to the named source.
func (s *scope) resolve(qualifier, name string) (resolved, error) {
	qualifierSeen := qualifier == ""
	for sc, depth := s, 0; sc != nil; sc, depth = sc.parent, depth+1 {
		if qualifier != "" && sc.hasSource(qualifier) {
			qualifierSeen = true
		}
		matches, err := sc.matchesInScope(qualifier, name)
		if err != nil {
			return resolved{}, err
		}
		if len(matches) == 1 {
			return resolved{index: matches[0].index, col: matches[0].col, outer: depth > 0}, nil
		}
		if len(matches) > 1 {
			return resolved{}, sql.ErrAmbiguousIdentifier.New(name)
		}
	}
	if !qualifierSeen {
		return resolved{}, sql.ErrUnexpectedDatasetReference.New(qualifier)
	}
	return resolved{}, sql.ErrColumnNotFound.New(qualifyName(qualifier, name))
}

func (s *scope) hasSource(name string) bool {
	for _, src := range s.sources {
		if strings.EqualFold(src.name, name) {
			return true
		}
	}
	return false
}

type match struct {
	index int
	col   *sql.Column
}

func (s *scope) matchesInScope(qualifier, name string) ([]match, error) {
	var out []match
	for _, src := range s.sources {
		if qualifier != "" && !strings.EqualFold(src.name, qualifier) {
			continue
		}
		if i := src.schema.IndexOf(name, ""); i >= 0 {
			out = append(out, match{index: src.offset + i, col: src.schema[i]})
		}
	}
	return out, nil
}

func qualifyName(qualifier, name string) string {
	if qualifier == "" {
		return name
	}
	return qualifier + "." + name
}
