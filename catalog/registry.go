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

// Package catalog maps dataset references to connectors. A Registry is
// process-wide: built once, shared read-only across every query's
// binder, and mutated only by explicit Register calls (typically at
// startup, or via register_store/register_arrow/register_df).
package catalog

import (
	"sort"
	"strings"
	"sync"

	"github.com/qxengine/qx/connectors"
	"github.com/qxengine/qx/sql"
)

// ConnectorFactory builds (or returns a cached) Connector for a resolved
// prefix rule. Most rules are a closure over a single already-constructed
// Connector; the factory indirection exists so a rule can defer expensive
// setup (opening a database handle, listing a bucket) until the prefix is
// first resolved.
type ConnectorFactory func() (sql.Connector, error)

// RegisterOptions configures one registration rule.
type RegisterOptions struct {
	// RemovePrefix strips the matched prefix from the name handed to the
	// connector as its inner dataset id: registering "s3://bucket" with
	// RemovePrefix true and resolving "s3://bucket/a/b" passes the
	// connector "/a/b", not "s3://bucket/a/b".
	RemovePrefix bool
}

type rule struct {
	prefix  string
	factory ConnectorFactory
	opts    RegisterOptions

	mu   sync.Mutex
	conn sql.Connector
	err  error
}

func (r *rule) resolve() (sql.Connector, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn != nil || r.err != nil {
		return r.conn, r.err
	}
	r.conn, r.err = r.factory()
	return r.conn, r.err
}

// Registry is the process-wide dataset-name-to-connector map. The zero
// value is not usable; construct with New.
type Registry struct {
	mu    sync.RWMutex
	rules map[string]*rule
}

// New builds a Registry with the built-in $planets/$satellites virtual
// datasets already registered, matching every worked example that queries
// them without any setup.
func New() *Registry {
	reg := &Registry{rules: map[string]*rule{}}
	reg.mustRegister("$planets", connectorFactory(func() (sql.Connector, error) {
		return connectorOf(planetsConnector()), nil
	}), RegisterOptions{})
	reg.mustRegister("$satellites", connectorFactory(func() (sql.Connector, error) {
		return connectorOf(satellitesConnector()), nil
	}), RegisterOptions{})
	return reg
}

func connectorFactory(f func() (sql.Connector, error)) ConnectorFactory { return f }
func connectorOf(m *connectors.Memory) sql.Connector                    { return m }

// Register adds a prefix rule. Re-registering the same prefix replaces
// the previous rule.
func (reg *Registry) Register(prefix string, factory ConnectorFactory, opts RegisterOptions) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.rules[prefix] = &rule{prefix: prefix, factory: factory, opts: opts}
}

func (reg *Registry) mustRegister(prefix string, factory ConnectorFactory, opts RegisterOptions) {
	reg.Register(prefix, factory, opts)
}

// RegisterArrow registers a fixed in-memory table under name, the
// register_arrow entry point: schema and rows are fully resident, so the
// connector it builds accepts every pushdown.
func (reg *Registry) RegisterArrow(name string, schema sql.Schema, rows []sql.Row) {
	reg.Register(name, connectorFactory(func() (sql.Connector, error) {
		return connectors.NewMemory(schema, rows), nil
	}), RegisterOptions{})
}

// Resolve implements the longest-dotted-prefix match: a.b.c.d resolves
// against every registered prefix that is either an exact match or a
// dotted ancestor of the reference, preferring the longest. The matched
// prefix is stripped from innerName when the rule's RemovePrefix option
// is set.
func (reg *Registry) Resolve(name string) (conn sql.Connector, innerName string, ok bool) {
	reg.mu.RLock()
	var best *rule
	for prefix, r := range reg.rules {
		if !isPrefixMatch(prefix, name) {
			continue
		}
		if best == nil || len(prefix) > len(best.prefix) {
			best = r
		}
	}
	reg.mu.RUnlock()
	if best == nil {
		return nil, "", false
	}
	conn, err := best.resolve()
	if err != nil {
		return nil, "", false
	}
	inner := name
	if best.opts.RemovePrefix {
		inner = strings.TrimPrefix(name, best.prefix)
		inner = strings.TrimPrefix(inner, ".")
	}
	return conn, inner, true
}

// isPrefixMatch reports whether prefix matches name exactly or as a
// dotted ancestor ("a.b" matches "a.b.c.d" but not "a.bc").
func isPrefixMatch(prefix, name string) bool {
	if prefix == name {
		return true
	}
	if strings.HasPrefix(name, prefix+".") {
		return true
	}
	// Non-dotted prefixes (protocol schemes like "s3://", blob path
	// roots) match by plain string prefix rather than the dotted rule.
	if strings.ContainsAny(prefix, ":/") && strings.HasPrefix(name, prefix) {
		return true
	}
	return false
}

// ListDatasets returns every registered prefix under (or equal to) root,
// sorted, for SHOW DATASETS-style introspection. Optional: not required
// for Resolve to function.
func (reg *Registry) ListDatasets(root string) []string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	var out []string
	for prefix := range reg.rules {
		if root == "" || isPrefixMatch(root, prefix) || prefix == root {
			out = append(out, prefix)
		}
	}
	sort.Strings(out)
	return out
}
