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

// Package qx is the embeddable, read-mostly SQL query engine: Engine
// binds a catalog of registered datasets to the binder, optimizer,
// physical planner, and vectorized executor, and exposes Query as the
// single entry point a host application calls.
package qx

import (
	"strings"

	"github.com/qxengine/qx/catalog"
	"github.com/qxengine/qx/permissions"
	"github.com/qxengine/qx/sql"
	"github.com/qxengine/qx/sql/analyzer"
	"github.com/qxengine/qx/sql/physical"
	"github.com/qxengine/qx/sql/plan"
	"github.com/qxengine/qx/sql/planbuilder"
	"github.com/qxengine/qx/sql/rowexec"
	"github.com/qxengine/qx/temporal"
)

// Engine ties a dataset catalog to query execution. One Engine serves
// any number of concurrent Query calls; it carries no per-query state
// itself.
type Engine struct {
	Catalog     *catalog.Registry
	Analyzer    *analyzer.Analyzer
	Permissions *permissions.Gate
	Processes   *ProcessList
	cfg         Config
}

// New builds an Engine around cat using cfg's options.
func New(cat *catalog.Registry, cfg Config) *Engine {
	cfg = cfg.withDefaults()
	return &Engine{
		Catalog:     cat,
		Analyzer:    cfg.Analyzer,
		Permissions: cfg.Permissions,
		Processes:   NewProcessList(),
		cfg:         cfg,
	}
}

// NewDefault builds an Engine with the default catalog (the $planets/
// $satellites built-ins plus whatever the caller registers later) and
// default configuration.
func NewDefault() *Engine {
	return New(catalog.New(), Config{})
}

// AnalyzeQuery parses and binds query, extracting any FOR clause and
// running the optimizer, without executing it. Useful for EXPLAIN-style
// tooling.
func (e *Engine) AnalyzeQuery(ctx *sql.Context, query string) (sql.Node, error) {
	text, rng := temporal.Extract(query)
	ctx.Range = rng

	binder := planbuilder.New(e.Catalog)
	node, err := binder.Build(ctx, text)
	if err != nil {
		return nil, err
	}

	if e.Permissions != nil {
		if err := e.checkPermissions(node); err != nil {
			return nil, err
		}
	}

	node, _, err = e.Analyzer.Analyze(ctx, node)
	return node, err
}

// Query parses, binds, optimizes, and executes query, returning the
// result's schema and a Cursor over its rows. roles, when non-empty,
// overrides the Config's default role list for the permission check.
func (e *Engine) Query(ctx *sql.Context, query string, roles ...string) (sql.Schema, *Cursor, error) {
	if len(roles) == 0 {
		roles = e.cfg.Roles
	}

	// The FOR clause never reaches the parser as SQL text: it's stripped
	// here and resolved into ctx.Range, which physical.Lower reads when
	// lowering a Scan, carrying it into each connector's ReadDataset via
	// PushdownRequest.Range (Blob's date/hour partition pruning, Iceberg's
	// snapshot-as-of resolution).
	text, rng := temporal.Extract(query)
	ctx.Range = rng

	binder := planbuilder.New(e.Catalog)
	node, err := binder.Build(ctx, text)
	if err != nil {
		return nil, nil, err
	}

	if e.Permissions != nil {
		if err := e.checkPermissionsForRoles(node, roles); err != nil {
			return nil, nil, err
		}
	}

	node, stats, err := e.Analyzer.Analyze(ctx, node)
	if err != nil {
		return nil, nil, err
	}

	op, err := physical.Lower(ctx, node)
	if err != nil {
		return nil, nil, err
	}

	pid := e.Processes.BeginQuery(query, ctx.Cancel)
	it, err := rowexec.Build(ctx, op)
	if err != nil {
		e.Processes.EndQuery(pid)
		return nil, nil, err
	}

	phys := &physical.Plan{Root: op}
	tracked := &processTrackedIter{inner: it, end: func() { e.Processes.EndQuery(pid) }}
	cur := newCursor(ctx, node.Schema(), tracked, phys.Explain(), stats.FiredByRule)
	return node.Schema(), cur, nil
}

// Explain parses and optimizes statement - a query prefixed with
// "EXPLAIN [ANALYZE] [FORMAT MERMAID|TEXT]" - without returning a
// Cursor: it renders the physical plan in the requested format. With
// ANALYZE the plan is first executed to completion; the rendered output
// is the same plan text and carries no per-operator statistics.
func (e *Engine) Explain(ctx *sql.Context, statement string) (string, error) {
	rest := strings.TrimSpace(statement)
	if !strings.HasPrefix(strings.ToUpper(rest), "EXPLAIN") {
		return "", sql.ErrUnsupportedSyntax.New("Explain requires a statement starting with EXPLAIN")
	}
	rest = strings.TrimSpace(rest[len("EXPLAIN"):])

	analyze := false
	if hasKeywordPrefix(rest, "ANALYZE") {
		analyze = true
		rest = strings.TrimSpace(rest[len("ANALYZE"):])
	}

	format := physical.ExplainText
	if hasKeywordPrefix(rest, "FORMAT") {
		rest = strings.TrimSpace(rest[len("FORMAT"):])
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			return "", sql.ErrUnsupportedSyntax.New("FORMAT requires MERMAID or TEXT")
		}
		switch strings.ToUpper(fields[0]) {
		case "MERMAID":
			format = physical.ExplainMermaid
		case "TEXT":
			format = physical.ExplainText
		default:
			return "", sql.ErrUnsupportedSyntax.New("unknown EXPLAIN FORMAT " + fields[0])
		}
		rest = strings.TrimSpace(rest[len(fields[0]):])
	}

	node, err := e.AnalyzeQuery(ctx, rest)
	if err != nil {
		return "", err
	}
	op, err := physical.Lower(ctx, node)
	if err != nil {
		return "", err
	}
	phys := &physical.Plan{Root: op}

	if analyze {
		it, err := rowexec.Build(ctx, op)
		if err != nil {
			return "", err
		}
		for {
			if _, err := it.Next(ctx); err != nil {
				break
			}
		}
		it.Close(ctx)
	}

	if format == physical.ExplainMermaid {
		return phys.Mermaid(), nil
	}
	return phys.Explain(), nil
}

// hasKeywordPrefix reports whether s begins with keyword, case
// insensitively, as a whole word (not a prefix of a longer identifier).
func hasKeywordPrefix(s, keyword string) bool {
	up := strings.ToUpper(s)
	if !strings.HasPrefix(up, keyword) {
		return false
	}
	rest := s[len(keyword):]
	return rest == "" || rest[0] == ' ' || rest[0] == '\t' || rest[0] == '\n'
}

// checkPermissions uses the Engine's configured default roles.
func (e *Engine) checkPermissions(node sql.Node) error {
	return e.checkPermissionsForRoles(node, e.cfg.Roles)
}

func (e *Engine) checkPermissionsForRoles(node sql.Node, roles []string) error {
	for _, name := range datasetNames(node) {
		if !e.Permissions.CanReadTable(roles, name) {
			return sql.ErrPermissionsError.New(roles, name)
		}
	}
	return nil
}

// datasetNames walks the plan tree collecting every Scan's dataset name.
func datasetNames(node sql.Node) []string {
	var names []string
	var walk func(n sql.Node)
	walk = func(n sql.Node) {
		if scan, ok := n.(*plan.Scan); ok {
			names = append(names, scan.DatasetName)
		}
		for _, c := range n.Children() {
			walk(c)
		}
	}
	walk(node)
	return names
}

// processTrackedIter wraps a sql.BatchIter so its ProcessList entry is
// removed as soon as the iterator reports completion or the caller
// closes it, whichever happens first.
type processTrackedIter struct {
	inner sql.BatchIter
	end   func()
	done  bool
}

func (p *processTrackedIter) Next(ctx *sql.Context) (*sql.Batch, error) {
	b, err := p.inner.Next(ctx)
	if err != nil && !p.done {
		p.done = true
		p.end()
	}
	return b, err
}

func (p *processTrackedIter) Close(ctx *sql.Context) error {
	if !p.done {
		p.done = true
		p.end()
	}
	return p.inner.Close(ctx)
}
