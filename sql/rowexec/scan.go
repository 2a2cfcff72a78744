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

package rowexec

import (
	"regexp"
	"strings"

	"github.com/qxengine/qx/sql"
	"github.com/qxengine/qx/sql/physical"
)

// connectorScanIter drives a Connector's own BatchIter, re-applying
// whatever predicates the connector reports back as unhonored (a
// Connector may decline a pushdown it claims to support via
// Capabilities, e.g. because this particular dataset can't satisfy it).
type connectorScanIter struct {
	inner    sql.BatchIter
	residual []sql.SimplePredicate
}

func newConnectorScanIter(ctx *sql.Context, op *physical.ConnectorScan) (sql.BatchIter, error) {
	req := sql.PushdownRequest{Projection: op.Projection, Predicates: op.Predicates, Limit: op.Limit, Range: op.Range}
	inner, residual, err := op.Connector.ReadDataset(ctx, req)
	if err != nil {
		return nil, err
	}
	return &connectorScanIter{inner: inner, residual: residual}, nil
}

func (c *connectorScanIter) Next(ctx *sql.Context) (*sql.Batch, error) {
	for {
		if ctx.Cancelled() {
			return nil, ctx.Err()
		}
		b, err := c.inner.Next(ctx)
		if err != nil {
			return nil, err
		}
		if len(c.residual) == 0 {
			return b, nil
		}
		var idx []int
		for i := 0; i < b.Rows; i++ {
			if matchesAll(b.Schema, b.Row(i), c.residual) {
				idx = append(idx, i)
			}
		}
		if len(idx) == 0 {
			continue
		}
		if len(idx) == b.Rows {
			return b, nil
		}
		return gatherBatch(b, idx), nil
	}
}

func (c *connectorScanIter) Close(ctx *sql.Context) error { return c.inner.Close(ctx) }

func matchesAll(schema sql.Schema, row sql.Row, preds []sql.SimplePredicate) bool {
	for _, p := range preds {
		if !matchesOne(schema, row, p) {
			return false
		}
	}
	return true
}

func matchesOne(schema sql.Schema, row sql.Row, p sql.SimplePredicate) bool {
	idx := schema.IndexOf(p.Column, "")
	if idx < 0 {
		// Column not visible in this batch (a connector projected it
		// away): nothing to filter on, so don't drop the row.
		return true
	}
	v := row[idx]
	col := schema[idx]

	switch p.Op {
	case sql.OpIsNull:
		return v == nil
	case sql.OpIsNotNull:
		return v != nil
	case sql.OpIn, sql.OpNotIn:
		if v == nil {
			return false
		}
		found := false
		for _, item := range p.Values {
			if cmp, err := col.Type.Compare(v, item); err == nil && cmp == 0 {
				found = true
				break
			}
		}
		if p.Op == sql.OpNotIn {
			return !found
		}
		return found
	case sql.OpLike, sql.OpNotLike:
		s, ok := v.(string)
		if !ok {
			return false
		}
		pattern, _ := p.Value.(string)
		matched := simpleLikeRegexp(pattern).MatchString(s)
		if p.Op == sql.OpNotLike {
			return !matched
		}
		return matched
	default:
		if v == nil {
			return false
		}
		cmp, err := col.Type.Compare(v, p.Value)
		if err != nil {
			return false
		}
		switch p.Op {
		case sql.OpEq:
			return cmp == 0
		case sql.OpNe:
			return cmp != 0
		case sql.OpLt:
			return cmp < 0
		case sql.OpLe:
			return cmp <= 0
		case sql.OpGt:
			return cmp > 0
		case sql.OpGe:
			return cmp >= 0
		default:
			return false
		}
	}
}

// simpleLikeRegexp compiles a SQL LIKE pattern (% = any run, _ = any
// single char) into an anchored, case-sensitive regexp.
func simpleLikeRegexp(pattern string) *regexp.Regexp {
	var b strings.Builder
	b.WriteString("^")
	for _, r := range pattern {
		switch r {
		case '%':
			b.WriteString(".*")
		case '_':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	re, err := regexp.Compile(b.String())
	if err != nil {
		return regexp.MustCompile("$^") // matches nothing
	}
	return re
}
