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

package planbuilder

import (
	"github.com/qxengine/qx/sql"
	"github.com/qxengine/qx/sql/plan"
)

// Catalog is the subset of catalog.Registry the binder needs: resolving
// a dotted dataset reference to a connector plus the inner name that
// connector should be asked to read. Declared here (rather than
// importing the catalog package) so catalog can depend on sql without
// creating an import cycle back to planbuilder.
type Catalog interface {
	Resolve(name string) (conn sql.Connector, innerName string, ok bool)
}

// Binder turns a parsed statement into a logical plan. One Binder is
// used per query; it carries no state across Bind calls.
type Binder struct {
	catalog Catalog
}

func New(catalog Catalog) *Binder {
	return &Binder{catalog: catalog}
}

// BindDataset resolves a dotted reference like "a.b.c.d" to a Scan node:
// the registry is searched for the longest dotted prefix that matches a
// registered connector, and the remainder is passed through as the
// connector's own dataset id.
func (b *Binder) BindDataset(ctx *sql.Context, ref string) (*plan.Scan, error) {
	conn, inner, ok := b.catalog.Resolve(ref)
	if !ok {
		return nil, sql.ErrDatasetNotFound.New(ref)
	}
	schema, err := conn.GetSchema(ctx)
	if err != nil {
		return nil, err
	}
	return plan.NewResolvedTable(inner, conn, schema, nil, nil), nil
}

// BindColumnRef resolves a (possibly qualified) column reference against
// scope into a bound expression. The caller supplies scope built from
// the FROM clause's sources in order.
func (b *Binder) BindColumnRef(sc *scope, qualifier, name string) (sql.Expression, error) {
	r, err := sc.resolve(qualifier, name)
	if err != nil {
		return nil, err
	}
	return boundGetField(r.index, r.col), nil
}

// newScopeFromSources builds a scope for one query block from its bound
// FROM-clause nodes, assigning each source the column offset it occupies
// within the concatenated output schema (mirroring how Join/CrossJoin
// lay out their own Schema()).
func newScopeFromSources(parent *scope, names []string, nodes []sql.Node) *scope {
	sc := newScope(parent)
	offset := 0
	for i, n := range nodes {
		sch := n.Schema()
		sc.addSource(names[i], sch, offset)
		offset += len(sch)
	}
	return sc
}
