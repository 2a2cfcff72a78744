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
	"database/sql"
	"fmt"
	"reflect"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	qxsql "github.com/qxengine/qx/sql"
	"github.com/qxengine/qx/sql/types"
)

// SQL reads a single table from a backing relational database through
// database/sql, pushing projection, predicates, and limit down into the
// generated SELECT whenever the driver supports placeholder parameters
// (every driver registered here does).
type SQL struct {
	db        *sql.DB
	table     string
	paramFunc func(i int) string
}

// NewSQLConnector opens driver ("postgres" or "sqlite") against dsn and
// binds to table. Both drivers are registered via blank import: lib/pq
// for Postgres, modernc.org/sqlite (no cgo) for SQLite.
func NewSQLConnector(driver, dsn, table string) (*SQL, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	paramFunc := func(i int) string { return "?" }
	if driver == "postgres" {
		paramFunc = func(i int) string { return fmt.Sprintf("$%d", i) }
	}
	return &SQL{db: db, table: table, paramFunc: paramFunc}, nil
}

func (c *SQL) GetSchema(ctx *qxsql.Context) (qxsql.Schema, error) {
	rows, err := c.db.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %s WHERE 1 = 0", c.table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return columnTypesToSchema(rows)
}

func columnTypesToSchema(rows *sql.Rows) (qxsql.Schema, error) {
	cols, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}
	schema := make(qxsql.Schema, len(cols))
	for i, c := range cols {
		nullable, _ := c.Nullable()
		schema[i] = &qxsql.Column{Name: c.Name(), Type: scanTypeToSQL(c.ScanType()), Nullable: nullable}
	}
	return schema, nil
}

func scanTypeToSQL(t reflect.Type) qxsql.Type {
	if t == nil {
		return types.Varchar
	}
	switch t.Kind() {
	case reflect.Bool:
		return types.Boolean
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return types.Int64
	case reflect.Float32, reflect.Float64:
		return types.Double
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return types.Blob
		}
		return types.Varchar
	default:
		return types.Varchar
	}
}

func (c *SQL) GetStatistics(ctx *qxsql.Context) (*qxsql.RelationStatistics, error) {
	var count int64
	err := c.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", c.table)).Scan(&count)
	if err != nil {
		return nil, err
	}
	return &qxsql.RelationStatistics{RecordCount: count, HasCount: true}, nil
}

// ListPartitions never applies: a relational table is not date-partitioned
// from the engine's point of view.
func (c *SQL) ListPartitions(ctx *qxsql.Context, r qxsql.TemporalRange) ([]qxsql.PartitionKey, error) {
	return nil, nil
}

func (c *SQL) ReadDataset(ctx *qxsql.Context, req qxsql.PushdownRequest) (qxsql.BatchIter, []qxsql.SimplePredicate, error) {
	query, args := c.buildQuery(req)
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, nil, err
	}
	schema, err := columnTypesToSchema(rows)
	if err != nil {
		rows.Close()
		return nil, nil, err
	}
	var declined []qxsql.SimplePredicate
	for _, p := range req.Predicates {
		if _, _, ok := predicateToSQL(p, 1, c.paramFunc); !ok {
			declined = append(declined, p)
		}
	}
	return newSQLRowsIter(rows, schema), declined, nil
}

func (c *SQL) buildQuery(req qxsql.PushdownRequest) (string, []interface{}) {
	cols := "*"
	if len(req.Projection) > 0 {
		cols = strings.Join(req.Projection, ", ")
	}
	query := fmt.Sprintf("SELECT %s FROM %s", cols, c.table)

	var args []interface{}
	if len(req.Predicates) > 0 {
		var clauses []string
		for _, p := range req.Predicates {
			clause, arg, ok := predicateToSQL(p, len(args)+1, c.paramFunc)
			if !ok {
				continue
			}
			clauses = append(clauses, clause)
			if arg != nil {
				args = append(args, arg...)
			}
		}
		if len(clauses) > 0 {
			query += " WHERE " + strings.Join(clauses, " AND ")
		}
	}
	if req.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", req.Limit)
	}
	return query, args
}

// predicateToSQL translates one SimplePredicate into a parameterized SQL
// clause. LIKE/NOT LIKE are passed through verbatim: every driver
// registered here accepts SQL LIKE syntax directly.
func predicateToSQL(p qxsql.SimplePredicate, argStart int, param func(i int) string) (string, []interface{}, bool) {
	switch p.Op {
	case qxsql.OpIsNull:
		return fmt.Sprintf("%s IS NULL", p.Column), nil, true
	case qxsql.OpIsNotNull:
		return fmt.Sprintf("%s IS NOT NULL", p.Column), nil, true
	case qxsql.OpIn, qxsql.OpNotIn:
		if len(p.Values) == 0 {
			return "", nil, false
		}
		placeholders := make([]string, len(p.Values))
		for i := range p.Values {
			placeholders[i] = param(argStart + i)
		}
		op := "IN"
		if p.Op == qxsql.OpNotIn {
			op = "NOT IN"
		}
		return fmt.Sprintf("%s %s (%s)", p.Column, op, strings.Join(placeholders, ", ")), p.Values, true
	}

	op, ok := compareOpToSQL(p.Op)
	if !ok {
		return "", nil, false
	}
	return fmt.Sprintf("%s %s %s", p.Column, op, param(argStart)), []interface{}{p.Value}, true
}

func compareOpToSQL(op qxsql.CompareOp) (string, bool) {
	switch op {
	case qxsql.OpEq:
		return "=", true
	case qxsql.OpNe:
		return "!=", true
	case qxsql.OpLt:
		return "<", true
	case qxsql.OpLe:
		return "<=", true
	case qxsql.OpGt:
		return ">", true
	case qxsql.OpGe:
		return ">=", true
	case qxsql.OpLike:
		return "LIKE", true
	case qxsql.OpNotLike:
		return "NOT LIKE", true
	default:
		return "", false
	}
}

func (c *SQL) Capabilities() qxsql.Capabilities {
	return qxsql.Capabilities{
		PredicatePushdown:         true,
		ProjectionPushdown:        true,
		LimitPushdown:             true,
		CanPushCompoundPredicates: true,
	}
}

func (c *SQL) Mode() qxsql.Mode { return qxsql.ReadOnly }

// sqlRowsIter adapts database/sql's row-at-a-time *sql.Rows to the
// engine's columnar BatchIter, materializing one batch per call up to a
// fixed row cap so a huge table doesn't force a single unbounded batch.
type sqlRowsIter struct {
	rows      *sql.Rows
	schema    qxsql.Schema
	batchSize int
	done      bool
}

func newSQLRowsIter(rows *sql.Rows, schema qxsql.Schema) *sqlRowsIter {
	return &sqlRowsIter{rows: rows, schema: schema, batchSize: 1024}
}

func (it *sqlRowsIter) Next(ctx *qxsql.Context) (*qxsql.Batch, error) {
	if it.done {
		return nil, qxsql.ErrIterDone
	}

	cols := make([]qxsql.ColumnData, len(it.schema))
	for c := range it.schema {
		cols[c] = qxsql.ColumnData{Values: []interface{}{}, Valid: qxsql.NewValidity(0)}
	}

	scanDest := make([]interface{}, len(it.schema))
	values := make([]interface{}, len(it.schema))
	for i := range scanDest {
		scanDest[i] = &values[i]
	}

	var rowVals [][]interface{}
	for len(rowVals) < it.batchSize && it.rows.Next() {
		if err := it.rows.Scan(scanDest...); err != nil {
			it.rows.Close()
			return nil, err
		}
		rowCopy := make([]interface{}, len(values))
		copy(rowCopy, values)
		rowVals = append(rowVals, rowCopy)
	}
	if err := it.rows.Err(); err != nil {
		it.rows.Close()
		return nil, err
	}
	if len(rowVals) < it.batchSize {
		it.done = true
		it.rows.Close()
	}
	if len(rowVals) == 0 {
		return nil, qxsql.ErrIterDone
	}

	for c := range it.schema {
		vals := make([]interface{}, len(rowVals))
		valid := qxsql.NewValidity(len(rowVals))
		for r, row := range rowVals {
			vals[r] = row[c]
			if row[c] != nil {
				valid.Set(r, true)
			}
		}
		cols[c] = qxsql.ColumnData{Values: vals, Valid: valid}
	}
	return &qxsql.Batch{Schema: it.schema, Columns: cols, Rows: len(rowVals)}, nil
}

func (it *sqlRowsIter) Close(ctx *qxsql.Context) error {
	if it.done {
		return nil
	}
	return it.rows.Close()
}
