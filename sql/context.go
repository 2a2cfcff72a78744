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

import (
	"context"
	"time"

	opentracing "github.com/opentracing/opentracing-go"
	uuid "github.com/satori/go.uuid"
	"github.com/sirupsen/logrus"
)

// Context carries a single query's cancellation token, optional deadline,
// and ambient logger/tracer through the whole binder -> optimizer ->
// executor pipeline. It wraps context.Context rather than reimplementing
// cancellation.
type Context struct {
	context.Context
	QueryID string
	Log     *logrus.Entry
	Tracer  opentracing.Tracer
	Globals *GlobalsSet

	// Range is the resolved form of this query's FOR clause, if any. It
	// is set once by the caller before the physical plan is built, and
	// read by physical.Lower when lowering a Scan into a ConnectorScan:
	// from there it rides along in PushdownRequest.Range to each
	// connector's ReadDataset/ListPartitions.
	Range TemporalRange

	cancel context.CancelFunc
}

// NewContext creates a Context for one query, deriving cancellation from
// parent. If deadline is non-zero a wall-clock timeout is armed.
func NewContext(parent context.Context, deadline time.Duration, log *logrus.Entry) *Context {
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if deadline > 0 {
		ctx, cancel = context.WithTimeout(parent, deadline)
	} else {
		ctx, cancel = context.WithCancel(parent)
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Context{
		Context: ctx,
		QueryID: uuid.NewV4().String(),
		Log:     log,
		Tracer:  opentracing.GlobalTracer(),
		Globals: NewGlobalsSet(),
		cancel:  cancel,
	}
}

// NewEmptyContext is a bare Context for use in tests and standalone
// operator construction.
func NewEmptyContext() *Context {
	return NewContext(context.Background(), 0, nil)
}

// Cancel aborts the query's pipeline. Safe to call more than once.
func (c *Context) Cancel() {
	c.cancel()
}

// Cancelled reports whether the cancellation token has fired, checked at
// the top of every operator's Next.
func (c *Context) Cancelled() bool {
	select {
	case <-c.Done():
		return true
	default:
		return false
	}
}

// StartSpan opens a tracing span for one operator's Next call, reported
// to c.Tracer. EXPLAIN ANALYZE output does not read these spans back.
func (c *Context) StartSpan(operator string) opentracing.Span {
	if c.Tracer == nil {
		return opentracing.NoopTracer{}.StartSpan(operator)
	}
	return c.Tracer.StartSpan(operator)
}
