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

import "github.com/qxengine/qx/sql"

// limitIter drops the first Offset rows and stops after Count rows past
// that, slicing within a morsel rather than requiring morsel-aligned
// boundaries from its child.
type limitIter struct {
	count, offset int64
	child         sql.BatchIter
	seen          int64
	emitted       int64
	closed        bool
}

func (l *limitIter) Next(ctx *sql.Context) (*sql.Batch, error) {
	if l.closed || l.emitted >= l.count {
		return nil, sql.ErrIterDone
	}
	for {
		if ctx.Cancelled() {
			return nil, ctx.Err()
		}
		b, err := l.child.Next(ctx)
		if err != nil {
			return nil, err
		}
		start := 0
		if l.seen < l.offset {
			skip := l.offset - l.seen
			if skip >= int64(b.Rows) {
				l.seen += int64(b.Rows)
				continue
			}
			start = int(skip)
			l.seen = l.offset
		}
		available := int64(b.Rows - start)
		remaining := l.count - l.emitted
		end := b.Rows
		if available > remaining {
			end = start + int(remaining)
		}
		l.emitted += int64(end - start)
		if l.emitted >= l.count {
			l.closed = true
		}
		if start == 0 && end == b.Rows {
			return b, nil
		}
		return b.Slice(start, end), nil
	}
}

func (l *limitIter) Close(ctx *sql.Context) error { return l.child.Close(ctx) }
