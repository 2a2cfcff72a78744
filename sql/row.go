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

// Row is a single tuple of scalar values, used where a whole Batch would
// be overkill: literal evaluation, an aggregator's finalize step, a
// single-row fallback scan. Bulk data flow between operators is always a
// Batch (see batch.go); Row exists so expression evaluation has a uniform
// "one row" shape to fall back on.
type Row []interface{}

// NewRow builds a Row from literal values, a convenience constructor
// used throughout the test suite.
func NewRow(values ...interface{}) Row {
	return Row(values)
}

// Copy returns a shallow copy of the row.
func (r Row) Copy() Row {
	out := make(Row, len(r))
	copy(out, r)
	return out
}
