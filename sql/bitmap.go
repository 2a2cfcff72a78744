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

// Validity is a per-row null bitmap: bit i set means row i is non-null.
// Nulls are tracked by bitmap rather than sentinel values — every column
// buffer carries one of these alongside its values.
type Validity []uint64

// NewValidity returns a bitmap for n rows with every bit cleared (null).
// Callers set bits for non-null rows, or call SetAllValid.
func NewValidity(n int) Validity {
	return make(Validity, (n+63)/64)
}

// NewAllNullValidity returns a bitmap for n rows, all initialized to null.
func NewAllNullValidity(n int) Validity {
	v := make(Validity, (n+63)/64)
	return v
}

func (v Validity) Get(i int) bool {
	if len(v) == 0 {
		return true
	}
	return v[i/64]&(1<<uint(i%64)) != 0
}

func (v Validity) Set(i int, valid bool) {
	word := i / 64
	bit := uint(i % 64)
	if valid {
		v[word] |= 1 << bit
	} else {
		v[word] &^= 1 << bit
	}
}

// SetAllValid marks every row up to n as non-null.
func (v Validity) SetAllValid(n int) {
	for i := 0; i < n; i++ {
		v.Set(i, true)
	}
}

// NullCount counts unset bits among the first n.
func (v Validity) NullCount(n int) int {
	if len(v) == 0 {
		return 0
	}
	count := 0
	for i := 0; i < n; i++ {
		if !v.Get(i) {
			count++
		}
	}
	return count
}
