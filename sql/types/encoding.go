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

package types

import (
	"encoding/binary"
	"math"
	"time"
)

// domainPrefixLen is how many leading bytes of a string/blob value are
// bit-packed into the comparable-integer domain: strings are truncated
// to their first N bytes before bit-packing. 8 bytes fit exactly into an
// int64.
const domainPrefixLen = 8

// EncodeToComparableDomain maps any supported column value to a signed
// int64 that preserves ordering, so RelationStatistics.min/max can be
// compared uniformly regardless of the column's logical type.
// expression.EncodedRange uses it to check values against encoded
// min/max bounds; no connector calls it, since none of them reports
// column min/max statistics.
func EncodeToComparableDomain(v interface{}) (int64, bool) {
	switch x := v.(type) {
	case nil:
		return 0, false
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case int64:
		return x, true
	case int:
		return int64(x), true
	case float64:
		// Monotonic float->int64 bit-cast that preserves ordering for
		// IEEE-754 doubles: non-negative values keep their bit pattern;
		// negative values have every bit but the sign inverted, so a
		// larger magnitude maps to a smaller int64.
		bits := int64(math.Float64bits(x))
		if bits < 0 {
			bits ^= math.MaxInt64
		}
		return bits, true
	case string:
		return encodeBytesPrefix([]byte(x)), true
	case []byte:
		return encodeBytesPrefix(x), true
	case time.Time:
		return x.Unix(), true
	default:
		return 0, false
	}
}

func encodeBytesPrefix(b []byte) int64 {
	buf := make([]byte, domainPrefixLen)
	copy(buf, b)
	return int64(binary.BigEndian.Uint64(buf) ^ (1 << 63))
}
