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
	"math"
	"math/rand"
	"sort"

	"github.com/spf13/cast"

	"github.com/qxengine/qx/sql"
	"github.com/qxengine/qx/sql/physical"
)

// aggAccumulator is one group's running state for one aggregate term.
// update is called once per input row (with a nil value for a NULL
// argument, or for COUNT(*) which passes a non-nil sentinel); finalize
// is called exactly once, after the group has seen every row.
type aggAccumulator interface {
	update(v interface{}) error
	finalize() (interface{}, error)
}

func newAccumulator(agg physical.Aggregator) aggAccumulator {
	switch agg.Func {
	case physical.AggCount:
		return &countAcc{}
	case physical.AggCountStar:
		return &countAcc{star: true}
	case physical.AggSum:
		return &sumAcc{}
	case physical.AggMin:
		return &minMaxAcc{typ: agg.Type}
	case physical.AggMax:
		return &minMaxAcc{typ: agg.Type, isMax: true}
	case physical.AggAvg:
		return &avgAcc{}
	case physical.AggArrayAgg:
		return &arrayAggAcc{distinct: agg.Distinct, limit: agg.Limit, valType: agg.Type}
	case physical.AggCountDistinct:
		return &countDistinctAcc{valType: agg.Type, seen: map[uint64][]interface{}{}}
	case physical.AggStdDev:
		return &varianceAcc{isStdDev: true}
	case physical.AggVariance:
		return &varianceAcc{}
	case physical.AggApproxMedian:
		return newApproxMedianAcc()
	default: // AggOne / ANY_VALUE
		return &oneAcc{}
	}
}

type countAcc struct {
	n    int64
	star bool
}

func (c *countAcc) update(v interface{}) error {
	if c.star || v != nil {
		c.n++
	}
	return nil
}

func (c *countAcc) finalize() (interface{}, error) { return c.n, nil }

// sumAcc widens to int64 if every value seen is an integer, else
// accumulates in float64; either path surfaces overflow as
// ErrResourceExceeded rather than silently wrapping.
type sumAcc struct {
	started bool
	isInt   bool
	i       int64
	f       float64
}

func (s *sumAcc) update(v interface{}) error {
	if v == nil {
		return nil
	}
	if !s.started {
		switch v.(type) {
		case int64, int, int32:
			s.isInt = true
		}
		s.started = true
	}
	if s.isInt {
		switch v.(type) {
		case int64, int, int32:
		default:
			s.isInt = false
			s.f = float64(s.i)
		}
	}
	if s.isInt {
		n, err := cast.ToInt64E(v)
		if err != nil {
			return err
		}
		sum := s.i + n
		if (n > 0 && sum < s.i) || (n < 0 && sum > s.i) {
			return sql.ErrResourceExceeded.New("SUM overflowed int64")
		}
		s.i = sum
		return nil
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return err
	}
	s.f += f
	if math.IsInf(s.f, 0) {
		return sql.ErrResourceExceeded.New("SUM overflowed float64")
	}
	return nil
}

func (s *sumAcc) finalize() (interface{}, error) {
	if !s.started {
		return nil, nil
	}
	if s.isInt {
		return s.i, nil
	}
	return s.f, nil
}

type avgAcc struct {
	sum   sumAcc
	count int64
}

func (a *avgAcc) update(v interface{}) error {
	if v == nil {
		return nil
	}
	a.count++
	return a.sum.update(v)
}

func (a *avgAcc) finalize() (interface{}, error) {
	if a.count == 0 {
		return nil, nil
	}
	sv, err := a.sum.finalize()
	if err != nil {
		return nil, err
	}
	f, err := cast.ToFloat64E(sv)
	if err != nil {
		return nil, err
	}
	return f / float64(a.count), nil
}

type minMaxAcc struct {
	typ   sql.Type
	val   interface{}
	has   bool
	isMax bool
}

func (m *minMaxAcc) update(v interface{}) error {
	if v == nil {
		return nil
	}
	if !m.has {
		m.val, m.has = v, true
		return nil
	}
	cmp, err := m.typ.Compare(v, m.val)
	if err != nil {
		return err
	}
	if (m.isMax && cmp > 0) || (!m.isMax && cmp < 0) {
		m.val = v
	}
	return nil
}

func (m *minMaxAcc) finalize() (interface{}, error) { return m.val, nil }

type oneAcc struct {
	val interface{}
	has bool
}

func (o *oneAcc) update(v interface{}) error {
	if !o.has && v != nil {
		o.val, o.has = v, true
	}
	return nil
}

func (o *oneAcc) finalize() (interface{}, error) { return o.val, nil }

// arrayAggAcc preserves input order; DISTINCT dedups by fingerprint with
// a type-aware equality check to rule out collisions, and Limit caps the
// accumulated length (0 = unbounded).
type arrayAggAcc struct {
	values   []interface{}
	distinct bool
	limit    int
	valType  sql.Type
	seen     map[uint64][]interface{}
}

func (a *arrayAggAcc) update(v interface{}) error {
	if v == nil {
		return nil
	}
	if a.limit > 0 && len(a.values) >= a.limit {
		return nil
	}
	if a.distinct {
		h, err := sql.Fingerprint(sql.Row{v})
		if err != nil {
			return err
		}
		if a.seen == nil {
			a.seen = map[uint64][]interface{}{}
		}
		for _, existing := range a.seen[h] {
			if cmp, err := a.valType.Compare(existing, v); err == nil && cmp == 0 {
				return nil
			}
		}
		a.seen[h] = append(a.seen[h], v)
	}
	a.values = append(a.values, v)
	return nil
}

func (a *arrayAggAcc) finalize() (interface{}, error) {
	return append([]interface{}{}, a.values...), nil
}

// countDistinctAcc keys observed values by fingerprint, verifying actual
// equality per bucket the same way hashJoinIter resolves collisions.
type countDistinctAcc struct {
	valType sql.Type
	seen    map[uint64][]interface{}
	count   int64
}

func (c *countDistinctAcc) update(v interface{}) error {
	if v == nil {
		return nil
	}
	h, err := sql.Fingerprint(sql.Row{v})
	if err != nil {
		return err
	}
	for _, existing := range c.seen[h] {
		if cmp, err := c.valType.Compare(existing, v); err == nil && cmp == 0 {
			return nil
		}
	}
	c.seen[h] = append(c.seen[h], v)
	c.count++
	return nil
}

func (c *countDistinctAcc) finalize() (interface{}, error) { return c.count, nil }

// varianceAcc computes the population variance via Welford's online
// algorithm, one pass, numerically stable for long-running aggregates.
type varianceAcc struct {
	n        int64
	mean, m2 float64
	isStdDev bool
}

func (v *varianceAcc) update(val interface{}) error {
	if val == nil {
		return nil
	}
	f, err := cast.ToFloat64E(val)
	if err != nil {
		return err
	}
	v.n++
	delta := f - v.mean
	v.mean += delta / float64(v.n)
	v.m2 += delta * (f - v.mean)
	return nil
}

func (v *varianceAcc) finalize() (interface{}, error) {
	if v.n == 0 {
		return nil, nil
	}
	variance := v.m2 / float64(v.n)
	if v.isStdDev {
		return math.Sqrt(variance), nil
	}
	return variance, nil
}

// medianReservoirCap bounds APPROXIMATE_MEDIAN's memory: beyond this
// many values, reservoir sampling keeps a uniform random subset instead
// of the full input, trading exactness for a fixed-size accumulator.
const medianReservoirCap = 8192

type approxMedianAcc struct {
	reservoir []float64
	seen      int64
	rnd       *rand.Rand
}

func newApproxMedianAcc() *approxMedianAcc {
	return &approxMedianAcc{rnd: rand.New(rand.NewSource(1))}
}

func (a *approxMedianAcc) update(v interface{}) error {
	if v == nil {
		return nil
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return err
	}
	a.seen++
	if len(a.reservoir) < medianReservoirCap {
		a.reservoir = append(a.reservoir, f)
		return nil
	}
	if j := a.rnd.Int63n(a.seen); j < medianReservoirCap {
		a.reservoir[j] = f
	}
	return nil
}

func (a *approxMedianAcc) finalize() (interface{}, error) {
	if len(a.reservoir) == 0 {
		return nil, nil
	}
	sorted := append([]float64{}, a.reservoir...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid], nil
	}
	return (sorted[mid-1] + sorted[mid]) / 2, nil
}
