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

package expression

import (
	"fmt"
	"strings"

	"github.com/qxengine/qx/sql"
	"github.com/qxengine/qx/sql/types"
)

type compareOp int

const (
	opEQ compareOp = iota
	opNE
	opLT
	opLE
	opGT
	opGE
)

// Compare implements the six binary comparison operators. Left and Right
// must already agree on a comparable type; the binder is responsible for
// inserting a Cast where they don't. NULL compares to NULL per the usual
// three-valued rule: any comparison with a NULL operand yields NULL, not
// FALSE.
type Compare struct {
	Left, Right sql.Expression
	op          compareOp
	symbol      string
}

func NewEquals(l, r sql.Expression) *Compare       { return &Compare{l, r, opEQ, "="} }
func NewNotEquals(l, r sql.Expression) *Compare    { return &Compare{l, r, opNE, "!="} }
func NewLessThan(l, r sql.Expression) *Compare     { return &Compare{l, r, opLT, "<"} }
func NewLessOrEqual(l, r sql.Expression) *Compare  { return &Compare{l, r, opLE, "<="} }
func NewGreaterThan(l, r sql.Expression) *Compare  { return &Compare{l, r, opGT, ">"} }
func NewGreaterOrEqual(l, r sql.Expression) *Compare { return &Compare{l, r, opGE, ">="} }

func (c *Compare) Type() sql.Type             { return types.Boolean }
func (c *Compare) Children() []sql.Expression { return []sql.Expression{c.Left, c.Right} }
func (c *Compare) Resolved() bool             { return c.Left.Resolved() && c.Right.Resolved() }
func (c *Compare) String() string             { return fmt.Sprintf("%s %s %s", c.Left, c.symbol, c.Right) }

// Symbol returns the comparison's SQL-surface operator, used by
// optimizer rules that need to tell which comparison direction two
// bounds on the same column share.
func (c *Compare) Symbol() string { return c.symbol }

// Negated returns the logically-negated comparison (e.g. `=` becomes
// `!=`, `<` becomes `>=`), used by the optimizer's inversion rule to
// push a NOT through a comparison instead of leaving a NOT node wrapping
// it.
func (c *Compare) Negated() *Compare {
	inverse := map[compareOp]struct {
		op     compareOp
		symbol string
	}{
		opEQ: {opNE, "!="},
		opNE: {opEQ, "="},
		opLT: {opGE, ">="},
		opLE: {opGT, ">"},
		opGT: {opLE, "<="},
		opGE: {opLT, "<"},
	}[c.op]
	return &Compare{Left: c.Left, Right: c.Right, op: inverse.op, symbol: inverse.symbol}
}

func (c *Compare) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 2 {
		return nil, fmt.Errorf("Compare takes exactly 2 children")
	}
	return &Compare{children[0], children[1], c.op, c.symbol}, nil
}

func (c *Compare) Eval(ctx *sql.Context, b *sql.Batch) (sql.ColumnData, error) {
	lc, err := c.Left.Eval(ctx, b)
	if err != nil {
		return sql.ColumnData{}, err
	}
	rc, err := c.Right.Eval(ctx, b)
	if err != nil {
		return sql.ColumnData{}, err
	}
	cmpType := c.Left.Type()

	lv, rv := AsSlice(lc, b.Rows), AsSlice(rc, b.Rows)
	out := make([]interface{}, b.Rows)
	valid := sql.NewValidity(b.Rows)
	for i := 0; i < b.Rows; i++ {
		if !lc.Valid.Get(i) || !rc.Valid.Get(i) {
			continue
		}
		cmp, err := cmpType.Compare(lv[i], rv[i])
		if err != nil {
			return sql.ColumnData{}, sql.ErrIncompatibleTypes.New(c.Left.Type().Name(), c.Right.Type().Name())
		}
		out[i] = c.satisfies(cmp)
		valid.Set(i, true)
	}
	return sql.ColumnData{Values: out, Valid: valid}, nil
}

func (c *Compare) satisfies(cmp int) bool {
	switch c.op {
	case opEQ:
		return cmp == 0
	case opNE:
		return cmp != 0
	case opLT:
		return cmp < 0
	case opLE:
		return cmp <= 0
	case opGT:
		return cmp > 0
	case opGE:
		return cmp >= 0
	default:
		return false
	}
}

// Between implements `Value BETWEEN Lower AND Upper`, equivalent to
// `Lower <= Value AND Value <= Upper` but evaluated directly rather than
// rewritten, since the binder keeps BETWEEN as its own node for EXPLAIN
// readability.
type Between struct {
	Value, Lower, Upper sql.Expression
}

func NewBetween(value, lower, upper sql.Expression) *Between {
	return &Between{Value: value, Lower: lower, Upper: upper}
}

func (bt *Between) Type() sql.Type { return types.Boolean }
func (bt *Between) Children() []sql.Expression {
	return []sql.Expression{bt.Value, bt.Lower, bt.Upper}
}
func (bt *Between) Resolved() bool {
	return bt.Value.Resolved() && bt.Lower.Resolved() && bt.Upper.Resolved()
}
func (bt *Between) String() string {
	return fmt.Sprintf("%s BETWEEN %s AND %s", bt.Value, bt.Lower, bt.Upper)
}

func (bt *Between) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 3 {
		return nil, fmt.Errorf("Between takes exactly 3 children")
	}
	return &Between{children[0], children[1], children[2]}, nil
}

func (bt *Between) Eval(ctx *sql.Context, b *sql.Batch) (sql.ColumnData, error) {
	return NewAnd(
		NewGreaterOrEqual(bt.Value, bt.Lower),
		NewLessOrEqual(bt.Value, bt.Upper),
	).Eval(ctx, b)
}

// EncodedRange implements a range check in the comparable-integer domain
// (`types.EncodeToComparableDomain`) rather than Value's own type: used
// by the optimizer's inner_join_correlated_filter rule, which only has a
// column's min/max already encoded by a connector's reported statistics
// and cannot, for a string/blob column, decode that bit-packed prefix
// back into a real bound of Value's type.
type EncodedRange struct {
	Value    sql.Expression
	Min, Max int64
}

func NewEncodedRange(value sql.Expression, min, max int64) *EncodedRange {
	return &EncodedRange{Value: value, Min: min, Max: max}
}

func (r *EncodedRange) Type() sql.Type             { return types.Boolean }
func (r *EncodedRange) Children() []sql.Expression { return []sql.Expression{r.Value} }
func (r *EncodedRange) Resolved() bool             { return r.Value.Resolved() }
func (r *EncodedRange) String() string {
	return fmt.Sprintf("ENCODE(%s) BETWEEN %d AND %d", r.Value, r.Min, r.Max)
}

func (r *EncodedRange) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, fmt.Errorf("EncodedRange takes exactly 1 child")
	}
	return &EncodedRange{Value: children[0], Min: r.Min, Max: r.Max}, nil
}

func (r *EncodedRange) Eval(ctx *sql.Context, b *sql.Batch) (sql.ColumnData, error) {
	col, err := r.Value.Eval(ctx, b)
	if err != nil {
		return sql.ColumnData{}, err
	}
	vals := AsSlice(col, b.Rows)
	out := make([]interface{}, b.Rows)
	valid := sql.NewValidity(b.Rows)
	for i := 0; i < b.Rows; i++ {
		if !col.Valid.Get(i) {
			continue
		}
		encoded, ok := types.EncodeToComparableDomain(vals[i])
		if !ok {
			continue
		}
		out[i] = encoded >= r.Min && encoded <= r.Max
		valid.Set(i, true)
	}
	return sql.ColumnData{Values: out, Valid: valid}, nil
}

// InList implements `Value IN (lit1, lit2, ...)`. Negate flips it to
// NOT IN; kept as a flag rather than wrapping in a Not node so the
// physical planner can push InList straight into a connector's
// SimplePredicate without a pattern-match through Not.
type InList struct {
	Value  sql.Expression
	Items  []sql.Expression
	Negate bool
}

func NewInList(value sql.Expression, items []sql.Expression, negate bool) *InList {
	return &InList{Value: value, Items: items, Negate: negate}
}

func (il *InList) Type() sql.Type { return types.Boolean }
func (il *InList) Children() []sql.Expression {
	return append([]sql.Expression{il.Value}, il.Items...)
}
func (il *InList) Resolved() bool { return allResolved(il.Children()) }
func (il *InList) String() string {
	op := "IN"
	if il.Negate {
		op = "NOT IN"
	}
	return fmt.Sprintf("%s %s (%s)", il.Value, op, joinExprs(il.Items, ", "))
}

func (il *InList) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) < 1 {
		return nil, fmt.Errorf("InList takes at least 1 child")
	}
	return &InList{Value: children[0], Items: children[1:], Negate: il.Negate}, nil
}

func (il *InList) Eval(ctx *sql.Context, b *sql.Batch) (sql.ColumnData, error) {
	valCol, err := il.Value.Eval(ctx, b)
	if err != nil {
		return sql.ColumnData{}, err
	}
	valType := il.Value.Type()
	vals := AsSlice(valCol, b.Rows)

	itemCols := make([][]interface{}, len(il.Items))
	itemValid := make([]sql.Validity, len(il.Items))
	for i, item := range il.Items {
		ic, err := item.Eval(ctx, b)
		if err != nil {
			return sql.ColumnData{}, err
		}
		itemCols[i] = AsSlice(ic, b.Rows)
		itemValid[i] = ic.Valid
	}

	out := make([]interface{}, b.Rows)
	valid := sql.NewValidity(b.Rows)
	for r := 0; r < b.Rows; r++ {
		if !valCol.Valid.Get(r) {
			continue
		}
		found := false
		sawNull := false
		for i := range il.Items {
			if !itemValid[i].Get(r) {
				sawNull = true
				continue
			}
			cmp, err := valType.Compare(vals[r], itemCols[i][r])
			if err == nil && cmp == 0 {
				found = true
				break
			}
		}
		if found {
			out[r] = !il.Negate
			valid.Set(r, true)
		} else if sawNull {
			// unresolved per three-valued logic: membership against a NULL
			// candidate that never matched is unknown, not FALSE.
			continue
		} else {
			out[r] = il.Negate
			valid.Set(r, true)
		}
	}
	return sql.ColumnData{Values: out, Valid: valid}, nil
}

// Any implements `Value = ANY(Array)`: membership of a scalar in a
// per-row array-typed column, as distinct from InList's membership in a
// fixed list of expressions.
type Any struct {
	Value sql.Expression
	Array sql.Expression
}

func NewAny(value, array sql.Expression) *Any {
	return &Any{Value: value, Array: array}
}

func (a *Any) Type() sql.Type { return types.Boolean }
func (a *Any) Children() []sql.Expression {
	return []sql.Expression{a.Value, a.Array}
}
func (a *Any) Resolved() bool { return a.Value.Resolved() && a.Array.Resolved() }
func (a *Any) String() string { return fmt.Sprintf("%s = ANY(%s)", a.Value, a.Array) }

func (a *Any) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 2 {
		return nil, fmt.Errorf("Any takes exactly 2 children")
	}
	return &Any{Value: children[0], Array: children[1]}, nil
}

func (a *Any) Eval(ctx *sql.Context, b *sql.Batch) (sql.ColumnData, error) {
	valCol, err := a.Value.Eval(ctx, b)
	if err != nil {
		return sql.ColumnData{}, err
	}
	arrCol, err := a.Array.Eval(ctx, b)
	if err != nil {
		return sql.ColumnData{}, err
	}
	valType := a.Value.Type()
	vals := AsSlice(valCol, b.Rows)
	arrs := AsSlice(arrCol, b.Rows)

	out := make([]interface{}, b.Rows)
	valid := sql.NewValidity(b.Rows)
	for r := 0; r < b.Rows; r++ {
		if !valCol.Valid.Get(r) || !arrCol.Valid.Get(r) {
			continue
		}
		elems, _ := arrs[r].([]interface{})
		found := false
		for _, elem := range elems {
			if cmp, err := valType.Compare(vals[r], elem); err == nil && cmp == 0 {
				found = true
				break
			}
		}
		out[r] = found
		valid.Set(r, true)
	}
	return sql.ColumnData{Values: out, Valid: valid}, nil
}

// IsNull implements `Value IS NULL` / `Value IS NOT NULL`, the only
// expression allowed to observe nullness directly rather than
// propagating it.
type IsNull struct {
	Value  sql.Expression
	Negate bool
}

func NewIsNull(value sql.Expression, negate bool) *IsNull {
	return &IsNull{Value: value, Negate: negate}
}

func (n *IsNull) Type() sql.Type             { return types.Boolean }
func (n *IsNull) Children() []sql.Expression { return []sql.Expression{n.Value} }
func (n *IsNull) Resolved() bool             { return n.Value.Resolved() }
func (n *IsNull) String() string {
	if n.Negate {
		return fmt.Sprintf("%s IS NOT NULL", n.Value)
	}
	return fmt.Sprintf("%s IS NULL", n.Value)
}

func (n *IsNull) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, fmt.Errorf("IsNull takes exactly 1 child")
	}
	return &IsNull{Value: children[0], Negate: n.Negate}, nil
}

func (n *IsNull) Eval(ctx *sql.Context, b *sql.Batch) (sql.ColumnData, error) {
	col, err := n.Value.Eval(ctx, b)
	if err != nil {
		return sql.ColumnData{}, err
	}
	out := make([]interface{}, b.Rows)
	valid := sql.NewValidity(b.Rows)
	valid.SetAllValid(b.Rows)
	for i := 0; i < b.Rows; i++ {
		isNull := !col.Valid.Get(i)
		if n.Negate {
			out[i] = !isNull
		} else {
			out[i] = isNull
		}
	}
	return sql.ColumnData{Values: out, Valid: valid}, nil
}

// Like implements SQL LIKE with `%`/`_` wildcards translated to a regexp
// once at construction time rather than per row.
type Like struct {
	Value   sql.Expression
	Pattern string
	re      *likeMatcher
}

func NewLike(value sql.Expression, pattern string) *Like {
	return &Like{Value: value, Pattern: pattern, re: compileLike(pattern)}
}

func (l *Like) Type() sql.Type             { return types.Boolean }
func (l *Like) Children() []sql.Expression { return []sql.Expression{l.Value} }
func (l *Like) Resolved() bool             { return l.Value.Resolved() }
func (l *Like) String() string             { return fmt.Sprintf("%s LIKE %q", l.Value, l.Pattern) }

func (l *Like) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, fmt.Errorf("Like takes exactly 1 child")
	}
	return &Like{Value: children[0], Pattern: l.Pattern, re: l.re}, nil
}

func (l *Like) Eval(ctx *sql.Context, b *sql.Batch) (sql.ColumnData, error) {
	col, err := l.Value.Eval(ctx, b)
	if err != nil {
		return sql.ColumnData{}, err
	}
	vals := AsSlice(col, b.Rows)
	out := make([]interface{}, b.Rows)
	for i := 0; i < b.Rows; i++ {
		if !col.Valid.Get(i) {
			continue
		}
		s, _ := vals[i].(string)
		out[i] = l.re.match(s)
	}
	return sql.ColumnData{Values: out, Valid: col.Valid}, nil
}

// likeMatcher is a tiny hand-rolled matcher for the two SQL wildcards;
// avoids pulling in a regexp compile per query for what is almost always
// a prefix or suffix match in practice.
type likeMatcher struct {
	segments []string
	anchored bool // pattern has no leading '%'
	trailing bool // pattern has no trailing '%'
}

func compileLike(pattern string) *likeMatcher {
	anchored := !strings.HasPrefix(pattern, "%")
	trailing := !strings.HasSuffix(pattern, "%")
	trimmed := strings.Trim(pattern, "%")
	return &likeMatcher{
		segments: strings.Split(trimmed, "%"),
		anchored: anchored,
		trailing: trailing,
	}
}

func (m *likeMatcher) match(s string) bool {
	pos := 0
	for i, seg := range m.segments {
		if seg == "" {
			continue
		}
		idx := matchSegment(s[pos:], seg)
		if idx < 0 {
			return false
		}
		if i == 0 && m.anchored && idx != 0 {
			return false
		}
		pos += idx + len(seg)
	}
	if m.trailing && len(m.segments) > 0 {
		last := m.segments[len(m.segments)-1]
		if last != "" && !strings.HasSuffix(s, last) {
			return false
		}
	}
	return true
}

// matchSegment finds seg in s honoring '_' as a single-character
// wildcard; returns the byte index of the first match or -1.
func matchSegment(s, seg string) int {
	for start := 0; start+len(seg) <= len(s); start++ {
		if segMatchesAt(s, seg, start) {
			return start
		}
	}
	return -1
}

func segMatchesAt(s, seg string, start int) bool {
	for i := 0; i < len(seg); i++ {
		if seg[i] != '_' && seg[i] != s[start+i] {
			return false
		}
	}
	return true
}
