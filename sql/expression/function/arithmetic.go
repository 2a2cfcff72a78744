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

package function

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/qxengine/qx/sql"
	"github.com/qxengine/qx/sql/types"
)

func registerArithmetic(r *Registry) {
	r.Register("+", buildAdd)
	r.Register("-", buildSub)
	r.Register("*", buildMul)
	r.Register("/", buildDiv)
	r.Register("%", buildMod)
	r.Register("DIV", buildIntDiv)
	r.Register("||", buildConcat)
	r.Register("|", buildBitwiseOr)
}

func argTypes2(args []sql.Expression) (sql.Type, sql.Type, error) {
	if len(args) != 2 {
		return nil, nil, fmt.Errorf("expected 2 arguments, got %d", len(args))
	}
	return args[0].Type(), args[1].Type(), nil
}

// buildAdd dispatches `+` by static operand type: numeric+numeric widens
// to the wider type; TIMESTAMP+INTERVAL (either order) returns TIMESTAMP;
// INTERVAL+INTERVAL returns INTERVAL.
func buildAdd(args []sql.Expression) (sql.Expression, error) {
	lt, rt, err := argTypes2(args)
	if err != nil {
		return nil, err
	}
	switch {
	case lt.ID() == sql.TypeInterval && rt.ID() == sql.TypeInterval:
		return newCall("+", args, types.Interval, func(a []interface{}) (interface{}, error) {
			l, r := a[0].(types.IntervalValue), a[1].(types.IntervalValue)
			return types.IntervalValue{Months: l.Months + r.Months, Seconds: l.Seconds + r.Seconds}, nil
		}), nil
	case rt.ID() == sql.TypeInterval && (lt.ID() == sql.TypeTimestamp || lt.ID() == sql.TypeDate):
		return newCall("+", args, types.Timestamp, func(a []interface{}) (interface{}, error) {
			return addInterval(a[0], a[1].(types.IntervalValue), 1)
		}), nil
	case lt.ID() == sql.TypeInterval && (rt.ID() == sql.TypeTimestamp || rt.ID() == sql.TypeDate):
		return newCall("+", args, types.Timestamp, func(a []interface{}) (interface{}, error) {
			return addInterval(a[1], a[0].(types.IntervalValue), 1)
		}), nil
	default:
		ln, lok := types.IsNumeric(lt)
		rn, rok := types.IsNumeric(rt)
		if !lok || !rok {
			return nil, sql.ErrIncorrectType.New("+", fmt.Sprintf("%s, %s", lt.Name(), rt.Name()))
		}
		wide := types.Widest(ln, rn)
		return newCall("+", args, wide, func(a []interface{}) (interface{}, error) {
			x, err := cast.ToFloat64E(a[0])
			if err != nil {
				return nil, err
			}
			y, err := cast.ToFloat64E(a[1])
			if err != nil {
				return nil, err
			}
			return coerceNumeric(wide, x+y), nil
		}), nil
	}
}

// buildSub dispatches `-` by static operand type, additionally allowing
// TIMESTAMP-TIMESTAMP, which returns INTERVAL.
func buildSub(args []sql.Expression) (sql.Expression, error) {
	lt, rt, err := argTypes2(args)
	if err != nil {
		return nil, err
	}
	switch {
	case (lt.ID() == sql.TypeTimestamp || lt.ID() == sql.TypeDate) && (rt.ID() == sql.TypeTimestamp || rt.ID() == sql.TypeDate):
		return newCall("-", args, types.Interval, func(a []interface{}) (interface{}, error) {
			l, lok := a[0].(time.Time)
			rr, rok := a[1].(time.Time)
			if !lok || !rok {
				return nil, fmt.Errorf("subtraction operands are not temporal values")
			}
			return types.IntervalValue{Seconds: l.Unix() - rr.Unix()}, nil
		}), nil
	case rt.ID() == sql.TypeInterval && (lt.ID() == sql.TypeTimestamp || lt.ID() == sql.TypeDate):
		return newCall("-", args, types.Timestamp, func(a []interface{}) (interface{}, error) {
			return addInterval(a[0], a[1].(types.IntervalValue), -1)
		}), nil
	case lt.ID() == sql.TypeInterval && rt.ID() == sql.TypeInterval:
		return newCall("-", args, types.Interval, func(a []interface{}) (interface{}, error) {
			l, r := a[0].(types.IntervalValue), a[1].(types.IntervalValue)
			return types.IntervalValue{Months: l.Months - r.Months, Seconds: l.Seconds - r.Seconds}, nil
		}), nil
	default:
		ln, lok := types.IsNumeric(lt)
		rn, rok := types.IsNumeric(rt)
		if !lok || !rok {
			return nil, sql.ErrIncorrectType.New("-", fmt.Sprintf("%s, %s", lt.Name(), rt.Name()))
		}
		wide := types.Widest(ln, rn)
		return newCall("-", args, wide, func(a []interface{}) (interface{}, error) {
			x, err := cast.ToFloat64E(a[0])
			if err != nil {
				return nil, err
			}
			y, err := cast.ToFloat64E(a[1])
			if err != nil {
				return nil, err
			}
			return coerceNumeric(wide, x-y), nil
		}), nil
	}
}

func buildMul(args []sql.Expression) (sql.Expression, error) {
	return buildNumericBinary("*", args, func(x, y float64) float64 { return x * y })
}

// buildDiv implements `/`: always returns DOUBLE, even for two integer
// operands, matching the distinction from integer DIV.
func buildDiv(args []sql.Expression) (sql.Expression, error) {
	lt, rt, err := argTypes2(args)
	if err != nil {
		return nil, err
	}
	if _, ok := types.IsNumeric(lt); !ok {
		return nil, sql.ErrIncorrectType.New("/", lt.Name())
	}
	if _, ok := types.IsNumeric(rt); !ok {
		return nil, sql.ErrIncorrectType.New("/", rt.Name())
	}
	return newCall("/", args, types.Double, func(a []interface{}) (interface{}, error) {
		x, err := cast.ToFloat64E(a[0])
		if err != nil {
			return nil, err
		}
		y, err := cast.ToFloat64E(a[1])
		if err != nil {
			return nil, err
		}
		if y == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		return x / y, nil
	}), nil
}

func buildMod(args []sql.Expression) (sql.Expression, error) {
	lt, rt, err := argTypes2(args)
	if err != nil {
		return nil, err
	}
	if _, ok := types.IsNumeric(lt); !ok {
		return nil, sql.ErrIncorrectType.New("%", lt.Name())
	}
	if _, ok := types.IsNumeric(rt); !ok {
		return nil, sql.ErrIncorrectType.New("%", rt.Name())
	}
	return newCall("%", args, types.Double, func(a []interface{}) (interface{}, error) {
		x, err := cast.ToFloat64E(a[0])
		if err != nil {
			return nil, err
		}
		y, err := cast.ToFloat64E(a[1])
		if err != nil {
			return nil, err
		}
		if y == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		mod := x - y*float64(int64(x/y))
		return mod, nil
	}), nil
}

// buildIntDiv implements DIV: truncating integer division, distinct from
// `/` which always promotes to DOUBLE.
func buildIntDiv(args []sql.Expression) (sql.Expression, error) {
	lt, rt, err := argTypes2(args)
	if err != nil {
		return nil, err
	}
	if _, ok := types.IsNumeric(lt); !ok {
		return nil, sql.ErrIncorrectType.New("DIV", lt.Name())
	}
	if _, ok := types.IsNumeric(rt); !ok {
		return nil, sql.ErrIncorrectType.New("DIV", rt.Name())
	}
	return newCall("DIV", args, types.Int64, func(a []interface{}) (interface{}, error) {
		x, err := cast.ToInt64E(a[0])
		if err != nil {
			return nil, err
		}
		y, err := cast.ToInt64E(a[1])
		if err != nil {
			return nil, err
		}
		if y == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		return x / y, nil
	}), nil
}

// buildConcat implements `||`: both sides implicit-cast to VARCHAR, then
// concatenated.
func buildConcat(args []sql.Expression) (sql.Expression, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("|| expects 2 arguments, got %d", len(args))
	}
	return newCall("||", args, types.Varchar, func(a []interface{}) (interface{}, error) {
		l, err := cast.ToStringE(a[0])
		if err != nil {
			return nil, err
		}
		r, err := cast.ToStringE(a[1])
		if err != nil {
			return nil, err
		}
		return l + r, nil
	}), nil
}

// buildBitwiseOr implements the overloaded `|` operator: CIDR
// containment for two IPv4 literals/strings, numeric OR for two
// integers. Dispatch happens once at bind time from the static operand
// types; a mixed combination is IncorrectType, never a runtime guess.
func buildBitwiseOr(args []sql.Expression) (sql.Expression, error) {
	lt, rt, err := argTypes2(args)
	if err != nil {
		return nil, err
	}
	if lt.ID() == sql.TypeVarchar && rt.ID() == sql.TypeVarchar {
		return newCall("|", args, types.Boolean, func(a []interface{}) (interface{}, error) {
			left, ok := a[0].(string)
			if !ok {
				return nil, fmt.Errorf("CIDR containment requires string operands")
			}
			right, ok := a[1].(string)
			if !ok {
				return nil, fmt.Errorf("CIDR containment requires string operands")
			}
			// Whichever side carries a "/" is the network; the other is the
			// address being tested for containment.
			if strings.Contains(left, "/") {
				return cidrContains(left, right)
			}
			return cidrContains(right, left)
		}), nil
	}
	if _, lok := types.IsNumeric(lt); lok {
		if _, rok := types.IsNumeric(rt); rok {
			return newCall("|", args, types.Int64, func(a []interface{}) (interface{}, error) {
				x, err := cast.ToInt64E(a[0])
				if err != nil {
					return nil, err
				}
				y, err := cast.ToInt64E(a[1])
				if err != nil {
					return nil, err
				}
				return x | y, nil
			}), nil
		}
	}
	return nil, sql.ErrIncorrectType.New("|", fmt.Sprintf("%s, %s", lt.Name(), rt.Name()))
}

func cidrContains(cidr, addr string) (bool, error) {
	if !strings.Contains(cidr, "/") {
		return cidr == addr, nil
	}
	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		return false, err
	}
	ip := net.ParseIP(addr)
	if ip == nil {
		return false, fmt.Errorf("invalid IP address: %s", addr)
	}
	return network.Contains(ip), nil
}

func buildNumericBinary(name string, args []sql.Expression, op func(x, y float64) float64) (sql.Expression, error) {
	lt, rt, err := argTypes2(args)
	if err != nil {
		return nil, err
	}
	ln, lok := types.IsNumeric(lt)
	rn, rok := types.IsNumeric(rt)
	if !lok || !rok {
		return nil, sql.ErrIncorrectType.New(name, fmt.Sprintf("%s, %s", lt.Name(), rt.Name()))
	}
	wide := types.Widest(ln, rn)
	return newCall(name, args, wide, func(a []interface{}) (interface{}, error) {
		x, err := cast.ToFloat64E(a[0])
		if err != nil {
			return nil, err
		}
		y, err := cast.ToFloat64E(a[1])
		if err != nil {
			return nil, err
		}
		return coerceNumeric(wide, op(x, y)), nil
	}), nil
}

func coerceNumeric(t sql.NumericType, v float64) interface{} {
	if t.ID() == sql.TypeInt64 {
		return int64(v)
	}
	return v
}

// addInterval adds (sign * iv) to t, where t is a DATE or TIMESTAMP
// value (both stored as time.Time).
func addInterval(t interface{}, iv types.IntervalValue, sign int) (interface{}, error) {
	tm, ok := t.(time.Time)
	if !ok {
		return nil, fmt.Errorf("interval arithmetic requires a temporal operand")
	}
	months := int(iv.Months) * sign
	seconds := iv.Seconds * int64(sign)
	return tm.AddDate(0, months, 0).Add(time.Duration(seconds) * time.Second), nil
}
