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
	"strings"

	"github.com/spf13/cast"

	"github.com/qxengine/qx/sql"
	"github.com/qxengine/qx/sql/types"
)

func registerStringAndNull(r *Registry) {
	r.Register("STARTS_WITH", build2ArgBool("STARTS_WITH", strings.HasPrefix))
	r.Register("ENDS_WITH", build2ArgBool("ENDS_WITH", strings.HasSuffix))
	r.Register("CONTAINS", build2ArgBool("CONTAINS", strings.Contains))
	r.Register("IFNULL", buildIfNull)
	r.Register("ARRAY_CONTAINS", buildArrayContains(false))
	r.Register("ARRAY_CONTAINS_ANY", buildArrayContainsMulti(false))
	r.Register("ARRAY_CONTAINS_ALL", buildArrayContainsMulti(true))
}

func build2ArgBool(name string, op func(s, sub string) bool) Builder {
	return func(args []sql.Expression) (sql.Expression, error) {
		if len(args) != 2 {
			return nil, sql.ErrInvalidFunctionParameter.New(name, "expects 2 arguments")
		}
		fn := func(a []interface{}) (interface{}, error) {
			s, err := cast.ToStringE(a[0])
			if err != nil {
				return nil, err
			}
			sub, err := cast.ToStringE(a[1])
			if err != nil {
				return nil, err
			}
			return op(s, sub), nil
		}
		return newCall(name, args, types.Boolean, fn), nil
	}
}

// buildIfNull grounds the analyzer's predicate_rewriter_case_to_ifnull
// rule, which rewrites `CASE WHEN x IS NULL THEN c ELSE x END` into a
// call to this function.
func buildIfNull(args []sql.Expression) (sql.Expression, error) {
	if len(args) != 2 {
		return nil, sql.ErrInvalidFunctionParameter.New("IFNULL", "expects 2 arguments")
	}
	retType := args[0].Type()
	fn := func(a []interface{}) (interface{}, error) {
		if a[0] == nil {
			return a[1], nil
		}
		return a[0], nil
	}
	return newCall("IFNULL", args, retType, fn), nil
}

func buildArrayContains(_ bool) Builder {
	return func(args []sql.Expression) (sql.Expression, error) {
		if len(args) != 2 {
			return nil, sql.ErrInvalidFunctionParameter.New("ARRAY_CONTAINS", "expects 2 arguments")
		}
		fn := func(a []interface{}) (interface{}, error) {
			arr, ok := a[0].([]interface{})
			if !ok {
				return nil, nil
			}
			for _, v := range arr {
				if v == a[1] {
					return true, nil
				}
			}
			return false, nil
		}
		return newCall("ARRAY_CONTAINS", args, types.Boolean, fn), nil
	}
}

// buildArrayContainsMulti grounds the `v = ANY(col)`/OR-chain rewrite:
// all asks whether every needle is present (ANYEQ->CONTAINS_ALL), versus
// any needle present (CONTAINS_ANY).
func buildArrayContainsMulti(all bool) Builder {
	name := "ARRAY_CONTAINS_ANY"
	if all {
		name = "ARRAY_CONTAINS_ALL"
	}
	return func(args []sql.Expression) (sql.Expression, error) {
		if len(args) != 2 {
			return nil, sql.ErrInvalidFunctionParameter.New(name, "expects 2 arguments")
		}
		fn := func(a []interface{}) (interface{}, error) {
			arr, ok := a[0].([]interface{})
			if !ok {
				return nil, nil
			}
			needles, ok := a[1].([]interface{})
			if !ok {
				return nil, nil
			}
			contains := func(v interface{}) bool {
				for _, e := range arr {
					if e == v {
						return true
					}
				}
				return false
			}
			for _, needle := range needles {
				found := contains(needle)
				if all && !found {
					return false, nil
				}
				if !all && found {
					return true, nil
				}
			}
			return all, nil
		}
		return newCall(name, args, types.Boolean, fn), nil
	}
}
