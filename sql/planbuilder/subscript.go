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

package planbuilder

import (
	"fmt"

	"github.com/qxengine/qx/sql"
	"github.com/qxengine/qx/sql/expression"
	"github.com/qxengine/qx/sql/types"
)

// SubscriptOp is the parsed form of one of the three subscript spellings
// a binder must recognize: x['k'], x->'k', x->>'k'.
type SubscriptOp int

const (
	// OpIndex is x[n] on an ARRAY.
	OpIndex SubscriptOp = iota
	// OpMember is x['k'] / x->'k' on a STRUCT, returning the member's
	// native type.
	OpMember
	// OpMemberAsString is x->>'k', returning the member stringified.
	OpMemberAsString
)

// BindSubscript builds the bound Subscript expression for one of the
// three spellings. idx is used only for OpIndex; field only for the two
// member forms.
func BindSubscript(inner sql.Expression, op SubscriptOp, idx int, field string) (sql.Expression, error) {
	switch op {
	case OpIndex:
		elem, ok := types.ArrayElem(inner.Type())
		if !ok {
			return nil, sql.ErrIncorrectType.New("[]", inner.Type().Name())
		}
		return expression.NewSubscriptIndex(inner, idx, elem), nil
	case OpMember:
		ft, ok := types.StructField(inner.Type(), field)
		if !ok {
			return nil, sql.ErrColumnNotFound.New(field)
		}
		return expression.NewSubscriptMember(inner, field, ft), nil
	case OpMemberAsString:
		if _, ok := types.StructField(inner.Type(), field); !ok {
			return nil, sql.ErrColumnNotFound.New(field)
		}
		return expression.NewSubscriptMemberAsString(inner, field, types.Varchar), nil
	default:
		return nil, sql.ErrUnsupportedSyntax.New(fmt.Sprintf("subscript op %d", op))
	}
}

func boundGetField(index int, col *sql.Column) sql.Expression {
	return expression.NewGetField(index, col.Type, col.Name, col.Nullable)
}
