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
	"github.com/qxengine/qx/sql"
	"github.com/qxengine/qx/sql/expression"
	"github.com/qxengine/qx/sql/types"
)

// coerceForComparison decides, from the static types of l and r alone,
// whether one side needs an implicit Cast before the comparison can be
// built. Numeric operands widen to the wider of the two; DATE compares
// equal to TIMESTAMP by treating the DATE side as midnight on that day;
// string and blob compare bytewise with no coercion. Any other mismatch
// is an error: the caller asked to compare two genuinely incompatible
// types.
func coerceForComparison(l, r sql.Expression) (sql.Expression, sql.Expression, error) {
	lt, rt := l.Type(), r.Type()
	if lt.Equals(rt) {
		return l, r, nil
	}

	if ln, lok := types.IsNumeric(lt); lok {
		if rn, rok := types.IsNumeric(rt); rok {
			wide := types.Widest(ln, rn)
			return coerceTo(l, wide), coerceTo(r, wide), nil
		}
	}

	if lt.ID() == sql.TypeDate && rt.ID() == sql.TypeTimestamp {
		return expression.NewCast(l, types.Timestamp), r, nil
	}
	if lt.ID() == sql.TypeTimestamp && rt.ID() == sql.TypeDate {
		return l, expression.NewCast(r, types.Timestamp), nil
	}

	if isStringLike(lt) && isStringLike(rt) {
		return l, r, nil
	}

	return nil, nil, sql.ErrIncompatibleTypes.New(lt.Name(), rt.Name())
}

func isStringLike(t sql.Type) bool {
	return t.ID() == sql.TypeVarchar || t.ID() == sql.TypeBlob
}

func coerceTo(e sql.Expression, t sql.Type) sql.Expression {
	if e.Type().Equals(t) {
		return e
	}
	return expression.NewCast(e, t)
}
