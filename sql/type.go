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

// TypeID enumerates the closed set of logical types the engine supports.
type TypeID uint8

const (
	TypeBoolean TypeID = iota
	TypeInt64
	TypeDouble
	TypeDecimal
	TypeVarchar
	TypeBlob
	TypeDate
	TypeTimestamp
	TypeInterval
	TypeArray
	TypeStruct
	TypeNull
)

// Type is implemented by every member of the closed logical type set.
// Concrete implementations live in sql/types; this package only depends
// on the interface so that plan/expression code never imports a specific
// encoding.
type Type interface {
	// ID identifies which of the closed set of logical types this is.
	ID() TypeID
	// Name is the SQL-surface name, e.g. "DECIMAL(10,2)", "ARRAY<INT64>".
	Name() string
	// Equals reports whether two types are identical (same ID and, for
	// parameterized types, same parameters).
	Equals(other Type) bool
	// Compare orders two values of this type, returning -1/0/1. Either
	// value may be nil; nil sorts before any non-nil value. ORDER BY does
	// not rely on this (it places NULLs itself, last unless NULLS FIRST),
	// and MIN/MAX skip NULLs.
	Compare(a, b interface{}) (int, error)
	// Convert coerces an arbitrary Go value into this type's canonical Go
	// representation, or returns an error if the value cannot be
	// represented.
	Convert(v interface{}) (interface{}, error)
	// Zero returns the zero value of this type. The aggregator
	// accumulators do not call it; each starts from its own empty state.
	Zero() interface{}
}

// NumericType is implemented by types that participate in SQL numeric
// widening: arithmetic on mixed numeric operands promotes to the wider
// type rather than erroring.
type NumericType interface {
	Type
	// Width ranks this type for widening purposes; comparing two
	// NumericTypes, the wider (larger Width) wins.
	Width() int
}
