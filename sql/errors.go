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

import (
	errorkind "gopkg.in/src-d/go-errors.v1"
)

// The error taxonomy is closed: every runtime and planning failure surfaces
// as one of these kinds. Callers should match with Kind.Is rather than
// string-matching Error().
var (
	ErrSqlError                     = errorkind.NewKind("sql error: %s")
	ErrMissingSqlStatement          = errorkind.NewKind("missing sql statement")
	ErrUnsupportedSyntax            = errorkind.NewKind("unsupported syntax: %s")
	ErrDatasetNotFound              = errorkind.NewKind("dataset not found: %s")
	ErrEmptyDataset                 = errorkind.NewKind("dataset is empty: %s")
	ErrDatasetReadError             = errorkind.NewKind("error reading dataset %s: %s")
	ErrColumnNotFound               = errorkind.NewKind("column not found: %s")
	ErrAmbiguousIdentifier          = errorkind.NewKind("ambiguous identifier: %s")
	ErrAmbiguousDataset             = errorkind.NewKind("dataset referenced more than once without an alias: %s")
	ErrUnexpectedDatasetReference   = errorkind.NewKind("qualifier %s is not visible in this scope")
	ErrUnnamedColumn                = errorkind.NewKind("expression requires an alias: %s")
	ErrUnnamedSubquery               = errorkind.NewKind("subquery requires an alias")
	ErrIncompatibleTypes            = errorkind.NewKind("cannot compare %s and %s")
	ErrIncorrectType                = errorkind.NewKind("incorrect argument type for %s: %s")
	ErrArrayWithMixedTypes           = errorkind.NewKind("array literal has mixed types")
	ErrInvalidFunctionParameter     = errorkind.NewKind("invalid parameter to %s: %s")
	ErrFunctionNotFound             = errorkind.NewKind("function not found: %s")
	ErrFunctionExecutionError       = errorkind.NewKind("error executing function %s: %s")
	ErrInvalidTemporalRangeFilter   = errorkind.NewKind("invalid temporal range filter: %s")
	ErrColumnReferencedBeforeEval   = errorkind.NewKind("column %s referenced before it is evaluated")
	ErrParameterError               = errorkind.NewKind("parameter error: %s")
	ErrPermissionsError              = errorkind.NewKind("role(s) %v may not read dataset %s")
	ErrVariableNotFound              = errorkind.NewKind("variable not found: %s")
	ErrInconsistentSchema            = errorkind.NewKind("inconsistent schema: %s")
	ErrResourceExceeded              = errorkind.NewKind("resource exceeded: %s")
)
