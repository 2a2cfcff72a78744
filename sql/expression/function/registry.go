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

// Package function is the scalar function registry: names are resolved
// to a builder at bind time, and every builder decides its own return
// type (and, for the overloaded operators, its own implementation) from
// the static types of its arguments — there is no per-row type dispatch.
package function

import (
	"strings"
	"sync"

	"github.com/qxengine/qx/sql"
)

// Builder constructs a bound call expression from already-bound argument
// expressions, or returns an error if the arguments don't typecheck for
// this function.
type Builder func(args []sql.Expression) (sql.Expression, error)

// Registry resolves function names to Builders. It is safe for
// concurrent registration and lookup: built once at engine startup and
// read on every query bind thereafter.
type Registry struct {
	mu       sync.RWMutex
	builders map[string]Builder
}

// NewRegistry returns a Registry preloaded with the built-in function
// set (arithmetic, string, codec functions).
func NewRegistry() *Registry {
	r := &Registry{builders: make(map[string]Builder)}
	registerArithmetic(r)
	registerCodec(r)
	registerStringAndNull(r)
	return r
}

// Register adds or replaces the builder for name (case-insensitive).
func (r *Registry) Register(name string, b Builder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builders[strings.ToUpper(name)] = b
}

// Resolve looks up name and, if found, invokes its builder with args.
func (r *Registry) Resolve(name string, args []sql.Expression) (sql.Expression, error) {
	r.mu.RLock()
	b, ok := r.builders[strings.ToUpper(name)]
	r.mu.RUnlock()
	if !ok {
		return nil, sql.ErrFunctionNotFound.New(name)
	}
	return b(args)
}

// Has reports whether name is registered, used by the binder to decide
// whether an unqualified identifier followed by `(` is a function call.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.builders[strings.ToUpper(name)]
	return ok
}
