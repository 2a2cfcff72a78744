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

import "sync"

// GlobalsSet holds the configuration variables a cursor's `SET <name> =
// <value>` statements mutate, modeled on a conventional system-variable
// registry but trimmed to this engine's own variables.
type GlobalsSet struct {
	mu   sync.RWMutex
	vars map[string]interface{}
}

// NewGlobalsSet returns the default configuration: optimizer enabled,
// 64k-row morsels, unbounded-ish pipeline-breaker cap.
func NewGlobalsSet() *GlobalsSet {
	return &GlobalsSet{
		vars: map[string]interface{}{
			"disable_optimizer":    false,
			"enable_optimizer":     true,
			"MORSEL_ROWS":          int64(DefaultMorselRows),
			"MAX_MATERIALIZE_ROWS": int64(100_000_000),
		},
	}
}

func (g *GlobalsSet) Get(name string) (interface{}, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	v, ok := g.vars[name]
	return v, ok
}

func (g *GlobalsSet) Set(name string, value interface{}) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.vars[name]; !ok {
		return ErrVariableNotFound.New(name)
	}
	g.vars[name] = value
	// disable_optimizer and enable_optimizer are two spellings of the
	// same knob; keep them in sync so either one works.
	switch name {
	case "disable_optimizer":
		g.vars["enable_optimizer"] = !value.(bool)
	case "enable_optimizer":
		g.vars["disable_optimizer"] = !value.(bool)
	}
	return nil
}

func (g *GlobalsSet) DisableOptimizer() bool {
	v, _ := g.Get("disable_optimizer")
	b, _ := v.(bool)
	return b
}

func (g *GlobalsSet) MorselRows() int {
	v, _ := g.Get("MORSEL_ROWS")
	n, _ := v.(int64)
	if n <= 0 {
		return DefaultMorselRows
	}
	return int(n)
}

func (g *GlobalsSet) MaxMaterializeRows() int64 {
	v, _ := g.Get("MAX_MATERIALIZE_ROWS")
	n, _ := v.(int64)
	return n
}

// Clone returns an independent copy, used when a new Cursor inherits the
// engine's defaults but may SET its own: a SET statement applies only to
// subsequent statements in the same cursor.
func (g *GlobalsSet) Clone() *GlobalsSet {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := &GlobalsSet{vars: make(map[string]interface{}, len(g.vars))}
	for k, v := range g.vars {
		out.vars[k] = v
	}
	return out
}
