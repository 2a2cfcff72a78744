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

package qx

import (
	"sync"
	"time"
)

// Process describes one in-flight or completed query, as reported by
// ProcessList.Processes. This engine has no client/connection concept
// (it's embedded, not served over a wire protocol), so unlike a
// full server's process list this tracks queries, not sessions.
type Process struct {
	ID        uint64
	Query     string
	StartedAt time.Time
}

// ProcessList tracks queries currently executing against an Engine, for
// diagnostics (a "SHOW PROCESSLIST"-style admin surface) and for
// QueryTimeout enforcement to find what to cancel. Safe for concurrent
// use.
type ProcessList struct {
	mu      sync.Mutex
	nextID  uint64
	procs   map[uint64]*Process
	cancels map[uid]func()
}

type uid = uint64

// NewProcessList returns an empty ProcessList.
func NewProcessList() *ProcessList {
	return &ProcessList{procs: make(map[uint64]*Process), cancels: make(map[uid]func())}
}

// BeginQuery registers a new in-flight query and returns its id.
func (p *ProcessList) BeginQuery(query string, cancel func()) uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextID++
	id := p.nextID
	p.procs[id] = &Process{ID: id, Query: query, StartedAt: time.Now()}
	p.cancels[id] = cancel
	return id
}

// EndQuery removes id from the active set.
func (p *ProcessList) EndQuery(id uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.procs, id)
	delete(p.cancels, id)
}

// Kill cancels the query's context if it's still running.
func (p *ProcessList) Kill(id uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	cancel, ok := p.cancels[id]
	if ok {
		cancel()
	}
	return ok
}

// Processes returns a snapshot of every currently in-flight query.
func (p *ProcessList) Processes() []*Process {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*Process, 0, len(p.procs))
	for _, proc := range p.procs {
		cp := *proc
		out = append(out, &cp)
	}
	return out
}
