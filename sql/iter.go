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

import "io"

// BatchIter is the executor's pull-based iterator: the root operator's
// Next is called in a loop, each operator recursively pulling from its
// children. Next returns io.EOF once exhausted. Implementations must
// check ctx.Err() at the top of Next so cancellation and timeouts
// propagate promptly.
type BatchIter interface {
	Next(ctx *Context) (*Batch, error)
	Close(ctx *Context) error
}

// ErrIterDone is an alias of io.EOF kept local so callers don't need to
// import io just to recognize "no more batches".
var ErrIterDone = io.EOF
