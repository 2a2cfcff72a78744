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
	"time"

	"github.com/qxengine/qx/permissions"
	"github.com/qxengine/qx/sql/analyzer"
)

// Config holds the options New accepts to build an Engine. The zero
// value is usable: no query timeout, no permission restrictions, the
// default optimizer rule set.
type Config struct {
	// QueryTimeout bounds how long a single query may run; 0 means no
	// timeout.
	QueryTimeout time.Duration
	// Permissions gates which roles may read which dataset names. A nil
	// Permissions means every role may read every dataset.
	Permissions *permissions.Gate
	// Analyzer overrides the optimizer rule set; nil uses
	// analyzer.NewDefault().
	Analyzer *analyzer.Analyzer
	// Roles are the default roles attached to a query when Query is
	// called without an explicit role list.
	Roles []string
}

func (c Config) withDefaults() Config {
	if c.Analyzer == nil {
		c.Analyzer = analyzer.NewDefault()
	}
	if len(c.Roles) == 0 {
		c.Roles = []string{"opteryx"}
	}
	return c
}
