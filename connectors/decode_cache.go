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

package connectors

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/qxengine/qx/sql"
)

type decodedBlob struct {
	schema sql.Schema
	rows   []sql.Row
}

// decodeCache bounds how many decoded blob files stay resident: a Blob
// scan over a wide date range would otherwise re-decode every partition
// file on every query.
type decodeCache struct {
	cache *lru.Cache[string, decodedBlob]
}

func newDecodeCache(size int) *decodeCache {
	if size <= 0 {
		return nil
	}
	c, err := lru.New[string, decodedBlob](size)
	if err != nil {
		return nil
	}
	return &decodeCache{cache: c}
}

func (d *decodeCache) get(path string) (sql.Schema, []sql.Row, bool) {
	if d == nil {
		return nil, nil, false
	}
	blob, ok := d.cache.Get(path)
	if !ok {
		return nil, nil, false
	}
	return blob.schema, blob.rows, true
}

func (d *decodeCache) put(path string, schema sql.Schema, rows []sql.Row) {
	if d == nil {
		return
	}
	d.cache.Add(path, decodedBlob{schema: schema, rows: rows})
}
