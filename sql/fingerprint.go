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

import "github.com/mitchellh/hashstructure"

// Fingerprint is the 64-bit hash used to key grouped (HashAggregate) and
// joined (HashJoin) rows. Collisions are resolved by the caller doing a
// full key comparison; Fingerprint only needs to be a fast, stable hash
// of the key tuple, so it is built on hashstructure rather than a
// hand-rolled byte-concatenation hash.
func Fingerprint(key Row) (uint64, error) {
	h, err := hashstructure.Hash([]interface{}(key), nil)
	if err != nil {
		return 0, err
	}
	return h, nil
}
