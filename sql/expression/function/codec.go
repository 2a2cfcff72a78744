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

package function

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"github.com/spf13/cast"

	"github.com/qxengine/qx/sql"
	"github.com/qxengine/qx/sql/types"
)

// registerCodec wires BASE64_ENCODE/BASE64_DECODE and HEX_ENCODE/
// HEX_DECODE, the round-trip-invertible codec functions every blob-like
// connector payload may need to pass through textually (e.g. a VARCHAR
// column holding encoded binary data pulled from a JSON source). There
// is no ecosystem codec library in the dependency set this engine draws
// on that improves on encoding/base64 and encoding/hex for a single
// fixed-alphabet round trip, so these stay on the standard library.
func registerCodec(r *Registry) {
	r.Register("BASE64_ENCODE", build1Arg("BASE64_ENCODE", types.Varchar, func(v interface{}) (interface{}, error) {
		b, err := toBytes(v)
		if err != nil {
			return nil, err
		}
		return base64.StdEncoding.EncodeToString(b), nil
	}))
	r.Register("BASE64_DECODE", build1Arg("BASE64_DECODE", types.Blob, func(v interface{}) (interface{}, error) {
		s, err := cast.ToStringE(v)
		if err != nil {
			return nil, err
		}
		return base64.StdEncoding.DecodeString(s)
	}))
	r.Register("HEX_ENCODE", build1Arg("HEX_ENCODE", types.Varchar, func(v interface{}) (interface{}, error) {
		b, err := toBytes(v)
		if err != nil {
			return nil, err
		}
		return hex.EncodeToString(b), nil
	}))
	r.Register("HEX_DECODE", build1Arg("HEX_DECODE", types.Blob, func(v interface{}) (interface{}, error) {
		s, err := cast.ToStringE(v)
		if err != nil {
			return nil, err
		}
		return hex.DecodeString(s)
	}))
}

func toBytes(v interface{}) ([]byte, error) {
	switch x := v.(type) {
	case []byte:
		return x, nil
	case string:
		return []byte(x), nil
	default:
		s, err := cast.ToStringE(v)
		if err != nil {
			return nil, err
		}
		return []byte(s), nil
	}
}

func build1Arg(name string, retType sql.Type, fn func(v interface{}) (interface{}, error)) Builder {
	return func(args []sql.Expression) (sql.Expression, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("%s expects 1 argument, got %d", name, len(args))
		}
		return newCall(name, args, retType, func(a []interface{}) (interface{}, error) {
			return fn(a[0])
		}), nil
	}
}
