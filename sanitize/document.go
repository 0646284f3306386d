// Copyright 2025 The reqguard Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sanitize

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
)

// MaxDocumentDepth is the deepest container nesting DocumentValue accepts.
const MaxDocumentDepth = 20

var (
	// ErrNonFiniteNumber is returned for NaN, infinities and numbers that do
	// not parse as a finite float64.
	ErrNonFiniteNumber = errors.New("sanitize: number is not finite")
	// ErrNestingDepth is returned when containers nest deeper than
	// MaxDocumentDepth.
	ErrNestingDepth = errors.New("sanitize: document nested too deeply")
)

// UnsupportedTypeError is returned by DocumentValue for values of a type it
// does not accept.
type UnsupportedTypeError struct {
	// Path locates the value inside the document, "$" being the root.
	Path  string
	Value any
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("sanitize: unsupported type %T at %s", e.Value, e.Path)
}

// DocumentValue cleans a decoded JSON-like value before it is written to the
// document store:
//   - strings go through String with the default limit
//   - numbers must be finite
//   - []any is cleaned element by element
//   - map[string]any keys go through String limited to 100 runes and are
//     dropped when empty, values are cleaned recursively
//
// Any other type, including bool and nil, is rejected with an
// *UnsupportedTypeError. Map keys are visited in sorted order so that keys
// colliding after cleaning resolve deterministically: the last one wins.
func DocumentValue(v any) (any, error) {
	return documentValue(v, "$", 0)
}

func documentValue(v any, path string, depth int) (any, error) {
	switch x := v.(type) {
	case string:
		return String(x), nil
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, fmt.Errorf("%w at %s", ErrNonFiniteNumber, path)
		}
		return x, nil
	case float32:
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("%w at %s", ErrNonFiniteNumber, path)
		}
		return x, nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return x, nil
	case json.Number:
		f, err := strconv.ParseFloat(string(x), 64)
		if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
			return nil, fmt.Errorf("%w at %s: %q", ErrNonFiniteNumber, path, string(x))
		}
		return x, nil
	case []any:
		if depth >= MaxDocumentDepth {
			return nil, fmt.Errorf("%w at %s", ErrNestingDepth, path)
		}
		out := make([]any, len(x))
		for i, e := range x {
			c, err := documentValue(e, path+"["+strconv.Itoa(i)+"]", depth+1)
			if err != nil {
				return nil, err
			}
			out[i] = c
		}
		return out, nil
	case map[string]any:
		if depth >= MaxDocumentDepth {
			return nil, fmt.Errorf("%w at %s", ErrNestingDepth, path)
		}
		out := make(map[string]any, len(x))
		for _, k := range slices.Sorted(maps.Keys(x)) {
			key := String(k, WithMaxLength(documentKeyLimit))
			if key == "" {
				continue
			}
			c, err := documentValue(x[k], path+"."+key, depth+1)
			if err != nil {
				return nil, err
			}
			out[key] = c
		}
		return out, nil
	default:
		return nil, &UnsupportedTypeError{Path: path, Value: v}
	}
}
