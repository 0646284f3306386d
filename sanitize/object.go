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
	"math"
	"strconv"
	"strings"
)

// FieldKind selects the cleaner Object applies to a field.
type FieldKind string

// The field kinds understood by Object.
const (
	KindString  FieldKind = "string"
	KindNumber  FieldKind = "number"
	KindBoolean FieldKind = "boolean"
	KindEmail   FieldKind = "email"
	KindPhone   FieldKind = "phone"
	KindName    FieldKind = "name"
	KindAddress FieldKind = "address"
)

// Schema maps field names to their kinds.
type Schema map[string]FieldKind

// Object returns a new map with only the fields named in schema, each cleaned
// according to its kind. Fields that are absent, nil or do not convert to
// their kind are left out; Object never fails as a whole.
//
// Conversion rules:
//   - string: strings and numbers, cleaned by String
//   - number: finite numbers, or strings that parse as one; the result is a
//     float64
//   - boolean: booleans, or the strings "true" and "false"
//   - email: strings accepted by Email
//   - phone, name, address: strings, kept when the cleaner leaves something
func Object(obj map[string]any, schema Schema) map[string]any {
	out := make(map[string]any, len(schema))
	for field, kind := range schema {
		v, ok := obj[field]
		if !ok || v == nil {
			continue
		}
		if c, ok := convertField(kind, v); ok {
			out[field] = c
		}
	}
	return out
}

func convertField(kind FieldKind, v any) (any, bool) {
	switch kind {
	case KindString:
		switch x := v.(type) {
		case string:
			return String(x), true
		case float64, json.Number:
			if f, ok := toFloat(x); ok {
				return String(strconv.FormatFloat(f, 'f', -1, 64)), true
			}
		}
	case KindNumber:
		if f, ok := toFloat(v); ok {
			return f, true
		}
	case KindBoolean:
		switch x := v.(type) {
		case bool:
			return x, true
		case string:
			switch strings.ToLower(strings.TrimSpace(x)) {
			case "true":
				return true, true
			case "false":
				return false, true
			}
		}
	case KindEmail:
		if s, ok := v.(string); ok {
			if e, ok := Email(s); ok {
				return e, true
			}
		}
	case KindPhone:
		return nonEmpty(v, Phone)
	case KindName:
		return nonEmpty(v, func(s string) string { return Name(s) })
	case KindAddress:
		return nonEmpty(v, func(s string) string { return Address(s) })
	}
	return nil, false
}

func nonEmpty(v any, clean Cleaner) (any, bool) {
	s, ok := v.(string)
	if !ok {
		return nil, false
	}
	c := clean(s)
	return c, c != ""
}

func toFloat(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case int:
		f = float64(x)
	case json.Number:
		var err error
		if f, err = x.Float64(); err != nil {
			return 0, false
		}
	case string:
		var err error
		if f, err = strconv.ParseFloat(strings.TrimSpace(x), 64); err != nil {
			return 0, false
		}
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
