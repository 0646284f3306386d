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
	"math"
	"slices"
	"unicode/utf8"
)

// ValidateSafeID reports whether id is non-empty, at most
// DefaultSafeIDMaxLength bytes long (see WithMaxLength) and made only of
// ASCII letters, digits, underscores and hyphens.
//
// Identifiers that end up in storage paths or queries must pass this check.
func ValidateSafeID(id string, opts ...Option) bool {
	o := buildOptions(DefaultSafeIDMaxLength, opts)
	if id == "" || len(id) > o.maxLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_', c == '-':
		default:
			return false
		}
	}
	return true
}

// ValidateWhitelist reports whether v is one of allowed.
func ValidateWhitelist[T comparable](v T, allowed []T) bool {
	return slices.Contains(allowed, v)
}

// ValidateLength reports whether s has between min and max runes, inclusive.
func ValidateLength(s string, min, max int) bool {
	n := utf8.RuneCountInString(s)
	return n >= min && n <= max
}

// ValidateRange reports whether n is finite and within [min, max].
func ValidateRange(n, min, max float64) bool {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return false
	}
	return n >= min && n <= max
}
