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

package guard

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidMode is returned by ParseMode for unknown mode names.
var ErrInvalidMode = errors.New("invalid mode")

// Mode selects between production rules and the relaxed rules used for local
// development. The zero value is Production.
type Mode int

const (
	// Production enables every protection.
	Production Mode = iota
	// Development disables the mechanisms that make local work over plain
	// HTTP hard (HSTS, Secure cookies, require-corp) and exposes error
	// details to the client. It is not valid for production use.
	Development
)

// ParseMode parses "production"/"prod" and "development"/"dev", ignoring case
// and surrounding whitespace. An empty string means Production.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "production", "prod":
		return Production, nil
	case "development", "dev":
		return Development, nil
	}
	return Production, fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// IsProduction reports whether m is Production.
func (m Mode) IsProduction() bool {
	return m == Production
}

func (m Mode) String() string {
	if m == Development {
		return "development"
	}
	return "production"
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(b []byte) error {
	parsed, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
