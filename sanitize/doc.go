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

// Package sanitize cleans and validates untrusted input at the request
// boundary.
//
// The package offers two kinds of functions with different contracts.
//
// A Cleaner is lenient and total: it accepts any string and always returns a
// usable one, possibly empty. EscapeHTML, String, Name, Phone, Address,
// PostalCode and Path are Cleaners. They are meant for render and display
// paths where failing is worse than degrading.
//
// A Gate is strict: it either returns a cleaned value or an error, and it
// refuses shapes it does not know. DocumentValue is the Gate used before
// writing user supplied structures to the document store. Callers abort the
// write when it fails.
//
// The Validate functions are total predicates and never modify their input.
//
// # Paths
//
// Path strips characters and traversal sequences, but it is not an access
// control. Storage keys built from user input must be validated with
// ValidateSafeID (or an explicit allow-list) first; Path only limits the
// damage when that check is missing.
package sanitize

// Cleaner is a total string transformation. It never panics and never fails.
type Cleaner func(string) string

// Gate is a partial transformation that rejects values it cannot clean.
type Gate func(any) (any, error)

var (
	_ Cleaner = EscapeHTML
	_ Cleaner = StripHTML
	_ Cleaner = Phone
	_ Cleaner = PostalCode
	_ Cleaner = Path
	_ Gate    = DocumentValue
)
