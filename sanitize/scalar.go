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
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/google/safehtml"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/unicode/norm"
)

// Default length limits, in runes unless noted otherwise.
const (
	DefaultStringMaxLength  = 1000
	DefaultNameMaxLength    = 100
	DefaultAddressMaxLength = 200
	DefaultSafeIDMaxLength  = 128
	// MaxEmailLength is the RFC 5321 mailbox limit, in bytes.
	MaxEmailLength   = 254
	maxPhoneLength   = 20
	maxPostalLength  = 10
	documentKeyLimit = 100
)

// Option configures the length limit of a cleaner or validator.
type Option func(*options)

type options struct {
	maxLength int
}

// WithMaxLength overrides the default length limit. Non-positive values are
// ignored.
func WithMaxLength(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxLength = n
		}
	}
}

func buildOptions(def int, opts []Option) options {
	o := options{maxLength: def}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

var htmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
	"/", "&#x2F;",
)

// EscapeHTML replaces & < > " ' and / with HTML entities in a single pass, so
// entities produced for one character are never escaped again.
func EscapeHTML(s string) string {
	return htmlReplacer.Replace(s)
}

// EscapeHTMLValue formats v as a string and escapes it. A nil v becomes
// "null".
func EscapeHTMLValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return EscapeHTML(x)
	default:
		return EscapeHTML(fmt.Sprint(x))
	}
}

// HTML returns s as escaped text that the guard dispatcher can write as a
// text/html response.
func HTML(s string) safehtml.HTML {
	return safehtml.HTMLEscaped(s)
}

var stripPolicy = bluemonday.StrictPolicy()

// StripHTML removes every element and attribute from s, keeping only text.
// The remaining text is HTML-escaped.
func StripHTML(s string) string {
	return stripPolicy.Sanitize(s)
}

var escapeSequence = regexp.MustCompile(`\\x[0-9A-Fa-f]{2}|\\u[0-9A-Fa-f]{4}`)

// String trims s, truncates it to the limit (DefaultStringMaxLength runes by
// default), removes control characters other than tab, line feed and
// carriage return, and removes literal \xHH and \uHHHH escape sequences.
func String(s string, opts ...Option) string {
	o := buildOptions(DefaultStringMaxLength, opts)
	s = truncate(strings.TrimSpace(s), o.maxLength)
	s = strings.Map(func(r rune) rune {
		if isStrippedControl(r) {
			return -1
		}
		return r
	}, s)
	return escapeSequence.ReplaceAllString(s, "")
}

func isStrippedControl(r rune) bool {
	switch r {
	case '\t', '\n', '\r':
		return false
	}
	return r < 0x20 || (r >= 0x7f && r <= 0x9f)
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Email lowercases and trims s and reports whether the result is a plausible
// mailbox: exactly one @, a domain with a dot, no whitespace and at most
// MaxEmailLength bytes. It returns "", false otherwise.
func Email(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) > MaxEmailLength || !emailPattern.MatchString(s) {
		return "", false
	}
	return s, true
}

// Name NFC-normalises and trims s, truncates it (DefaultNameMaxLength runes by
// default) and keeps only letters, digits, whitespace, hyphens, apostrophes
// and periods. Runs of whitespace collapse to a single space.
func Name(s string, opts ...Option) string {
	o := buildOptions(DefaultNameMaxLength, opts)
	return cleanText(s, o.maxLength, "-'.")
}

// Address is Name with commas, # and / also allowed and a default limit of
// DefaultAddressMaxLength runes.
func Address(s string, opts ...Option) string {
	o := buildOptions(DefaultAddressMaxLength, opts)
	return cleanText(s, o.maxLength, "-'.,#/")
}

func cleanText(s string, max int, extra string) string {
	s = truncate(strings.TrimSpace(norm.NFC.String(s)), max)
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			space = true
			continue
		case unicode.IsLetter(r), unicode.IsDigit(r), strings.ContainsRune(extra, r):
		default:
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}

// Phone keeps ASCII digits, +, space, hyphen and parentheses, then truncates
// to 20 characters.
func Phone(s string) string {
	s = keep(s, func(r rune) bool {
		return isASCIIDigit(r) || strings.ContainsRune("+ -()", r)
	})
	return truncate(s, maxPhoneLength)
}

// PostalCode uppercases s, keeps A-Z, 0-9, space and hyphen, then truncates
// to 10 characters. Letters are allowed for UK and Canadian style codes.
func PostalCode(s string) string {
	s = keep(strings.ToUpper(s), func(r rune) bool {
		return isASCIIDigit(r) || (r >= 'A' && r <= 'Z') || r == ' ' || r == '-'
	})
	return truncate(s, maxPostalLength)
}

// Path restricts p to [A-Za-z0-9_.-/], removes every ".." sequence, collapses
// repeated slashes and strips one leading slash.
//
// Path is a secondary control. Validate identifiers with ValidateSafeID
// before using them in storage paths.
func Path(p string) string {
	p = keep(p, func(r rune) bool {
		return isASCIIDigit(r) || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || strings.ContainsRune("_.-/", r)
	})
	// Removing one ".." can join two dots into a new one.
	for strings.Contains(p, "..") {
		p = strings.ReplaceAll(p, "..", "")
	}
	for strings.Contains(p, "//") {
		p = strings.ReplaceAll(p, "//", "/")
	}
	return strings.TrimPrefix(p, "/")
}

func keep(s string, allowed func(rune) bool) string {
	return strings.Map(func(r rune) rune {
		if allowed(r) {
			return r
		}
		return -1
	}, s)
}

func isASCIIDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// truncate cuts s to at most max runes.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}
