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
	"strings"
	"testing"
	"unicode/utf8"

	"pgregory.net/rapid"
)

func TestEscapeHTMLNeverEmitsScriptTag(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		prefix := rapid.String().Draw(t, "prefix")
		suffix := rapid.String().Draw(t, "suffix")
		got := EscapeHTML(prefix + "<script>" + suffix)
		if strings.Contains(got, "<script>") {
			t.Fatalf("EscapeHTML produced a script tag: %q", got)
		}
		if strings.ContainsAny(got, "<>\"'/") {
			t.Fatalf("EscapeHTML left a special character: %q", got)
		}
	})
}

func TestEmailIsTotal(t *testing.T) {
	gen := rapid.OneOf(
		rapid.String(),
		rapid.StringMatching(`[A-Za-z0-9._+-]{1,20}@[A-Za-z0-9-]{1,20}\.[A-Za-z]{2,6}`),
		rapid.StringMatching(`[ A-Z@.]{0,40}`),
	)
	rapid.Check(t, func(t *rapid.T) {
		in := gen.Draw(t, "in")
		got, ok := Email(in)
		if !ok {
			if got != "" {
				t.Fatalf("Email(%q) = (%q, false), want empty result", in, got)
			}
			return
		}
		if len(got) > MaxEmailLength || !emailPattern.MatchString(got) {
			t.Fatalf("Email(%q) = %q, not a valid mailbox", in, got)
		}
		if got != strings.ToLower(got) {
			t.Fatalf("Email(%q) = %q, not lowercase", in, got)
		}
	})
}

func TestNameCharset(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		in := rapid.String().Draw(t, "in")
		got := Name(in)
		if strings.ContainsAny(got, "<>&@#$%") {
			t.Fatalf("Name(%q) = %q contains a forbidden character", in, got)
		}
		if utf8.RuneCountInString(got) > DefaultNameMaxLength {
			t.Fatalf("Name(%q) = %q is longer than %d runes", in, got, DefaultNameMaxLength)
		}
		if got != strings.TrimSpace(got) || strings.Contains(got, "  ") {
			t.Fatalf("Name(%q) = %q has untrimmed or repeated whitespace", in, got)
		}
	})
}

func TestPathNeverTraverses(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		in := rapid.StringMatching(`[./a-z%\\]{0,30}`).Draw(t, "in")
		got := Path(in)
		if strings.Contains(got, "..") || strings.Contains(got, "//") || strings.HasPrefix(got, "/") {
			t.Fatalf("Path(%q) = %q", in, got)
		}
	})
}

func TestStringIsTotal(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		in := rapid.String().Draw(t, "in")
		max := rapid.IntRange(1, 50).Draw(t, "max")
		got := String(in, WithMaxLength(max))
		if utf8.RuneCountInString(got) > max {
			t.Fatalf("String(%q, %d) = %q is too long", in, max, got)
		}
		for _, r := range got {
			if isStrippedControl(r) {
				t.Fatalf("String(%q) = %q kept control %U", in, got, r)
			}
		}
	})
}
