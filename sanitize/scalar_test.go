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
	"strings"
	"testing"
	"unicode/utf8"
)

func TestEscapeHTML(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{in: "", want: ""},
		{in: "plain text", want: "plain text"},
		{in: "<script>alert('x')</script>", want: "&lt;script&gt;alert(&#x27;x&#x27;)&lt;&#x2F;script&gt;"},
		{in: `a & "b"`, want: "a &amp; &quot;b&quot;"},
		{in: "&lt;", want: "&amp;lt;"},
	}
	for _, tt := range tests {
		if got := EscapeHTML(tt.in); got != tt.want {
			t.Errorf("EscapeHTML(%q) got %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEscapeHTMLValue(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{in: nil, want: "null"},
		{in: 42, want: "42"},
		{in: true, want: "true"},
		{in: "<b>", want: "&lt;b&gt;"},
	}
	for _, tt := range tests {
		if got := EscapeHTMLValue(tt.in); got != tt.want {
			t.Errorf("EscapeHTMLValue(%v) got %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHTML(t *testing.T) {
	got := HTML("<i>hi</i>").String()
	if strings.Contains(got, "<i>") {
		t.Errorf("HTML() got %q, want escaped markup", got)
	}
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{in: "<b>bold</b> text", want: "bold text"},
		{in: `<a href="javascript:alert(1)">click</a>`, want: "click"},
		{in: "<script>alert(1)</script>safe", want: "safe"},
		{in: "no markup", want: "no markup"},
	}
	for _, tt := range tests {
		if got := StripHTML(tt.in); got != tt.want {
			t.Errorf("StripHTML(%q) got %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		name string
		in   string
		opts []Option
		want string
	}{
		{name: "trim", in: "  hello  ", want: "hello"},
		{name: "controls", in: "a\x00b\x07c\x1bd\u0085e", want: "abcde"},
		{name: "kept whitespace", in: "a\tb\nc\rd", want: "a\tb\nc\rd"},
		{name: "del", in: "a\x7fb", want: "ab"},
		{name: "hex escape", in: `x\x3cscript`, want: "xscript"},
		{name: "unicode escape", in: `x\u003cy`, want: "xy"},
		{name: "short escape kept", in: `\x3`, want: `\x3`},
		{name: "max length runes", in: "ñññññ", opts: []Option{WithMaxLength(3)}, want: "ñññ"},
		{name: "non-positive limit ignored", in: "abc", opts: []Option{WithMaxLength(0)}, want: "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := String(tt.in, tt.opts...); got != tt.want {
				t.Errorf("String(%q) got %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestStringDefaultLimit(t *testing.T) {
	got := String(strings.Repeat("a", 5000))
	if n := utf8.RuneCountInString(got); n != DefaultStringMaxLength {
		t.Errorf("String() length got %d, want %d", n, DefaultStringMaxLength)
	}
}

func TestEmail(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{in: "TEST@EXAMPLE.COM", want: "test@example.com", wantOK: true},
		{in: "  user.name+tag@shop.example.org ", want: "user.name+tag@shop.example.org", wantOK: true},
		{in: "not-an-email"},
		{in: "a@b"},
		{in: "a@@b.com"},
		{in: "a b@c.com"},
		{in: ""},
		{in: strings.Repeat("a", 250) + "@x.com"},
	}
	for _, tt := range tests {
		got, ok := Email(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("Email(%q) got (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{in: "  José   Pérez  ", want: "José Pérez"},
		{in: "O'Brien-Smith Jr.", want: "O'Brien-Smith Jr."},
		{in: "<script>alert(1)</script>", want: "scriptalert1script"},
		{in: "a@b#c$d%e&f", want: "abcdef"},
		{in: "José", want: "José"},
		{in: "李 小龍", want: "李 小龍"},
		{in: "a \t\n b", want: "a b"},
		{in: "@@@", want: ""},
	}
	for _, tt := range tests {
		if got := Name(tt.in); got != tt.want {
			t.Errorf("Name(%q) got %q, want %q", tt.in, got, tt.want)
		}
	}
	if got := Name(strings.Repeat("x", 500)); utf8.RuneCountInString(got) != DefaultNameMaxLength {
		t.Errorf("Name() did not truncate to %d runes: %d", DefaultNameMaxLength, len(got))
	}
}

func TestAddress(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{in: "Calle Mayor 12, 3 #4/B", want: "Calle Mayor 12, 3 #4/B"},
		{in: "Main St. <b>5</b>", want: "Main St. b5/b"},
		{in: "1 Infinite Loop; DROP TABLE", want: "1 Infinite Loop DROP TABLE"},
	}
	for _, tt := range tests {
		if got := Address(tt.in); got != tt.want {
			t.Errorf("Address(%q) got %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPhone(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{in: "+34 (600) 123-456", want: "+34 (600) 123-456"},
		{in: "tel:600.123.456", want: "600123456"},
		{in: "123456789012345678901234", want: "12345678901234567890"},
		{in: "١٢٣", want: ""},
	}
	for _, tt := range tests {
		if got := Phone(tt.in); got != tt.want {
			t.Errorf("Phone(%q) got %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPostalCode(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{in: "28001", want: "28001"},
		{in: "sw1a 1aa", want: "SW1A 1AA"},
		{in: "K1A-0B1!", want: "K1A-0B1"},
		{in: "12345678901234", want: "1234567890"},
	}
	for _, tt := range tests {
		if got := PostalCode(tt.in); got != tt.want {
			t.Errorf("PostalCode(%q) got %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{in: "products/images/a.png", want: "products/images/a.png"},
		{in: "/products//images///a.png", want: "products/images/a.png"},
		{in: "../../etc/passwd", want: "etc/passwd"},
		{in: "....//secret", want: "secret"},
		{in: ".%2e/x", want: ".2e/x"},
		{in: "a/./b", want: "a/./b"},
		{in: `uploads\..\x`, want: "uploadsx"},
		{in: "a b?c=d", want: "abcd"},
	}
	for _, tt := range tests {
		got := Path(tt.in)
		if got != tt.want {
			t.Errorf("Path(%q) got %q, want %q", tt.in, got, tt.want)
		}
		if strings.Contains(got, "..") {
			t.Errorf("Path(%q) = %q still contains ..", tt.in, got)
		}
	}
}

func TestValidateSafeID(t *testing.T) {
	tests := []struct {
		id   string
		opts []Option
		want bool
	}{
		{id: "order_123-abc", want: true},
		{id: "", want: false},
		{id: "../etc", want: false},
		{id: "a b", want: false},
		{id: "ñ", want: false},
		{id: strings.Repeat("a", 128), want: true},
		{id: strings.Repeat("a", 129), want: false},
		{id: "abcd", opts: []Option{WithMaxLength(3)}, want: false},
	}
	for _, tt := range tests {
		if got := ValidateSafeID(tt.id, tt.opts...); got != tt.want {
			t.Errorf("ValidateSafeID(%q) got %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestValidatePredicates(t *testing.T) {
	if !ValidateWhitelist("paid", []string{"pending", "paid"}) {
		t.Error("ValidateWhitelist(paid) = false, want true")
	}
	if ValidateWhitelist(3, []int{1, 2}) {
		t.Error("ValidateWhitelist(3) = true, want false")
	}
	if !ValidateLength("ñandú", 5, 5) {
		t.Error("ValidateLength counts bytes, want runes")
	}
	if ValidateLength("", 1, 10) {
		t.Error("ValidateLength(\"\", 1, 10) = true, want false")
	}

	rangeTests := []struct {
		n    float64
		want bool
	}{
		{n: 5, want: true},
		{n: 0, want: true},
		{n: 10, want: true},
		{n: -1, want: false},
		{n: math.NaN(), want: false},
		{n: math.Inf(1), want: false},
		{n: math.Inf(-1), want: false},
	}
	for _, tt := range rangeTests {
		if got := ValidateRange(tt.n, 0, 10); got != tt.want {
			t.Errorf("ValidateRange(%v, 0, 10) got %v, want %v", tt.n, got, tt.want)
		}
	}
	if ValidateRange(math.Inf(1), math.Inf(-1), math.Inf(1)) {
		t.Error("ValidateRange accepted +Inf within infinite bounds")
	}
}
