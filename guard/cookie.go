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
	"net/http"
	"net/url"
	"strings"
)

// ParseCookies parses a raw Cookie request header of the form
// "name=value; name2=value2".
//
// Entries are split on ";" and then on the first "=". Names and values are
// trimmed and values are URL-decoded; a value that is not valid percent
// encoding is kept as sent. Entries with an empty name or an empty value are
// dropped. When a name repeats, the last value wins.
func ParseCookies(header string) map[string]string {
	cookies := map[string]string{}
	if header == "" {
		return cookies
	}
	for _, part := range strings.Split(header, ";") {
		name, value, _ := strings.Cut(part, "=")
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)
		if decoded, err := url.PathUnescape(value); err == nil {
			value = decoded
		}
		if name == "" || value == "" {
			continue
		}
		cookies[name] = value
	}
	return cookies
}

// NewCookie creates a cookie with safe defaults:
//   - Secure: true (unless mode is Development)
//   - HttpOnly: true
//   - SameSite: Lax
//   - Path: /
//
// For more info about all the options, see:
// https://developer.mozilla.org/en-US/docs/Web/HTTP/Headers/Set-Cookie
func NewCookie(name, value string, mode Mode) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Secure:   mode.IsProduction(),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
