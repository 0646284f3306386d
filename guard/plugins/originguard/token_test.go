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

package originguard

import (
	"encoding/json"
	"net/http"
	"regexp"
	"testing"

	"github.com/storefront/reqguard/guard"
	"github.com/storefront/reqguard/guard/guardtest"
	"pgregory.net/rapid"
)

var tokenPattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

func TestGenerateTokenUnique(t *testing.T) {
	seen := make(map[string]bool, 1000)
	for i := 0; i < 1000; i++ {
		tok := GenerateToken()
		if !tokenPattern.MatchString(tok) {
			t.Fatalf("GenerateToken() got %q, want 64 lowercase hex characters", tok)
		}
		if seen[tok] {
			t.Fatalf("GenerateToken() repeated %q after %d calls", tok, i)
		}
		seen[tok] = true
	}
}

func TestDoubleSubmitProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		header := GenerateToken()
		cookie := header
		if rapid.Bool().Draw(t, "mismatch") {
			cookie = GenerateToken()
		}
		r := request(guard.MethodPost, saveOrder, map[string]string{
			"Origin":       "http://localhost:3000",
			"X-CSRF-Token": header,
			"Cookie":       "csrf-token=" + cookie,
		})
		got := Validate(r)
		if got.Valid != (header == cookie) {
			t.Fatalf("Validate() got %+v for header %q cookie %q", got, header, cookie)
		}
	})
}

func TestTokenHandler(t *testing.T) {
	tests := []struct {
		mode       guard.Mode
		wantSecure bool
	}{
		{mode: guard.Production, wantSecure: true},
		{mode: guard.Development, wantSecure: false},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			rr := guardtest.NewResponseRecorder()
			TokenHandler{Mode: tt.mode}.ServeHTTP(rr.ResponseWriter, guardtest.NewRequest(guard.MethodGet, "/api/csrf-token", nil))

			if rr.Status() != guard.StatusOK {
				t.Fatalf("status got %d, want 200", rr.Status())
			}
			var body struct {
				CSRFToken string `json:"csrfToken"`
			}
			if err := json.Unmarshal([]byte(rr.Body()), &body); err != nil {
				t.Fatalf("body %q: %v", rr.Body(), err)
			}
			if !tokenPattern.MatchString(body.CSRFToken) {
				t.Errorf("csrfToken got %q", body.CSRFToken)
			}

			resp := http.Response{Header: rr.Header()}
			cookies := resp.Cookies()
			if len(cookies) != 1 {
				t.Fatalf("got %d cookies, want 1", len(cookies))
			}
			c := cookies[0]
			if c.Name != DefaultTokenCookie || c.Value != body.CSRFToken {
				t.Errorf("cookie got %s=%s, want %s=%s", c.Name, c.Value, DefaultTokenCookie, body.CSRFToken)
			}
			if c.HttpOnly || c.SameSite != http.SameSiteStrictMode || c.Path != "/" || c.Secure != tt.wantSecure {
				t.Errorf("cookie attributes got %+v", c)
			}
			if rr.Header().Get("Cache-Control") != "no-store" {
				t.Error("token response is cacheable")
			}
		})
	}
}
