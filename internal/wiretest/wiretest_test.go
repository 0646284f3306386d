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

package wiretest

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestServe(t *testing.T) {
	var got http.Header
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Header().Set("X-Seen", r.Host)
		io.WriteString(w, "ok")
	})
	raw := []byte("GET / HTTP/1.1\r\n" +
		"Host: shop.example\r\n" +
		"origin: http://a.example\r\n" +
		"Origin: http://b.example\r\n" +
		"\r\n")

	resp, err := Serve(context.Background(), h, raw)
	if err != nil {
		t.Fatalf("Serve() err = %v", err)
	}
	if resp.StatusCode != http.StatusOK || string(resp.Body) != "ok" {
		t.Errorf("Serve() got %d %q, want 200 \"ok\"", resp.StatusCode, resp.Body)
	}
	if resp.Header.Get("X-Seen") != "shop.example" {
		t.Errorf("X-Seen got %q, want shop.example", resp.Header.Get("X-Seen"))
	}
	want := []string{"http://a.example", "http://b.example"}
	if diff := cmp.Diff(want, got["Origin"]); diff != "" {
		t.Errorf("Origin values mismatch (-want +got):\n%s", diff)
	}
}

func TestServeMalformed(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler called for a malformed request")
	})
	resp, err := Serve(context.Background(), h, []byte("GET / HTTP/1.1\r\nHost: a\r\nBad Header\r\n\r\n"))
	if err != nil {
		t.Fatalf("Serve() err = %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status got %d, want 400", resp.StatusCode)
	}
}
