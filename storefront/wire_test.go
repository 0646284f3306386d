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

package storefront

import (
	"context"
	"fmt"
	"testing"

	"github.com/storefront/reqguard/guard"
	"github.com/storefront/reqguard/internal/wiretest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawPost(target string, headers ...string) []byte {
	body := `{"email":"a@b.co"}`
	req := fmt.Sprintf("POST %s HTTP/1.1\r\n", target)
	for _, h := range headers {
		req += h + "\r\n"
	}
	req += fmt.Sprintf("Content-Type: application/json\r\nContent-Length: %d\r\n\r\n%s", len(body), body)
	return []byte(req)
}

func TestOriginOnTheWire(t *testing.T) {
	tests := []struct {
		name     string
		request  []byte
		wantCode int
	}{
		{
			name:     "header names are case insensitive",
			request:  rawPost("/api/save-order", "Host: shop.example", "oRiGiN: http://shop.example"),
			wantCode: 201,
		},
		{
			name:     "first of duplicated origins is checked",
			request:  rawPost("/api/save-order", "Host: shop.example", "Origin: http://evil.com", "Origin: http://shop.example"),
			wantCode: 403,
		},
		{
			name:     "host includes the port",
			request:  rawPost("/api/save-order", "Host: shop.example:8443", "Origin: http://shop.example"),
			wantCode: 403,
		},
		{
			name:     "absolute form target sets the host",
			request:  rawPost("http://shop.example/api/save-order", "Host: other.example", "Origin: http://shop.example"),
			wantCode: 201,
		},
		{
			name:     "referer fallback",
			request:  rawPost("/api/save-order", "Host: shop.example", "Referer: http://shop.example/cart?x=1"),
			wantCode: 201,
		},
		{
			name:     "empty origin falls back to referer",
			request:  rawPost("/api/save-order", "Host: shop.example", "Origin:", "Referer: http://evil.com/"),
			wantCode: 403,
		},
		{
			name:     "no origin and no referer",
			request:  rawPost("/api/save-order", "Host: shop.example"),
			wantCode: 403,
		},
		{
			name:     "webhook exempt on the wire",
			request:  rawPost("/api/webhook/stripe", "Host: shop.example"),
			wantCode: 200,
		},
	}
	mux := newServer(t, guard.Production, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := wiretest.Serve(context.Background(), mux, tt.request)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCode, resp.StatusCode, string(resp.Body))
			assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
		})
	}
}
