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
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"sync"
)

// DefaultMaxBodyBytes bounds request bodies read by DecodeJSON when the caller
// passes a non-positive limit.
const DefaultMaxBodyBytes = 1 << 20

var (
	// ErrBodyTooLarge is returned by DecodeJSON when the body exceeds the limit.
	ErrBodyTooLarge = errors.New("request body too large")
	// ErrNotJSON is returned by DecodeJSON for a non-JSON Content-Type.
	ErrNotJSON = errors.New("request body is not JSON")
)

// IncomingRequest represents an HTTP request received by the server.
type IncomingRequest struct {
	req *http.Request

	// Header is the request header. Lookups are case-insensitive.
	Header http.Header

	cookiesOnce sync.Once
	cookies     map[string]string
}

// NewIncomingRequest creates an IncomingRequest from an http.Request.
func NewIncomingRequest(req *http.Request) *IncomingRequest {
	return &IncomingRequest{req: req, Header: req.Header}
}

// Method returns the HTTP method of the request.
func (r *IncomingRequest) Method() string {
	return r.req.Method
}

// URL returns a copy of the request URL. For server requests only the path
// and query are populated; use Host and IsTLS for the rest.
func (r *IncomingRequest) URL() *url.URL {
	u := *r.req.URL
	return &u
}

// Host returns the host the request was sent to, from the Host header or the
// absolute request target.
func (r *IncomingRequest) Host() string {
	return r.req.Host
}

// IsTLS reports whether the request arrived over a TLS connection.
func (r *IncomingRequest) IsTLS() bool {
	return r.req.TLS != nil
}

// CookieHeader returns the raw Cookie header, joining repeated headers with
// "; ". It returns "" when the request carries no cookies.
func (r *IncomingRequest) CookieHeader() string {
	return strings.Join(r.req.Header.Values("Cookie"), "; ")
}

// Cookies returns the request cookies parsed by ParseCookies. The map is
// shared between calls and must not be modified.
func (r *IncomingRequest) Cookies() map[string]string {
	r.cookiesOnce.Do(func() {
		r.cookies = ParseCookies(r.CookieHeader())
	})
	return r.cookies
}

// Context returns the context of the request.
func (r *IncomingRequest) Context() context.Context {
	return r.req.Context()
}

// SetContext sets the context of the request. It panics on a nil context.
func (r *IncomingRequest) SetContext(ctx context.Context) {
	if ctx == nil {
		panic("nil context")
	}
	r.req = r.req.WithContext(ctx)
}

// DecodeJSON reads the body as JSON into v. At most maxBytes are read; a
// non-positive maxBytes means DefaultMaxBodyBytes. A Content-Type other than
// application/json (parameters allowed) is rejected with ErrNotJSON; a missing
// Content-Type is accepted.
func (r *IncomingRequest) DecodeJSON(v any, maxBytes int64) error {
	if ct := r.req.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil || mt != "application/json" {
			return fmt.Errorf("%w: %q", ErrNotJSON, ct)
		}
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	if r.req.Body == nil {
		return fmt.Errorf("decoding body: %w", io.EOF)
	}
	data, err := io.ReadAll(io.LimitReader(r.req.Body, maxBytes+1))
	if err != nil {
		return fmt.Errorf("reading body: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return ErrBodyTooLarge
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding body: %w", err)
	}
	return nil
}

// RawRequest returns the wrapped request. Interceptors use it to hand the
// request to net/http helpers; handlers should not need it.
func RawRequest(r *IncomingRequest) *http.Request {
	return r.req
}
