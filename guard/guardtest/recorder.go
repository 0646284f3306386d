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

// Package guardtest provides utilities for testing interceptors and handlers
// written against the guard framework.
package guardtest

import (
	"io"
	"net/http"
	"net/http/httptest"

	"github.com/storefront/reqguard/guard"
)

// NewRequest returns a new incoming server request, suitable for passing to
// an Interceptor or Handler in tests.
//
// The target may be a path or an absolute URL. If target is an absolute URL,
// the host name from the URL is used, otherwise "example.com" is used. The TLS
// field is set to a non-nil dummy value if target has scheme "https".
//
// NewRequest panics on error, like httptest.NewRequest.
func NewRequest(method, target string, body io.Reader) *guard.IncomingRequest {
	return guard.NewIncomingRequest(httptest.NewRequest(method, target, body))
}

// NewRequestWithHeaders is NewRequest with extra request headers.
func NewRequestWithHeaders(method, target string, body io.Reader, headers map[string]string) *guard.IncomingRequest {
	req := httptest.NewRequest(method, target, body)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return guard.NewIncomingRequest(req)
}

// ResponseRecorder encapsulates a guard.ResponseWriter that records
// mutations for later inspection in tests. The ResponseWriter should be
// passed to the interceptor or handler under test.
type ResponseRecorder struct {
	guard.ResponseWriter
	rec *httptest.ResponseRecorder
}

// NewResponseRecorder creates a ResponseRecorder using guard.DefaultDispatcher.
func NewResponseRecorder() *ResponseRecorder {
	return NewResponseRecorderFromDispatcher(guard.DefaultDispatcher{})
}

// NewResponseRecorderFromDispatcher creates a ResponseRecorder from a
// provided guard.Dispatcher.
func NewResponseRecorderFromDispatcher(d guard.Dispatcher) *ResponseRecorder {
	rec := httptest.NewRecorder()
	return &ResponseRecorder{
		rec:            rec,
		ResponseWriter: guard.NewResponseWriter(d, rec, nil),
	}
}

// Header returns the recorded response headers.
func (r *ResponseRecorder) Header() http.Header {
	return r.rec.Header()
}

// Status returns the recorded response status code.
func (r *ResponseRecorder) Status() guard.StatusCode {
	return guard.StatusCode(r.rec.Code)
}

// Body returns the recorded response body.
func (r *ResponseRecorder) Body() string {
	return r.rec.Body.String()
}
