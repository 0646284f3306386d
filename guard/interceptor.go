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

import "net/http"

// Interceptor alters the processing of incoming requests.
//
// See the package documentation to understand how interceptors are run and
// what happens in case of errors during request processing.
type Interceptor interface {
	// Before runs before the IncomingRequest is sent to the handler. If a
	// response is written to the ResponseWriter, then the remaining
	// interceptors and the handler won't execute.
	Before(w ResponseWriter, r *IncomingRequest) Result

	// Commit runs before the response is written by the Dispatcher. It runs
	// for every response, including errors written by another interceptor's
	// Before phase.
	Commit(w ResponseHeadersWriter, r *IncomingRequest, resp Response)
}

// Handler responds to an HTTP request.
type Handler interface {
	// ServeHTTP writes the response exactly once, returning the result.
	//
	// Except for reading the body, handlers should not modify the provided
	// IncomingRequest.
	ServeHTTP(ResponseWriter, *IncomingRequest) Result
}

// HandlerFunc is used to convert a function into a Handler.
type HandlerFunc func(ResponseWriter, *IncomingRequest) Result

// ServeHTTP calls f(w, r).
func (f HandlerFunc) ServeHTTP(w ResponseWriter, r *IncomingRequest) Result {
	return f(w, r)
}

// ResponseHeadersWriter is the part of the ResponseWriter available during
// the Commit phase: headers and cookies can still change, the response
// cannot.
type ResponseHeadersWriter interface {
	// Header returns the collection of headers that will be set on the
	// response.
	Header() Header

	// AddCookie adds a Set-Cookie header. It fails for invalid cookies.
	AddCookie(c *http.Cookie) error
}

// ResponseWriter is used to construct an HTTP response. Exactly one of the
// write methods can be called per request; a second call panics.
type ResponseWriter interface {
	ResponseHeadersWriter

	// Write writes a safe response.
	Write(resp Response) Result

	// WriteError writes an error response.
	WriteError(resp ErrorResponse) Result

	// Redirect responds with a redirect to the given url using code, which
	// must be a 3xx status code.
	Redirect(r *IncomingRequest, url string, code StatusCode) Result

	// NoContent responds with 204 No Content.
	NoContent() Result

	// Written reports whether a write method was already called.
	Written() bool
}
