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

// StatusCode contains HTTP status codes as defined in RFC 2068.
type StatusCode int

// The HTTP status codes the storefront API answers with.
const (
	StatusOK        StatusCode = 200 // RFC 7231, 6.3.1
	StatusCreated   StatusCode = 201 // RFC 7231, 6.3.2
	StatusAccepted  StatusCode = 202 // RFC 7231, 6.3.3
	StatusNoContent StatusCode = 204 // RFC 7231, 6.3.5

	StatusMovedPermanently  StatusCode = 301 // RFC 7231, 6.4.2
	StatusFound             StatusCode = 302 // RFC 7231, 6.4.3
	StatusSeeOther          StatusCode = 303 // RFC 7231, 6.4.4
	StatusTemporaryRedirect StatusCode = 307 // RFC 7231, 6.4.7
	StatusPermanentRedirect StatusCode = 308 // RFC 7538, 3

	StatusBadRequest            StatusCode = 400 // RFC 7231, 6.5.1
	StatusUnauthorized          StatusCode = 401 // RFC 7235, 3.1
	StatusForbidden             StatusCode = 403 // RFC 7231, 6.5.3
	StatusNotFound              StatusCode = 404 // RFC 7231, 6.5.4
	StatusMethodNotAllowed      StatusCode = 405 // RFC 7231, 6.5.5
	StatusConflict              StatusCode = 409 // RFC 7231, 6.5.8
	StatusRequestEntityTooLarge StatusCode = 413 // RFC 7231, 6.5.11
	StatusUnsupportedMediaType  StatusCode = 415 // RFC 7231, 6.5.13
	StatusUnprocessableEntity   StatusCode = 422 // RFC 4918, 11.2
	StatusTooManyRequests       StatusCode = 429 // RFC 6585, 4

	StatusInternalServerError StatusCode = 500 // RFC 7231, 6.6.1
	StatusServiceUnavailable  StatusCode = 503 // RFC 7231, 6.6.4
)

// Code returns c itself, so that a bare StatusCode is a valid ErrorResponse.
func (c StatusCode) Code() StatusCode {
	return c
}

// String returns the text for the HTTP status code, or the empty string if
// the code is unknown.
func (c StatusCode) String() string {
	return http.StatusText(int(c))
}

// IsRedirect reports whether c is a 3xx code.
func (c StatusCode) IsRedirect() bool {
	return c >= 300 && c < 400
}
