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

package apierror

import (
	"context"

	"github.com/storefront/reqguard/guard"
)

// Response is a JSON response with a status code. It is both a guard.Response
// and a guard.ErrorResponse, so handlers can pass it to Write or WriteError.
type Response struct {
	Status guard.StatusCode
	Body   any
}

// Code implements guard.ErrorResponse.
func (r *Response) Code() guard.StatusCode {
	return r.Status
}

// ResponseBody returns the value serialised as the JSON body.
func (r *Response) ResponseBody() any {
	return r.Body
}

// Error normalises err under label. A zero status means 500.
func (n Normalizer) Error(ctx context.Context, err error, label string, status guard.StatusCode) *Response {
	if status == 0 {
		status = guard.StatusInternalServerError
	}
	return &Response{Status: status, Body: n.HandleAPIError(ctx, err, label)}
}

// Validation returns a 400 response. details are only sent outside
// production.
func (n Normalizer) Validation(msg string, details any) *Response {
	b := Body{Error: msg, Code: "VALIDATION_ERROR"}
	if !n.Mode.IsProduction() {
		b.Details = details
	}
	return &Response{Status: guard.StatusBadRequest, Body: b}
}

// Unauthorized returns a 401 response. An empty msg means MsgUnauthorized.
func Unauthorized(msg string) *Response {
	return simple(guard.StatusUnauthorized, msg, MsgUnauthorized, "UNAUTHORIZED")
}

// Forbidden returns a 403 response. An empty msg means MsgForbidden.
func Forbidden(msg string) *Response {
	return simple(guard.StatusForbidden, msg, MsgForbidden, "FORBIDDEN")
}

// NotFound returns a 404 response. An empty msg means MsgNotFound.
func NotFound(msg string) *Response {
	return simple(guard.StatusNotFound, msg, MsgNotFound, "NOT_FOUND")
}

// Success wraps data in a response. A zero status means 200.
func Success(data any, status guard.StatusCode) *Response {
	if status == 0 {
		status = guard.StatusOK
	}
	return &Response{Status: status, Body: data}
}

func simple(status guard.StatusCode, msg, def, code string) *Response {
	if msg == "" {
		msg = def
	}
	return &Response{Status: status, Body: Body{Error: msg, Code: code}}
}

// statusBody is the body written for a bare guard.StatusCode.
func statusBody(code guard.StatusCode) Body {
	switch code {
	case guard.StatusUnauthorized:
		return Body{Error: MsgUnauthorized, Code: "UNAUTHORIZED"}
	case guard.StatusForbidden:
		return Body{Error: MsgForbidden, Code: "FORBIDDEN"}
	case guard.StatusNotFound:
		return Body{Error: MsgNotFound, Code: "NOT_FOUND"}
	}
	text := code.String()
	if text == "" || code >= guard.StatusInternalServerError {
		return Body{Error: MsgInternal, Code: NormalizeContext(code.String())}
	}
	return Body{Error: text, Code: NormalizeContext(text)}
}
