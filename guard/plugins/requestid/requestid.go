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

// Package requestid tags every request with an identifier used to correlate
// log lines. It should be the first interceptor installed.
package requestid

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/reqguard/guard"
	"github.com/storefront/reqguard/sanitize"
)

// HeaderName is the request and response header carrying the identifier.
const HeaderName = "X-Request-Id"

type ctxKey struct{}

// NewContext returns a copy of ctx carrying id.
func NewContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the request identifier stored in ctx, or "".
func FromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// Interceptor accepts a well-formed inbound X-Request-Id or generates a new
// one, and echoes it on the response.
type Interceptor struct{}

var _ guard.Interceptor = Interceptor{}

// Before stores the request identifier in the request context.
func (Interceptor) Before(w guard.ResponseWriter, r *guard.IncomingRequest) guard.Result {
	id := r.Header.Get(HeaderName)
	if !sanitize.ValidateSafeID(id) {
		id = uuid.NewString()
	}
	r.SetContext(NewContext(r.Context(), id))
	return guard.NotWritten()
}

// Commit sets the X-Request-Id response header.
func (Interceptor) Commit(w guard.ResponseHeadersWriter, r *guard.IncomingRequest, resp guard.Response) {
	if id := FromContext(r.Context()); id != "" {
		w.Header().Set(HeaderName, id)
	}
}
