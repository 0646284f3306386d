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
	"encoding/hex"

	"github.com/rs/zerolog"
	"github.com/storefront/reqguard/guard"
	"github.com/storefront/reqguard/guard/plugins/apierror"
	"github.com/storefront/reqguard/guard/plugins/requestid"
	"github.com/storefront/reqguard/logging"
	"github.com/storefront/reqguard/metrics"
	"golang.org/x/crypto/blake2b"
)

// Client-facing rejection.
const (
	RejectionMessage = "CSRF validation failed"
	RejectionCode    = "CSRF_VALIDATION_FAILED"
)

// RejectionResponse returns the 403 written for rejected requests. The
// specific reason is only logged.
func RejectionResponse() *apierror.Response {
	return &apierror.Response{
		Status: guard.StatusForbidden,
		Body:   apierror.Body{Error: RejectionMessage, Code: RejectionCode},
	}
}

// Interceptor rejects requests that fail Guard.Validate before they reach
// the handler.
type Interceptor struct {
	g       *Guard
	logger  *zerolog.Logger
	metrics *metrics.Metrics
}

var _ guard.Interceptor = (*Interceptor)(nil)

// NewInterceptor creates an Interceptor for g. A nil g means Default(), a nil
// logger the global logger; m may be nil.
func NewInterceptor(g *Guard, logger *zerolog.Logger, m *metrics.Metrics) *Interceptor {
	if g == nil {
		g = Default()
	}
	return &Interceptor{g: g, logger: logging.Or(logger), metrics: m}
}

// Before validates the request and writes the rejection on failure.
func (it *Interceptor) Before(w guard.ResponseWriter, r *guard.IncomingRequest) guard.Result {
	res := it.g.Validate(r)
	if res.Valid {
		it.metrics.RecordCSRFCheck(metrics.OutcomeAllowed, string(res.Reason))
		return guard.NotWritten()
	}
	it.metrics.RecordCSRFCheck(metrics.OutcomeRejected, string(res.Reason))

	ev := it.logger.Warn().
		Str("method", r.Method()).
		Str("path", r.URL().Path).
		Str("origin", r.Header.Get("Origin")).
		Str("referer", r.Header.Get("Referer")).
		Str("reason", string(res.Reason))
	if id := requestid.FromContext(r.Context()); id != "" {
		ev = ev.Str("request_id", id)
	}
	if tok := r.Header.Get(it.g.tokenHeader); tok != "" {
		ev = ev.Str("token_fp", Fingerprint(tok))
	}
	if c, ok := r.Cookies()[it.g.tokenCookie]; ok {
		ev = ev.Str("cookie_fp", Fingerprint(c))
	}
	ev.Msg(res.Err)

	return w.WriteError(RejectionResponse())
}

// Commit does nothing.
func (it *Interceptor) Commit(w guard.ResponseHeadersWriter, r *guard.IncomingRequest, resp guard.Response) {
}

// Fingerprint returns a short BLAKE2b digest of a token, so that logs can
// tell tokens apart without recording them.
func Fingerprint(token string) string {
	sum := blake2b.Sum256([]byte(token))
	return hex.EncodeToString(sum[:8])
}
