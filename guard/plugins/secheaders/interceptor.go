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

package secheaders

import (
	"github.com/rs/zerolog"
	"github.com/storefront/reqguard/guard"
	"github.com/storefront/reqguard/logging"
	"github.com/storefront/reqguard/metrics"
)

// Interceptor decorates every response with the security headers and,
// optionally, redirects plain HTTP requests to HTTPS in production.
type Interceptor struct {
	set          HeaderSet
	policy       Policy
	redirectHTTP bool
	logger       *zerolog.Logger
	metrics      *metrics.Metrics
}

var _ guard.Interceptor = (*Interceptor)(nil)

// Config configures an Interceptor.
type Config struct {
	Options Options
	Policy  Policy
	// RedirectHTTP answers plain HTTP requests with a 301 to HTTPS. It only
	// applies in production.
	RedirectHTTP bool
	// Logger defaults to the global logger.
	Logger  *zerolog.Logger
	Metrics *metrics.Metrics
}

// NewInterceptor validates cfg.Options and computes the header set once.
func NewInterceptor(cfg Config) (*Interceptor, error) {
	if err := cfg.Options.Validate(); err != nil {
		return nil, err
	}
	return &Interceptor{
		set:          Headers(cfg.Options),
		policy:       cfg.Policy,
		redirectHTTP: cfg.RedirectHTTP && cfg.Options.Mode.IsProduction(),
		logger:       logging.Or(cfg.Logger),
		metrics:      cfg.Metrics,
	}, nil
}

// Before redirects insecure requests when configured to.
func (it *Interceptor) Before(w guard.ResponseWriter, r *guard.IncomingRequest) guard.Result {
	if !it.redirectHTTP {
		return guard.NotWritten()
	}
	raw := guard.RawRequest(r)
	if IsSecureConnection(raw) {
		return guard.NotWritten()
	}
	it.metrics.RecordHTTPSRedirect()
	return w.Redirect(r, HTTPSURL(raw), guard.StatusMovedPermanently)
}

// Commit sets the header set on the response, following the policy.
func (it *Interceptor) Commit(w guard.ResponseHeadersWriter, r *guard.IncomingRequest, resp guard.Response) {
	h := w.Header()
	for _, name := range it.set.Names() {
		if it.policy == YieldToExisting && h.Has(name) {
			continue
		}
		if err := h.Set(name, it.set[name]); err != nil {
			it.logger.Warn().Err(err).Str("header", name).Msg("security header not applied")
		}
	}
}
