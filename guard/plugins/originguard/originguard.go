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

// Package originguard protects state-changing requests against Cross-Site
// Request Forgery.
//
// A request to a protected method (POST, PUT, PATCH, DELETE) on a path that
// is not exempt must come from the same origin as the server, as reported by
// the Origin header or, when it is missing, the Referer header. A request
// with neither header is rejected. If the request also carries an
// X-CSRF-Token header, its value must equal the csrf-token cookie (the
// double-submit cookie pattern).
package originguard

import (
	"crypto/subtle"
	"fmt"
	"net/url"
	"strings"

	"github.com/storefront/reqguard/guard"
)

// Default header and cookie names of the double-submit check.
const (
	DefaultTokenHeader = "X-CSRF-Token"
	DefaultTokenCookie = "csrf-token"
)

// DefaultExemptPaths are matched exactly: sub-paths and paths with a query
// are still protected.
var DefaultExemptPaths = []string{
	"/api/webhook/stripe",
	"/api/orders/lookup",
	"/api/products/availability",
	"/api/health",
}

var protectedMethods = map[string]bool{
	guard.MethodPost:   true,
	guard.MethodPut:    true,
	guard.MethodPatch:  true,
	guard.MethodDelete: true,
}

// Reason classifies a decision, for logs and metrics.
type Reason string

// Decision reasons.
const (
	ReasonSafeMethod    Reason = "safe_method"
	ReasonExempt        Reason = "exempt_path"
	ReasonSameOrigin    Reason = "same_origin"
	ReasonTokenVerified Reason = "token_verified"

	ReasonInvalidOrigin  Reason = "invalid_origin"
	ReasonInvalidReferer Reason = "invalid_referer"
	ReasonMissingOrigin  Reason = "missing_origin"
	ReasonNoCookies      Reason = "no_cookies"
	ReasonMissingCookie  Reason = "missing_cookie"
	ReasonTokenMismatch  Reason = "token_mismatch"
)

// ValidationResult is the decision for one request. Err describes a
// rejection for server-side logs and must not be sent to clients.
type ValidationResult struct {
	Valid  bool
	Err    string
	Reason Reason
}

func allow(reason Reason) ValidationResult {
	return ValidationResult{Valid: true, Reason: reason}
}

func reject(reason Reason, format string, args ...any) ValidationResult {
	return ValidationResult{Err: fmt.Sprintf(format, args...), Reason: reason}
}

// Options configures a Guard.
type Options struct {
	// ExemptPaths are matched exactly against the request path. Nil means
	// DefaultExemptPaths; an empty non-nil slice exempts nothing.
	ExemptPaths []string
	// TrustForwardedProto makes X-Forwarded-Proto: https select the https
	// scheme for the expected origin. Only enable it behind a proxy that
	// sets the header.
	TrustForwardedProto bool
	// TokenHeader and TokenCookie default to DefaultTokenHeader and
	// DefaultTokenCookie.
	TokenHeader string
	TokenCookie string
}

// Guard validates requests. It is immutable and safe for concurrent use.
type Guard struct {
	exempt         map[string]bool
	trustForwarded bool
	tokenHeader    string
	tokenCookie    string
}

// New creates a Guard.
func New(opts Options) *Guard {
	paths := opts.ExemptPaths
	if paths == nil {
		paths = DefaultExemptPaths
	}
	g := &Guard{
		exempt:         make(map[string]bool, len(paths)),
		trustForwarded: opts.TrustForwardedProto,
		tokenHeader:    opts.TokenHeader,
		tokenCookie:    opts.TokenCookie,
	}
	for _, p := range paths {
		g.exempt[p] = true
	}
	if g.tokenHeader == "" {
		g.tokenHeader = DefaultTokenHeader
	}
	if g.tokenCookie == "" {
		g.tokenCookie = DefaultTokenCookie
	}
	return g
}

var defaultGuard = New(Options{})

// Default returns the Guard with the default exempt paths.
func Default() *Guard {
	return defaultGuard
}

// Validate runs the default Guard.
func Validate(r *guard.IncomingRequest) ValidationResult {
	return defaultGuard.Validate(r)
}

// TokenCookie returns the name of the double-submit cookie.
func (g *Guard) TokenCookie() string {
	return g.tokenCookie
}

// Validate decides whether r may proceed.
func (g *Guard) Validate(r *guard.IncomingRequest) ValidationResult {
	if !protectedMethods[r.Method()] {
		return allow(ReasonSafeMethod)
	}
	if g.exempt[r.URL().Path] {
		return allow(ReasonExempt)
	}

	expected := g.expectedOrigin(r)
	switch origin, referer := r.Header.Get("Origin"), r.Header.Get("Referer"); {
	case origin != "":
		if origin != expected {
			return reject(ReasonInvalidOrigin, "Invalid origin %q, expected %q", origin, expected)
		}
	case referer != "":
		if got := refererOrigin(referer); got != expected {
			return reject(ReasonInvalidReferer, "Invalid referer %q, expected origin %q", referer, expected)
		}
	default:
		return reject(ReasonMissingOrigin, "Missing origin/referer header")
	}

	token := r.Header.Get(g.tokenHeader)
	if token == "" {
		return allow(ReasonSameOrigin)
	}
	if r.CookieHeader() == "" {
		return reject(ReasonNoCookies, "CSRF token header sent but the request has no cookies")
	}
	cookie, ok := r.Cookies()[g.tokenCookie]
	if !ok {
		return reject(ReasonMissingCookie, "CSRF token header sent without a %s cookie", g.tokenCookie)
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(cookie)) != 1 {
		return reject(ReasonTokenMismatch, "Token mismatch between %s header and %s cookie", g.tokenHeader, g.tokenCookie)
	}
	return allow(ReasonTokenVerified)
}

func (g *Guard) expectedOrigin(r *guard.IncomingRequest) string {
	scheme := "http"
	if r.IsTLS() {
		scheme = "https"
	} else if g.trustForwarded {
		proto, _, _ := strings.Cut(r.Header.Get("X-Forwarded-Proto"), ",")
		if strings.EqualFold(strings.TrimSpace(proto), "https") {
			scheme = "https"
		}
	}
	return scheme + "://" + r.Host()
}

// refererOrigin returns scheme://host of a Referer value, or "" when it is
// not an absolute URL.
func refererOrigin(referer string) string {
	u, err := url.Parse(referer)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
