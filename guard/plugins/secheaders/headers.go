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

// Package secheaders composes the security response headers of the
// storefront and applies them to every response.
package secheaders

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/storefront/reqguard/guard"
	"golang.org/x/net/http/httpguts"
)

// Header names set by this package.
const (
	HeaderCSP                       = "Content-Security-Policy"
	HeaderFrameOptions              = "X-Frame-Options"
	HeaderContentTypeOptions        = "X-Content-Type-Options"
	HeaderReferrerPolicy            = "Referrer-Policy"
	HeaderPermissionsPolicy         = "Permissions-Policy"
	HeaderXSSProtection             = "X-XSS-Protection"
	HeaderCrossOriginOpenerPolicy   = "Cross-Origin-Opener-Policy"
	HeaderCrossOriginResourcePolicy = "Cross-Origin-Resource-Policy"
	HeaderCrossOriginEmbedderPolicy = "Cross-Origin-Embedder-Policy"
	HeaderHSTS                      = "Strict-Transport-Security"
)

const (
	permissionsPolicy = "geolocation=(), microphone=(), camera=(), payment=(), usb=(), magnetometer=(), gyroscope=(), accelerometer=()"
	hstsValue         = "max-age=31536000; includeSubDomains; preload"
)

// TrustedDomains lists extra sources appended to the matching CSP directive.
type TrustedDomains struct {
	Scripts []string `yaml:"scripts"`
	Styles  []string `yaml:"styles"`
	Images  []string `yaml:"images"`
	Fonts   []string `yaml:"fonts"`
	Connect []string `yaml:"connect"`
}

// Options configures the header set. The zero value is the production set
// with the default policy.
type Options struct {
	Mode guard.Mode
	// ContentSecurityPolicy replaces the generated policy verbatim when set.
	ContentSecurityPolicy string
	TrustedDomains        TrustedDomains
}

// ErrInvalidSource is returned by Options.Validate for sources that would
// break out of their directive or header.
var ErrInvalidSource = errors.New("invalid CSP source")

// Validate rejects trusted domains that are not a single CSP source and a
// custom policy that is not a valid header value.
func (o Options) Validate() error {
	if o.ContentSecurityPolicy != "" && !httpguts.ValidHeaderFieldValue(o.ContentSecurityPolicy) {
		return fmt.Errorf("%w: custom policy is not a valid header value", ErrInvalidSource)
	}
	groups := []struct {
		name    string
		sources []string
	}{
		{"scripts", o.TrustedDomains.Scripts},
		{"styles", o.TrustedDomains.Styles},
		{"images", o.TrustedDomains.Images},
		{"fonts", o.TrustedDomains.Fonts},
		{"connect", o.TrustedDomains.Connect},
	}
	for _, g := range groups {
		for _, s := range g.sources {
			if s == "" || !httpguts.ValidHeaderFieldValue(s) || strings.ContainsAny(s, "; ,\t") {
				return fmt.Errorf("%w in trusted %s: %q", ErrInvalidSource, g.name, s)
			}
		}
	}
	return nil
}

// HeaderSet maps header names to values.
type HeaderSet map[string]string

// Names returns the header names in sorted order.
func (s HeaderSet) Names() []string {
	names := make([]string, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Headers returns the security headers for opts. The result only depends on
// opts.
func Headers(opts Options) HeaderSet {
	csp := opts.ContentSecurityPolicy
	if csp == "" {
		csp = BuildDefaultCSP(opts)
	}
	set := HeaderSet{
		HeaderCSP:                       csp,
		HeaderFrameOptions:              "DENY",
		HeaderContentTypeOptions:        "nosniff",
		HeaderReferrerPolicy:            "strict-origin-when-cross-origin",
		HeaderPermissionsPolicy:         permissionsPolicy,
		HeaderXSSProtection:             "1; mode=block",
		HeaderCrossOriginOpenerPolicy:   "same-origin",
		HeaderCrossOriginResourcePolicy: "same-origin",
		HeaderCrossOriginEmbedderPolicy: "unsafe-none",
	}
	if opts.Mode.IsProduction() {
		set[HeaderCrossOriginEmbedderPolicy] = "require-corp"
		set[HeaderHSTS] = hstsValue
	}
	return set
}

type directive struct {
	name    string
	sources []string
}

// BuildDefaultCSP returns the storefront policy: same-origin by default, the
// payment processor and platform services where they are needed, inline
// styles, and the trusted domains of opts. Development adds 'unsafe-eval' to
// script-src for hot reloading.
func BuildDefaultCSP(opts Options) string {
	td := opts.TrustedDomains
	scripts := []string{"'self'", "https://js.stripe.com", "https://apis.google.com", "https://www.gstatic.com"}
	if !opts.Mode.IsProduction() {
		scripts = append(scripts, "'unsafe-eval'")
	}
	directives := []directive{
		{"default-src", []string{"'self'"}},
		{"script-src", withTrusted(scripts, td.Scripts)},
		{"style-src", withTrusted([]string{"'self'", "'unsafe-inline'", "https://fonts.googleapis.com"}, td.Styles)},
		{"img-src", withTrusted([]string{"'self'", "data:", "blob:", "https://firebasestorage.googleapis.com", "https://*.stripe.com"}, td.Images)},
		{"font-src", withTrusted([]string{"'self'", "data:", "https://fonts.gstatic.com"}, td.Fonts)},
		{"connect-src", withTrusted([]string{
			"'self'",
			"https://api.stripe.com",
			"https://*.googleapis.com",
			"https://*.firebaseio.com",
			"https://identitytoolkit.googleapis.com",
			"https://securetoken.googleapis.com",
		}, td.Connect)},
		{"frame-src", []string{"https://js.stripe.com", "https://hooks.stripe.com"}},
		{"object-src", []string{"'none'"}},
		{"base-uri", []string{"'self'"}},
		{"form-action", []string{"'self'"}},
		{"frame-ancestors", []string{"'none'"}},
		{"upgrade-insecure-requests", nil},
	}
	parts := make([]string, 0, len(directives))
	for _, d := range directives {
		if len(d.sources) == 0 {
			parts = append(parts, d.name)
			continue
		}
		parts = append(parts, d.name+" "+strings.Join(d.sources, " "))
	}
	return strings.Join(parts, "; ")
}

// withTrusted appends the trusted sources not already present.
func withTrusted(base, trusted []string) []string {
	for _, t := range trusted {
		if !slices.Contains(base, t) {
			base = append(base, t)
		}
	}
	return base
}
