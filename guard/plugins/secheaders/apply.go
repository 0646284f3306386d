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
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Policy decides what happens when a response already carries one of the
// security headers.
type Policy int

const (
	// YieldToExisting keeps a value the response already set. The header set
	// only fills in what is missing.
	YieldToExisting Policy = iota
	// Enforce replaces existing values with the header set.
	Enforce
)

func (p Policy) String() string {
	switch p {
	case YieldToExisting:
		return "yield"
	case Enforce:
		return "enforce"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// Apply writes set into h according to policy.
func Apply(h http.Header, set HeaderSet, policy Policy) {
	for _, name := range set.Names() {
		if policy == YieldToExisting && len(h.Values(name)) > 0 {
			continue
		}
		h.Set(name, set[name])
	}
}

// ApplyToResponse returns a copy of resp with cloned headers decorated with
// the header set for opts. Status and body are kept; values resp already
// carries are not replaced.
func ApplyToResponse(resp *http.Response, opts Options) *http.Response {
	out := *resp
	out.Header = resp.Header.Clone()
	if out.Header == nil {
		out.Header = http.Header{}
	}
	Apply(out.Header, Headers(opts), YieldToExisting)
	return &out
}

// IsSecureConnection reports whether r reached the client over HTTPS: a TLS
// connection, an https request URL, X-Forwarded-Proto: https, or a Cloudflare
// CF-Visitor header with scheme https.
func IsSecureConnection(r *http.Request) bool {
	if r.TLS != nil || (r.URL != nil && r.URL.Scheme == "https") {
		return true
	}
	if proto, _, _ := strings.Cut(r.Header.Get("X-Forwarded-Proto"), ","); strings.EqualFold(strings.TrimSpace(proto), "https") {
		return true
	}
	if v := r.Header.Get("CF-Visitor"); v != "" {
		var visitor struct {
			Scheme string `json:"scheme"`
		}
		if json.Unmarshal([]byte(v), &visitor) == nil && strings.EqualFold(visitor.Scheme, "https") {
			return true
		}
	}
	return false
}

// HTTPSURL returns the URL of r with the scheme forced to https.
func HTTPSURL(r *http.Request) string {
	u := url.URL{
		Scheme:   "https",
		Host:     r.Host,
		Path:     r.URL.Path,
		RawPath:  r.URL.RawPath,
		RawQuery: r.URL.RawQuery,
	}
	if u.Path == "" {
		u.Path = "/"
	}
	return u.String()
}

// RedirectToHTTPS answers with a 301 to the https version of r, decorated
// with the header set for opts.
func RedirectToHTTPS(w http.ResponseWriter, r *http.Request, opts Options) {
	Apply(w.Header(), Headers(opts), YieldToExisting)
	http.Redirect(w, r, HTTPSURL(r), http.StatusMovedPermanently)
}
