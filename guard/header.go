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

import (
	"errors"
	"net/http"
	"net/textproto"
)

var disallowedHeaders = map[string]bool{"Set-Cookie": true}

var (
	errDisallowedHeader = errors.New("disallowed header")
	errImmutableHeader  = errors.New("immutable header")
)

// Header represents the key-value pairs in an HTTP response header.
//
// The keys are in canonical form, as returned by
// textproto.CanonicalMIMEHeaderKey. Set-Cookie cannot be manipulated through
// Header; use ResponseHeadersWriter.AddCookie instead.
type Header struct {
	wrapped   http.Header
	immutable map[string]bool
}

func newHeader(h http.Header) Header {
	return Header{wrapped: h, immutable: map[string]bool{}}
}

// MarkImmutable marks the header with the given name as read-only.
func (h Header) MarkImmutable(name string) {
	h.immutable[textproto.CanonicalMIMEHeaderKey(name)] = true
}

// IsImmutable reports whether the header was marked immutable or claimed.
func (h Header) IsImmutable(name string) bool {
	return h.immutable[textproto.CanonicalMIMEHeaderKey(name)]
}

// Claim marks the header as immutable and returns a function that is the
// only way left to set its values. Claiming an already immutable header
// fails, which catches two plugins competing for the same header.
func (h Header) Claim(name string) (set func([]string), err error) {
	name = textproto.CanonicalMIMEHeaderKey(name)
	if err := h.writableHeader(name); err != nil {
		return nil, err
	}
	h.immutable[name] = true
	return func(v []string) {
		if len(v) == 0 {
			delete(h.wrapped, name)
			return
		}
		h.wrapped[name] = v
	}, nil
}

// Set sets the header to the single given value, replacing existing values.
func (h Header) Set(name, value string) error {
	name = textproto.CanonicalMIMEHeaderKey(name)
	if err := h.writableHeader(name); err != nil {
		return err
	}
	h.wrapped.Set(name, value)
	return nil
}

// Add appends value to the header.
func (h Header) Add(name, value string) error {
	name = textproto.CanonicalMIMEHeaderKey(name)
	if err := h.writableHeader(name); err != nil {
		return err
	}
	h.wrapped.Add(name, value)
	return nil
}

// Del deletes all values of the header.
func (h Header) Del(name string) error {
	name = textproto.CanonicalMIMEHeaderKey(name)
	if err := h.writableHeader(name); err != nil {
		return err
	}
	h.wrapped.Del(name)
	return nil
}

// Get returns the first value of the header, or "" if it is not set.
func (h Header) Get(name string) string {
	return h.wrapped.Get(name)
}

// Values returns all the values of the header.
func (h Header) Values(name string) []string {
	return h.wrapped.Values(name)
}

// Has reports whether at least one value is set for the header.
func (h Header) Has(name string) bool {
	return len(h.wrapped.Values(name)) > 0
}

func (h Header) writableHeader(name string) error {
	if disallowedHeaders[name] {
		return errDisallowedHeader
	}
	if h.immutable[name] {
		return errImmutableHeader
	}
	return nil
}

// reset drops every value and every immutability mark.
func (h Header) reset() {
	for k := range h.wrapped {
		delete(h.wrapped, k)
	}
	for k := range h.immutable {
		delete(h.immutable, k)
	}
}

func (h Header) addCookie(c *http.Cookie) error {
	if err := c.Valid(); err != nil {
		return err
	}
	h.wrapped.Add("Set-Cookie", c.String())
	return nil
}
