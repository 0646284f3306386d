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
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// The HTTP request methods defined by RFC 7231.
const (
	MethodConnect = "CONNECT"
	MethodDelete  = "DELETE"
	MethodGet     = "GET"
	MethodHead    = "HEAD"
	MethodOptions = "OPTIONS"
	MethodPatch   = "PATCH"
	MethodPost    = "POST"
	MethodPut     = "PUT"
	MethodTrace   = "TRACE"
)

// ServeMuxConfig collects handlers and interceptors and builds a ServeMux.
//
// Patterns follow the http.ServeMux rules for paths (no method or host
// prefix). Interceptors apply to every handler, in the order they were
// installed.
type ServeMuxConfig struct {
	dispatcher   Dispatcher
	interceptors []Interceptor
	handlers     []registration
}

type registration struct {
	pattern string
	method  string
	handler Handler
}

// NewServeMuxConfig creates a ServeMuxConfig with the given Dispatcher. A nil
// Dispatcher means DefaultDispatcher.
func NewServeMuxConfig(d Dispatcher) *ServeMuxConfig {
	if d == nil {
		d = DefaultDispatcher{}
	}
	return &ServeMuxConfig{dispatcher: d}
}

// Intercept installs interceptors. Their Before phases run in the order of
// installation and their Commit phases in reverse.
func (c *ServeMuxConfig) Intercept(is ...Interceptor) {
	c.interceptors = append(c.interceptors, is...)
}

// Handle registers a handler for the given pattern and method. Registering
// the same pattern and method twice makes Mux panic.
func (c *ServeMuxConfig) Handle(pattern, method string, h Handler) {
	c.handlers = append(c.handlers, registration{pattern: pattern, method: method, handler: h})
}

// HandleFunc registers a handler function for the given pattern and method.
func (c *ServeMuxConfig) HandleFunc(pattern, method string, f func(ResponseWriter, *IncomingRequest) Result) {
	c.Handle(pattern, method, HandlerFunc(f))
}

// Mux builds the ServeMux. Later changes to c do not affect it.
func (c *ServeMuxConfig) Mux() *ServeMux {
	interceptors := append([]Interceptor(nil), c.interceptors...)
	m := &ServeMux{
		mux:          http.NewServeMux(),
		dispatcher:   c.dispatcher,
		interceptors: interceptors,
	}

	byPattern := map[string]*methodHandler{}
	var order []string
	for _, reg := range c.handlers {
		mh, ok := byPattern[reg.pattern]
		if !ok {
			mh = &methodHandler{
				handlers:     map[string]Handler{},
				dispatcher:   c.dispatcher,
				interceptors: interceptors,
			}
			byPattern[reg.pattern] = mh
			order = append(order, reg.pattern)
		}
		method := strings.ToUpper(reg.method)
		if _, dup := mh.handlers[method]; dup {
			panic(fmt.Sprintf("method %s already registered for %q", method, reg.pattern))
		}
		mh.handlers[method] = reg.handler
	}
	for _, p := range order {
		m.mux.Handle(p, byPattern[p])
	}
	if _, ok := byPattern["/"]; !ok {
		// Unknown paths still go through the interceptors.
		m.mux.Handle("/", &methodHandler{
			handlers:     map[string]Handler{},
			dispatcher:   c.dispatcher,
			interceptors: interceptors,
			notFound:     true,
		})
	}
	return m
}

// ServeMux is an HTTP request multiplexer running every request through the
// configured interceptors. It implements http.Handler.
type ServeMux struct {
	mux          *http.ServeMux
	dispatcher   Dispatcher
	interceptors []Interceptor
}

// ServeHTTP dispatches the request to the handler whose pattern most closely
// matches the request URL.
//
// Responses that http.ServeMux produces on its own, such as the redirects
// for a missing trailing slash or an unclean path, are replayed through the
// interceptors.
func (m *ServeMux) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h, _ := m.mux.Handler(r)
	if _, ok := h.(*methodHandler); ok {
		m.mux.ServeHTTP(w, r)
		return
	}
	cw := &captureWriter{header: http.Header{}}
	h.ServeHTTP(cw, r)
	cfg := handlerConfig{
		Handler:      replayHandler(cw),
		Dispatcher:   m.dispatcher,
		Interceptors: m.interceptors,
	}
	processRequest(cfg, w, r)
}

// captureWriter records the status and headers of a response written by a
// plain http.Handler and discards the body.
type captureWriter struct {
	header http.Header
	code   int
}

func (c *captureWriter) Header() http.Header {
	return c.header
}

func (c *captureWriter) WriteHeader(code int) {
	if c.code == 0 {
		c.code = code
	}
}

func (c *captureWriter) Write(b []byte) (int, error) {
	c.WriteHeader(http.StatusOK)
	return len(b), nil
}

func replayHandler(cw *captureWriter) Handler {
	code := StatusCode(cw.code)
	if loc := cw.header.Get("Location"); code.IsRedirect() && loc != "" {
		return HandlerFunc(func(w ResponseWriter, r *IncomingRequest) Result {
			return w.Redirect(r, loc, code)
		})
	}
	if code < 400 {
		code = StatusNotFound
	}
	return statusHandler(code, cw.header.Get("Allow"))
}

type methodHandler struct {
	// Maps an HTTP method to its handler.
	handlers     map[string]Handler
	dispatcher   Dispatcher
	interceptors []Interceptor
	notFound     bool
}

func (mh *methodHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cfg := handlerConfig{
		Dispatcher:   mh.dispatcher,
		Interceptors: mh.interceptors,
	}
	h, ok := mh.handlers[r.Method]
	switch {
	case mh.notFound:
		cfg.Handler = statusHandler(StatusNotFound, "")
	case ok:
		cfg.Handler = h
	default:
		cfg.Handler = statusHandler(StatusMethodNotAllowed, mh.allow())
	}
	processRequest(cfg, w, r)
}

func (mh *methodHandler) allow() string {
	methods := make([]string, 0, len(mh.handlers))
	for m := range mh.handlers {
		methods = append(methods, m)
	}
	sort.Strings(methods)
	return strings.Join(methods, ", ")
}

func statusHandler(code StatusCode, allow string) Handler {
	return HandlerFunc(func(w ResponseWriter, _ *IncomingRequest) Result {
		if allow != "" {
			w.Header().Set("Allow", allow)
		}
		return w.WriteError(code)
	})
}
