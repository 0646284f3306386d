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
	"runtime/debug"
)

// flight is the state of a single request going through the pipeline.
type flight struct {
	rw     *trackingWriter
	req    *IncomingRequest
	cfg    handlerConfig
	header Header

	written bool
}

type handlerConfig struct {
	Handler      Handler
	Dispatcher   Dispatcher
	Interceptors []Interceptor
}

// trackingWriter remembers whether anything reached the client.
type trackingWriter struct {
	http.ResponseWriter
	sent bool
}

func (t *trackingWriter) WriteHeader(code int) {
	t.sent = true
	t.ResponseWriter.WriteHeader(code)
}

func (t *trackingWriter) Write(b []byte) (int, error) {
	t.sent = true
	return t.ResponseWriter.Write(b)
}

func (t *trackingWriter) Unwrap() http.ResponseWriter {
	return t.ResponseWriter
}

// NewResponseWriter creates a ResponseWriter that is not attached to a mux:
// no interceptors run and d writes the responses. It is meant for tests and
// for adapting plain http.Handlers. A nil d means DefaultDispatcher.
func NewResponseWriter(d Dispatcher, rw http.ResponseWriter, r *IncomingRequest) ResponseWriter {
	if d == nil {
		d = DefaultDispatcher{}
	}
	return &flight{
		cfg:    handlerConfig{Dispatcher: d},
		rw:     &trackingWriter{ResponseWriter: rw},
		req:    r,
		header: newHeader(rw.Header()),
	}
}

func processRequest(cfg handlerConfig, rw http.ResponseWriter, req *http.Request) {
	f := &flight{
		cfg:    cfg,
		rw:     &trackingWriter{ResponseWriter: rw},
		header: newHeader(rw.Header()),
		req:    NewIncomingRequest(req),
	}
	defer f.recoverPanic()

	for _, it := range f.cfg.Interceptors {
		it.Before(f, f.req)
		if f.written {
			return
		}
	}
	f.cfg.Handler.ServeHTTP(f, f.req)
	if !f.written {
		f.NoContent()
	}
}

func (f *flight) recoverPanic() {
	v := recover()
	if v == nil {
		return
	}
	if v == http.ErrAbortHandler {
		panic(v)
	}
	if f.rw.sent {
		// Part of the response is on the wire, nothing safe is left to do.
		return
	}
	// Headers set so far belong to a response that will never be sent.
	f.header.reset()
	pe := &PanicError{Value: v, Stack: debug.Stack()}
	if f.written {
		writeTextError(f.rw, pe.Code())
		return
	}
	defer func() {
		if recover() != nil && !f.rw.sent {
			f.header.reset()
			writeTextError(f.rw, pe.Code())
		}
	}()
	f.WriteError(pe)
}

func (f *flight) markWritten() {
	if f.written {
		panic("ResponseWriter was already written to")
	}
	f.written = true
}

// Write dispatches resp after the Commit phase.
func (f *flight) Write(resp Response) Result {
	f.markWritten()
	f.commitPhase(resp)
	if err := f.cfg.Dispatcher.Write(f.rw, resp); err != nil {
		panic(err)
	}
	return Result{}
}

// WriteError dispatches an error response after the Commit phase.
func (f *flight) WriteError(resp ErrorResponse) Result {
	f.markWritten()
	f.commitPhase(resp)
	if err := f.cfg.Dispatcher.Error(f.rw, resp); err != nil {
		panic(err)
	}
	return Result{}
}

// Redirect responds with a redirect after the Commit phase.
func (f *flight) Redirect(r *IncomingRequest, url string, code StatusCode) Result {
	if !code.IsRedirect() {
		panic(fmt.Sprintf("wrong method called: redirect with status %d", code))
	}
	f.markWritten()
	f.commitPhase(RedirectResponse{Location: url, Code: code})
	http.Redirect(f.rw, r.req, url, int(code))
	return Result{}
}

// NoContent responds with 204 No Content after the Commit phase.
func (f *flight) NoContent() Result {
	f.markWritten()
	f.commitPhase(NoContentResponse{})
	f.rw.WriteHeader(int(StatusNoContent))
	return Result{}
}

func (f *flight) Written() bool {
	return f.written
}

func (f *flight) Header() Header {
	return f.header
}

func (f *flight) AddCookie(c *http.Cookie) error {
	return f.header.addCookie(c)
}

func (f *flight) commitPhase(resp Response) {
	for i := len(f.cfg.Interceptors) - 1; i >= 0; i-- {
		f.cfg.Interceptors[i].Commit(f, f.req, resp)
	}
}
